package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/logger"

	"github.com/plutov/paypal/v4"
)

const providerPayPal = "paypal"

type PayPalConfig struct {
	ClientID string
	Secret   string
	APIBase  string
}

type PayPalGateway struct {
	client *paypal.Client
}

func NewPayPalGateway(cfg PayPalConfig) (*PayPalGateway, error) {
	base := cfg.APIBase
	if base == "" {
		base = paypal.APIBaseSandBox
	}
	client, err := paypal.NewClient(cfg.ClientID, cfg.Secret, base)
	if err != nil {
		return nil, fmt.Errorf("create paypal client: %w", err)
	}
	return &PayPalGateway{client: client}, nil
}

func (g *PayPalGateway) CreateOrder(ctx context.Context, req OrderRequest) (*domain.Order, error) {
	logger.ExternalServiceCall(providerPayPal, "CreateOrder", "amount", req.Amount.Decimal(), "currency", req.Amount.Currency)

	units := []paypal.PurchaseUnitRequest{{
		Amount: &paypal.PurchaseUnitAmount{
			Currency: req.Amount.Currency,
			Value:    req.Amount.Decimal(),
		},
		Description: req.Description,
	}}
	appCtx := &paypal.ApplicationContext{
		ReturnURL: req.ReturnURL,
		CancelURL: req.CancelURL,
	}

	order, err := g.client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, appCtx)
	logger.ExternalServiceResult(providerPayPal, "CreateOrder", err)
	if err != nil {
		return nil, fmt.Errorf("paypal create order: %w", classify(err))
	}
	return toOrder(order, req.Amount), nil
}

func (g *PayPalGateway) CaptureOrder(ctx context.Context, orderID string) (*domain.CaptureResult, error) {
	logger.ExternalServiceCall(providerPayPal, "CaptureOrder", "orderID", orderID)

	resp, err := g.client.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
	logger.ExternalServiceResult(providerPayPal, "CaptureOrder", err, "orderID", orderID)
	if err != nil {
		return nil, fmt.Errorf("paypal capture order %s: %w", orderID, classify(err))
	}
	return toCaptureResult(resp)
}

// classify marks 4xx answers about the request itself as RequestError.
// Auth failures and rate limiting stay provider failures.
func classify(err error) error {
	var er *paypal.ErrorResponse
	if !errors.As(err, &er) || er.Response == nil {
		return err
	}
	switch code := er.Response.StatusCode; {
	case code == http.StatusUnauthorized, code == http.StatusForbidden,
		code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return err
	case code >= 400 && code < 500:
		return &RequestError{StatusCode: code, Err: err}
	}
	return err
}

func toOrder(o *paypal.Order, amount domain.Money) *domain.Order {
	order := &domain.Order{ID: o.ID, Status: o.Status, Amount: amount}
	for _, l := range o.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			order.ApprovalURL = l.Href
			break
		}
	}
	return order
}

func toCaptureResult(resp *paypal.CaptureOrderResponse) (*domain.CaptureResult, error) {
	res := &domain.CaptureResult{
		OrderID: resp.ID,
		Status:  domain.ParseCaptureStatus(resp.Status),
	}
	for _, pu := range resp.PurchaseUnits {
		if pu.Payments == nil {
			continue
		}
		for _, c := range pu.Payments.Captures {
			if c.Amount == nil {
				continue
			}
			cents, err := parseCents(c.Amount.Value)
			if err != nil {
				return nil, fmt.Errorf("paypal capture %s: %w", resp.ID, err)
			}
			res.CapturedAmount.Currency = c.Amount.Currency
			res.CapturedAmount.ValueCents += cents
		}
	}
	return res, nil
}

// parseCents converts a provider decimal string such as "12.5" into cents.
func parseCents(v string) (int64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, errors.New("empty amount")
	}
	neg := strings.HasPrefix(v, "-")
	v = strings.TrimPrefix(v, "-")

	whole, frac, _ := strings.Cut(v, ".")
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimals", v)
	}
	frac += strings.Repeat("0", 2-len(frac))

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", v, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", v, err)
	}

	cents := w*100 + f
	if neg {
		cents = -cents
	}
	return cents, nil
}
