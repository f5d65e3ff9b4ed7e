package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/logger"
	"toolrent-backend/internal/metrics"
	"toolrent-backend/internal/payment"
	"toolrent-backend/internal/pricing"
	"toolrent-backend/internal/repository"
)

// PaymentURLs are the pages the provider sends the payer back to.
type PaymentURLs struct {
	ReturnURL string
	CancelURL string
}

type paymentService struct {
	gateway      payment.Gateway
	locker       payment.CaptureLocker
	orderRepo    repository.OrderRepository
	rentRepo     repository.RentRepository
	toolRepo     repository.ToolRepository
	orchestrator CaptureOrchestrator
	urls         PaymentURLs
	lockTTL      time.Duration
}

func NewPaymentService(
	gateway payment.Gateway,
	locker payment.CaptureLocker,
	orderRepo repository.OrderRepository,
	rentRepo repository.RentRepository,
	toolRepo repository.ToolRepository,
	orchestrator CaptureOrchestrator,
	urls PaymentURLs,
	lockTTL time.Duration,
) PaymentService {
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &paymentService{
		gateway:      gateway,
		locker:       locker,
		orderRepo:    orderRepo,
		rentRepo:     rentRepo,
		toolRepo:     toolRepo,
		orchestrator: orchestrator,
		urls:         urls,
		lockTTL:      lockTTL,
	}
}

// CreateOrder opens a provider order for an approved rent, priced from the tool's rates.
func (s *paymentService) CreateOrder(ctx context.Context, callerID, rentID int64, currency string) (*domain.Order, error) {
	logger.EnterMethod("paymentService.CreateOrder", "rentID", rentID, "callerID", callerID)

	rent, err := s.rentRepo.GetByID(ctx, rentID)
	if err != nil {
		logger.ExitMethodWithError("paymentService.CreateOrder", err, "rentID", rentID)
		return nil, err
	}
	if rent.UserID != callerID {
		logger.ExitMethodWithError("paymentService.CreateOrder", domain.ErrNotRenterPay, "rentID", rentID)
		return nil, domain.ErrNotRenterPay
	}
	if rent.Status != domain.RentStatusApproved {
		logger.ExitMethodWithError("paymentService.CreateOrder", domain.ErrNotApprovedForPay, "rentID", rentID, "status", rent.Status)
		return nil, domain.ErrNotApprovedForPay
	}
	tool, err := s.toolRepo.GetByID(ctx, rent.ToolID)
	if err != nil {
		logger.ExitMethodWithError("paymentService.CreateOrder", err, "rentID", rentID)
		return nil, err
	}

	amount := pricing.RentMoney(rent.Interval(), tool, currency)
	order, err := s.createOrder(ctx, rentID, amount, fmt.Sprintf("Rent #%d: %s", rent.ID, tool.Name))
	if err != nil {
		logger.ExitMethodWithError("paymentService.CreateOrder", err, "rentID", rentID)
		return nil, err
	}

	logger.ExitMethod("paymentService.CreateOrder", "rentID", rentID, "orderID", order.ID)
	return order, nil
}

// CreatePayFirstOrder opens an order before any rent exists. Its capture never touches a rent.
func (s *paymentService) CreatePayFirstOrder(ctx context.Context, amount domain.Money, description string) (*domain.Order, error) {
	logger.EnterMethod("paymentService.CreatePayFirstOrder", "amount", amount.Decimal(), "currency", amount.Currency)

	order, err := s.createOrder(ctx, domain.NoRentID, amount, description)
	if err != nil {
		logger.ExitMethodWithError("paymentService.CreatePayFirstOrder", err)
		return nil, err
	}

	logger.ExitMethod("paymentService.CreatePayFirstOrder", "orderID", order.ID)
	return order, nil
}

func (s *paymentService) createOrder(ctx context.Context, rentID int64, amount domain.Money, description string) (*domain.Order, error) {
	if amount.ValueCents <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	returnURL, err := withRentID(s.urls.ReturnURL, rentID)
	if err != nil {
		return nil, err
	}

	order, err := s.gateway.CreateOrder(ctx, payment.OrderRequest{
		Amount:      amount,
		Description: description,
		ReturnURL:   returnURL,
		CancelURL:   s.urls.CancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentGateway, err)
	}
	order.RentID = rentID

	binding := &domain.OrderBinding{OrderID: order.ID, RentID: rentID, Amount: amount}
	if err := s.orderRepo.Create(ctx, binding); err != nil {
		return nil, fmt.Errorf("record order %s: %w", order.ID, err)
	}
	return order, nil
}

// CaptureOrder captures an approved order and hands the outcome to the rent bookkeeping.
// The rent comes from the order recorded at creation; rentID from the return URL must match it.
// Once the provider has taken the money the result is returned even if bookkeeping fails.
func (s *paymentService) CaptureOrder(ctx context.Context, orderID string, rentID int64) (*domain.CaptureResult, error) {
	logger.EnterMethod("paymentService.CaptureOrder", "orderID", orderID, "rentID", rentID)

	binding, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		logger.ExitMethodWithError("paymentService.CaptureOrder", err, "orderID", orderID)
		return nil, err
	}
	if binding.RentID != rentID {
		metrics.ObserveCapture("rent_mismatch")
		logger.WarnContext(ctx, "Capture rent does not match the order", "orderID", orderID,
			"requestedRentID", rentID, "boundRentID", binding.RentID)
		logger.ExitMethodWithError("paymentService.CaptureOrder", domain.ErrOrderRentMismatch, "orderID", orderID)
		return nil, domain.ErrOrderRentMismatch
	}

	release, err := s.locker.Acquire(ctx, orderID, s.lockTTL)
	switch {
	case errors.Is(err, payment.ErrLockHeld):
		return nil, domain.ErrCaptureInProgress
	case err != nil:
		logger.WarnContext(ctx, "Capture lock unavailable, continuing without it", "orderID", orderID, "error", err)
	default:
		defer release(context.WithoutCancel(ctx))
	}

	res, err := s.gateway.CaptureOrder(ctx, orderID)
	if err != nil {
		metrics.ObserveCapture("gateway_error")
		logger.ExitMethodWithError("paymentService.CaptureOrder", err, "orderID", orderID)
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentGateway, err)
	}
	res.RentID = binding.RentID

	if res.Status == domain.CaptureStatusCompleted && !binding.Covers(res.CapturedAmount) {
		metrics.ObserveCapture("underpaid")
		logger.ErrorContext(ctx, "Captured amount does not cover the order, rent left unchanged", "orderID", orderID,
			"rentID", binding.RentID, "expected", binding.Amount.Decimal(), "captured", res.CapturedAmount.Decimal())
	} else if err := s.orchestrator.OnCaptureResult(ctx, binding.RentID, res.Status); err != nil {
		logger.ErrorContext(ctx, "Payment captured but rent bookkeeping failed", "orderID", orderID, "rentID", binding.RentID, "error", err)
	}

	logger.ExitMethod("paymentService.CaptureOrder", "orderID", orderID, "status", res.Status)
	return res, nil
}

func withRentID(base string, rentID int64) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid payment return url: %w", err)
	}
	q := u.Query()
	q.Set("rentId", strconv.FormatInt(rentID, 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
