// Package payment talks to the external payment provider and guards captures
// against concurrent duplicates.
package payment

import (
	"context"
	"errors"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/metrics"
	"toolrent-backend/internal/reliability/circuitbreaker"
)

// OrderRequest describes an order to be approved by the payer.
type OrderRequest struct {
	Amount      domain.Money
	Description string
	ReturnURL   string
	CancelURL   string
}

// Gateway is the payment provider.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*domain.Order, error)
	CaptureOrder(ctx context.Context, orderID string) (*domain.CaptureResult, error)
}

// ErrGatewayUnavailable is returned without calling the provider while the breaker is open.
var ErrGatewayUnavailable = errors.New("payment gateway temporarily unavailable")

// RequestError is the provider refusing this particular request, such as an order
// that was never approved. The provider itself answered, so the breaker treats it as healthy.
type RequestError struct {
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string { return e.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }

// isProviderFailure reports whether err says something about provider health:
// transport errors, timeouts and 5xx do, request errors and caller cancellation do not.
func isProviderFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var re *RequestError
	return !errors.As(err, &re)
}

type breakerGateway struct {
	next Gateway
	cb   *circuitbreaker.CircuitBreaker
}

// WithCircuitBreaker fails fast once the provider keeps failing.
func WithCircuitBreaker(next Gateway, cb *circuitbreaker.CircuitBreaker) Gateway {
	cb.SetStateChangeCallback(func(_, to circuitbreaker.State) {
		metrics.SetGatewayBreakerState(int(to))
	})
	return &breakerGateway{next: next, cb: cb}
}

func (g *breakerGateway) call(fn func() error) error {
	if !g.cb.AllowRequest() {
		return ErrGatewayUnavailable
	}
	err := fn()
	if isProviderFailure(err) {
		g.cb.RecordFailure()
	} else {
		g.cb.RecordSuccess()
	}
	return err
}

func (g *breakerGateway) CreateOrder(ctx context.Context, req OrderRequest) (*domain.Order, error) {
	var order *domain.Order
	err := g.call(func() error {
		var err error
		order, err = g.next.CreateOrder(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (g *breakerGateway) CaptureOrder(ctx context.Context, orderID string) (*domain.CaptureResult, error) {
	var res *domain.CaptureResult
	err := g.call(func() error {
		var err error
		res, err = g.next.CaptureOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
