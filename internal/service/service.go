package service

import (
	"context"
	"time"

	"toolrent-backend/internal/domain"
)

type ToolService interface {
	AddTool(ctx context.Context, ownerID int64, tool *domain.Tool) error
	GetTool(ctx context.Context, id int64) (*domain.Tool, error)
}

type RentalService interface {
	Create(ctx context.Context, callerID, toolID int64, start, end *time.Time) (*domain.Rent, error)
	Approve(ctx context.Context, rentID, callerID int64) (*domain.Rent, error)
	Reject(ctx context.Context, rentID, callerID int64, reason string) (*domain.Rent, error)
	Cancel(ctx context.Context, rentID, callerID int64) (*domain.Rent, error)
	Get(ctx context.Context, rentID int64) (*domain.Rent, error)
	FindByInterval(ctx context.Context, from, to time.Time) ([]domain.Rent, error)
}

// CaptureOrchestrator applies the outcome of a payment capture to the rent it paid for.
type CaptureOrchestrator interface {
	OnCaptureResult(ctx context.Context, rentID int64, status domain.CaptureStatus) error
}

type PaymentService interface {
	CreateOrder(ctx context.Context, callerID, rentID int64, currency string) (*domain.Order, error)
	CreatePayFirstOrder(ctx context.Context, amount domain.Money, description string) (*domain.Order, error)
	CaptureOrder(ctx context.Context, orderID string, rentID int64) (*domain.CaptureResult, error)
}

// FinishService closes rents whose rental period is over.
type FinishService interface {
	FinishElapsed(ctx context.Context) (int, error)
}
