package repository

import (
	"context"
	"time"

	"toolrent-backend/internal/domain"
)

type ToolRepository interface {
	Create(ctx context.Context, tool *domain.Tool) error
	GetByID(ctx context.Context, id int64) (*domain.Tool, error)
}

// OrderRepository remembers which rent and amount each provider order was created for.
type OrderRepository interface {
	Create(ctx context.Context, binding *domain.OrderBinding) error
	GetByID(ctx context.Context, orderID string) (*domain.OrderBinding, error)
}

// RentStore is the part of the rent repository that is usable inside a locked booking region.
type RentStore interface {
	Create(ctx context.Context, rent *domain.Rent) error
	FindLiveByTool(ctx context.Context, toolID int64) ([]domain.Rent, error)
}

type RentRepository interface {
	RentStore

	GetByID(ctx context.Context, id int64) (*domain.Rent, error)
	// Update persists a transition. It fails with domain.ErrConcurrentUpdate when
	// rent.Version no longer matches the stored row, and bumps rent.Version on success.
	Update(ctx context.Context, rent *domain.Rent) error
	FindByStartBetween(ctx context.Context, from, to time.Time) ([]domain.Rent, error)
	// FinishElapsed moves ACTIVE rents whose end date is not after now to FINISHED.
	FinishElapsed(ctx context.Context, now time.Time) ([]domain.Rent, error)

	// WithToolLock runs fn while holding the booking lock for toolID. Reads and the
	// insert done through store are serialized against other bookings of the same tool.
	WithToolLock(ctx context.Context, toolID int64, fn func(ctx context.Context, store RentStore) error) error
}
