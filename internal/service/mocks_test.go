package service_test

import (
	"context"
	"time"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/payment"
	"toolrent-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockRentRepo
type MockRentRepo struct {
	mock.Mock
}

func (m *MockRentRepo) Create(ctx context.Context, rent *domain.Rent) error {
	args := m.Called(ctx, rent)
	return args.Error(0)
}
func (m *MockRentRepo) FindLiveByTool(ctx context.Context, toolID int64) ([]domain.Rent, error) {
	args := m.Called(ctx, toolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rent), args.Error(1)
}
func (m *MockRentRepo) GetByID(ctx context.Context, id int64) (*domain.Rent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rent), args.Error(1)
}
func (m *MockRentRepo) Update(ctx context.Context, rent *domain.Rent) error {
	args := m.Called(ctx, rent)
	return args.Error(0)
}
func (m *MockRentRepo) FindByStartBetween(ctx context.Context, from, to time.Time) ([]domain.Rent, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rent), args.Error(1)
}
func (m *MockRentRepo) FinishElapsed(ctx context.Context, now time.Time) ([]domain.Rent, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rent), args.Error(1)
}

// WithToolLock runs fn against the mock itself unless an error is configured.
func (m *MockRentRepo) WithToolLock(ctx context.Context, toolID int64, fn func(ctx context.Context, store repository.RentStore) error) error {
	args := m.Called(ctx, toolID)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m)
}

// MockToolRepo
type MockToolRepo struct {
	mock.Mock
}

func (m *MockToolRepo) Create(ctx context.Context, tool *domain.Tool) error {
	args := m.Called(ctx, tool)
	return args.Error(0)
}
func (m *MockToolRepo) GetByID(ctx context.Context, id int64) (*domain.Tool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tool), args.Error(1)
}

// MockGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateOrder(ctx context.Context, req payment.OrderRequest) (*domain.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}
func (m *MockGateway) CaptureOrder(ctx context.Context, orderID string) (*domain.CaptureResult, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CaptureResult), args.Error(1)
}

// MockLocker
type MockLocker struct {
	mock.Mock
	released int
}

func (m *MockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context), error) {
	args := m.Called(ctx, key, ttl)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func(context.Context) { m.released++ }, nil
}

// MockCaptureOrchestrator
type MockCaptureOrchestrator struct {
	mock.Mock
}

func (m *MockCaptureOrchestrator) OnCaptureResult(ctx context.Context, rentID int64, status domain.CaptureStatus) error {
	args := m.Called(ctx, rentID, status)
	return args.Error(0)
}

// MockOrderRepo
type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(ctx context.Context, binding *domain.OrderBinding) error {
	args := m.Called(ctx, binding)
	return args.Error(0)
}
func (m *MockOrderRepo) GetByID(ctx context.Context, orderID string) (*domain.OrderBinding, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderBinding), args.Error(1)
}
