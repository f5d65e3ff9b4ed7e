package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/reliability/retry"
	"toolrent-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func fastRetry() *retry.Config {
	return &retry.Config{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, BackoffMultiplier: 1}
}

func isActive(r *domain.Rent) bool { return r.Status == domain.RentStatusActive }

func TestCaptureOrchestrator_OnCaptureResult(t *testing.T) {
	ctx := context.Background()

	t.Run("Pay first sentinel touches nothing", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		o := service.NewCaptureOrchestrator(rentRepo, fastRetry())

		assert.NoError(t, o.OnCaptureResult(ctx, domain.NoRentID, domain.CaptureStatusCompleted))
		rentRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Not completed touches nothing", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		o := service.NewCaptureOrchestrator(rentRepo, fastRetry())

		for _, st := range []domain.CaptureStatus{domain.CaptureStatusDeclined, domain.CaptureStatusPending, domain.CaptureStatusFailed} {
			assert.NoError(t, o.OnCaptureResult(ctx, 5, st))
		}
		rentRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Missing rent is skipped", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		o := service.NewCaptureOrchestrator(rentRepo, fastRetry())

		rentRepo.On("GetByID", mock.Anything, int64(999)).Return(nil, domain.ErrRentNotFound)

		assert.NoError(t, o.OnCaptureResult(ctx, 999, domain.CaptureStatusCompleted))
		rentRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Completed activates approved rent", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		o := service.NewCaptureOrchestrator(rentRepo, fastRetry())

		r := pendingRent()
		r.Status = domain.RentStatusApproved
		rentRepo.On("GetByID", mock.Anything, int64(1)).Return(r, nil)
		rentRepo.On("Update", mock.Anything, mock.MatchedBy(isActive)).Return(nil)

		assert.NoError(t, o.OnCaptureResult(ctx, 1, domain.CaptureStatusCompleted))
		rentRepo.AssertExpectations(t)
	})

	t.Run("Repeated capture keeps rent active", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		o := service.NewCaptureOrchestrator(rentRepo, fastRetry())

		r := pendingRent()
		r.Status = domain.RentStatusActive
		rentRepo.On("GetByID", mock.Anything, int64(1)).Return(r, nil)
		rentRepo.On("Update", mock.Anything, mock.MatchedBy(isActive)).Return(nil)

		assert.NoError(t, o.OnCaptureResult(ctx, 1, domain.CaptureStatusCompleted))
	})

	t.Run("Canceled rent is not revived", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		o := service.NewCaptureOrchestrator(rentRepo, fastRetry())

		r := pendingRent()
		r.Status = domain.RentStatusCanceled
		rentRepo.On("GetByID", mock.Anything, int64(1)).Return(r, nil)

		assert.NoError(t, o.OnCaptureResult(ctx, 1, domain.CaptureStatusCompleted))
		assert.Equal(t, domain.RentStatusCanceled, r.Status)
		rentRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Version conflict is retried with a fresh read", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		o := service.NewCaptureOrchestrator(rentRepo, fastRetry())

		stale := pendingRent()
		stale.Status = domain.RentStatusApproved
		fresh := pendingRent()
		fresh.Status = domain.RentStatusApproved
		fresh.Version = 2

		rentRepo.On("GetByID", mock.Anything, int64(1)).Return(stale, nil).Once()
		rentRepo.On("GetByID", mock.Anything, int64(1)).Return(fresh, nil).Once()
		rentRepo.On("Update", mock.Anything, stale).Return(domain.ErrConcurrentUpdate).Once()
		rentRepo.On("Update", mock.Anything, fresh).Return(nil).Once()

		assert.NoError(t, o.OnCaptureResult(ctx, 1, domain.CaptureStatusCompleted))
		rentRepo.AssertExpectations(t)
	})

	t.Run("Storage failure is not retried", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		o := service.NewCaptureOrchestrator(rentRepo, fastRetry())

		boom := errors.New("db down")
		rentRepo.On("GetByID", mock.Anything, int64(1)).Return(nil, boom).Once()

		err := o.OnCaptureResult(ctx, 1, domain.CaptureStatusCompleted)
		assert.ErrorIs(t, err, boom)
		rentRepo.AssertNumberOfCalls(t, "GetByID", 1)
	})
}
