package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newRentalService(rentRepo *MockRentRepo, toolRepo *MockToolRepo) service.RentalService {
	return service.NewRentalService(rentRepo, toolRepo, service.NewBookingValidator(func() time.Time { return clock }))
}

func TestRentalService_Create(t *testing.T) {
	ctx := context.Background()
	toolID := int64(2)

	t.Run("Success", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		toolRepo := new(MockToolRepo)
		svc := newRentalService(rentRepo, toolRepo)

		toolRepo.On("GetByID", ctx, toolID).Return(ownedTool(), nil)
		rentRepo.On("WithToolLock", ctx, toolID).Return(nil)
		rentRepo.On("FindLiveByTool", ctx, toolID).Return([]domain.Rent{
			{ID: 7, ToolID: toolID, StartDate: *at(3, 8, 9), EndDate: *at(3, 10, 9), Status: domain.RentStatusApproved},
		}, nil)
		rentRepo.On("Create", ctx, mock.AnythingOfType("*domain.Rent")).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Rent).ID = 99
		}).Return(nil)

		rent, err := svc.Create(ctx, renterID, toolID, at(3, 10, 9), at(3, 12, 9))
		assert.NoError(t, err)
		assert.Equal(t, int64(99), rent.ID)
		assert.Equal(t, domain.RentStatusPending, rent.Status)
		assert.Equal(t, renterID, rent.UserID)
		assert.Equal(t, toolID, rent.ToolID)
		rentRepo.AssertExpectations(t)
	})

	t.Run("Overlap", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		toolRepo := new(MockToolRepo)
		svc := newRentalService(rentRepo, toolRepo)

		toolRepo.On("GetByID", ctx, toolID).Return(ownedTool(), nil)
		rentRepo.On("WithToolLock", ctx, toolID).Return(nil)
		rentRepo.On("FindLiveByTool", ctx, toolID).Return([]domain.Rent{
			{ID: 7, ToolID: toolID, StartDate: *at(3, 10, 9), EndDate: *at(3, 12, 9), Status: domain.RentStatusPending},
		}, nil)

		rent, err := svc.Create(ctx, otherID, toolID, at(3, 11, 0), at(3, 13, 0))
		assert.Nil(t, rent)
		assert.ErrorIs(t, err, domain.ErrToolNotAvailable)
		rentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Validation runs before any lookup", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		toolRepo := new(MockToolRepo)
		svc := newRentalService(rentRepo, toolRepo)

		_, err := svc.Create(ctx, renterID, toolID, nil, at(3, 12, 9))
		assert.ErrorIs(t, err, domain.ErrDatesRequired)
		toolRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Tool not found", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		toolRepo := new(MockToolRepo)
		svc := newRentalService(rentRepo, toolRepo)

		toolRepo.On("GetByID", ctx, toolID).Return(nil, domain.ErrToolNotFound)

		_, err := svc.Create(ctx, renterID, toolID, at(3, 10, 9), at(3, 12, 9))
		assert.ErrorIs(t, err, domain.ErrToolNotFound)
		rentRepo.AssertNotCalled(t, "WithToolLock", mock.Anything, mock.Anything)
	})

	t.Run("Lock failure", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		toolRepo := new(MockToolRepo)
		svc := newRentalService(rentRepo, toolRepo)

		boom := errors.New("connection reset")
		toolRepo.On("GetByID", ctx, toolID).Return(ownedTool(), nil)
		rentRepo.On("WithToolLock", ctx, toolID).Return(boom)

		_, err := svc.Create(ctx, renterID, toolID, at(3, 10, 9), at(3, 12, 9))
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, domain.ErrorKind(0), domain.KindOf(err))
	})
}

func TestRentalService_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		toolRepo := new(MockToolRepo)
		svc := newRentalService(rentRepo, toolRepo)

		rentRepo.On("GetByID", ctx, int64(1)).Return(pendingRent(), nil)
		toolRepo.On("GetByID", ctx, int64(2)).Return(ownedTool(), nil)
		rentRepo.On("Update", ctx, mock.MatchedBy(func(r *domain.Rent) bool {
			return r.Status == domain.RentStatusApproved && r.Version == 1
		})).Return(nil)

		rent, err := svc.Approve(ctx, 1, ownerID)
		assert.NoError(t, err)
		assert.Equal(t, domain.RentStatusApproved, rent.Status)
		rentRepo.AssertExpectations(t)
	})

	t.Run("Not owner", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		toolRepo := new(MockToolRepo)
		svc := newRentalService(rentRepo, toolRepo)

		rentRepo.On("GetByID", ctx, int64(1)).Return(pendingRent(), nil)
		toolRepo.On("GetByID", ctx, int64(2)).Return(ownedTool(), nil)

		_, err := svc.Approve(ctx, 1, renterID)
		assert.ErrorIs(t, err, domain.ErrNotOwnerApprove)
		rentRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Owner changed since booking", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		toolRepo := new(MockToolRepo)
		svc := newRentalService(rentRepo, toolRepo)

		moved := ownedTool()
		moved.OwnerID = otherID
		rentRepo.On("GetByID", ctx, int64(1)).Return(pendingRent(), nil)
		toolRepo.On("GetByID", ctx, int64(2)).Return(moved, nil)

		_, err := svc.Approve(ctx, 1, ownerID)
		assert.ErrorIs(t, err, domain.ErrNotOwnerApprove)
	})

	t.Run("Rent not found", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		toolRepo := new(MockToolRepo)
		svc := newRentalService(rentRepo, toolRepo)

		rentRepo.On("GetByID", ctx, int64(404)).Return(nil, domain.ErrRentNotFound)

		_, err := svc.Approve(ctx, 404, ownerID)
		assert.ErrorIs(t, err, domain.ErrRentNotFound)
	})

	t.Run("Tool gone", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		toolRepo := new(MockToolRepo)
		svc := newRentalService(rentRepo, toolRepo)

		rentRepo.On("GetByID", ctx, int64(1)).Return(pendingRent(), nil)
		toolRepo.On("GetByID", ctx, int64(2)).Return(nil, domain.ErrToolNotFound)

		_, err := svc.Approve(ctx, 1, ownerID)
		assert.ErrorIs(t, err, domain.ErrToolNotFound)
	})

	t.Run("Concurrent update", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		toolRepo := new(MockToolRepo)
		svc := newRentalService(rentRepo, toolRepo)

		rentRepo.On("GetByID", ctx, int64(1)).Return(pendingRent(), nil)
		toolRepo.On("GetByID", ctx, int64(2)).Return(ownedTool(), nil)
		rentRepo.On("Update", ctx, mock.Anything).Return(domain.ErrConcurrentUpdate)

		_, err := svc.Approve(ctx, 1, ownerID)
		assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	})
}

func TestRentalService_Reject(t *testing.T) {
	ctx := context.Background()
	rentRepo := new(MockRentRepo)
	toolRepo := new(MockToolRepo)
	svc := newRentalService(rentRepo, toolRepo)

	rentRepo.On("GetByID", ctx, int64(1)).Return(pendingRent(), nil)
	toolRepo.On("GetByID", ctx, int64(2)).Return(ownedTool(), nil)
	rentRepo.On("Update", ctx, mock.Anything).Return(nil)

	rent, err := svc.Reject(ctx, 1, ownerID, "dates clash with maintenance")
	assert.NoError(t, err)
	assert.Equal(t, domain.RentStatusRejected, rent.Status)
	assert.Equal(t, "Rejeitado: dates clash with maintenance", rent.Message)
}

func TestRentalService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("Renter cancels approved rent", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		toolRepo := new(MockToolRepo)
		svc := newRentalService(rentRepo, toolRepo)

		r := pendingRent()
		r.Status = domain.RentStatusApproved
		rentRepo.On("GetByID", ctx, int64(1)).Return(r, nil)
		rentRepo.On("Update", ctx, mock.Anything).Return(nil)

		rent, err := svc.Cancel(ctx, 1, renterID)
		assert.NoError(t, err)
		assert.Equal(t, domain.RentStatusCanceled, rent.Status)
		toolRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Owner cannot cancel", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		svc := newRentalService(rentRepo, new(MockToolRepo))

		rentRepo.On("GetByID", ctx, int64(1)).Return(pendingRent(), nil)

		_, err := svc.Cancel(ctx, 1, ownerID)
		assert.ErrorIs(t, err, domain.ErrNotRenterCancel)
	})

	t.Run("Finished rent", func(t *testing.T) {
		rentRepo := new(MockRentRepo)
		svc := newRentalService(rentRepo, new(MockToolRepo))

		r := pendingRent()
		r.Status = domain.RentStatusFinished
		rentRepo.On("GetByID", ctx, int64(1)).Return(r, nil)

		_, err := svc.Cancel(ctx, 1, renterID)
		assert.ErrorIs(t, err, domain.ErrNotCancelable)
		rentRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestRentalService_FindByInterval(t *testing.T) {
	ctx := context.Background()
	rentRepo := new(MockRentRepo)
	svc := newRentalService(rentRepo, new(MockToolRepo))

	from, to := *at(3, 1, 0), *at(3, 31, 0)
	rentRepo.On("FindByStartBetween", ctx, from, to).Return([]domain.Rent{{ID: 1}, {ID: 2}}, nil)

	rents, err := svc.FindByInterval(ctx, from, to)
	assert.NoError(t, err)
	assert.Len(t, rents, 2)

	_, err = svc.FindByInterval(ctx, to, from)
	assert.ErrorIs(t, err, domain.ErrEndBeforeStart)
}
