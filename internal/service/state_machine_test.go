package service_test

import (
	"testing"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/service"

	"github.com/stretchr/testify/assert"
)

const (
	ownerID  = int64(10)
	renterID = int64(20)
	otherID  = int64(30)
)

func pendingRent() *domain.Rent {
	return &domain.Rent{ID: 1, ToolID: 2, UserID: renterID, Status: domain.RentStatusPending, Version: 1}
}

func ownedTool() *domain.Tool {
	return &domain.Tool{ID: 2, OwnerID: ownerID, Name: "Drill", Status: domain.ToolStatusAvailable}
}

func TestApprovalAuthority_IsOwner(t *testing.T) {
	var a service.ApprovalAuthority
	assert.True(t, a.IsOwner(ownedTool(), ownerID))
	assert.False(t, a.IsOwner(ownedTool(), renterID))
	assert.False(t, a.IsOwner(nil, ownerID))
}

func TestRentalStateMachine_Approve(t *testing.T) {
	m := service.NewRentalStateMachine()

	t.Run("Owner approves pending", func(t *testing.T) {
		r := pendingRent()
		assert.NoError(t, m.Approve(r, ownedTool(), ownerID))
		assert.Equal(t, domain.RentStatusApproved, r.Status)
	})

	t.Run("Non owner", func(t *testing.T) {
		r := pendingRent()
		assert.ErrorIs(t, m.Approve(r, ownedTool(), renterID), domain.ErrNotOwnerApprove)
		assert.Equal(t, domain.RentStatusPending, r.Status)
	})

	t.Run("Not pending", func(t *testing.T) {
		for _, st := range []domain.RentStatus{domain.RentStatusApproved, domain.RentStatusActive, domain.RentStatusRejected, domain.RentStatusCanceled, domain.RentStatusFinished} {
			r := pendingRent()
			r.Status = st
			assert.ErrorIs(t, m.Approve(r, ownedTool(), ownerID), domain.ErrNotPendingApprove, st)
			assert.Equal(t, st, r.Status)
		}
	})
}

func TestRentalStateMachine_Reject(t *testing.T) {
	m := service.NewRentalStateMachine()

	r := pendingRent()
	assert.NoError(t, m.Reject(r, ownedTool(), ownerID, "tool is broken"))
	assert.Equal(t, domain.RentStatusRejected, r.Status)
	assert.Equal(t, "Rejeitado: tool is broken", r.Message)

	assert.ErrorIs(t, m.Reject(r, ownedTool(), ownerID, "again"), domain.ErrNotPendingReject)
	assert.Equal(t, "Rejeitado: tool is broken", r.Message)

	assert.ErrorIs(t, m.Reject(pendingRent(), ownedTool(), otherID, "x"), domain.ErrNotOwnerReject)
}

func TestRentalStateMachine_Cancel(t *testing.T) {
	m := service.NewRentalStateMachine()

	for _, st := range []domain.RentStatus{domain.RentStatusPending, domain.RentStatusApproved, domain.RentStatusActive} {
		r := pendingRent()
		r.Status = st
		assert.NoError(t, m.Cancel(r, renterID), st)
		assert.Equal(t, domain.RentStatusCanceled, r.Status)
	}

	for _, st := range []domain.RentStatus{domain.RentStatusRejected, domain.RentStatusCanceled, domain.RentStatusFinished} {
		r := pendingRent()
		r.Status = st
		err := m.Cancel(r, renterID)
		assert.ErrorIs(t, err, domain.ErrNotCancelable, st)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	}

	err := m.Cancel(pendingRent(), ownerID)
	assert.ErrorIs(t, err, domain.ErrNotRenterCancel)
	assert.Equal(t, domain.KindAuthorization, domain.KindOf(err))
}

func TestRentalStateMachine_Activate(t *testing.T) {
	m := service.NewRentalStateMachine()

	for _, st := range []domain.RentStatus{domain.RentStatusPending, domain.RentStatusApproved, domain.RentStatusActive} {
		r := pendingRent()
		r.Status = st
		assert.True(t, m.Activate(r), st)
		assert.Equal(t, domain.RentStatusActive, r.Status)
	}

	for _, st := range []domain.RentStatus{domain.RentStatusRejected, domain.RentStatusCanceled, domain.RentStatusFinished} {
		r := pendingRent()
		r.Status = st
		assert.False(t, m.Activate(r), st)
		assert.Equal(t, st, r.Status)
	}
}
