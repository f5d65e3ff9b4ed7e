package service

import (
	"fmt"

	"toolrent-backend/internal/domain"
)

const rejectionPrefix = "Rejeitado: "

// ApprovalAuthority decides who may approve or reject a rent.
type ApprovalAuthority struct{}

// IsOwner is a strict identity check against the tool's owner.
func (ApprovalAuthority) IsOwner(tool *domain.Tool, callerID int64) bool {
	return tool != nil && tool.OwnerID == callerID
}

// RentalStateMachine applies guarded transitions to an in-memory rent. Callers persist
// the result with a version check.
type RentalStateMachine struct {
	authority ApprovalAuthority
}

func NewRentalStateMachine() *RentalStateMachine {
	return &RentalStateMachine{}
}

func (m *RentalStateMachine) Approve(rent *domain.Rent, tool *domain.Tool, callerID int64) error {
	if !m.authority.IsOwner(tool, callerID) {
		return domain.ErrNotOwnerApprove
	}
	if rent.Status != domain.RentStatusPending {
		return domain.ErrNotPendingApprove
	}
	return m.move(rent, domain.RentStatusApproved)
}

func (m *RentalStateMachine) Reject(rent *domain.Rent, tool *domain.Tool, callerID int64, reason string) error {
	if !m.authority.IsOwner(tool, callerID) {
		return domain.ErrNotOwnerReject
	}
	if rent.Status != domain.RentStatusPending {
		return domain.ErrNotPendingReject
	}
	if err := m.move(rent, domain.RentStatusRejected); err != nil {
		return err
	}
	rent.Message = rejectionPrefix + reason
	return nil
}

func (m *RentalStateMachine) Cancel(rent *domain.Rent, callerID int64) error {
	if rent.UserID != callerID {
		return domain.ErrNotRenterCancel
	}
	if !rent.Status.IsLive() {
		return domain.ErrNotCancelable
	}
	return m.move(rent, domain.RentStatusCanceled)
}

// Activate marks a paid rent ACTIVE. It reports false for terminal rents, which a
// capture never revives.
func (m *RentalStateMachine) Activate(rent *domain.Rent) bool {
	if !rent.Status.CanTransitionTo(domain.RentStatusActive) {
		return false
	}
	rent.Status = domain.RentStatusActive
	return true
}

func (m *RentalStateMachine) move(rent *domain.Rent, next domain.RentStatus) error {
	if !rent.Status.CanTransitionTo(next) {
		return fmt.Errorf("rent %d: illegal transition %s -> %s", rent.ID, rent.Status, next)
	}
	rent.Status = next
	return nil
}
