package domain

import (
	"fmt"
	"time"
)

type RentStatus string

const (
	RentStatusPending  RentStatus = "PENDING"
	RentStatusApproved RentStatus = "APPROVED"
	RentStatusRejected RentStatus = "REJECTED"
	RentStatusActive   RentStatus = "ACTIVE"
	RentStatusCanceled RentStatus = "CANCELED"
	RentStatusFinished RentStatus = "FINISHED"
)

// LiveRentStatuses are the statuses that take part in the scheduling invariant.
var LiveRentStatuses = []RentStatus{RentStatusPending, RentStatusApproved, RentStatusActive}

// ParseRentStatus converts a stored or user supplied string into a RentStatus.
func ParseRentStatus(s string) (RentStatus, error) {
	switch st := RentStatus(s); st {
	case RentStatusPending, RentStatusApproved, RentStatusRejected,
		RentStatusActive, RentStatusCanceled, RentStatusFinished:
		return st, nil
	}
	return "", fmt.Errorf("unknown rent status %q", s)
}

// IsLive reports whether a rent in this status blocks the tool for its interval.
func (s RentStatus) IsLive() bool {
	switch s {
	case RentStatusPending, RentStatusApproved, RentStatusActive:
		return true
	case RentStatusRejected, RentStatusCanceled, RentStatusFinished:
		return false
	}
	panic(fmt.Sprintf("rent status %q is not handled", string(s)))
}

func (s RentStatus) IsTerminal() bool {
	return !s.IsLive()
}

// CanTransitionTo encodes the rent lifecycle table.
func (s RentStatus) CanTransitionTo(next RentStatus) bool {
	switch s {
	case RentStatusPending:
		switch next {
		case RentStatusApproved, RentStatusRejected, RentStatusActive, RentStatusCanceled:
			return true
		}
	case RentStatusApproved:
		switch next {
		case RentStatusActive, RentStatusCanceled:
			return true
		}
	case RentStatusActive:
		switch next {
		case RentStatusActive, RentStatusCanceled, RentStatusFinished:
			return true
		}
	case RentStatusRejected, RentStatusCanceled, RentStatusFinished:
		return false
	default:
		panic(fmt.Sprintf("rent status %q is not handled", string(s)))
	}
	return false
}

type Rent struct {
	ID        int64      `json:"id"`
	ToolID    int64      `json:"toolId"`
	UserID    int64      `json:"userId"`
	StartDate time.Time  `json:"startDate"`
	EndDate   time.Time  `json:"endDate"`
	Status    RentStatus `json:"status"`
	Message   string     `json:"message,omitempty"`
	Version   int64      `json:"version"`
	CreatedOn time.Time  `json:"createdOn"`
	UpdatedOn time.Time  `json:"updatedOn"`
}

// NewRent builds a rent that has not been stored yet. The status is always explicit.
func NewRent(toolID, userID int64, interval Interval, status RentStatus) *Rent {
	return &Rent{
		ToolID:    toolID,
		UserID:    userID,
		StartDate: interval.Start,
		EndDate:   interval.End,
		Status:    status,
	}
}

func (r *Rent) Interval() Interval {
	return Interval{Start: r.StartDate, End: r.EndDate}
}
