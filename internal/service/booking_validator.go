package service

import (
	"time"

	"toolrent-backend/internal/domain"
)

// BookingValidator checks a requested rental period before any storage is touched.
type BookingValidator struct {
	now func() time.Time
}

func NewBookingValidator(now func() time.Time) *BookingValidator {
	if now == nil {
		now = time.Now
	}
	return &BookingValidator{now: now}
}

// Validate returns the requested interval, or the first rule it breaks.
func (v *BookingValidator) Validate(start, end *time.Time) (domain.Interval, error) {
	if start == nil || end == nil {
		return domain.Interval{}, domain.ErrDatesRequired
	}
	if start.Before(v.now()) {
		return domain.Interval{}, domain.ErrStartInPast
	}
	if !end.After(*start) {
		return domain.Interval{}, domain.ErrEndBeforeStart
	}
	return domain.Interval{Start: start.UTC(), End: end.UTC()}, nil
}
