package domain

import (
	"errors"
	"net/http"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindAuthorization
	KindNotFound
	KindConflict
	KindExternal
)

// HTTPStatus maps an error kind onto the status code the API answers with.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindExternal:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Error is a user facing failure. Message maps 1:1 onto the response body.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// KindOf returns the kind of err, or 0 when err does not carry one.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

var (
	ErrDatesRequired     = NewError(KindValidation, "Start date and end date are required")
	ErrStartInPast       = NewError(KindValidation, "Start date cannot be in the past")
	ErrEndBeforeStart    = NewError(KindValidation, "End date must be after start date")
	ErrToolNotAvailable  = NewError(KindValidation, "Tool is not available for the selected dates")
	ErrNotPendingApprove = NewError(KindValidation, "Only pending rents can be approved")
	ErrNotPendingReject  = NewError(KindValidation, "Only pending rents can be rejected")
	ErrNotCancelable     = NewError(KindValidation, "Only active, approved or pending rents can be canceled")
	ErrNotApprovedForPay = NewError(KindValidation, "Only approved rents can be paid")
	ErrInvalidAmount     = NewError(KindValidation, "Amount must be greater than zero")
	ErrToolNameRequired  = NewError(KindValidation, "Tool name is required")
	ErrNegativePrice     = NewError(KindValidation, "Prices cannot be negative")
	ErrOrderRentMismatch = NewError(KindValidation, "Order does not belong to this rent")

	ErrNotOwnerApprove = NewError(KindAuthorization, "Only the tool owner can approve")
	ErrNotOwnerReject  = NewError(KindAuthorization, "Only the tool owner can reject")
	ErrNotRenterCancel = NewError(KindAuthorization, "Only the renter can cancel")
	ErrNotRenterPay    = NewError(KindAuthorization, "Only the renter can pay for a rent")

	ErrRentNotFound  = NewError(KindNotFound, "Rent not found")
	ErrToolNotFound  = NewError(KindNotFound, "Tool not found")
	ErrOrderNotFound = NewError(KindNotFound, "Order not found")

	ErrConcurrentUpdate  = NewError(KindConflict, "Rent was modified concurrently, retry the request")
	ErrCaptureInProgress = NewError(KindConflict, "Capture for this order is already in progress")

	ErrPaymentGateway = NewError(KindExternal, "Payment provider request failed")
)
