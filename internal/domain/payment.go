package domain

import (
	"fmt"
	"strings"
	"time"
)

type CaptureStatus string

const (
	CaptureStatusCompleted CaptureStatus = "COMPLETED"
	CaptureStatusDeclined  CaptureStatus = "DECLINED"
	CaptureStatusPending   CaptureStatus = "PENDING"
	CaptureStatusFailed    CaptureStatus = "FAILED"
)

// ParseCaptureStatus maps a provider status string. Anything unknown is a failure.
func ParseCaptureStatus(s string) CaptureStatus {
	switch st := CaptureStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case CaptureStatusCompleted, CaptureStatusDeclined, CaptureStatusPending, CaptureStatusFailed:
		return st
	}
	return CaptureStatusFailed
}

// NoRentID marks a pay-first order that is not bound to a stored rent yet.
const NoRentID int64 = 0

type Money struct {
	Currency   string `json:"currency"`
	ValueCents int64  `json:"valueCents"`
}

// Decimal renders the amount the way payment providers expect it ("12.50").
func (m Money) Decimal() string {
	sign := ""
	v := m.ValueCents
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

type Order struct {
	ID          string `json:"orderId"`
	Status      string `json:"status"`
	ApprovalURL string `json:"approvalUrl"`
	RentID      int64  `json:"rentId"`
	Amount      Money  `json:"amount"`
}

type CaptureResult struct {
	OrderID        string        `json:"orderId"`
	Status         CaptureStatus `json:"status"`
	CapturedAmount Money         `json:"capturedAmount"`
	RentID         int64         `json:"rentId"`
}

// OrderBinding records what a provider order was created to pay for. Captures are
// applied to the bound rent only, whatever the return URL claims.
type OrderBinding struct {
	OrderID   string
	RentID    int64
	Amount    Money
	CreatedOn time.Time
}

// Covers reports whether a captured amount pays for the bound order in full.
func (b *OrderBinding) Covers(captured Money) bool {
	if captured.Currency != "" && !strings.EqualFold(captured.Currency, b.Amount.Currency) {
		return false
	}
	return captured.ValueCents >= b.Amount.ValueCents
}
