package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RequestStatus string

const (
	RequestStatusSubmitted RequestStatus = "submitted"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusDenied    RequestStatus = "denied"
	RequestStatusPaid      RequestStatus = "paid"
	RequestStatusCompleted RequestStatus = "completed"
	RequestStatusCancelled RequestStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// transitions is the lifecycle table. Anything not listed is rejected.
var transitions = map[RequestStatus][]RequestStatus{
	RequestStatusSubmitted: {RequestStatusApproved, RequestStatusDenied, RequestStatusCancelled},
	RequestStatusApproved:  {RequestStatusPaid, RequestStatusCancelled},
	RequestStatusPaid:      {RequestStatusCompleted},
}

// CanTransitionTo reports whether the lifecycle table allows moving to next.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s RequestStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// HoldsLedger reports whether requests in this status count toward the
// committed quantity for their (asset, date) keys.
func (s RequestStatus) HoldsLedger() bool {
	switch s {
	case RequestStatusSubmitted, RequestStatusApproved, RequestStatusPaid, RequestStatusCompleted:
		return true
	}
	return false
}

// AssetRequest is the booking header. Total is computed from the line items at
// submission time and frozen; later asset price changes do not affect it.
type AssetRequest struct {
	ID            string
	RequesterID   string
	Status        RequestStatus
	Total         decimal.Decimal
	PaymentStatus PaymentStatus
	ReceiptNumber *string
	AmountPaid    decimal.Decimal
	Items         []AssetRequestItem
	CreatedAt     time.Time
	ApprovedAt    *time.Time
	PaidAt        *time.Time
}

// AssetRequestItem is one (asset, date, quantity) line, owned by its request.
// UnitPrice is the asset's price at submission time.
type AssetRequestItem struct {
	ID        string
	RequestID string
	AssetID   string
	Day       time.Time
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal is quantity times the frozen unit price.
func (it AssetRequestItem) Subtotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}
