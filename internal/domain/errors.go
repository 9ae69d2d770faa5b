package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrAssetNotFound     = errors.New("asset not found")
	ErrRequestNotFound   = errors.New("request not found")
	ErrEmptyCart         = errors.New("cart has no lines")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrInvalidDate       = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidID         = errors.New("invalid id")
	ErrRequesterRequired = errors.New("requester id required")
	ErrAlreadyPaid       = errors.New("request already paid")
	ErrInvalidAmount     = errors.New("invalid amount")
)

// DateNotOpenError rejects a line whose date is not in the asset's open set.
type DateNotOpenError struct {
	AssetID string
	Day     time.Time
}

func (e *DateNotOpenError) Error() string {
	return fmt.Sprintf("asset %s is not open for booking on %s", e.AssetID, e.Day.Format(time.DateOnly))
}

// DuplicateLineError rejects a cart naming the same (asset, date) twice.
type DuplicateLineError struct {
	AssetID string
	Day     time.Time
}

func (e *DuplicateLineError) Error() string {
	return fmt.Sprintf("duplicate line for asset %s on %s", e.AssetID, e.Day.Format(time.DateOnly))
}

// CapacityError rejects a submission that would push the committed quantity
// for (asset, date) above the asset's stock. Available is what the caller may
// still request for that key.
type CapacityError struct {
	AssetID   string
	Day       time.Time
	Requested int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity for asset %s on %s: requested %d, available %d",
		e.AssetID, e.Day.Format(time.DateOnly), e.Requested, e.Available)
}

// InvalidTransitionError rejects a lifecycle move not in the transition table.
type InvalidTransitionError struct {
	Current   RequestStatus
	Requested RequestStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.Current, e.Requested)
}

// AmountMismatchError rejects a payment that is not exactly the frozen total.
// Expected lets the client correct and resubmit without guessing.
type AmountMismatchError struct {
	Expected decimal.Decimal
	Got      decimal.Decimal
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("amount mismatch: expected %s, got %s", e.Expected.StringFixed(2), e.Got.StringFixed(2))
}
