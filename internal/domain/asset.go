package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AssetStatus string

const (
	AssetStatusInStock    AssetStatus = "in_stock"
	AssetStatusLimited    AssetStatus = "limited"
	AssetStatusAvailable  AssetStatus = "available"
	AssetStatusOutOfStock AssetStatus = "out_of_stock"
)

// Asset is a rentable physical item with finite stock. Stock is global to the
// asset; committed quantity is tracked per (asset, date) in the ledger.
type Asset struct {
	ID          string
	Name        string
	Description string
	Category    string
	UnitPrice   decimal.Decimal
	Stock       int
	Status      AssetStatus
	OpenDates   []time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsDateOpen reports whether booking is permitted on the given date.
func (a Asset) IsDateOpen(day time.Time) bool {
	day = DateOnly(day)
	for _, d := range a.OpenDates {
		if DateOnly(d).Equal(day) {
			return true
		}
	}
	return false
}

// DeriveAssetStatus maps remaining capacity to the display-only status. It is
// never consulted by reservation logic.
func DeriveAssetStatus(stock, committed int) AssetStatus {
	remaining := stock - committed
	switch {
	case remaining <= 0:
		return AssetStatusOutOfStock
	case remaining < stock/2+stock%2:
		return AssetStatusLimited
	case remaining < stock:
		return AssetStatusAvailable
	default:
		return AssetStatusInStock
	}
}

// DateOnly normalizes a timestamp to a calendar date in UTC. Ledger keys and
// open-date comparisons always go through this.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return DateOnly(t), nil
}
