package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is the proof-of-payment artifact tied to one paid request.
type Receipt struct {
	Number     string
	RequestID  string
	AmountPaid decimal.Decimal
	Items      []AssetRequestItem
	PaidAt     time.Time
}

// FormatReceiptNumber renders a sequence value in the official-receipt
// convention used on printed receipts.
func FormatReceiptNumber(n int64) string {
	return fmt.Sprintf("OR-%06d", n)
}
