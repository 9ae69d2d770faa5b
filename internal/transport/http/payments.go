package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/brgy-egov/assets-api/internal/domain"
)

// PaymentRecorder is the minimal interface needed to record a payment.
type PaymentRecorder interface {
	Pay(ctx context.Context, requestID string, amountPaid decimal.Decimal) (domain.Receipt, error)
}

// HandlePayRequest returns an HTTP handler for recording payment of an
// approved request.
func HandlePayRequest(svc PaymentRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req payRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		amount, err := decimal.NewFromString(req.AmountPaid)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidAmount, "invalid amount_paid")
			return
		}

		receipt, err := svc.Pay(r.Context(), chi.URLParam(r, "id"), amount)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := receiptResponse{
			ReceiptNumber: receipt.Number,
			RequestID:     receipt.RequestID,
			AmountPaid:    receipt.AmountPaid.StringFixed(2),
			PaidAt:        receipt.PaidAt,
		}
		for _, it := range receipt.Items {
			resp.Items = append(resp.Items, itemResponse{
				AssetID:   it.AssetID,
				Date:      it.Day.Format(time.DateOnly),
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice.StringFixed(2),
				Subtotal:  it.Subtotal().StringFixed(2),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type payRequest struct {
	AmountPaid string `json:"amount_paid"`
}

type receiptResponse struct {
	ReceiptNumber string         `json:"receipt_number"`
	RequestID     string         `json:"request_id"`
	AmountPaid    string         `json:"amount_paid"`
	Items         []itemResponse `json:"items"`
	PaidAt        time.Time      `json:"paid_at"`
}
