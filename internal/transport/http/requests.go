package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brgy-egov/assets-api/internal/app"
	"github.com/brgy-egov/assets-api/internal/auth"
	"github.com/brgy-egov/assets-api/internal/domain"
)

// RequestSubmitter is the minimal interface needed to submit a reservation.
type RequestSubmitter interface {
	Submit(ctx context.Context, in app.SubmitInput) (domain.AssetRequest, error)
}

// RequestReader is the minimal interface needed to inspect stored requests.
type RequestReader interface {
	GetRequest(ctx context.Context, id string) (domain.AssetRequest, error)
	ListByRequester(ctx context.Context, requesterID string) ([]domain.AssetRequest, error)
	ListAll(ctx context.Context) ([]domain.AssetRequest, error)
}

// HandleSubmitRequest returns an HTTP handler for submitting asset requests.
// The requester is always the authenticated subject; the body cannot name a
// different one.
func HandleSubmitRequest(svc RequestSubmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		in := app.SubmitInput{RequesterID: auth.SubjectFromContext(r.Context())}
		for _, line := range req.Lines {
			day, err := domain.ParseDate(line.Date)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidDate, "invalid date, want YYYY-MM-DD")
				return
			}
			in.Lines = append(in.Lines, app.SubmitLine{
				AssetID:  line.AssetID,
				Day:      day,
				Quantity: line.Quantity,
			})
		}

		created, err := svc.Submit(r.Context(), in)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(requestResponseFrom(created))
	}
}

// HandleGetRequest returns an HTTP handler for fetching one request by id.
func HandleGetRequest(svc RequestReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := svc.GetRequest(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(requestResponseFrom(req))
	}
}

// HandleListRequests returns an HTTP handler for listing requests. Staff and
// admins may list everything or filter by requester; anyone else only sees
// their own requests regardless of the query string.
func HandleListRequests(svc RequestReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requesterID := r.URL.Query().Get("requester_id")
		if claims := auth.ClaimsFromContext(r.Context()); claims != nil &&
			claims.Role != auth.RoleStaff && claims.Role != auth.RoleAdmin {
			requesterID = claims.Subject
		}

		var (
			reqs []domain.AssetRequest
			err  error
		)
		if requesterID != "" {
			reqs, err = svc.ListByRequester(r.Context(), requesterID)
		} else {
			reqs, err = svc.ListAll(r.Context())
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]requestResponse, 0, len(reqs))
		for _, req := range reqs {
			resp = append(resp, requestResponseFrom(req))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type submitRequest struct {
	Lines []submitLine `json:"lines"`
}

type submitLine struct {
	AssetID  string `json:"asset_id"`
	Date     string `json:"date"`
	Quantity int    `json:"quantity"`
}

type requestResponse struct {
	ID            string         `json:"id"`
	RequesterID   string         `json:"requester_id"`
	Status        string         `json:"status"`
	Total         string         `json:"total"`
	PaymentStatus string         `json:"payment_status"`
	ReceiptNumber *string        `json:"receipt_number,omitempty"`
	AmountPaid    string         `json:"amount_paid,omitempty"`
	Items         []itemResponse `json:"items"`
	CreatedAt     time.Time      `json:"created_at"`
	ApprovedAt    *time.Time     `json:"approved_at,omitempty"`
	PaidAt        *time.Time     `json:"paid_at,omitempty"`
}

type itemResponse struct {
	AssetID   string `json:"asset_id"`
	Date      string `json:"date"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

func requestResponseFrom(req domain.AssetRequest) requestResponse {
	items := make([]itemResponse, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, itemResponse{
			AssetID:   it.AssetID,
			Date:      it.Day.Format(time.DateOnly),
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
			Subtotal:  it.Subtotal().StringFixed(2),
		})
	}

	resp := requestResponse{
		ID:            req.ID,
		RequesterID:   req.RequesterID,
		Status:        string(req.Status),
		Total:         req.Total.StringFixed(2),
		PaymentStatus: string(req.PaymentStatus),
		ReceiptNumber: req.ReceiptNumber,
		Items:         items,
		CreatedAt:     req.CreatedAt,
		ApprovedAt:    req.ApprovedAt,
		PaidAt:        req.PaidAt,
	}
	if req.PaymentStatus == domain.PaymentStatusPaid {
		resp.AmountPaid = req.AmountPaid.StringFixed(2)
	}
	return resp
}
