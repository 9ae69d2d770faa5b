package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brgy-egov/assets-api/internal/app"
	"github.com/brgy-egov/assets-api/internal/domain"
)

// CatalogReader is the minimal interface needed for the public catalog
// endpoints.
type CatalogReader interface {
	GetAsset(ctx context.Context, id string) (domain.Asset, error)
	ListAssets(ctx context.Context) ([]domain.Asset, error)
	Availability(ctx context.Context, assetID string, day time.Time) (app.Availability, error)
}

// HandleListAssets returns an HTTP handler for listing the asset catalog.
func HandleListAssets(svc CatalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assets, err := svc.ListAssets(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		resp := make([]assetResponse, 0, len(assets))
		for _, a := range assets {
			resp = append(resp, assetResponseFrom(a))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleGetAsset returns an HTTP handler for fetching one asset by id.
func HandleGetAsset(svc CatalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asset, err := svc.GetAsset(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(assetResponseFrom(asset))
	}
}

// HandleAssetAvailability returns an HTTP handler for the per-date
// availability read. The date query parameter is required.
func HandleAssetAvailability(svc CatalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := domain.ParseDate(r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDate, "date query parameter is required, want YYYY-MM-DD")
			return
		}

		av, err := svc.Availability(r.Context(), chi.URLParam(r, "id"), day)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(av)
	}
}

type assetResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	UnitPrice   string   `json:"unit_price"`
	Stock       int      `json:"stock"`
	Status      string   `json:"status"`
	OpenDates   []string `json:"open_dates"`
}

func assetResponseFrom(a domain.Asset) assetResponse {
	dates := make([]string, 0, len(a.OpenDates))
	for _, d := range a.OpenDates {
		dates = append(dates, d.Format(time.DateOnly))
	}
	return assetResponse{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Category:    a.Category,
		UnitPrice:   a.UnitPrice.StringFixed(2),
		Stock:       a.Stock,
		Status:      string(a.Status),
		OpenDates:   dates,
	}
}
