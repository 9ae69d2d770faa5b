package http

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brgy-egov/assets-api/internal/app"
	"github.com/brgy-egov/assets-api/internal/domain"
)

type stubReservationService struct {
	request domain.AssetRequest
	err     error
	gotIn   app.SubmitInput
}

func (s *stubReservationService) Submit(_ context.Context, in app.SubmitInput) (domain.AssetRequest, error) {
	s.gotIn = in
	if s.err != nil {
		return domain.AssetRequest{}, s.err
	}
	return s.request, nil
}

type stubRequestReader struct {
	request  domain.AssetRequest
	requests []domain.AssetRequest
	err      error
	gotID    string
	gotFilt  string
	listed   bool
}

func (s *stubRequestReader) GetRequest(_ context.Context, id string) (domain.AssetRequest, error) {
	s.gotID = id
	if s.err != nil {
		return domain.AssetRequest{}, s.err
	}
	return s.request, nil
}

func (s *stubRequestReader) ListByRequester(_ context.Context, requesterID string) ([]domain.AssetRequest, error) {
	s.gotFilt = requesterID
	return s.requests, s.err
}

func (s *stubRequestReader) ListAll(context.Context) ([]domain.AssetRequest, error) {
	s.listed = true
	return s.requests, s.err
}

type stubLifecycleService struct {
	request domain.AssetRequest
	err     error
	gotID   string
	gotOp   string
}

func (s *stubLifecycleService) do(op, id string) (domain.AssetRequest, error) {
	s.gotOp = op
	s.gotID = id
	if s.err != nil {
		return domain.AssetRequest{}, s.err
	}
	return s.request, nil
}

func (s *stubLifecycleService) Approve(_ context.Context, id string) (domain.AssetRequest, error) {
	return s.do("approve", id)
}

func (s *stubLifecycleService) Deny(_ context.Context, id string) (domain.AssetRequest, error) {
	return s.do("deny", id)
}

func (s *stubLifecycleService) Cancel(_ context.Context, id string) (domain.AssetRequest, error) {
	return s.do("cancel", id)
}

func (s *stubLifecycleService) Complete(_ context.Context, id string) (domain.AssetRequest, error) {
	return s.do("complete", id)
}

func (s *stubLifecycleService) Delete(_ context.Context, id string) error {
	s.gotOp = "delete"
	s.gotID = id
	return s.err
}

type stubPaymentService struct {
	receipt   domain.Receipt
	err       error
	gotID     string
	gotAmount decimal.Decimal
}

func (s *stubPaymentService) Pay(_ context.Context, requestID string, amountPaid decimal.Decimal) (domain.Receipt, error) {
	s.gotID = requestID
	s.gotAmount = amountPaid
	if s.err != nil {
		return domain.Receipt{}, s.err
	}
	return s.receipt, nil
}

type stubCatalogService struct {
	asset        domain.Asset
	assets       []domain.Asset
	availability app.Availability
	err          error
	gotID        string
	gotDay       time.Time
}

func (s *stubCatalogService) GetAsset(_ context.Context, id string) (domain.Asset, error) {
	s.gotID = id
	if s.err != nil {
		return domain.Asset{}, s.err
	}
	return s.asset, nil
}

func (s *stubCatalogService) ListAssets(context.Context) ([]domain.Asset, error) {
	return s.assets, s.err
}

func (s *stubCatalogService) Availability(_ context.Context, assetID string, day time.Time) (app.Availability, error) {
	s.gotID = assetID
	s.gotDay = day
	if s.err != nil {
		return app.Availability{}, s.err
	}
	return s.availability, nil
}

func sampleRequest() domain.AssetRequest {
	created := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	return domain.AssetRequest{
		ID:            "req-123",
		RequesterID:   "res-9",
		Status:        domain.RequestStatusSubmitted,
		Total:         decimal.RequireFromString("300.00"),
		PaymentStatus: domain.PaymentStatusUnpaid,
		Items: []domain.AssetRequestItem{
			{
				ID:        "item-1",
				RequestID: "req-123",
				AssetID:   "asset-1",
				Day:       time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
				Quantity:  3,
				UnitPrice: decimal.RequireFromString("100.00"),
			},
		},
		CreatedAt: created,
	}
}
