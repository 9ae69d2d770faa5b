package app

import (
	"context"
	"time"

	"github.com/brgy-egov/assets-api/internal/domain"
	"github.com/shopspring/decimal"
)

// fakeRepo is an in-memory stand-in for the postgres repositories. WithTx
// snapshots mutable state and restores it when fn fails, mirroring rollback.
type fakeRepo struct {
	assets      map[string]domain.Asset
	ledger      map[ledgerKey]int
	requests    map[string]domain.AssetRequest
	nextReceipt int64

	lockErr   error
	createErr error
}

func newFakeRepo(assets ...domain.Asset) *fakeRepo {
	r := &fakeRepo{
		assets:   make(map[string]domain.Asset),
		ledger:   make(map[ledgerKey]int),
		requests: make(map[string]domain.AssetRequest),
	}
	for _, a := range assets {
		r.assets[a.ID] = a
	}
	return r
}

func (r *fakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	ledgerSnap := make(map[ledgerKey]int, len(r.ledger))
	for k, v := range r.ledger {
		ledgerSnap[k] = v
	}
	requestsSnap := make(map[string]domain.AssetRequest, len(r.requests))
	for k, v := range r.requests {
		requestsSnap[k] = v
	}
	receiptSnap := r.nextReceipt

	if err := fn(ctx); err != nil {
		r.ledger = ledgerSnap
		r.requests = requestsSnap
		r.nextReceipt = receiptSnap
		return err
	}
	return nil
}

func (r *fakeRepo) GetAsset(ctx context.Context, id string) (domain.Asset, error) {
	a, ok := r.assets[id]
	if !ok {
		return domain.Asset{}, domain.ErrAssetNotFound
	}
	return a, nil
}

func (r *fakeRepo) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	out := make([]domain.Asset, 0, len(r.assets))
	for _, a := range r.assets {
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeRepo) LockLedger(ctx context.Context, assetID string, day time.Time) (int, error) {
	if r.lockErr != nil {
		return 0, r.lockErr
	}
	return r.ledger[ledgerKey{assetID: assetID, day: domain.DateOnly(day)}], nil
}

func (r *fakeRepo) AddCommitted(ctx context.Context, assetID string, day time.Time, delta int) error {
	r.ledger[ledgerKey{assetID: assetID, day: domain.DateOnly(day)}] += delta
	return nil
}

func (r *fakeRepo) CommittedQuantity(ctx context.Context, assetID string, day time.Time) (int, error) {
	return r.ledger[ledgerKey{assetID: assetID, day: domain.DateOnly(day)}], nil
}

func (r *fakeRepo) CreateRequest(ctx context.Context, req domain.AssetRequest) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.requests[req.ID] = req
	return nil
}

func (r *fakeRepo) GetRequest(ctx context.Context, id string) (domain.AssetRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return domain.AssetRequest{}, domain.ErrRequestNotFound
	}
	return req, nil
}

func (r *fakeRepo) GetRequestForUpdate(ctx context.Context, id string) (domain.AssetRequest, error) {
	return r.GetRequest(ctx, id)
}

func (r *fakeRepo) ListRequestsByRequester(ctx context.Context, requesterID string) ([]domain.AssetRequest, error) {
	var out []domain.AssetRequest
	for _, req := range r.requests {
		if req.RequesterID == requesterID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListRequests(ctx context.Context) ([]domain.AssetRequest, error) {
	out := make([]domain.AssetRequest, 0, len(r.requests))
	for _, req := range r.requests {
		out = append(out, req)
	}
	return out, nil
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, approvedAt *time.Time) error {
	req, ok := r.requests[id]
	if !ok {
		return domain.ErrRequestNotFound
	}
	req.Status = status
	if approvedAt != nil {
		req.ApprovedAt = approvedAt
	}
	r.requests[id] = req
	return nil
}

func (r *fakeRepo) DeleteRequest(ctx context.Context, id string) error {
	if _, ok := r.requests[id]; !ok {
		return domain.ErrRequestNotFound
	}
	delete(r.requests, id)
	return nil
}

func (r *fakeRepo) NextReceiptNumber(ctx context.Context) (int64, error) {
	r.nextReceipt++
	return r.nextReceipt, nil
}

func (r *fakeRepo) MarkPaid(ctx context.Context, id, receiptNumber string, amountPaid decimal.Decimal, paidAt time.Time) error {
	req, ok := r.requests[id]
	if !ok {
		return domain.ErrRequestNotFound
	}
	req.Status = domain.RequestStatusPaid
	req.PaymentStatus = domain.PaymentStatusPaid
	req.ReceiptNumber = &receiptNumber
	req.AmountPaid = amountPaid
	req.PaidAt = &paidAt
	r.requests[id] = req
	return nil
}

func (r *fakeRepo) committed(assetID string, day time.Time) int {
	return r.ledger[ledgerKey{assetID: assetID, day: domain.DateOnly(day)}]
}

// captureNotifier records published events in order.
type captureNotifier struct {
	events []Event
}

func (n *captureNotifier) Notify(ctx context.Context, ev Event) {
	n.events = append(n.events, ev)
}

// fakeCache is an in-memory AvailabilityCache.
type fakeCache struct {
	entries map[string]Availability
	gets    int
	hits    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]Availability)}
}

func (c *fakeCache) key(assetID string, day time.Time) string {
	return assetID + "|" + domain.DateOnly(day).Format(time.DateOnly)
}

func (c *fakeCache) Get(ctx context.Context, assetID string, day time.Time) (*Availability, error) {
	c.gets++
	av, ok := c.entries[c.key(assetID, day)]
	if !ok {
		return nil, nil
	}
	c.hits++
	return &av, nil
}

func (c *fakeCache) Set(ctx context.Context, assetID string, day time.Time, av Availability) error {
	c.entries[c.key(assetID, day)] = av
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, assetID string, day time.Time) {
	delete(c.entries, c.key(assetID, day))
}

func makeAsset(id, name, price string, stock int, openDates ...time.Time) domain.Asset {
	return domain.Asset{
		ID:        id,
		Name:      name,
		UnitPrice: decimal.RequireFromString(price),
		Stock:     stock,
		OpenDates: openDates,
	}
}
