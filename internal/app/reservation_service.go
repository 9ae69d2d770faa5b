package app

import (
	"context"
	"sort"
	"time"

	"github.com/brgy-egov/assets-api/internal/clock"
	"github.com/brgy-egov/assets-api/internal/domain"
	"github.com/shopspring/decimal"
)

// ReservationRepository is the storage surface the reservation engine needs.
// LockLedger must acquire a row lock on the (asset, date) ledger key that is
// held until the surrounding transaction ends.
type ReservationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetAsset(ctx context.Context, id string) (domain.Asset, error)
	LockLedger(ctx context.Context, assetID string, day time.Time) (int, error)
	AddCommitted(ctx context.Context, assetID string, day time.Time, delta int) error
	CreateRequest(ctx context.Context, req domain.AssetRequest) error
}

type ReservationService struct {
	repo        ReservationRepository
	clock       clock.Clock
	notifier    Notifier
	invalidator AvailabilityInvalidator
}

func NewReservationService(repo ReservationRepository, clk clock.Clock, opts ...ReservationServiceOption) *ReservationService {
	svc := &ReservationService{
		repo:        repo,
		clock:       clk,
		notifier:    NopNotifier{},
		invalidator: NopInvalidator{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ReservationServiceOption func(*ReservationService)

// WithReservationNotifier publishes lifecycle events after commit.
func WithReservationNotifier(n Notifier) ReservationServiceOption {
	return func(s *ReservationService) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithReservationInvalidator evicts availability-cache entries after commit.
func WithReservationInvalidator(inv AvailabilityInvalidator) ReservationServiceOption {
	return func(s *ReservationService) {
		if inv != nil {
			s.invalidator = inv
		}
	}
}

type SubmitLine struct {
	AssetID  string
	Day      time.Time
	Quantity int
}

type SubmitInput struct {
	RequesterID string
	Lines       []SubmitLine
}

type ledgerKey struct {
	assetID string
	day     time.Time
}

// Submit commits a multi-line cart as one all-or-nothing reservation. Shape
// errors are rejected before any transaction opens; the stock check happens
// inside the transaction under per-(asset, date) row locks, so either every
// line is committed and durable, or none is.
func (s *ReservationService) Submit(ctx context.Context, in SubmitInput) (domain.AssetRequest, error) {
	if in.RequesterID == "" {
		return domain.AssetRequest{}, domain.ErrRequesterRequired
	}
	if len(in.Lines) == 0 {
		return domain.AssetRequest{}, domain.ErrEmptyCart
	}

	seen := make(map[ledgerKey]struct{}, len(in.Lines))
	assets := make(map[string]domain.Asset)
	for _, line := range in.Lines {
		if line.Quantity < 1 {
			return domain.AssetRequest{}, domain.ErrInvalidQuantity
		}
		if line.AssetID == "" {
			return domain.AssetRequest{}, domain.ErrInvalidID
		}
		day := domain.DateOnly(line.Day)
		key := ledgerKey{assetID: line.AssetID, day: day}
		if _, dup := seen[key]; dup {
			return domain.AssetRequest{}, &domain.DuplicateLineError{AssetID: line.AssetID, Day: day}
		}
		seen[key] = struct{}{}

		asset, ok := assets[line.AssetID]
		if !ok {
			var err error
			asset, err = s.repo.GetAsset(ctx, line.AssetID)
			if err != nil {
				return domain.AssetRequest{}, err
			}
			assets[line.AssetID] = asset
		}
		if !asset.IsDateOpen(day) {
			return domain.AssetRequest{}, &domain.DateNotOpenError{AssetID: line.AssetID, Day: day}
		}
	}

	now := s.clock.Now()
	req := domain.AssetRequest{
		ID:            newID(),
		RequesterID:   in.RequesterID,
		Status:        domain.RequestStatusSubmitted,
		PaymentStatus: domain.PaymentStatusUnpaid,
		Total:         decimal.Zero,
		AmountPaid:    decimal.Zero,
		CreatedAt:     now,
	}
	for _, line := range in.Lines {
		item := domain.AssetRequestItem{
			ID:        newID(),
			RequestID: req.ID,
			AssetID:   line.AssetID,
			Day:       domain.DateOnly(line.Day),
			Quantity:  line.Quantity,
			UnitPrice: assets[line.AssetID].UnitPrice,
		}
		req.Items = append(req.Items, item)
		req.Total = req.Total.Add(item.Subtotal())
	}

	// Lock ledger keys in sorted order so concurrent multi-line carts cannot
	// deadlock each other.
	keys := sortedKeys(req.Items)

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		for _, key := range keys {
			qty := quantityFor(req.Items, key)
			committed, err := s.repo.LockLedger(txCtx, key.assetID, key.day)
			if err != nil {
				return err
			}
			stock := assets[key.assetID].Stock
			if committed+qty > stock {
				return &domain.CapacityError{
					AssetID:   key.assetID,
					Day:       key.day,
					Requested: qty,
					Available: stock - committed,
				}
			}
			if err := s.repo.AddCommitted(txCtx, key.assetID, key.day, qty); err != nil {
				return err
			}
		}
		return s.repo.CreateRequest(txCtx, req)
	})
	if err != nil {
		return domain.AssetRequest{}, err
	}

	for _, key := range keys {
		s.invalidator.Invalidate(ctx, key.assetID, key.day)
	}
	s.notifier.Notify(ctx, Event{
		RequestID:   req.ID,
		RequesterID: req.RequesterID,
		NewStatus:   domain.RequestStatusSubmitted,
		OccurredAt:  now,
		Payload:     map[string]any{"total": req.Total.StringFixed(2), "lines": len(req.Items)},
	})
	return req, nil
}

func sortedKeys(items []domain.AssetRequestItem) []ledgerKey {
	keys := make([]ledgerKey, 0, len(items))
	for _, it := range items {
		keys = append(keys, ledgerKey{assetID: it.AssetID, day: it.Day})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].assetID != keys[j].assetID {
			return keys[i].assetID < keys[j].assetID
		}
		return keys[i].day.Before(keys[j].day)
	})
	return keys
}

func quantityFor(items []domain.AssetRequestItem, key ledgerKey) int {
	total := 0
	for _, it := range items {
		if it.AssetID == key.assetID && it.Day.Equal(key.day) {
			total += it.Quantity
		}
	}
	return total
}
