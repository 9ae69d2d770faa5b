package app

import (
	"context"
	"time"

	"github.com/brgy-egov/assets-api/internal/clock"
	"github.com/brgy-egov/assets-api/internal/domain"
)

// LifecycleRepository is the storage surface for lifecycle transitions and
// administrative deletes.
type LifecycleRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetRequestForUpdate(ctx context.Context, id string) (domain.AssetRequest, error)
	UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, approvedAt *time.Time) error
	LockLedger(ctx context.Context, assetID string, day time.Time) (int, error)
	AddCommitted(ctx context.Context, assetID string, day time.Time, delta int) error
	DeleteRequest(ctx context.Context, id string) error
}

type LifecycleService struct {
	repo        LifecycleRepository
	clock       clock.Clock
	notifier    Notifier
	invalidator AvailabilityInvalidator
}

func NewLifecycleService(repo LifecycleRepository, clk clock.Clock, opts ...LifecycleServiceOption) *LifecycleService {
	svc := &LifecycleService{
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

type LifecycleServiceOption func(*LifecycleService)

func WithLifecycleNotifier(n Notifier) LifecycleServiceOption {
	return func(s *LifecycleService) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithLifecycleInvalidator(inv AvailabilityInvalidator) LifecycleServiceOption {
	return func(s *LifecycleService) {
		if inv != nil {
			s.invalidator = inv
		}
	}
}

// Approve moves a submitted request to approved. The quantity was committed
// at submission, so the ledger is untouched.
func (s *LifecycleService) Approve(ctx context.Context, requestID string) (domain.AssetRequest, error) {
	return s.transition(ctx, requestID, domain.RequestStatusApproved, false)
}

// Deny rejects a submitted request and releases every item's quantity.
func (s *LifecycleService) Deny(ctx context.Context, requestID string) (domain.AssetRequest, error) {
	return s.transition(ctx, requestID, domain.RequestStatusDenied, true)
}

// Cancel withdraws a submitted or approved request and releases every item's
// quantity. Same ledger semantics as Deny, kept distinct for audit trails.
func (s *LifecycleService) Cancel(ctx context.Context, requestID string) (domain.AssetRequest, error) {
	return s.transition(ctx, requestID, domain.RequestStatusCancelled, true)
}

// Complete marks a paid request as fulfilled. No ledger change.
func (s *LifecycleService) Complete(ctx context.Context, requestID string) (domain.AssetRequest, error) {
	return s.transition(ctx, requestID, domain.RequestStatusCompleted, false)
}

func (s *LifecycleService) transition(ctx context.Context, requestID string, next domain.RequestStatus, release bool) (domain.AssetRequest, error) {
	if requestID == "" {
		return domain.AssetRequest{}, domain.ErrInvalidID
	}

	now := s.clock.Now()
	var req domain.AssetRequest

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		req, err = s.repo.GetRequestForUpdate(txCtx, requestID)
		if err != nil {
			return err
		}
		if !req.Status.CanTransitionTo(next) {
			return &domain.InvalidTransitionError{Current: req.Status, Requested: next}
		}

		if release {
			if err := s.releaseItems(txCtx, req.Items); err != nil {
				return err
			}
		}

		var approvedAt *time.Time
		if next == domain.RequestStatusApproved {
			approvedAt = &now
		}
		return s.repo.UpdateStatus(txCtx, requestID, next, approvedAt)
	})
	if err != nil {
		return domain.AssetRequest{}, err
	}

	old := req.Status
	req.Status = next
	if next == domain.RequestStatusApproved {
		req.ApprovedAt = &now
	}

	if release {
		s.invalidateItems(ctx, req.Items)
	}
	s.notifier.Notify(ctx, Event{
		RequestID:   req.ID,
		RequesterID: req.RequesterID,
		OldStatus:   old,
		NewStatus:   next,
		OccurredAt:  now,
	})
	return req, nil
}

// Delete hard-removes a request. It carries cancel semantics: quantities still
// held by the request are released in the same transaction that removes the
// header and items, so a delete can never leak stock.
func (s *LifecycleService) Delete(ctx context.Context, requestID string) error {
	if requestID == "" {
		return domain.ErrInvalidID
	}

	now := s.clock.Now()
	var req domain.AssetRequest

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		req, err = s.repo.GetRequestForUpdate(txCtx, requestID)
		if err != nil {
			return err
		}
		if req.Status.HoldsLedger() {
			if err := s.releaseItems(txCtx, req.Items); err != nil {
				return err
			}
		}
		return s.repo.DeleteRequest(txCtx, requestID)
	})
	if err != nil {
		return err
	}

	if req.Status.HoldsLedger() {
		s.invalidateItems(ctx, req.Items)
	}
	s.notifier.Notify(ctx, Event{
		RequestID:   req.ID,
		RequesterID: req.RequesterID,
		OldStatus:   req.Status,
		NewStatus:   domain.RequestStatusCancelled,
		OccurredAt:  now,
		Payload:     map[string]any{"deleted": true},
	})
	return nil
}

// releaseItems decrements the ledger for every item, locking keys in sorted
// order like Submit does.
func (s *LifecycleService) releaseItems(ctx context.Context, items []domain.AssetRequestItem) error {
	for _, key := range sortedKeys(items) {
		qty := quantityFor(items, key)
		if _, err := s.repo.LockLedger(ctx, key.assetID, key.day); err != nil {
			return err
		}
		if err := s.repo.AddCommitted(ctx, key.assetID, key.day, -qty); err != nil {
			return err
		}
	}
	return nil
}

func (s *LifecycleService) invalidateItems(ctx context.Context, items []domain.AssetRequestItem) {
	for _, key := range sortedKeys(items) {
		s.invalidator.Invalidate(ctx, key.assetID, key.day)
	}
}
