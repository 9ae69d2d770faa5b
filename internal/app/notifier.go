package app

import (
	"context"
	"time"

	"github.com/brgy-egov/assets-api/internal/domain"
)

// Event carries one lifecycle transition for the notification dispatcher.
// OldStatus is empty for the initial submission.
type Event struct {
	RequestID   string                `json:"request_id"`
	RequesterID string                `json:"requester_id"`
	OldStatus   domain.RequestStatus  `json:"old_status,omitempty"`
	NewStatus   domain.RequestStatus  `json:"new_status"`
	OccurredAt  time.Time             `json:"occurred_at"`
	Payload     map[string]any        `json:"payload,omitempty"`
}

// Notifier delivers lifecycle events to the external dispatcher. Delivery is
// fire-and-forget: implementations must never surface a failure that would
// make a caller roll back an already-committed transition.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Event) {}

// AvailabilityInvalidator evicts display-cache entries for ledger keys that a
// committed transaction just changed. Best effort.
type AvailabilityInvalidator interface {
	Invalidate(ctx context.Context, assetID string, day time.Time)
}

// NopInvalidator ignores invalidations.
type NopInvalidator struct{}

func (NopInvalidator) Invalidate(context.Context, string, time.Time) {}
