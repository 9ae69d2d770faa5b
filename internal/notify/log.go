package notify

import (
	"context"
	"log"

	"github.com/brgy-egov/assets-api/internal/app"
)

// LogNotifier writes lifecycle events to the process log. Used when no broker
// is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, ev app.Event) {
	log.Printf("event: request %s %s -> %s", ev.RequestID, ev.OldStatus, ev.NewStatus)
}
