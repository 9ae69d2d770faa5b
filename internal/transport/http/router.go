package http

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/brgy-egov/assets-api/internal/app"
	"github.com/brgy-egov/assets-api/internal/auth"
	"github.com/brgy-egov/assets-api/internal/domain"
)

// DomainMetrics records business-level counters. Nil-safe via the checks in
// NewRouter.
type DomainMetrics interface {
	ReservationSubmitted(outcome string)
	ReceiptIssued()
}

// RouterConfig collects the services and cross-cutting pieces the router
// wires together. Auth and Metrics are optional; when Auth is nil every
// route is open, which is only intended for tests.
type RouterConfig struct {
	Catalog      CatalogReader
	Reservations RequestSubmitter
	Requests     RequestReader
	Lifecycle    RequestLifecycle
	Payments     PaymentRecorder

	Auth           *auth.Manager
	Ready          func(ctx context.Context) error
	Metrics        DomainMetrics
	MetricsHandler http.Handler
	Middleware     []func(http.Handler) http.Handler
	Logger         *log.Logger
	CORSOrigins    []string
}

// NewRouter assembles the full HTTP surface.
func NewRouter(cfg RouterConfig) http.Handler {
	reservations := cfg.Reservations
	payments := cfg.Payments
	if cfg.Metrics != nil {
		reservations = &countedSubmitter{next: reservations, metrics: cfg.Metrics}
		payments = &countedPayments{next: payments, metrics: cfg.Metrics}
	}

	r := chi.NewRouter()
	r.Use(RequestLogger(cfg.Logger))
	r.Use(CORS(cfg.CORSOrigins))
	for _, mw := range cfg.Middleware {
		r.Use(mw)
	}
	r.NotFound(NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(MethodNotAllowedHandler().ServeHTTP)

	r.Get("/health", HealthHandler)
	if cfg.Ready != nil {
		r.Get("/ready", ReadyHandler(cfg.Ready))
	}
	if cfg.MetricsHandler != nil {
		r.Get("/metrics", cfg.MetricsHandler.ServeHTTP)
	}

	r.Get("/assets", HandleListAssets(cfg.Catalog))
	r.Get("/assets/{id}", HandleGetAsset(cfg.Catalog))
	r.Get("/assets/{id}/availability", HandleAssetAvailability(cfg.Catalog))

	requireAuth := passthrough
	requireStaff := passthrough
	requireAdmin := passthrough
	if cfg.Auth != nil {
		requireAuth = auth.RequireAuth(cfg.Auth)
		requireStaff = auth.RequireRole(auth.RoleStaff, auth.RoleAdmin)
		requireAdmin = auth.RequireRole(auth.RoleAdmin)
	}

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Post("/requests", HandleSubmitRequest(reservations))
		r.Get("/requests", HandleListRequests(cfg.Requests))
		r.Get("/requests/{id}", HandleGetRequest(cfg.Requests))
		r.Post("/requests/{id}/cancel", HandleCancelRequest(cfg.Lifecycle, cfg.Requests))

		r.Group(func(r chi.Router) {
			r.Use(requireStaff)

			r.Get("/requests/export", HandleExportRequests(cfg.Requests))
			r.Post("/requests/{id}/approve", HandleApproveRequest(cfg.Lifecycle))
			r.Post("/requests/{id}/deny", HandleDenyRequest(cfg.Lifecycle))
			r.Post("/requests/{id}/complete", HandleCompleteRequest(cfg.Lifecycle))
			r.Post("/requests/{id}/pay", HandlePayRequest(payments))
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)

			r.Delete("/requests/{id}", HandleDeleteRequest(cfg.Lifecycle))
		})
	})

	return r
}

func passthrough(next http.Handler) http.Handler { return next }

type countedSubmitter struct {
	next    RequestSubmitter
	metrics DomainMetrics
}

func (c *countedSubmitter) Submit(ctx context.Context, in app.SubmitInput) (domain.AssetRequest, error) {
	req, err := c.next.Submit(ctx, in)
	outcome := "accepted"
	if err != nil {
		outcome = "rejected"
	}
	c.metrics.ReservationSubmitted(outcome)
	return req, err
}

type countedPayments struct {
	next    PaymentRecorder
	metrics DomainMetrics
}

func (c *countedPayments) Pay(ctx context.Context, requestID string, amountPaid decimal.Decimal) (domain.Receipt, error) {
	receipt, err := c.next.Pay(ctx, requestID, amountPaid)
	if err == nil {
		c.metrics.ReceiptIssued()
	}
	return receipt, err
}
