package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects HTTP and reservation counters on a private registry so
// tests can run several instances without collisions.
type Metrics struct {
	reqTotal     *prometheus.CounterVec
	reqLatency   *prometheus.HistogramVec
	reservations *prometheus.CounterVec
	receipts     prometheus.Counter
	registry     *prometheus.Registry
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	reqTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	reqLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	reservations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservations_total",
			Help: "Reservation submissions by outcome",
		},
		[]string{"outcome"},
	)

	receipts := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "receipts_issued_total",
			Help: "Official receipts issued",
		},
	)

	registry.MustRegister(reqTotal, reqLatency, reservations, receipts)

	return &Metrics{
		reqTotal:     reqTotal,
		reqLatency:   reqLatency,
		reservations: reservations,
		receipts:     receipts,
		registry:     registry,
	}
}

// Middleware returns a chi middleware that records request counts and
// latency, labeled by route pattern rather than raw path.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(rw, r)

			path := r.URL.Path
			if chiCtx := chi.RouteContext(r.Context()); chiCtx != nil && len(chiCtx.RoutePatterns) > 0 {
				path = chiCtx.RoutePatterns[len(chiCtx.RoutePatterns)-1]
			}

			status := strconv.Itoa(rw.code)
			m.reqTotal.WithLabelValues(r.Method, path, status).Inc()
			m.reqLatency.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		})
	}
}

// ReservationSubmitted records one submission attempt with its outcome
// ("accepted" or "rejected").
func (m *Metrics) ReservationSubmitted(outcome string) {
	m.reservations.WithLabelValues(outcome).Inc()
}

// ReceiptIssued records one issued official receipt.
func (m *Metrics) ReceiptIssued() {
	m.receipts.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.code = code
	sr.ResponseWriter.WriteHeader(code)
}
