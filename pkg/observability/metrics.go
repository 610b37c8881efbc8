package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Document decision metrics
	DocumentDecisionsTotal   *prometheus.CounterVec
	DocumentDecisionDuration *prometheus.HistogramVec

	// Payment verification metrics
	PaymentVerificationsTotal   *prometheus.CounterVec
	PaymentVerificationDuration prometheus.Histogram

	// Subscription metrics
	EntitlementChecksTotal *prometheus.CounterVec
	TrialStartsTotal       *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitDenialsTotal *prometheus.CounterVec

	// Access resolution metrics
	AccessResolutionsTotal  *prometheus.CounterVec
	UnitCacheHitsTotal      prometheus.Counter
	UnitCacheMissesTotal    prometheus.Counter
	AccessResolutionLatency *prometheus.HistogramVec

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propdocs_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "propdocs_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DocumentDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propdocs_document_decisions_total",
				Help: "Document access decisions by outcome",
			},
			[]string{"outcome", "detail"},
		),
		DocumentDecisionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "propdocs_document_decision_duration_seconds",
				Help:    "Document access decision latency",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"outcome"},
		),

		PaymentVerificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propdocs_payment_verifications_total",
				Help: "Payment proof verification attempts by result",
			},
			[]string{"result"},
		),
		PaymentVerificationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "propdocs_payment_verification_duration_seconds",
				Help:    "Payment provider verification latency",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),

		EntitlementChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propdocs_entitlement_checks_total",
				Help: "Subscription entitlement checks by role and result",
			},
			[]string{"role", "entitled"},
		),
		TrialStartsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propdocs_trial_starts_total",
				Help: "Trial starts by initiator and result",
			},
			[]string{"initiator", "result"},
		),

		RateLimitDenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propdocs_rate_limit_denials_total",
				Help: "Requests denied by the rate limiter",
			},
			[]string{"policy"},
		),

		AccessResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propdocs_access_resolutions_total",
				Help: "Access set resolutions by resource kind",
			},
			[]string{"kind"},
		),
		UnitCacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "propdocs_unit_cache_hits_total",
				Help: "Units-of-building cache hits",
			},
		),
		UnitCacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "propdocs_unit_cache_misses_total",
				Help: "Units-of-building cache misses",
			},
		),
		AccessResolutionLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "propdocs_access_resolution_duration_seconds",
				Help:    "Access set resolution latency",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"kind"},
		),

		DBConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "propdocs_db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "propdocs_db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DocumentDecisionsTotal,
		m.DocumentDecisionDuration,
		m.PaymentVerificationsTotal,
		m.PaymentVerificationDuration,
		m.EntitlementChecksTotal,
		m.TrialStartsTotal,
		m.RateLimitDenialsTotal,
		m.AccessResolutionsTotal,
		m.UnitCacheHitsTotal,
		m.UnitCacheMissesTotal,
		m.AccessResolutionLatency,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
	)

	return m
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			status := strconv.Itoa(rw.statusCode)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
		})
	}
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
