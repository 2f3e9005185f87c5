package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rif-protocol-server/internal/domain"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	rateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// Business metrics
	evaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rif_evaluations_total",
			Help: "Total number of RIF evaluations",
		},
		[]string{"surface"},
	)

	findingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rif_findings_total",
			Help: "Total number of findings produced, by domain and severity",
		},
		[]string{"domain", "severity"},
	)

	casesWithCriticalAlerts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rif_cases_with_critical_alerts_total",
			Help: "Total number of evaluations with at least one critical alert",
		},
	)

	casesSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rif_cases_saved_total",
			Help: "Total number of cases persisted",
		},
		[]string{"surface"},
	)

	// Database metrics
	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Case store query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RequestStarted marks a request as in flight and returns the function that
// records its completion.
func RequestStarted() func(method, path string, status int) {
	start := time.Now()
	httpRequestsInFlight.Inc()
	return func(method, path string, status int) {
		httpRequestsInFlight.Dec()
		httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordRateLimited records a request refused by the rate limiter
func RecordRateLimited() {
	rateLimitedTotal.Inc()
}

// --- Business metric helpers ---

// RecordEvaluation records one evaluation and its findings. surface is the
// caller: "http", "mcp" or "cli".
func RecordEvaluation(surface string, eval *domain.Evaluation) {
	evaluationsTotal.WithLabelValues(surface).Inc()
	for _, f := range eval.Findings {
		findingsTotal.WithLabelValues(f.Domain.String(), f.Severity.String()).Inc()
	}
	if len(eval.CriticalAlerts) > 0 {
		casesWithCriticalAlerts.Inc()
	}
}

// RecordCaseSaved records a persisted case
func RecordCaseSaved(surface string) {
	casesSaved.WithLabelValues(surface).Inc()
}

// ObserveQuery records the duration of a case store operation
func ObserveQuery(operation string, start time.Time) {
	dbQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
