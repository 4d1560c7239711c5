// Package metrics provides Prometheus metrics for the Podium scoring service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace string
	registry  *prometheus.Registry

	// Core business metrics.
	submissionsAccepted *prometheus.CounterVec
	submissionsRejected *prometheus.CounterVec
	scoringLatency      *prometheus.HistogramVec
	leaderboardReads    prometheus.Counter

	// Sandbox metrics.
	sandboxRuns     prometheus.Counter
	sandboxFailures prometheus.Counter
	sandboxLatency  prometheus.Histogram

	// Operational metrics.
	storedSubmissions prometheus.Gauge
	storageErrors     prometheus.Counter

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace overrides the metric namespace.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// NewManager creates a metrics manager with its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "podium",
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.submissionsAccepted = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "submissions_accepted_total",
		Help:      "Scored and persisted submissions, by metric.",
	}, []string{"metric"})
	m.submissionsRejected = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "submissions_rejected_total",
		Help:      "Rejected submission attempts, by rejection reason.",
	}, []string{"reason"})
	m.scoringLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "scoring_duration_seconds",
		Help:      "End-to-end scoring duration, by metric.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"metric"})
	m.leaderboardReads = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "leaderboard_reads_total",
		Help:      "Leaderboard aggregations served.",
	})

	m.sandboxRuns = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "sandbox_runs_total",
		Help:      "Custom scorer container runs.",
	})
	m.sandboxFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "sandbox_failures_total",
		Help:      "Custom scorer runs that produced no valid score.",
	})
	m.sandboxLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "sandbox_duration_seconds",
		Help:      "Custom scorer container run duration.",
		Buckets:   prometheus.DefBuckets,
	})

	m.storedSubmissions = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "stored_submissions",
		Help:      "Total submission records in the store.",
	})
	m.storageErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "storage_errors_total",
		Help:      "Infrastructure failures reading or writing stores.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint and status.",
	}, []string{"endpoint", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration by endpoint.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	return m
}

// Global metrics manager instance.
var globalManager = NewManager() //nolint:gochecknoglobals // singleton metrics manager

// Handler returns the HTTP handler serving the global registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(globalManager.registry, promhttp.HandlerOpts{})
}

// Package-level helpers against the global manager.

// RecordSubmissionAccepted counts a scored, persisted submission.
func RecordSubmissionAccepted(metric string) {
	globalManager.submissionsAccepted.WithLabelValues(metric).Inc()
}

// RecordSubmissionRejected counts a rejected attempt by reason.
func RecordSubmissionRejected(reason string) {
	globalManager.submissionsRejected.WithLabelValues(reason).Inc()
}

// ObserveScoringLatency records one end-to-end scoring duration.
func ObserveScoringLatency(metric string, seconds float64) {
	globalManager.scoringLatency.WithLabelValues(metric).Observe(seconds)
}

// RecordLeaderboardRead counts a served leaderboard aggregation.
func RecordLeaderboardRead() { globalManager.leaderboardReads.Inc() }

// RecordSandboxRun counts a custom scorer container run.
func RecordSandboxRun() { globalManager.sandboxRuns.Inc() }

// RecordSandboxFailure counts a run that produced no valid score.
func RecordSandboxFailure() { globalManager.sandboxFailures.Inc() }

// ObserveSandboxLatency records one container run duration.
func ObserveSandboxLatency(seconds float64) { globalManager.sandboxLatency.Observe(seconds) }

// UpdateStoredSubmissions sets the submission record gauge.
func UpdateStoredSubmissions(n int) { globalManager.storedSubmissions.Set(float64(n)) }

// RecordStorageError counts an infrastructure store failure.
func RecordStorageError() { globalManager.storageErrors.Inc() }

// RecordHTTPRequest counts one request by endpoint and status code.
func RecordHTTPRequest(endpoint, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, status).Inc()
}

// ObserveHTTPRequestDuration records one request duration.
func ObserveHTTPRequestDuration(endpoint string, seconds float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint).Observe(seconds)
}
