// Package metrics provides Prometheus metrics for the fraudboard dashboard.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Latency buckets in milliseconds for the scoring exchange.
var defaultLatencyBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000} //nolint:gochecknoglobals // constant bucket layout

// Risk score buckets, one per decile plus the alert band.
var riskScoreBuckets = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100} //nolint:gochecknoglobals // constant bucket layout

// Manager manages all Prometheus metrics for the dashboard.
type Manager struct {
	namespace       string
	subsystem       string
	latencyBuckets  []float64
	riskBuckets     []float64
	enabled         bool
	refreshInterval time.Duration
	constLabels     map[string]string
	metricPrefix    string
	registry        prometheus.Registerer

	// Prediction cycle metrics
	cyclesTotal      *prometheus.CounterVec
	cycleFailures    *prometheus.CounterVec
	cyclesInFlight   prometheus.Gauge
	supersededTotal  prometheus.Counter
	alertsTotal      prometheus.Counter
	verdictsTotal    *prometheus.CounterVec
	riskScore        prometheus.Histogram
	lastRiskScore    prometheus.Gauge
	trendPoints      prometheus.Gauge
	historyRows      prometheus.Gauge
	scoringLatency   prometheus.Histogram
	scoringErrors    *prometheus.CounterVec
	rateLimitedTotal *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       "fraudboard",
		subsystem:       "dashboard",
		latencyBuckets:  defaultLatencyBuckets,
		riskBuckets:     riskScoreBuckets,
		enabled:         true,
		refreshInterval: defaultRefreshInterval,
		constLabels:     make(map[string]string),
		registry:        prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// name applies the optional metric prefix.
func (m *Manager) name(base string) string {
	if m.metricPrefix == "" {
		return base
	}
	return m.metricPrefix + "_" + base
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.constLabels)

	m.cyclesTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("cycles_total"),
		Help:        "Prediction cycles by outcome (ok, failed, superseded)",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.cycleFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("cycle_failures_total"),
		Help:        "Failed prediction cycles by failure kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.cyclesInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("cycles_in_flight"),
		Help:        "Prediction cycles waiting on the scoring service",
		ConstLabels: labels,
	})

	m.supersededTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("superseded_total"),
		Help:        "Outcomes discarded because a newer cycle was already applied",
		ConstLabels: labels,
	})

	m.alertsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("alerts_total"),
		Help:        "Cycles that entered alert mode",
		ConstLabels: labels,
	})

	m.verdictsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("verdicts_total"),
		Help:        "Rendered verdicts by label",
		ConstLabels: labels,
	}, []string{"verdict"})

	m.riskScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("risk_score"),
		Help:        "Distribution of rendered risk scores (percent)",
		Buckets:     m.riskBuckets,
		ConstLabels: labels,
	})

	m.lastRiskScore = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("last_risk_score"),
		Help:        "Most recently rendered risk score (percent)",
		ConstLabels: labels,
	})

	m.trendPoints = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("trend_points"),
		Help:        "Points currently in the trend window",
		ConstLabels: labels,
	})

	m.historyRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("history_rows"),
		Help:        "Rows currently in the history table",
		ConstLabels: labels,
	})

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("scoring_latency_milliseconds"),
		Help:        "Scoring service exchange latency in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: labels,
	})

	m.scoringErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("scoring_errors_total"),
		Help:        "Scoring exchange errors by kind (transport, status, decode)",
		ConstLabels: labels,
	}, []string{"kind"})

	m.rateLimitedTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("rate_limited_total"),
		Help:        "Requests rejected by the rate limiter",
		ConstLabels: labels,
	}, []string{"endpoint"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_requests_total"),
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_type_total"),
		Help:        "Errors by type and severity",
		ConstLabels: labels,
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_endpoint_total"),
		Help:        "Errors by HTTP endpoint",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	m.errorLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("error_latency_milliseconds"),
		Help:        "Latency of requests that ended in an error",
		Buckets:     m.latencyBuckets,
		ConstLabels: labels,
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_bytes"),
		Help:        "Allocated heap memory in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutines"),
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_milliseconds"),
		Help:        "Average GC pause time in milliseconds",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: labels,
	})
}

// Enabled reports whether recording is on.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval returns how often gauges are refreshed by the caller.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// Prediction cycle recorders.

// RecordCycle counts a cycle outcome: ok, failed or superseded.
func RecordCycle(outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.cyclesTotal.WithLabelValues(outcome).Inc()
}

// RecordCycleFailure counts a failed cycle by kind.
func RecordCycleFailure(kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.cycleFailures.WithLabelValues(kind).Inc()
}

// UpdateCyclesInFlight sets the number of pending exchanges.
func UpdateCyclesInFlight(n int) {
	globalManager.cyclesInFlight.Set(float64(n))
}

// RecordSuperseded counts a discarded stale outcome.
func RecordSuperseded() {
	globalManager.supersededTotal.Inc()
}

// RecordAlert counts a cycle that entered alert mode.
func RecordAlert() {
	globalManager.alertsTotal.Inc()
}

// RecordVerdict counts a rendered verdict label.
func RecordVerdict(label string) {
	globalManager.verdictsTotal.WithLabelValues(label).Inc()
}

// RecordRiskScore observes a rendered risk score.
func RecordRiskScore(score float64) {
	globalManager.riskScore.Observe(score)
	globalManager.lastRiskScore.Set(score)
}

// UpdateTrendPoints sets the trend window size.
func UpdateTrendPoints(n int) {
	globalManager.trendPoints.Set(float64(n))
}

// UpdateHistoryRows sets the history size.
func UpdateHistoryRows(n int) {
	globalManager.historyRows.Set(float64(n))
}

// RecordScoringLatency observes one scoring exchange.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordScoringError counts a scoring exchange error by kind.
func RecordScoringError(kind string) {
	globalManager.scoringErrors.WithLabelValues(kind).Inc()
}

// RecordRateLimited counts a request rejected by the rate limiter.
func RecordRateLimited(endpoint string) {
	globalManager.rateLimitedTotal.WithLabelValues(endpoint).Inc()
}

// HTTP recorders.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error recorders.

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an errored request.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System recorders.

// UpdateSystemMemoryUsage updates memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry served on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// SystemRefreshInterval returns how often the server should sample the
// system gauges.
func SystemRefreshInterval() time.Duration {
	return globalManager.refreshInterval
}
