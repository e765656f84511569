package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "trustchain",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trustchain",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trustchain",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	ledgerSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trustchain",
			Subsystem: "ledger",
			Name:      "submissions_total",
			Help:      "Total number of transaction submissions.",
		},
		[]string{"status"},
	)

	ledgerSubmitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "trustchain",
			Subsystem: "ledger",
			Name:      "submission_duration_seconds",
			Help:      "Duration of transaction submissions.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
	)

	sensorTicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trustchain",
			Subsystem: "scheduler",
			Name:      "ticks_total",
			Help:      "Total number of sensor simulation ticks.",
		},
		[]string{"kind", "status"},
	)

	sensorAnomalies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trustchain",
			Subsystem: "scheduler",
			Name:      "anomalies_total",
			Help:      "Total number of anomalous readings generated.",
		},
		[]string{"kind"},
	)

	activeJobs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "trustchain",
			Subsystem: "scheduler",
			Name:      "active_jobs",
			Help:      "Number of registered recurring simulation jobs.",
		},
	)

	fanoutSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "trustchain",
			Subsystem: "fanout",
			Name:      "subscribers",
			Help:      "Current number of live telemetry subscribers.",
		},
	)

	fanoutDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "trustchain",
			Subsystem: "fanout",
			Name:      "dropped_events_total",
			Help:      "Events dropped because a subscriber outbox was full.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		ledgerSubmissions,
		ledgerSubmitDuration,
		sensorTicks,
		sensorAnomalies,
		activeJobs,
		fanoutSubscribers,
		fanoutDropped,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// HTTPInFlight tracks the gauge of currently running HTTP requests.
func HTTPInFlight(delta float64) { httpInFlight.Add(delta) }

// HTTPRequest records one handled HTTP request.
func HTTPRequest(method, path, status string) {
	httpRequests.WithLabelValues(method, path, status).Inc()
}

// HTTPDuration records the latency of one HTTP request.
func HTTPDuration(method, path string, seconds float64) {
	httpDuration.WithLabelValues(method, path).Observe(seconds)
}

// LedgerSubmission records one transaction submission outcome.
func LedgerSubmission(status string, seconds float64) {
	ledgerSubmissions.WithLabelValues(status).Inc()
	ledgerSubmitDuration.Observe(seconds)
}

// SensorTick records one simulation tick outcome.
func SensorTick(kind, status string) { sensorTicks.WithLabelValues(kind, status).Inc() }

// SensorAnomaly records one generated anomaly.
func SensorAnomaly(kind string) { sensorAnomalies.WithLabelValues(kind).Inc() }

// ActiveJobs sets the registered job gauge.
func ActiveJobs(n float64) { activeJobs.Set(n) }

// Subscribers tracks the live subscriber gauge.
func Subscribers(delta float64) { fanoutSubscribers.Add(delta) }

// DroppedEvent records one event dropped on subscriber overflow.
func DroppedEvent() { fanoutDropped.Inc() }
