package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lexaid",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lexaid",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	// Completion counters
	CompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lexaid",
			Subsystem: "api",
			Name:      "completions_total",
			Help:      "Total chat completion round-trips",
		},
		[]string{"model", "status"},
	)

	// Completion duration histogram
	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lexaid",
			Subsystem: "api",
			Name:      "completion_duration_seconds",
			Help:      "Chat completion duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	// Simplification queue depth gauge
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lexaid",
			Subsystem: "api",
			Name:      "simplify_queue_depth",
			Help:      "Queued documents awaiting simplification",
		},
	)

	// Simplification jobs counter
	SimplifyJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lexaid",
			Subsystem: "api",
			Name:      "simplify_jobs_total",
			Help:      "Total simplification jobs processed",
		},
		[]string{"status"},
	)
)

// RecordRequest records an HTTP request.
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordCompletion records a chat completion round-trip.
func RecordCompletion(model, status string, durationSec float64) {
	CompletionsTotal.WithLabelValues(model, status).Inc()
	CompletionDuration.WithLabelValues(model).Observe(durationSec)
}

// SetQueueDepth sets the current simplification queue depth.
func SetQueueDepth(depth int) {
	QueueDepth.Set(float64(depth))
}

// RecordSimplifyJob records a simplification job outcome.
func RecordSimplifyJob(status string) {
	SimplifyJobsTotal.WithLabelValues(status).Inc()
}
