package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Tutor server metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tutor",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tutor",
			Subsystem: "chat",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Conversation turns persisted (one user line + one assistant line each)
	TurnsCommittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tutor",
			Subsystem: "chat",
			Name:      "turns_committed_total",
			Help:      "Total conversation turns committed to storage",
		},
	)

	// Conversation resets
	ResetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tutor",
			Subsystem: "chat",
			Name:      "resets_total",
			Help:      "Total conversation resets",
		},
	)

	// Upstream model call failures
	GenerationFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tutor",
			Subsystem: "chat",
			Name:      "generation_failures_total",
			Help:      "Total reply generation failures",
		},
	)

	// Replies degraded to the fixed fallback text
	FallbackRepliesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tutor",
			Subsystem: "chat",
			Name:      "fallback_replies_total",
			Help:      "Total replies degraded to the fallback text due to an unrecognized model response shape",
		},
	)
)

// RecordRequest records a completed HTTP request.
func RecordRequest(method, endpoint, status string, duration float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}
