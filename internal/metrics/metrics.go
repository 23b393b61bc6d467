package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts HTTP requests by status code, method, and route
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sufganiot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "path"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sufganiot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "method", "path"},
	)

	RequestInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sufganiot_http_requests_in_progress",
			Help: "Number of HTTP requests currently being processed",
		},
		[]string{"method", "path"},
	)

	// RateLimiterRejections counts login attempts rejected by the rate limiter
	RateLimiterRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sufganiot_rate_limiter_rejections_total",
			Help: "Total number of requests rejected by rate limiter",
		},
	)

	VotesSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sufganiot_rankings_submitted_total",
			Help: "Accepted category ranking submissions",
		},
		[]string{"category"},
	)

	CommentsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sufganiot_comments_submitted_total",
			Help: "Accepted comment submissions (created or updated)",
		},
	)

	ResultsCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sufganiot_results_cache_total",
			Help: "Results snapshot cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sufganiot_db_operation_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)
)

// RecordDBOperation records the duration of a database operation
func RecordDBOperation(operation, table string, startTime time.Time) {
	DatabaseOperationDuration.WithLabelValues(operation, table).Observe(time.Since(startTime).Seconds())
}
