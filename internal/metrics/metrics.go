package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)

	SnapshotsAppended = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sprint_efforts_snapshots_appended_total",
			Help: "Total number of sprint efforts snapshots appended",
		},
	)

	GuidelineRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sprint_guideline_requests_total",
			Help: "Total burn-down guideline requests by outcome",
		},
		[]string{"outcome"},
	)

	EmailJobsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_jobs_published_total",
			Help: "Total email jobs published to the queue",
		},
		[]string{"routing_key"},
	)

	EmailsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_processed_total",
			Help: "Total emails processed by the worker",
		},
		[]string{"status"},
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
