// Package metrics provides the Prometheus metrics of the records service.
// HTTP request metrics come from fiberprometheus; these cover the domain operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "equirecords"

var (
	// StatusChangesTotal tracks status workflow runs by operation and outcome
	StatusChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "status",
			Name:      "changes_total",
			Help:      "Total number of horse status operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// StatusEventsPublishFailures tracks status events that could not be published
	StatusEventsPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "status",
			Name:      "event_publish_failures_total",
			Help:      "Total number of status events that failed to publish",
		},
	)

	// DashboardCacheRequests tracks dashboard cache lookups by result
	DashboardCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "cache_requests_total",
			Help:      "Total number of dashboard cache lookups by result",
		},
		[]string{"result"},
	)

	// DashboardBuildDuration tracks the time spent aggregating the dashboard
	DashboardBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "build_duration_seconds",
			Help:      "Duration of dashboard aggregation in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// UploadedFilesTotal tracks stored documents by endpoint
	UploadedFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "uploads",
			Name:      "files_total",
			Help:      "Total number of uploaded files by endpoint",
		},
		[]string{"endpoint"},
	)

	// FileCleanupFailures tracks upload folders that could not be removed
	FileCleanupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "uploads",
			Name:      "cleanup_failures_total",
			Help:      "Total number of failed upload removals",
		},
	)
)
