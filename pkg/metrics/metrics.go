package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Backend collaborator metrics
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskdeck_backend_requests_total",
			Help: "Total number of backend requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskdeck_backend_request_duration_seconds",
			Help:    "Backend request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Task store metrics
	TasksInStore = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskdeck_tasks_in_store",
			Help: "Number of tasks currently held in the local store",
		},
	)

	ReconciliationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taskdeck_reconciliations_total",
			Help: "Times the store discarded optimistic state and refetched the canonical task list",
		},
	)

	// Directory metrics
	DirectoryDegraded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskdeck_directory_degraded",
			Help: "Whether the seed fallback directory is in effect (1 = degraded)",
		},
	)

	DirectorySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskdeck_directory_size",
			Help: "Number of users in the directory cache",
		},
	)
)

func init() {
	prometheus.MustRegister(
		BackendRequestsTotal,
		BackendRequestDuration,
		TasksInStore,
		ReconciliationsTotal,
		DirectoryDegraded,
		DirectorySize,
	)
}

// Timer measures a duration and records it in a histogram.
type Timer struct {
	start time.Time
}

// NewTimer starts a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time in the given histogram label.
func (t *Timer) ObserveDuration(histogram prometheus.Observer) {
	histogram.Observe(time.Since(t.start).Seconds())
}
