// Package metrics holds the Prometheus collectors of the sync loop.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cycle results.
const (
	ResultRendered = "rendered"
	ResultSkipped  = "skipped"
	ResultStale    = "stale"
	ResultError    = "error"
)

var (
	// SyncCycles counts view syncs by view and result.
	SyncCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ovxview_sync_cycles_total",
			Help: "View syncs by view and result",
		},
		[]string{"view", "result"},
	)

	// SyncDuration tracks how long a view sync takes, render included.
	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ovxview_sync_duration_seconds",
			Help:    "Duration of view syncs in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"view"},
	)

	// Restarts counts cycles restarted by the retry watchdog.
	Restarts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ovxview_watchdog_restarts_total",
			Help: "Sync cycles restarted because they ran past the retry interval",
		},
	)

	// PendingActions is the number of unconfirmed operator actions.
	PendingActions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ovxview_pending_actions",
			Help: "Operator actions not yet confirmed by the controller",
		},
	)

	// Actions counts operator actions by kind and status.
	Actions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ovxview_actions_total",
			Help: "Operator actions sent to the controller",
		},
		[]string{"action", "status"},
	)

	// Subscribers is the number of connected event stream clients.
	Subscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ovxview_event_subscribers",
			Help: "Connected event stream clients",
		},
	)
)

// RecordSync records one view sync.
func RecordSync(view, result string, took time.Duration) {
	SyncCycles.WithLabelValues(view, result).Inc()
	SyncDuration.WithLabelValues(view).Observe(took.Seconds())
}

// RecordAction records an operator action; err nil counts as success.
func RecordAction(action string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	Actions.WithLabelValues(action, status).Inc()
}

// SetPending sets the pending action gauge.
func SetPending(n int) {
	PendingActions.Set(float64(n))
}
