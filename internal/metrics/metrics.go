// Package metrics holds the Prometheus collectors for tally.
//
// Collectors live on a private registry rather than the global default one,
// so tests and multiple services in one process do not collide. A CLI run can
// dump the registry in textfile-collector format with WriteFile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	Registry *prometheus.Registry

	// Operation metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Persistence metrics
	PersistenceFailures *prometheus.CounterVec

	// History metrics
	SnapshotsCreated prometheus.Counter
	SnapshotsUpdated prometheus.Counter
	Restores         prometheus.Counter

	// Session gauges
	LineItems prometheus.Gauge
	TotalDue  prometheus.Gauge
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_operations_total",
				Help: "Total number of session operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tally_operation_duration_seconds",
				Help:    "Session operation duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"operation"},
		),
		PersistenceFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_persistence_failures_total",
				Help: "Storage writes or reads that failed and were swallowed",
			},
			[]string{"component"},
		),
		SnapshotsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "tally_history_snapshots_created_total",
			Help: "History snapshots appended to the archive",
		}),
		SnapshotsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "tally_history_snapshots_updated_total",
			Help: "History snapshots updated in place",
		}),
		Restores: factory.NewCounter(prometheus.CounterOpts{
			Name: "tally_history_restores_total",
			Help: "Sessions restored from history",
		}),
		LineItems: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tally_session_line_items",
			Help: "Line items in the live session",
		}),
		TotalDue: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tally_session_total_due",
			Help: "Total due of the live session",
		}),
	}
}

// RecordOperation counts one operation and observes its duration.
func (m *Metrics) RecordOperation(op, outcome string, d time.Duration) {
	m.OperationsTotal.WithLabelValues(op, outcome).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(d.Seconds())
}

// RecordPersistenceFailure counts a swallowed storage error.
func (m *Metrics) RecordPersistenceFailure(component string) {
	m.PersistenceFailures.WithLabelValues(component).Inc()
}

// RecordSnapshot counts a history write.
func (m *Metrics) RecordSnapshot(created bool) {
	if created {
		m.SnapshotsCreated.Inc()
		return
	}
	m.SnapshotsUpdated.Inc()
}

// SetSession updates the live session gauges.
func (m *Metrics) SetSession(items int, totalDue float64) {
	m.LineItems.Set(float64(items))
	m.TotalDue.Set(totalDue)
}

// WriteFile dumps the registry to path in the Prometheus text format,
// atomically, for node_exporter's textfile collector.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
