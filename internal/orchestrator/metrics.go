package orchestrator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels recorded for every orchestrated operation.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeStale    = "stale"
	OutcomeIgnored  = "ignored"
	OutcomeRejected = "rejected"
)

// Metrics holds the prometheus collectors shared by all orchestrators of a process.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates and registers the import operation collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sei_import_operations_total",
				Help: "Total number of import operations by outcome.",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sei_import_operation_duration_seconds",
				Help:    "Duration of backend calls made by the import pipeline.",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"operation"},
		),
	}

	if err := reg.Register(m.operations); err != nil {
		return nil, err
	}
	if err := reg.Register(m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) count(op Operation, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(string(op), outcome).Inc()
}

func (m *Metrics) observe(op Operation, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(string(op)).Observe(d.Seconds())
}
