// Package metrics exposes prometheus instrumentation for the evaluation
// pipeline. All record methods are safe on a nil receiver so callers can
// wire metrics optionally.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for evaluation activity.
type Metrics struct {
	evaluations   *prometheus.CounterVec
	failures      *prometheus.CounterVec
	collabLatency *prometheus.HistogramVec
	reports       prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lrrit_evaluations_total",
			Help: "Dimension evaluations completed, by dimension and outcome.",
		}, []string{"dimension", "outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lrrit_evaluation_failures_total",
			Help: "Dimension evaluations that failed, by dimension and failure kind.",
		}, []string{"dimension", "kind"}),
		collabLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lrrit_collaborator_latency_seconds",
			Help:    "Collaborator call latency per dimension.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"dimension"}),
		reports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lrrit_reports_total",
			Help: "Review reports assembled.",
		}),
	}

	reg.MustRegister(m.evaluations, m.failures, m.collabLatency, m.reports)
	return m
}

// RecordEvaluation counts a completed dimension evaluation.
func (m *Metrics) RecordEvaluation(dimension, outcome string) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(dimension, outcome).Inc()
}

// RecordFailure counts a failed dimension evaluation.
func (m *Metrics) RecordFailure(dimension, kind string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(dimension, kind).Inc()
}

// ObserveCollaboratorLatency records the wall-clock duration of one
// collaborator call.
func (m *Metrics) ObserveCollaboratorLatency(dimension string, d time.Duration) {
	if m == nil {
		return
	}
	m.collabLatency.WithLabelValues(dimension).Observe(d.Seconds())
}

// RecordReport counts an assembled report.
func (m *Metrics) RecordReport() {
	if m == nil {
		return
	}
	m.reports.Inc()
}
