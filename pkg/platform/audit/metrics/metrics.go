// Package metrics instruments the audit publisher. Counters are labelled by
// event category so compliance loss is visible apart from operations noise.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const categoryLabel = "category"

// Metrics methods are safe on a nil receiver.
type Metrics struct {
	queueDepth      prometheus.Gauge
	enqueued        *prometheus.CounterVec
	dropped         *prometheus.CounterVec
	persisted       *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	emitDuration    prometheus.Histogram
	persistDuration prometheus.Histogram
}

// New registers the collectors with the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the collectors with reg.
func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		queueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "portal_audit_queue_depth",
			Help: "Audit events waiting in the async buffer",
		}),
		enqueued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_audit_events_enqueued_total",
			Help: "Audit events accepted into the async buffer",
		}, []string{categoryLabel}),
		dropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_audit_events_dropped_total",
			Help: "Audit events dropped because the buffer was full",
		}, []string{categoryLabel}),
		persisted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_audit_events_persisted_total",
			Help: "Audit events written to the store",
		}, []string{categoryLabel}),
		persistFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_audit_persist_failures_total",
			Help: "Audit events the store refused",
		}, []string{categoryLabel}),
		emitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "portal_audit_emit_duration_seconds",
			Help:    "Time to enqueue or synchronously write one audit event",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		persistDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "portal_audit_persist_duration_seconds",
			Help:    "Time to write one audit event to the store",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
}

// Enqueued counts an event accepted into the buffer and raises the depth gauge.
func (m *Metrics) Enqueued(category string) {
	if m == nil {
		return
	}
	m.enqueued.WithLabelValues(category).Inc()
	m.queueDepth.Inc()
}

// Dequeued is called when the background writer takes an event off the buffer.
func (m *Metrics) Dequeued() {
	if m == nil {
		return
	}
	m.queueDepth.Dec()
}

func (m *Metrics) Dropped(category string) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(category).Inc()
}

// Persisted records one store write and its outcome.
func (m *Metrics) Persisted(category string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.persistDuration.Observe(seconds)
	if err != nil {
		m.persistFailures.WithLabelValues(category).Inc()
		return
	}
	m.persisted.WithLabelValues(category).Inc()
}

func (m *Metrics) ObserveEmit(seconds float64) {
	if m == nil {
		return
	}
	m.emitDuration.Observe(seconds)
}
