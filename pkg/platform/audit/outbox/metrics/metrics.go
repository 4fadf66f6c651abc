// Package metrics instruments the outbox relay. Publish outcomes are
// labelled by aggregate type (application, scheme, staff_member, insight).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure stages.
const (
	StageFetch   = "fetch"
	StagePublish = "publish"
	StageMark    = "mark"
)

// Metrics methods are safe on a nil receiver.
type Metrics struct {
	pending         prometheus.Gauge
	oldestPending   prometheus.Gauge
	published       *prometheus.CounterVec
	failures        *prometheus.CounterVec
	publishDuration prometheus.Histogram
	batchSize       prometheus.Histogram
	pollDuration    prometheus.Histogram
}

// New registers the collectors with the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the collectors with reg.
func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	latency := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}
	return &Metrics{
		pending: f.NewGauge(prometheus.GaugeOpts{
			Name: "portal_outbox_pending",
			Help: "Outbox entries not yet relayed to Kafka",
		}),
		oldestPending: f.NewGauge(prometheus.GaugeOpts{
			Name: "portal_outbox_oldest_pending_seconds",
			Help: "Age of the oldest unrelayed outbox entry",
		}),
		published: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_outbox_published_total",
			Help: "Outbox entries relayed and marked processed",
		}, []string{"aggregate"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_outbox_failures_total",
			Help: "Relay failures by stage",
		}, []string{"stage"}),
		publishDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "portal_outbox_publish_duration_seconds",
			Help:    "Broker round trip for one outbox entry",
			Buckets: latency,
		}),
		batchSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "portal_outbox_batch_size",
			Help:    "Entries fetched per poll",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		pollDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "portal_outbox_poll_duration_seconds",
			Help:    "Duration of one non-empty poll cycle",
			Buckets: latency,
		}),
	}
}

// Backlog sets the pending gauges.
func (m *Metrics) Backlog(count int64, oldestAgeSeconds float64) {
	if m == nil {
		return
	}
	m.pending.Set(float64(count))
	m.oldestPending.Set(oldestAgeSeconds)
}

// Published counts one relayed entry and its broker round trip.
func (m *Metrics) Published(aggregate string, seconds float64) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(aggregate).Inc()
	m.publishDuration.Observe(seconds)
}

// Failed counts a failure at stage (fetch, publish or mark).
func (m *Metrics) Failed(stage string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(stage).Inc()
}

// Polled records the size and duration of one poll.
func (m *Metrics) Polled(batch int, seconds float64) {
	if m == nil {
		return
	}
	m.batchSize.Observe(float64(batch))
	m.pollDuration.Observe(seconds)
}
