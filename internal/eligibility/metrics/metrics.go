package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for eligibility checks.
type Metrics struct {
	ResultsTotal    *prometheus.CounterVec
	SchemesPerCheck prometheus.Histogram
	CheckLatency    prometheus.Histogram
}

// New registers the eligibility collectors with the default registry.
func New() *Metrics {
	return &Metrics{
		ResultsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_eligibility_results_total",
			Help: "Eligibility verdicts returned, labeled by status",
		}, []string{"status"}),
		SchemesPerCheck: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "portal_eligibility_schemes_per_check",
			Help:    "Number of schemes evaluated per check request",
			Buckets: []float64{1, 5, 10, 25, 50, 100},
		}),
		CheckLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "portal_eligibility_check_latency_seconds",
			Help:    "Latency of eligibility check requests in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveResult counts one verdict.
func (m *Metrics) ObserveResult(status string) {
	m.ResultsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveCheck(schemes int, durationSeconds float64) {
	m.SchemesPerCheck.Observe(float64(schemes))
	m.CheckLatency.Observe(durationSeconds)
}
