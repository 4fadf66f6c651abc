package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for application intake and review.
type Metrics struct {
	Submissions   *prometheus.CounterVec
	Reviews       *prometheus.CounterVec
	Transitions   *prometheus.CounterVec
	ReviewLatency prometheus.Histogram
}

// New registers the application collectors with the default registry.
func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_application_submissions_total",
			Help: "Application submissions, labeled by outcome (created, duplicate, not_eligible, rejected)",
		}, []string{"outcome"}),
		Reviews: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_application_reviews_total",
			Help: "Review attempts, labeled by outcome (applied, noop, conflict, denied, invalid)",
		}, []string{"outcome"}),
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_application_transitions_total",
			Help: "Applied status transitions, labeled by from and to status",
		}, []string{"from", "to"}),
		ReviewLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "portal_application_review_duration_seconds",
			Help:    "Latency of review operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncSubmission(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

// IncReview counts one review attempt by outcome.
func (m *Metrics) IncReview(outcome string) {
	m.Reviews.WithLabelValues(outcome).Inc()
}

// IncTransition counts an applied status change.
func (m *Metrics) IncTransition(from, to string) {
	m.Transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) ObserveReviewLatency(seconds float64) {
	m.ReviewLatency.Observe(seconds)
}
