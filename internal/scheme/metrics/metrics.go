package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the scheme catalog.
type Metrics struct {
	CacheLookups   *prometheus.CounterVec
	CacheErrors    prometheus.Counter
	BreakerChanges *prometheus.CounterVec
	Mutations      *prometheus.CounterVec
}

// New registers the scheme catalog collectors with the default registry.
func New() *Metrics {
	return &Metrics{
		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_scheme_cache_lookups_total",
			Help: "Active scheme cache lookups, labeled by result (hit, miss, bypass)",
		}, []string{"result"}),
		CacheErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "portal_scheme_cache_errors_total",
			Help: "Redis errors seen by the active scheme cache",
		}),
		BreakerChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_scheme_cache_breaker_transitions_total",
			Help: "Circuit breaker transitions for the scheme cache, labeled by new state",
		}, []string{"state"}),
		Mutations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_scheme_mutations_total",
			Help: "Scheme catalog mutations, labeled by operation",
		}, []string{"operation"}),
	}
}

// IncCacheLookup counts a cache lookup as hit, miss or bypass.
func (m *Metrics) IncCacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) IncCacheError() {
	m.CacheErrors.Inc()
}

func (m *Metrics) IncBreakerTransition(state string) {
	m.BreakerChanges.WithLabelValues(state).Inc()
}

func (m *Metrics) IncMutation(operation string) {
	m.Mutations.WithLabelValues(operation).Inc()
}
