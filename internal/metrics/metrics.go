package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DiscoveryRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hekaya_discovery_runs_total",
		Help: "Discovery pipeline runs by action",
	}, []string{"action"})
	RescoreRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hekaya_rescore_runs_total",
		Help: "Story re-scoring runs",
	})
	FetchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hekaya_fetch_errors_total",
		Help: "Degraded external fetch calls by source",
	}, []string{"source"})
	CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hekaya_cache_hits_total",
		Help: "Cache reads served within TTL",
	})
	CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hekaya_cache_misses_total",
		Help: "Cache reads that missed, expired or failed to parse",
	})
)

func init() {
	prometheus.MustRegister(DiscoveryRuns, RescoreRuns, FetchErrors, CacheHits, CacheMisses)
}

// IncFetchError records one degraded call for a source.
func IncFetchError(source string) { FetchErrors.WithLabelValues(source).Inc() }

// IncDiscovery records one discovery pipeline run for an action.
func IncDiscovery(action string) { DiscoveryRuns.WithLabelValues(action).Inc() }
