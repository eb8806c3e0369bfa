package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics carries the pipeline counters. A single instance is built at
// startup and threaded through the upstream client and the merge
// service.
type Metrics struct {
	registry *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec
	UpstreamRetries  prometheus.Counter
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	OddsPagesFetched prometheus.Counter
	FallbackFetches  *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "footyodds",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Upstream API requests by endpoint and result.",
		}, []string{"endpoint", "result"}),
		UpstreamRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "footyodds",
			Subsystem: "upstream",
			Name:      "retries_total",
			Help:      "Upstream request retries, including rate-limit waits.",
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "footyodds",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Merged-response cache hits.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "footyodds",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Merged-response cache misses.",
		}),
		OddsPagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "footyodds",
			Subsystem: "odds",
			Name:      "pages_fetched_total",
			Help:      "Paginated odds pages fetched from upstream.",
		}),
		FallbackFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "footyodds",
			Subsystem: "odds",
			Name:      "fallback_fetches_total",
			Help:      "Per-fixture fallback odds fetches by result.",
		}, []string{"result"}),
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
