package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry collects the counters the service emits. Translation metrics
// matter most operationally since both backends are free public
// endpoints that degrade without notice.
type Registry struct {
	reg *prometheus.Registry

	TranslationRequests  *prometheus.CounterVec
	TranslationFallback  prometheus.Counter
	TranslationCacheHit  prometheus.Counter
	TranslationCacheMiss prometheus.Counter

	QuoteFinalizations prometheus.Counter
	QuoteExports       *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
}

func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		TranslationRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "preventivi",
			Subsystem: "translate",
			Name:      "requests_total",
			Help:      "Translation attempts by backend and outcome.",
		}, []string{"backend", "outcome"}),
		TranslationFallback: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "preventivi",
			Subsystem: "translate",
			Name:      "fallback_total",
			Help:      "Fields that fell back to the Italian source text.",
		}),
		TranslationCacheHit: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "preventivi",
			Subsystem: "translate",
			Name:      "cache_hits_total",
			Help:      "Translation cache hits.",
		}),
		TranslationCacheMiss: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "preventivi",
			Subsystem: "translate",
			Name:      "cache_misses_total",
			Help:      "Translation cache misses.",
		}),
		QuoteFinalizations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "preventivi",
			Subsystem: "quotes",
			Name:      "finalizations_total",
			Help:      "Quotes finalized successfully.",
		}),
		QuoteExports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "preventivi",
			Subsystem: "quotes",
			Name:      "exports_total",
			Help:      "Quote exports by format.",
		}, []string{"format"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "preventivi",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method and status class.",
		}, []string{"method", "status"}),
	}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for scraping and tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
