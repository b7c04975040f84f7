package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Cache and invalidation metrics. Defined in a standalone package to avoid
// import cycles between the cache backends, the bus consumer and HTTP.

var (
	CacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_cache_hits_total",
		Help: "Cache hits por clase de clave",
	}, []string{"class"})

	CacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_cache_misses_total",
		Help: "Cache misses por clase de clave",
	}, []string{"class"})

	CacheDeletes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "agora_cache_deletes_total",
		Help: "Claves borradas del cache (invalidación)",
	})

	InvalidationsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_invalidations_published_total",
		Help: "Mensajes de invalidación publicados al bus, por tag",
	}, []string{"tag"})

	InvalidationPublishFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "agora_invalidation_publish_failures_total",
		Help: "Publishes de invalidación fallidos (el write igual respondió ok)",
	})

	InvalidationsConsumed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_invalidations_consumed_total",
		Help: "Mensajes de invalidación consumidos, por tag",
	}, []string{"tag"})

	InvalidationKeyFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "agora_invalidation_key_failures_total",
		Help: "Borrados individuales de clave que fallaron durante un batch",
	})
)

// Register registers the cache metrics on the given registry (or default if nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		CacheHits,
		CacheMisses,
		CacheDeletes,
		InvalidationsPublished,
		InvalidationPublishFailures,
		InvalidationsConsumed,
		InvalidationKeyFailures,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
