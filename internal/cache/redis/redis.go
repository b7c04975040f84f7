package redis

import (
	"context"
	"time"

	"github.com/dropDatabas3/agora/internal/metrics"
	"github.com/dropDatabas3/agora/internal/observability/logger"
	rdb "github.com/redis/go-redis/v9"
)

// Cache implementa cache.Cache sobre redis. Los errores de backend se
// degradan: Get falla => miss, Set falla => se loguea y se sigue.
type Cache struct{ c *rdb.Client }

func New(addr string, db int) *Cache {
	return &Cache{c: rdb.NewClient(&rdb.Options{Addr: addr, DB: db})}
}

// NewWithClient permite inyectar un cliente ya construido (tests, sentinel).
func NewWithClient(c *rdb.Client) *Cache { return &Cache{c: c} }

func (r *Cache) Get(ctx context.Context, k string) ([]byte, bool) {
	b, err := r.c.Get(ctx, k).Bytes()
	if err != nil {
		if err != rdb.Nil {
			logger.From(ctx).Debug("cache get degraded to miss",
				logger.Component("cache.redis"), logger.CacheKey(k), logger.Err(err))
		}
		return nil, false
	}
	return b, true
}

func (r *Cache) Set(ctx context.Context, k string, v []byte, ttl time.Duration) {
	if err := r.c.Set(ctx, k, v, ttl).Err(); err != nil {
		logger.From(ctx).Warn("cache set failed",
			logger.Component("cache.redis"), logger.CacheKey(k), logger.Err(err))
	}
}

func (r *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := r.c.Del(ctx, keys...).Err()
	if err == nil {
		metrics.CacheDeletes.Add(float64(len(keys)))
	}
	return err
}

// Ping verifica la conexión al backend.
func (r *Cache) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

// Close cierra la conexión.
func (r *Cache) Close() error { return r.c.Close() }
