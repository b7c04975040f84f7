package bus

import (
	"context"

	"github.com/dropDatabas3/agora/internal/metrics"
	"github.com/dropDatabas3/agora/internal/observability/logger"
)

// Invalidate publica un batch de claves. Best-effort: el write ya está
// commiteado cuando se llama, así que un fallo sólo se loguea — la entrada
// queda stale hasta su TTL, jamás se falla el request del caller.
func Invalidate(ctx context.Context, p Publisher, tag string, keys ...string) {
	if p == nil || len(keys) == 0 {
		return
	}
	if err := p.Publish(ctx, Message{Keys: keys, Tag: tag}); err != nil {
		metrics.InvalidationPublishFailures.Inc()
		logger.From(ctx).Warn("invalidation publish failed, cache stays stale until TTL",
			logger.Component("bus"), logger.Tag(tag), logger.Keys(keys), logger.Err(err))
	}
}
