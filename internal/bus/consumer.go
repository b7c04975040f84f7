package bus

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dropDatabas3/agora/internal/cache"
	"github.com/dropDatabas3/agora/internal/metrics"
	"github.com/dropDatabas3/agora/internal/observability/logger"
	"go.uber.org/zap"
)

// State del consumer, expuesto para health checks y tests.
type State int32

const (
	StateDisconnected State = iota
	StateConnectedIdle
	StateProcessing
)

func (s State) String() string {
	switch s {
	case StateConnectedIdle:
		return "connected-idle"
	case StateProcessing:
		return "processing"
	default:
		return "disconnected"
	}
}

// Consumer consume mensajes de invalidación y borra las claves del cache.
//
// Cada clave se borra de forma independiente: un fallo individual se
// loguea y se sigue con el resto del batch (cada delete es idempotente,
// re-entregar el mensaje deja el cache en el mismo estado). Si la
// suscripción muere, reintenta con backoff.
type Consumer struct {
	sub   Subscriber
	cache cache.Cache
	tags  []string
	state atomic.Int32

	// backoff de re-suscripción
	retryMin time.Duration
	retryMax time.Duration
}

func NewConsumer(sub Subscriber, c cache.Cache, tags ...string) *Consumer {
	if len(tags) == 0 {
		tags = []string{TagChannel, TagTopic, TagUser}
	}
	return &Consumer{
		sub:      sub,
		cache:    c,
		tags:     tags,
		retryMin: 500 * time.Millisecond,
		retryMax: 30 * time.Second,
	}
}

// State retorna el estado actual.
func (c *Consumer) State() State { return State(c.state.Load()) }

// Run bloquea hasta que ctx se cancele. Pensado para correr bajo errgroup.
func (c *Consumer) Run(ctx context.Context) error {
	log := logger.Named("bus.consumer")
	backoff := c.retryMin

	for {
		ch, err := c.sub.Subscribe(ctx, c.tags...)
		if err != nil {
			c.state.Store(int32(StateDisconnected))
			log.Warn("subscribe failed, retrying",
				logger.Err(err), logger.Duration(backoff))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = nextBackoff(backoff, c.retryMax)
			continue
		}

		backoff = c.retryMin
		c.state.Store(int32(StateConnectedIdle))
		log.Info("subscribed", logger.String("tags", joinTags(c.tags)))

		if err := c.drain(ctx, ch); err != nil {
			return err
		}
		// canal cerrado: suscripción muerta, volver a intentar
		c.state.Store(int32(StateDisconnected))
		log.Warn("subscription lost, reconnecting")
	}
}

// drain procesa mensajes hasta que el canal se cierre o ctx termine.
func (c *Consumer) drain(ctx context.Context, ch <-chan Message) error {
	log := logger.Named("bus.consumer")
	for {
		select {
		case <-ctx.Done():
			c.state.Store(int32(StateDisconnected))
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			c.state.Store(int32(StateProcessing))
			c.process(ctx, msg, log)
			c.state.Store(int32(StateConnectedIdle))
		}
	}
}

// process borra cada clave del mensaje. Nunca re-encola: un fallo total
// es pérdida aceptada, acotada por TTL.
func (c *Consumer) process(ctx context.Context, msg Message, log *zap.Logger) {
	metrics.InvalidationsConsumed.WithLabelValues(msg.Tag).Inc()

	for _, key := range msg.Keys {
		if err := c.cache.Delete(ctx, key); err != nil {
			metrics.InvalidationKeyFailures.Inc()
			log.Warn("key delete failed, continuing batch",
				logger.CacheKey(key), logger.Tag(msg.Tag), logger.Err(err))
		}
	}
	log.Debug("invalidation batch processed",
		logger.Tag(msg.Tag), logger.Count(len(msg.Keys)))
}

func nextBackoff(cur, max time.Duration) time.Duration {
	cur *= 2
	if cur > max {
		return max
	}
	return cur
}

func joinTags(tags []string) string {
	out := ""
	for i, t := range tags {
		if i > 0 {
			out += ","
		}
		out += t
	}
	return out
}
