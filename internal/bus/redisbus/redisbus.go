// Package redisbus implementa el bus de invalidación sobre Redis Pub/Sub.
// Un canal por tag: "invalidate.<tag>".
package redisbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dropDatabas3/agora/internal/bus"
	"github.com/dropDatabas3/agora/internal/metrics"
	"github.com/dropDatabas3/agora/internal/observability/logger"
	rdb "github.com/redis/go-redis/v9"
)

const channelPrefix = "invalidate."

// Bus implementa bus.Publisher y bus.Subscriber.
// La conexión es lazy: go-redis la (re)establece en el próximo comando.
type Bus struct {
	c              *rdb.Client
	publishTimeout time.Duration
	pubsub         *rdb.PubSub
}

func New(addr string, db int, publishTimeout time.Duration) *Bus {
	return NewWithClient(rdb.NewClient(&rdb.Options{Addr: addr, DB: db}), publishTimeout)
}

func NewWithClient(c *rdb.Client, publishTimeout time.Duration) *Bus {
	if publishTimeout <= 0 {
		publishTimeout = 2 * time.Second
	}
	return &Bus{c: c, publishTimeout: publishTimeout}
}

// Publish serializa el mensaje y lo publica al canal del tag.
// Acotado por publishTimeout: un broker caído no bloquea el write path.
func (b *Bus) Publish(ctx context.Context, msg bus.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, b.publishTimeout)
	defer cancel()

	if err := b.c.Publish(ctx, channelPrefix+msg.Tag, body).Err(); err != nil {
		return err
	}
	metrics.InvalidationsPublished.WithLabelValues(msg.Tag).Inc()
	return nil
}

// Subscribe abre la suscripción y bombea mensajes decodificados.
// go-redis re-establece la suscripción tras cortes; el canal retornado
// sólo se cierra si la suscripción se cierra explícitamente.
func (b *Bus) Subscribe(ctx context.Context, tags ...string) (<-chan bus.Message, error) {
	channels := make([]string, len(tags))
	for i, t := range tags {
		channels[i] = channelPrefix + t
	}

	b.pubsub = b.c.Subscribe(ctx, channels...)
	// forzar el handshake para detectar un broker inaccesible ya
	if _, err := b.pubsub.Receive(ctx); err != nil {
		_ = b.pubsub.Close()
		b.pubsub = nil
		return nil, err
	}

	out := make(chan bus.Message, 64)
	go b.pump(b.pubsub, out)
	return out, nil
}

func (b *Bus) pump(ps *rdb.PubSub, out chan<- bus.Message) {
	defer close(out)
	log := logger.Named("bus.redis")

	for raw := range ps.Channel() {
		var msg bus.Message
		if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
			log.Warn("malformed invalidation message dropped",
				logger.String("channel", raw.Channel), logger.Err(err))
			continue
		}
		out <- msg
	}
}

func (b *Bus) Close() error {
	if b.pubsub != nil {
		if err := b.pubsub.Close(); err != nil {
			return err
		}
		b.pubsub = nil
	}
	return b.c.Close()
}

// Ping verifica la conexión al broker.
func (b *Bus) Ping(ctx context.Context) error { return b.c.Ping(ctx).Err() }
