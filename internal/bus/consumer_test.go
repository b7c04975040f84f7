package bus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// trackingCache registra deletes y permite forzar fallos por clave.
type trackingCache struct {
	mu      sync.Mutex
	deleted []string
	failOn  map[string]bool
}

func (c *trackingCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (c *trackingCache) Set(context.Context, string, []byte, time.Duration) {}
func (c *trackingCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		if c.failOn[k] {
			return errors.New("backend down")
		}
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *trackingCache) deletedKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.deleted))
	copy(out, c.deleted)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestConsumerDeletesEveryKey(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewMemoryBus()
	defer b.Close()
	cache := &trackingCache{}
	consumer := NewConsumer(b, cache)

	done := make(chan struct{})
	go func() {
		_ = consumer.Run(ctx)
		close(done)
	}()

	waitFor(t, func() bool { return consumer.State() != StateDisconnected })

	_ = b.Publish(ctx, Message{Keys: []string{"channel:c1", "channels:members:c1"}, Tag: TagChannel})

	waitFor(t, func() bool { return len(cache.deletedKeys()) == 2 })

	cancel()
	<-done
}

func TestConsumerContinuesBatchOnKeyFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewMemoryBus()
	defer b.Close()
	cache := &trackingCache{failOn: map[string]bool{"channel:bad": true}}
	consumer := NewConsumer(b, cache)

	go func() { _ = consumer.Run(ctx) }()
	waitFor(t, func() bool { return consumer.State() != StateDisconnected })

	_ = b.Publish(ctx, Message{Keys: []string{"channel:bad", "channel:ok"}, Tag: TagChannel})

	// la clave que falla no frena el resto del batch
	waitFor(t, func() bool {
		for _, k := range cache.deletedKeys() {
			if k == "channel:ok" {
				return true
			}
		}
		return false
	})
}

// Re-procesar el mismo mensaje deja el cache en el mismo estado: el delete
// es idempotente, así que la entrega duplicada del bus es inocua.
func TestConsumerIdempotentRedelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewMemoryBus()
	defer b.Close()
	cache := &trackingCache{}
	consumer := NewConsumer(b, cache)

	go func() { _ = consumer.Run(ctx) }()
	waitFor(t, func() bool { return consumer.State() != StateDisconnected })

	msg := Message{Keys: []string{"topic:t1"}, Tag: TagTopic}
	_ = b.Publish(ctx, msg)
	_ = b.Publish(ctx, msg)

	waitFor(t, func() bool { return len(cache.deletedKeys()) == 2 })
	for _, k := range cache.deletedKeys() {
		if k != "topic:t1" {
			t.Fatalf("unexpected key: %s", k)
		}
	}
}

func TestConsumerStateString(t *testing.T) {
	if StateDisconnected.String() != "disconnected" ||
		StateConnectedIdle.String() != "connected-idle" ||
		StateProcessing.String() != "processing" {
		t.Fatal("state names drifted")
	}
}
