package bus

import (
	"context"
	"sync"
)

// MemoryBus implementa Publisher y Subscriber en proceso. Para tests y
// despliegues de un solo nodo.
type MemoryBus struct {
	mu     sync.Mutex
	subs   []memorySub
	closed bool
}

type memorySub struct {
	ch   chan Message
	tags map[string]struct{}
}

func NewMemoryBus() *MemoryBus { return &MemoryBus{} }

func (b *MemoryBus) Publish(_ context.Context, msg Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		if _, ok := s.tags[msg.Tag]; !ok {
			continue
		}
		select {
		case s.ch <- msg:
		default:
			// subscriber saturado: se pierde el mensaje, TTL acota la staleness
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(_ context.Context, tags ...string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := memorySub{ch: make(chan Message, 64), tags: make(map[string]struct{}, len(tags))}
	for _, t := range tags {
		sub.tags[t] = struct{}{}
	}
	b.subs = append(b.subs, sub)
	return sub.ch, nil
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, s := range b.subs {
		close(s.ch)
	}
	b.subs = nil
	return nil
}
