package bus

import (
	"context"
	"testing"
	"time"
)

func TestMemoryBusRouting(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBus()
	defer b.Close()

	chCh, err := b.Subscribe(ctx, TagChannel)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	topicCh, err := b.Subscribe(ctx, TagTopic)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := b.Publish(ctx, Message{Keys: []string{"channel:c1"}, Tag: TagChannel}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case msg := <-chCh:
		if msg.Tag != TagChannel || len(msg.Keys) != 1 || msg.Keys[0] != "channel:c1" {
			t.Fatalf("unexpected message: %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("channel subscriber got nothing")
	}

	select {
	case msg := <-topicCh:
		t.Fatalf("topic subscriber should not receive channel tag, got %+v", msg)
	default:
	}
}

func TestMemoryBusCloseClosesSubscribers(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBus()

	ch, err := b.Subscribe(ctx, TagChannel)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
}
