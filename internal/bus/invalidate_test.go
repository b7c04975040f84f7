package bus

import (
	"context"
	"errors"
	"testing"
)

type countingPublisher struct {
	calls int
	err   error
}

func (p *countingPublisher) Publish(context.Context, Message) error {
	p.calls++
	return p.err
}

func TestInvalidateTolerantToNilPublisher(t *testing.T) {
	// no debe panickear: los writes siguen aunque no haya bus configurado
	Invalidate(context.Background(), nil, TagChannel, "channel:1")
}

func TestInvalidateSkipsEmptyBatch(t *testing.T) {
	p := &countingPublisher{}
	Invalidate(context.Background(), p, TagChannel)
	if p.calls != 0 {
		t.Fatalf("publish called %d times for empty batch", p.calls)
	}
}

func TestInvalidateSwallowsPublishError(t *testing.T) {
	p := &countingPublisher{err: errors.New("broker down")}
	Invalidate(context.Background(), p, TagTopic, "topic:1", "topics:members:1")
	if p.calls != 1 {
		t.Fatalf("publish calls = %d", p.calls)
	}
}
