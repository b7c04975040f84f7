package channel_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dropDatabas3/agora/internal/domain/repository"
	svc "github.com/dropDatabas3/agora/internal/http/services/channel"
)

func TestGetPopulatesAndServesFromCache(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ch := e.seedChannel(t, "owner", repository.VisibilityAnyone)

	agg, err := e.read.Get(ctx, ch.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if agg.Channel.ID != ch.ID || len(agg.Members) != 1 {
		t.Fatalf("unexpected aggregate: %+v", agg)
	}

	// mutar el store por debajo: la segunda lectura sale del cache
	newName := "renamed"
	if _, err := e.store.Channels().Update(ctx, ch.ID, &newName, nil, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, err := e.read.Get(ctx, ch.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Channel.Name != agg.Channel.Name {
		t.Fatalf("second read must be a cache hit, got %q", again.Channel.Name)
	}
}

func TestGetUnknownChannel(t *testing.T) {
	e := newEnv(t)
	if _, err := e.read.Get(context.Background(), "nope"); !errors.Is(err, svc.ErrChannelNotFound) {
		t.Fatalf("want ErrChannelNotFound, got %v", err)
	}
}

func TestListCreatedBy(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seedChannel(t, "owner", repository.VisibilityAnyone)
	e.seedChannel(t, "owner", repository.VisibilityInvite)
	e.seedChannel(t, "other", repository.VisibilityAnyone)

	views, err := e.read.ListCreatedBy(ctx, "owner")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("want 2 channels, got %d", len(views))
	}
}
