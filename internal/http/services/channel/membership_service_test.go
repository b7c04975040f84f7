package channel_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dropDatabas3/agora/internal/bus"
	"github.com/dropDatabas3/agora/internal/cache"
	"github.com/dropDatabas3/agora/internal/domain/repository"
	svc "github.com/dropDatabas3/agora/internal/http/services/channel"
)

func TestJoinPublicCascadesIntoPublicTopics(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ch := e.seedChannel(t, "owner", repository.VisibilityAnyone)
	public := e.seedTopic(t, ch, "general", repository.VisibilityAnyone)
	gated := e.seedTopic(t, ch, "staff", repository.VisibilityInvite)

	res, err := e.membership.Join(ctx, "alice", ch.ID, "alice@example.com")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if !res.Success || res.JoinStatus != "joined" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.AutoJoinedTopics) != 1 || res.AutoJoinedTopics[0] != public.ID {
		t.Fatalf("auto-join should cover only public topics, got %v", res.AutoJoinedTopics)
	}

	// membership del topic público creada, la del restringido no
	if _, err := e.store.Memberships().Get(ctx, "alice", repository.ContainerTopic, public.ID); err != nil {
		t.Fatalf("public topic membership missing: %v", err)
	}
	if _, err := e.store.Memberships().Get(ctx, "alice", repository.ContainerTopic, gated.ID); !repository.IsNotFound(err) {
		t.Fatalf("gated topic membership should not exist, got %v", err)
	}

	// un solo batch de invalidación con ambas members keys
	msgs := e.pub.messages()
	if len(msgs) != 1 {
		t.Fatalf("want one invalidation batch, got %d", len(msgs))
	}
	if msgs[0].Tag != bus.TagChannel {
		t.Fatalf("tag: %s", msgs[0].Tag)
	}
	if !hasKey(msgs[0].Keys, cache.ChannelMembersKey(ch.ID)) ||
		!hasKey(msgs[0].Keys, cache.TopicMembersKey(public.ID)) {
		t.Fatalf("batch keys incomplete: %v", msgs[0].Keys)
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ch := e.seedChannel(t, "owner", repository.VisibilityAnyone)

	if _, err := e.membership.Join(ctx, "alice", ch.ID, ""); err != nil {
		t.Fatalf("first join: %v", err)
	}
	res, err := e.membership.Join(ctx, "alice", ch.ID, "")
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if !res.Success || res.JoinStatus != "already" {
		t.Fatalf("double join should answer from the existing membership, got %+v", res)
	}

	ms, _ := e.store.Memberships().ListByContainer(ctx, repository.ContainerChannel, ch.ID)
	if len(ms) != 2 { // owner + alice
		t.Fatalf("want 2 memberships, got %d", len(ms))
	}
}

func TestJoinInviteVisibilityCreatesRequest(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ch := e.seedChannel(t, "owner", repository.VisibilityInvite)

	res, err := e.membership.Join(ctx, "alice", ch.ID, "alice@example.com")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if !res.Success || res.JoinStatus != "request" {
		t.Fatalf("unexpected result: %+v", res)
	}

	m, err := e.store.Memberships().Get(ctx, "alice", repository.ContainerChannel, ch.ID)
	if err != nil {
		t.Fatalf("membership: %v", err)
	}
	if m.Status != repository.StatusRequest {
		t.Fatalf("status: %s", m.Status)
	}

	// el owner recibe la notificación (fire and forget)
	waitFor(t, func() bool { return e.notifier.joinReqCount() == 1 })
}

func TestJoinPrivateIsBusinessRejection(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ch := e.seedChannel(t, "owner", repository.VisibilityPrivate)

	res, err := e.membership.Join(ctx, "alice", ch.ID, "")
	if err != nil {
		t.Fatalf("private join must not error: %v", err)
	}
	if res.Success {
		t.Fatalf("private join must be rejected: %+v", res)
	}
	if _, err := e.store.Memberships().Get(ctx, "alice", repository.ContainerChannel, ch.ID); !repository.IsNotFound(err) {
		t.Fatal("no membership should be created")
	}
}

func TestAcceptTransitionsRequestToJoined(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ch := e.seedChannel(t, "owner", repository.VisibilityInvite)
	if _, err := e.membership.Join(ctx, "alice", ch.ID, "alice@example.com"); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := e.membership.Accept(ctx, "mallory", ch.ID, "alice"); !errors.Is(err, svc.ErrNotOwner) {
		t.Fatalf("non-owner accept: want ErrNotOwner, got %v", err)
	}

	if err := e.membership.Accept(ctx, "owner", ch.ID, "alice"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	m, _ := e.store.Memberships().Get(ctx, "alice", repository.ContainerChannel, ch.ID)
	if m.Status != repository.StatusJoined {
		t.Fatalf("status: %s", m.Status)
	}

	// aceptar de nuevo: ya no hay request pendiente
	if err := e.membership.Accept(ctx, "owner", ch.ID, "alice"); !errors.Is(err, svc.ErrNoPendingJoin) {
		t.Fatalf("want ErrNoPendingJoin, got %v", err)
	}

	waitFor(t, func() bool { return e.notifier.acceptedCount() == 1 })
}

func TestDeclineRemovesRequest(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ch := e.seedChannel(t, "owner", repository.VisibilityInvite)
	if _, err := e.membership.Join(ctx, "alice", ch.ID, ""); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := e.membership.Decline(ctx, "owner", ch.ID, "alice"); err != nil {
		t.Fatalf("decline: %v", err)
	}
	if _, err := e.store.Memberships().Get(ctx, "alice", repository.ContainerChannel, ch.ID); !repository.IsNotFound(err) {
		t.Fatal("membership should be removed")
	}
}

func TestLeaveCascadesTopicMemberships(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ch := e.seedChannel(t, "owner", repository.VisibilityAnyone)
	tp := e.seedTopic(t, ch, "general", repository.VisibilityAnyone)

	if _, err := e.membership.Join(ctx, "alice", ch.ID, ""); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := e.membership.Leave(ctx, "alice", ch.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}

	if _, err := e.store.Memberships().Get(ctx, "alice", repository.ContainerChannel, ch.ID); !repository.IsNotFound(err) {
		t.Fatal("channel membership should be gone")
	}
	if _, err := e.store.Memberships().Get(ctx, "alice", repository.ContainerTopic, tp.ID); !repository.IsNotFound(err) {
		t.Fatal("topic membership should be gone")
	}

	keys := e.pub.lastKeys()
	for _, want := range []string{
		cache.ChannelMembersKey(ch.ID),
		cache.TopicMembersKey(tp.ID),
		cache.TopicsOfChannelKey(ch.ID),
	} {
		if !hasKey(keys, want) {
			t.Fatalf("leave batch missing %s: %v", want, keys)
		}
	}
}

func TestOwnerCannotLeave(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ch := e.seedChannel(t, "owner", repository.VisibilityAnyone)

	if err := e.membership.Leave(ctx, "owner", ch.ID); !errors.Is(err, svc.ErrNotOwner) {
		t.Fatalf("want ErrNotOwner, got %v", err)
	}
}

func TestJoinWithInviteLifecycle(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ch := e.seedChannel(t, "owner", repository.VisibilityInvite)

	inv, err := e.manage.CreateInvite(ctx, "owner", ch.ID, time.Hour)
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}

	res, err := e.membership.JoinWithInvite(ctx, "alice", inv.Code, "alice@example.com")
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if !res.Success || res.JoinStatus != "joined" {
		t.Fatalf("unexpected result: %+v", res)
	}

	// el código es de un solo uso
	if _, err := e.membership.JoinWithInvite(ctx, "bob", inv.Code, ""); !errors.Is(err, svc.ErrInviteInvalid) {
		t.Fatalf("second redemption: want ErrInviteInvalid, got %v", err)
	}
}

func TestJoinWithInviteExpired(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ch := e.seedChannel(t, "owner", repository.VisibilityInvite)

	inv, err := e.store.Invites().Create(ctx, repository.Invite{
		Code:       "stale",
		ChannelID:  ch.ID,
		IssuerID:   "owner",
		Status:     repository.InviteActive,
		ExpireTime: time.Now().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := e.membership.JoinWithInvite(ctx, "alice", inv.Code, ""); !errors.Is(err, svc.ErrInviteExpired) {
		t.Fatalf("want ErrInviteExpired, got %v", err)
	}
}

func TestJoinWithInviteRejectsStaleIssuer(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ch := e.seedChannel(t, "owner", repository.VisibilityInvite)

	// emitido por alguien que no es el owner actual del channel
	inv, err := e.store.Invites().Create(ctx, repository.Invite{
		Code:       "old-owner",
		ChannelID:  ch.ID,
		IssuerID:   "previous-owner",
		Status:     repository.InviteActive,
		ExpireTime: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := e.membership.JoinWithInvite(ctx, "alice", inv.Code, ""); !errors.Is(err, svc.ErrInviteInvalid) {
		t.Fatalf("want ErrInviteInvalid, got %v", err)
	}
}

func TestJoinUnknownChannel(t *testing.T) {
	e := newEnv(t)
	if _, err := e.membership.Join(context.Background(), "alice", "nope", ""); !errors.Is(err, svc.ErrChannelNotFound) {
		t.Fatalf("want ErrChannelNotFound, got %v", err)
	}
}
