package memory

import (
	"context"
	"testing"

	"github.com/dropDatabas3/agora/internal/domain/repository"
)

func TestMembershipConditionalInsert(t *testing.T) {
	ctx := context.Background()
	s := New()

	m := repository.Membership{
		ActorID:     "u1",
		Kind:        repository.ContainerChannel,
		ContainerID: "c1",
		ChannelID:   "c1",
		Role:        repository.RoleMember,
		Status:      repository.StatusJoined,
	}

	first, created, err := s.Memberships().Create(ctx, m)
	if err != nil || !created {
		t.Fatalf("first create: created=%v err=%v", created, err)
	}

	// segundo create con el mismo (actor, kind, container): gana el existente
	m.Status = repository.StatusRequest
	second, created, err := s.Memberships().Create(ctx, m)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if created {
		t.Fatal("second create must not insert")
	}
	if second.ID != first.ID || second.Status != repository.StatusJoined {
		t.Fatalf("expected the original document back, got %+v", second)
	}
}

func TestInviteMarkUsedIsCAS(t *testing.T) {
	ctx := context.Background()
	s := New()

	inv, err := s.Invites().Create(ctx, repository.Invite{
		Code:      "abc",
		ChannelID: "c1",
		IssuerID:  "u1",
		Status:    repository.InviteActive,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.Invites().MarkUsed(ctx, inv.ID); err != nil {
		t.Fatalf("first redemption: %v", err)
	}
	// doble redención: el segundo CAS pierde
	if err := s.Invites().MarkUsed(ctx, inv.ID); !repository.IsConflict(err) {
		t.Fatalf("second redemption: want conflict, got %v", err)
	}
}

func TestDeleteByChannelCascades(t *testing.T) {
	ctx := context.Background()
	s := New()

	mk := func(actor string, kind repository.ContainerKind, container string) {
		t.Helper()
		_, _, err := s.Memberships().Create(ctx, repository.Membership{
			ActorID: actor, Kind: kind, ContainerID: container, ChannelID: "c1",
			Role: repository.RoleMember, Status: repository.StatusJoined,
		})
		if err != nil {
			t.Fatalf("create membership: %v", err)
		}
	}
	mk("u1", repository.ContainerChannel, "c1")
	mk("u2", repository.ContainerChannel, "c1")
	mk("u1", repository.ContainerTopic, "t1")
	mk("u2", repository.ContainerTopic, "t2")

	n, err := s.Memberships().DeleteByChannel(ctx, "c1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 4 {
		t.Fatalf("want 4 deleted, got %d", n)
	}
	if _, err := s.Memberships().Get(ctx, "u1", repository.ContainerTopic, "t1"); !repository.IsNotFound(err) {
		t.Fatalf("topic membership should be gone, got %v", err)
	}
}

func TestListActorTopics(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, c := range []struct {
		actor, container, channel string
	}{
		{"u1", "t1", "c1"},
		{"u1", "t2", "c1"},
		{"u1", "t9", "c2"}, // otro channel, no debe aparecer
		{"u2", "t1", "c1"}, // otro actor
	} {
		_, _, err := s.Memberships().Create(ctx, repository.Membership{
			ActorID: c.actor, Kind: repository.ContainerTopic, ContainerID: c.container,
			ChannelID: c.channel, Role: repository.RoleMember, Status: repository.StatusJoined,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := s.Memberships().ListActorTopics(ctx, "u1", "c1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 topic memberships, got %d", len(got))
	}
}
