package topic_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dropDatabas3/agora/internal/bus"
	"github.com/dropDatabas3/agora/internal/cache"
	cachememory "github.com/dropDatabas3/agora/internal/cache/memory"
	"github.com/dropDatabas3/agora/internal/domain/repository"
	dto "github.com/dropDatabas3/agora/internal/http/dto/topic"
	svc "github.com/dropDatabas3/agora/internal/http/services/topic"
	storememory "github.com/dropDatabas3/agora/internal/store/memory"
)

type capturePublisher struct {
	mu   sync.Mutex
	msgs []bus.Message
}

func (p *capturePublisher) Publish(_ context.Context, m bus.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, m)
	return nil
}

func (p *capturePublisher) lastKeys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.msgs) == 0 {
		return nil
	}
	return p.msgs[len(p.msgs)-1].Keys
}

type env struct {
	store      *storememory.Store
	pub        *capturePublisher
	membership svc.MembershipService
	manage     svc.ManageService
	read       svc.ReadService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{store: storememory.New(), pub: &capturePublisher{}}
	deps := svc.Deps{Repos: e.store, Cache: cachememory.New(time.Minute), Bus: e.pub}
	e.membership = svc.NewMembershipService(deps)
	e.manage = svc.NewManageService(deps)
	e.read = svc.NewReadService(deps)
	return e
}

// seed crea channel + owner membership y une a los actores dados.
func (e *env) seed(t *testing.T, joined ...string) *repository.Channel {
	t.Helper()
	ctx := context.Background()
	ch, err := e.store.Channels().Create(ctx, repository.CreateChannelInput{
		OwnerID: "owner", Name: "general", Visibility: repository.VisibilityAnyone,
	})
	if err != nil {
		t.Fatalf("seed channel: %v", err)
	}
	for _, actor := range append([]string{"owner"}, joined...) {
		role := repository.RoleMember
		if actor == "owner" {
			role = repository.RoleOwner
		}
		if _, _, err := e.store.Memberships().Create(ctx, repository.Membership{
			ActorID: actor, Kind: repository.ContainerChannel, ContainerID: ch.ID,
			ChannelID: ch.ID, Role: role, Status: repository.StatusJoined,
		}); err != nil {
			t.Fatalf("seed membership %s: %v", actor, err)
		}
	}
	return ch
}

func hasKey(keys []string, want string) bool {
	for _, k := range keys {
		if k == want {
			return true
		}
	}
	return false
}

func TestCreateRequiresChannelMembership(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ch := e.seed(t, "alice")

	req := dto.CreateRequest{ChannelID: ch.ID, Name: "random", Visibility: "anyone"}

	if _, err := e.manage.Create(ctx, "stranger", req); !errors.Is(err, svc.ErrNotInChannel) {
		t.Fatalf("want ErrNotInChannel, got %v", err)
	}

	view, err := e.manage.Create(ctx, "alice", req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// el creador queda como owner del topic
	m, err := e.store.Memberships().Get(ctx, "alice", repository.ContainerTopic, view.ID)
	if err != nil || m.Role != repository.RoleOwner {
		t.Fatalf("creator membership: %+v err=%v", m, err)
	}
	if !hasKey(e.pub.lastKeys(), cache.TopicsOfChannelKey(ch.ID)) {
		t.Fatalf("topic listing not invalidated: %v", e.pub.lastKeys())
	}
}

func TestJoinRequiresJoinedChannelMembership(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ch := e.seed(t, "alice")
	tp, err := e.manage.Create(ctx, "owner", dto.CreateRequest{ChannelID: ch.ID, Name: "random"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := e.membership.Join(ctx, "stranger", tp.ID, ""); !errors.Is(err, svc.ErrNotInChannel) {
		t.Fatalf("want ErrNotInChannel, got %v", err)
	}

	res, err := e.membership.Join(ctx, "alice", tp.ID, "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if !res.Success || res.JoinStatus != "joined" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestJoinPendingChannelRequestIsNotEnough(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ch := e.seed(t)
	tp, err := e.manage.Create(ctx, "owner", dto.CreateRequest{ChannelID: ch.ID, Name: "random"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// membership de channel en request, no joined
	if _, _, err := e.store.Memberships().Create(ctx, repository.Membership{
		ActorID: "bob", Kind: repository.ContainerChannel, ContainerID: ch.ID,
		ChannelID: ch.ID, Role: repository.RoleMember, Status: repository.StatusRequest,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := e.membership.Join(ctx, "bob", tp.ID, ""); !errors.Is(err, svc.ErrNotInChannel) {
		t.Fatalf("want ErrNotInChannel, got %v", err)
	}
}

func TestJoinInviteTopicCreatesRequestAndAcceptFlow(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ch := e.seed(t, "alice")
	tp, err := e.manage.Create(ctx, "owner", dto.CreateRequest{ChannelID: ch.ID, Name: "staff", Visibility: "invite"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := e.membership.Join(ctx, "alice", tp.ID, "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if !res.Success || res.JoinStatus != "request" {
		t.Fatalf("unexpected result: %+v", res)
	}

	if err := e.membership.Accept(ctx, "owner", tp.ID, "alice"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	m, _ := e.store.Memberships().Get(ctx, "alice", repository.ContainerTopic, tp.ID)
	if m.Status != repository.StatusJoined {
		t.Fatalf("status: %s", m.Status)
	}
}

func TestJoinPrivateTopicIsRejected(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ch := e.seed(t, "alice")
	tp, err := e.manage.Create(ctx, "owner", dto.CreateRequest{ChannelID: ch.ID, Name: "paid", Visibility: "private"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := e.membership.Join(ctx, "alice", tp.ID, "")
	if err != nil {
		t.Fatalf("private join must not error: %v", err)
	}
	if res.Success {
		t.Fatalf("private join must be rejected: %+v", res)
	}
}

func TestLeaveTopicKeepsChannelMembership(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ch := e.seed(t, "alice")
	tp, err := e.manage.Create(ctx, "owner", dto.CreateRequest{ChannelID: ch.ID, Name: "random"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := e.membership.Join(ctx, "alice", tp.ID, ""); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := e.membership.Leave(ctx, "alice", tp.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if _, err := e.store.Memberships().Get(ctx, "alice", repository.ContainerTopic, tp.ID); !repository.IsNotFound(err) {
		t.Fatal("topic membership should be gone")
	}
	if _, err := e.store.Memberships().Get(ctx, "alice", repository.ContainerChannel, ch.ID); err != nil {
		t.Fatalf("channel membership must survive: %v", err)
	}
}

func TestDeleteTopic(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ch := e.seed(t, "alice")
	tp, err := e.manage.Create(ctx, "owner", dto.CreateRequest{ChannelID: ch.ID, Name: "random"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := e.manage.Delete(ctx, "alice", tp.ID); !errors.Is(err, svc.ErrNotOwner) {
		t.Fatalf("non-owner delete: want ErrNotOwner, got %v", err)
	}

	if err := e.manage.Delete(ctx, "owner", tp.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := e.store.Topics().GetByID(ctx, tp.ID); !repository.IsNotFound(err) {
		t.Fatal("topic should be gone")
	}

	keys := e.pub.lastKeys()
	for _, want := range []string{
		cache.TopicKey(tp.ID),
		cache.TopicMembersKey(tp.ID),
		cache.TopicsOfChannelKey(ch.ID),
	} {
		if !hasKey(keys, want) {
			t.Fatalf("delete batch missing %s: %v", want, keys)
		}
	}
}

func TestListByChannelIsCached(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ch := e.seed(t)
	if _, err := e.manage.Create(ctx, "owner", dto.CreateRequest{ChannelID: ch.ID, Name: "a"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := e.read.ListByChannel(ctx, ch.ID)
	if err != nil || len(first) != 1 {
		t.Fatalf("list: n=%d err=%v", len(first), err)
	}

	// alta por debajo del cache: el listado sigue sirviendo la versión vieja
	if _, err := e.store.Topics().Create(ctx, repository.CreateTopicInput{
		ChannelID: ch.ID, OwnerID: "owner", Name: "b",
		Visibility: repository.VisibilityAnyone, Editability: repository.EditabilityAnyone,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := e.read.ListByChannel(ctx, ch.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("second list must be a cache hit, got %d entries", len(second))
	}
}
