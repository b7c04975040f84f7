package channel_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dropDatabas3/agora/internal/bus"
	cachememory "github.com/dropDatabas3/agora/internal/cache/memory"
	"github.com/dropDatabas3/agora/internal/domain/repository"
	svc "github.com/dropDatabas3/agora/internal/http/services/channel"
	storememory "github.com/dropDatabas3/agora/internal/store/memory"
)

// capturePublisher acumula los mensajes publicados para inspección.
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

func (p *capturePublisher) messages() []bus.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]bus.Message, len(p.msgs))
	copy(out, p.msgs)
	return out
}

func (p *capturePublisher) lastKeys() []string {
	msgs := p.messages()
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1].Keys
}

// recordNotifier registra las notificaciones; los services las disparan en
// goroutines, así que los asserts usan polling.
type recordNotifier struct {
	mu       sync.Mutex
	joinReqs []string // owner emails
	accepted []string // actor emails
}

func (n *recordNotifier) SendJoinRequestEmail(_ context.Context, ownerEmail, _, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.joinReqs = append(n.joinReqs, ownerEmail)
	return nil
}

func (n *recordNotifier) SendAcceptedEmail(_ context.Context, actorEmail, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accepted = append(n.accepted, actorEmail)
	return nil
}

func (n *recordNotifier) acceptedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.accepted)
}

func (n *recordNotifier) joinReqCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.joinReqs)
}

type env struct {
	store      *storememory.Store
	pub        *capturePublisher
	notifier   *recordNotifier
	membership svc.MembershipService
	manage     svc.ManageService
	read       svc.ReadService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		store:    storememory.New(),
		pub:      &capturePublisher{},
		notifier: &recordNotifier{},
	}
	deps := svc.Deps{
		Repos:    e.store,
		Cache:    cachememory.New(time.Minute),
		Bus:      e.pub,
		Notifier: e.notifier,
	}
	e.membership = svc.NewMembershipService(deps)
	e.manage = svc.NewManageService(deps)
	e.read = svc.NewReadService(deps)
	return e
}

// seedChannel crea un channel con su owner membership directamente vía repos.
func (e *env) seedChannel(t *testing.T, ownerID string, vis repository.Visibility) *repository.Channel {
	t.Helper()
	ctx := context.Background()
	ch, err := e.store.Channels().Create(ctx, repository.CreateChannelInput{
		OwnerID:    ownerID,
		Name:       "ch-" + ownerID,
		Visibility: vis,
	})
	if err != nil {
		t.Fatalf("seed channel: %v", err)
	}
	_, _, err = e.store.Memberships().Create(ctx, repository.Membership{
		ActorID:     ownerID,
		Kind:        repository.ContainerChannel,
		ContainerID: ch.ID,
		ChannelID:   ch.ID,
		Role:        repository.RoleOwner,
		Status:      repository.StatusJoined,
		Email:       ownerID + "@example.com",
	})
	if err != nil {
		t.Fatalf("seed owner membership: %v", err)
	}
	return ch
}

func (e *env) seedTopic(t *testing.T, ch *repository.Channel, name string, vis repository.Visibility) *repository.Topic {
	t.Helper()
	tp, err := e.store.Topics().Create(context.Background(), repository.CreateTopicInput{
		ChannelID:   ch.ID,
		OwnerID:     ch.OwnerID,
		Name:        name,
		Visibility:  vis,
		Editability: repository.EditabilityAnyone,
	})
	if err != nil {
		t.Fatalf("seed topic: %v", err)
	}
	return tp
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

func hasKey(keys []string, want string) bool {
	for _, k := range keys {
		if k == want {
			return true
		}
	}
	return false
}
