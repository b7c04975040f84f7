// Package memory implementa los repositorios en memoria.
// Para dev y tests; replica la semántica del store mongo, incluido el
// conditional insert de memberships.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dropDatabas3/agora/internal/domain/repository"
	"github.com/google/uuid"
)

// Store implementa repository.Repositories.
type Store struct {
	mu          sync.RWMutex
	channels    map[string]repository.Channel
	topics      map[string]repository.Topic
	memberships map[string]repository.Membership // por ID
	invites     map[string]repository.Invite     // por ID
	users       map[string]repository.User
}

func New() *Store {
	return &Store{
		channels:    make(map[string]repository.Channel),
		topics:      make(map[string]repository.Topic),
		memberships: make(map[string]repository.Membership),
		invites:     make(map[string]repository.Invite),
		users:       make(map[string]repository.User),
	}
}

func (s *Store) Channels() repository.ChannelRepository       { return (*channelRepo)(s) }
func (s *Store) Topics() repository.TopicRepository           { return (*topicRepo)(s) }
func (s *Store) Memberships() repository.MembershipRepository { return (*membershipRepo)(s) }
func (s *Store) Invites() repository.InviteRepository         { return (*inviteRepo)(s) }
func (s *Store) Users() repository.UserRepository             { return (*userRepo)(s) }

// ─── Channels ───

type channelRepo Store

func (r *channelRepo) GetByID(_ context.Context, id string) (*repository.Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.channels[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *channelRepo) ListByOwner(_ context.Context, ownerID string) ([]repository.Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []repository.Channel
	for _, c := range r.channels {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sortByCreated(out, func(c repository.Channel) time.Time { return c.CreatedAt })
	return out, nil
}

func (r *channelRepo) Create(_ context.Context, in repository.CreateChannelInput) (*repository.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	c := repository.Channel{
		ID:          uuid.NewString(),
		OwnerID:     in.OwnerID,
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Visibility:  in.Visibility,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.channels[c.ID] = c
	return &c, nil
}

func (r *channelRepo) Update(_ context.Context, id string, name, description, imageURL *string) (*repository.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.channels[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if name != nil {
		c.Name = *name
	}
	if description != nil {
		c.Description = *description
	}
	if imageURL != nil {
		c.ImageURL = *imageURL
	}
	c.UpdatedAt = time.Now().UTC()
	r.channels[id] = c
	return &c, nil
}

func (r *channelRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.channels[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.channels, id)
	return nil
}

// ─── Topics ───

type topicRepo Store

func (r *topicRepo) GetByID(_ context.Context, id string) (*repository.Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.topics[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *topicRepo) ListByChannel(_ context.Context, channelID string) ([]repository.Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []repository.Topic
	for _, t := range r.topics {
		if t.ChannelID == channelID {
			out = append(out, t)
		}
	}
	sortByCreated(out, func(t repository.Topic) time.Time { return t.CreatedAt })
	return out, nil
}

func (r *topicRepo) Create(_ context.Context, in repository.CreateTopicInput) (*repository.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := repository.Topic{
		ID:          uuid.NewString(),
		ChannelID:   in.ChannelID,
		OwnerID:     in.OwnerID,
		Name:        in.Name,
		Description: in.Description,
		Visibility:  in.Visibility,
		Editability: in.Editability,
		CreatedAt:   time.Now().UTC(),
	}
	r.topics[t.ID] = t
	return &t, nil
}

func (r *topicRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.topics[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.topics, id)
	return nil
}

func (r *topicRepo) DeleteByChannel(_ context.Context, channelID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, t := range r.topics {
		if t.ChannelID == channelID {
			delete(r.topics, id)
			n++
		}
	}
	return n, nil
}

// ─── Memberships ───

type membershipRepo Store

func (r *membershipRepo) find(actorID string, kind repository.ContainerKind, containerID string) (repository.Membership, bool) {
	for _, m := range r.memberships {
		if m.ActorID == actorID && m.Kind == kind && m.ContainerID == containerID {
			return m, true
		}
	}
	return repository.Membership{}, false
}

func (r *membershipRepo) Get(_ context.Context, actorID string, kind repository.ContainerKind, containerID string) (*repository.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.find(actorID, kind, containerID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r *membershipRepo) ListByContainer(_ context.Context, kind repository.ContainerKind, containerID string) ([]repository.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []repository.Membership
	for _, m := range r.memberships {
		if m.Kind == kind && m.ContainerID == containerID {
			out = append(out, m)
		}
	}
	sortByCreated(out, func(m repository.Membership) time.Time { return m.JoinedAt })
	return out, nil
}

func (r *membershipRepo) ListActorTopics(_ context.Context, actorID, channelID string) ([]repository.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []repository.Membership
	for _, m := range r.memberships {
		if m.ActorID == actorID && m.Kind == repository.ContainerTopic && m.ChannelID == channelID {
			out = append(out, m)
		}
	}
	sortByCreated(out, func(m repository.Membership) time.Time { return m.JoinedAt })
	return out, nil
}

func (r *membershipRepo) Create(_ context.Context, m repository.Membership) (*repository.Membership, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// conditional insert: si ya existe, retornar el documento existente
	if existing, ok := r.find(m.ActorID, m.Kind, m.ContainerID); ok {
		return &existing, false, nil
	}
	m.ID = uuid.NewString()
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	r.memberships[m.ID] = m
	return &m, true, nil
}

func (r *membershipRepo) UpdateStatus(_ context.Context, id string, status repository.MemberStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memberships[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.Status = status
	r.memberships[id] = m
	return nil
}

func (r *membershipRepo) Delete(_ context.Context, actorID string, kind repository.ContainerKind, containerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.find(actorID, kind, containerID)
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.memberships, m.ID)
	return nil
}

func (r *membershipRepo) DeleteByContainer(_ context.Context, kind repository.ContainerKind, containerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, m := range r.memberships {
		if m.Kind == kind && m.ContainerID == containerID {
			delete(r.memberships, id)
			n++
		}
	}
	return n, nil
}

func (r *membershipRepo) DeleteByChannel(_ context.Context, channelID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, m := range r.memberships {
		if m.ChannelID == channelID {
			delete(r.memberships, id)
			n++
		}
	}
	return n, nil
}

// ─── Invites ───

type inviteRepo Store

func (r *inviteRepo) GetByCode(_ context.Context, code string) (*repository.Invite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, inv := range r.invites {
		if inv.Code == code {
			out := inv
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *inviteRepo) Create(_ context.Context, inv repository.Invite) (*repository.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv.ID = uuid.NewString()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	r.invites[inv.ID] = inv
	return &inv, nil
}

func (r *inviteRepo) MarkUsed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invites[id]
	if !ok {
		return repository.ErrNotFound
	}
	if inv.Status != repository.InviteActive {
		return repository.ErrConflict
	}
	inv.Status = repository.InviteUsed
	r.invites[id] = inv
	return nil
}

// ─── Users ───

type userRepo Store

func (r *userRepo) GetByID(_ context.Context, id string) (*repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) Create(_ context.Context, u repository.User) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.users[u.ID] = u
	return &u, nil
}

// sortByCreated ordena por timestamp ascendente para listados estables.
func sortByCreated[T any](xs []T, at func(T) time.Time) {
	sort.SliceStable(xs, func(i, j int) bool { return at(xs[i]).Before(at(xs[j])) })
}
