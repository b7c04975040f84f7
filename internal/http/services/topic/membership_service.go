package topic

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/dropDatabas3/agora/internal/bus"
	"github.com/dropDatabas3/agora/internal/cache"
	"github.com/dropDatabas3/agora/internal/domain/repository"
	dto "github.com/dropDatabas3/agora/internal/http/dto/topic"
	"github.com/dropDatabas3/agora/internal/observability/logger"
)

type membershipService struct {
	deps Deps
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(deps Deps) MembershipService {
	return &membershipService{deps: deps}
}

// Join nests topic membership inside the channel membership: the actor must
// already be joined in the parent channel, then the topic's own visibility
// decides joined/request/rejected.
func (s *membershipService) Join(ctx context.Context, actorID, topicID, actorEmail string) (*dto.JoinResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("topic.membership"),
		logger.Op("Join"),
		logger.ActorID(actorID),
		logger.TopicID(topicID),
	)

	if strings.TrimSpace(actorID) == "" || strings.TrimSpace(topicID) == "" {
		return nil, ErrInvalidInput
	}

	t, err := s.deps.Repos.Topics().GetByID(ctx, topicID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrTopicNotFound
		}
		log.Error("topic lookup failed", logger.Err(err))
		return nil, err
	}

	chM, err := s.deps.Repos.Memberships().Get(ctx, actorID, repository.ContainerChannel, t.ChannelID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotInChannel
		}
		return nil, err
	}
	if chM.Status != repository.StatusJoined {
		return nil, ErrNotInChannel
	}

	switch t.Visibility {
	case repository.VisibilityAnyone:
		return s.joinDirect(ctx, t, actorID, actorEmail, log)
	case repository.VisibilityInvite:
		return s.joinByRequest(ctx, t, actorID, actorEmail, log)
	default:
		// private (paid): el alta pasa por el flujo de pago, no por acá
		log.Debug("join rejected, topic is private")
		return &dto.JoinResult{Success: false, Message: "this topic is private"}, nil
	}
}

func (s *membershipService) joinDirect(ctx context.Context, t *repository.Topic, actorID, actorEmail string, log *zap.Logger) (*dto.JoinResult, error) {
	m, created, err := s.deps.Repos.Memberships().Create(ctx, repository.Membership{
		ActorID:     actorID,
		Kind:        repository.ContainerTopic,
		ContainerID: t.ID,
		ChannelID:   t.ChannelID,
		Role:        repository.RoleMember,
		Status:      repository.StatusJoined,
		Email:       actorEmail,
	})
	if err != nil {
		log.Error("membership create failed", logger.Err(err))
		return nil, err
	}
	if !created {
		return existingJoinResult(m), nil
	}

	bus.Invalidate(ctx, s.deps.Bus, bus.TagTopic, cache.TopicMembersKey(t.ID))
	log.Info("actor joined topic")

	return &dto.JoinResult{Success: true, JoinStatus: "joined", Membership: memberView(m)}, nil
}

func (s *membershipService) joinByRequest(ctx context.Context, t *repository.Topic, actorID, actorEmail string, log *zap.Logger) (*dto.JoinResult, error) {
	m, created, err := s.deps.Repos.Memberships().Create(ctx, repository.Membership{
		ActorID:     actorID,
		Kind:        repository.ContainerTopic,
		ContainerID: t.ID,
		ChannelID:   t.ChannelID,
		Role:        repository.RoleMember,
		Status:      repository.StatusRequest,
		Email:       actorEmail,
	})
	if err != nil {
		log.Error("membership create failed", logger.Err(err))
		return nil, err
	}
	if !created {
		return existingJoinResult(m), nil
	}

	bus.Invalidate(ctx, s.deps.Bus, bus.TagTopic, cache.TopicMembersKey(t.ID))
	log.Info("join request created")

	return &dto.JoinResult{
		Success:    true,
		JoinStatus: "request",
		Message:    "wait for approval",
		Membership: memberView(m),
	}, nil
}

// Accept transitions request→joined. Topic owner only.
func (s *membershipService) Accept(ctx context.Context, ownerID, topicID, actorID string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("topic.membership"),
		logger.Op("Accept"),
		logger.TopicID(topicID),
		logger.ActorID(actorID),
	)

	m, err := s.pendingRequest(ctx, ownerID, topicID, actorID)
	if err != nil {
		return err
	}

	if err := s.deps.Repos.Memberships().UpdateStatus(ctx, m.ID, repository.StatusJoined); err != nil {
		if repository.IsNotFound(err) {
			return ErrMemberNotFound
		}
		log.Error("status update failed", logger.Err(err))
		return err
	}

	bus.Invalidate(ctx, s.deps.Bus, bus.TagTopic, cache.TopicMembersKey(topicID))
	log.Info("join request accepted")
	return nil
}

// Decline transitions request→none. Topic owner only.
func (s *membershipService) Decline(ctx context.Context, ownerID, topicID, actorID string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("topic.membership"),
		logger.Op("Decline"),
		logger.TopicID(topicID),
		logger.ActorID(actorID),
	)

	if _, err := s.pendingRequest(ctx, ownerID, topicID, actorID); err != nil {
		return err
	}

	if err := s.deps.Repos.Memberships().Delete(ctx, actorID, repository.ContainerTopic, topicID); err != nil {
		if repository.IsNotFound(err) {
			return ErrMemberNotFound
		}
		log.Error("membership delete failed", logger.Err(err))
		return err
	}

	bus.Invalidate(ctx, s.deps.Bus, bus.TagTopic, cache.TopicMembersKey(topicID))
	log.Info("join request declined")
	return nil
}

func (s *membershipService) pendingRequest(ctx context.Context, ownerID, topicID, actorID string) (*repository.Membership, error) {
	if strings.TrimSpace(ownerID) == "" || strings.TrimSpace(topicID) == "" || strings.TrimSpace(actorID) == "" {
		return nil, ErrInvalidInput
	}

	t, err := s.deps.Repos.Topics().GetByID(ctx, topicID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}
	if t.OwnerID != ownerID {
		return nil, ErrNotOwner
	}

	m, err := s.deps.Repos.Memberships().Get(ctx, actorID, repository.ContainerTopic, topicID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	if m.Role == repository.RoleOwner || m.Status != repository.StatusRequest {
		return nil, ErrNoPendingJoin
	}
	return m, nil
}

// Leave removes the actor's topic membership. Leaving a topic never touches
// the channel membership.
func (s *membershipService) Leave(ctx context.Context, actorID, topicID string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("topic.membership"),
		logger.Op("Leave"),
		logger.ActorID(actorID),
		logger.TopicID(topicID),
	)

	if strings.TrimSpace(actorID) == "" || strings.TrimSpace(topicID) == "" {
		return ErrInvalidInput
	}

	m, err := s.deps.Repos.Memberships().Get(ctx, actorID, repository.ContainerTopic, topicID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrMemberNotFound
		}
		return err
	}
	if m.Role == repository.RoleOwner {
		// el owner no abandona su propio topic: lo borra
		return ErrNotOwner
	}

	if err := s.deps.Repos.Memberships().Delete(ctx, actorID, repository.ContainerTopic, topicID); err != nil {
		if repository.IsNotFound(err) {
			return ErrMemberNotFound
		}
		log.Error("membership delete failed", logger.Err(err))
		return err
	}

	bus.Invalidate(ctx, s.deps.Bus, bus.TagTopic, cache.TopicMembersKey(topicID))
	log.Info("actor left topic")
	return nil
}

// existingJoinResult aplica el tie-break del doble join.
func existingJoinResult(m *repository.Membership) *dto.JoinResult {
	if m.Status == repository.StatusJoined {
		return &dto.JoinResult{Success: true, JoinStatus: "already", Membership: memberView(m)}
	}
	return &dto.JoinResult{Success: false, JoinStatus: "request", Message: "wait for approval"}
}

func memberView(m *repository.Membership) *dto.MemberView {
	return &dto.MemberView{
		ActorID:  m.ActorID,
		Role:     string(m.Role),
		Status:   string(m.Status),
		JoinedAt: m.JoinedAt,
	}
}
