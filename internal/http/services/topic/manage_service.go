package topic

import (
	"context"
	"strings"

	"github.com/dropDatabas3/agora/internal/bus"
	"github.com/dropDatabas3/agora/internal/cache"
	"github.com/dropDatabas3/agora/internal/domain/repository"
	dto "github.com/dropDatabas3/agora/internal/http/dto/topic"
	"github.com/dropDatabas3/agora/internal/observability/logger"
)

type manageService struct {
	deps Deps
}

// NewManageService creates a new ManageService.
func NewManageService(deps Deps) ManageService {
	return &manageService{deps: deps}
}

// Create creates the topic under the actor's channel plus the creator's
// owner membership, then invalidates the channel's topic listing.
func (s *manageService) Create(ctx context.Context, actorID string, in dto.CreateRequest) (*dto.View, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("topic.manage"),
		logger.Op("Create"),
		logger.ActorID(actorID),
		logger.ChannelID(in.ChannelID),
	)

	name := strings.TrimSpace(in.Name)
	if strings.TrimSpace(actorID) == "" || strings.TrimSpace(in.ChannelID) == "" || name == "" {
		return nil, ErrInvalidInput
	}
	vis := repository.Visibility(in.Visibility)
	switch vis {
	case repository.VisibilityAnyone, repository.VisibilityInvite, repository.VisibilityPrivate:
	case "":
		vis = repository.VisibilityAnyone
	default:
		return nil, ErrInvalidInput
	}
	edit := repository.Editability(in.Editability)
	switch edit {
	case repository.EditabilityAnyone, repository.EditabilityOwner:
	case "":
		edit = repository.EditabilityAnyone
	default:
		return nil, ErrInvalidInput
	}

	if _, err := s.deps.Repos.Channels().GetByID(ctx, in.ChannelID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidInput
		}
		return nil, err
	}

	chM, err := s.deps.Repos.Memberships().Get(ctx, actorID, repository.ContainerChannel, in.ChannelID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotInChannel
		}
		return nil, err
	}
	if chM.Status != repository.StatusJoined {
		return nil, ErrNotInChannel
	}

	t, err := s.deps.Repos.Topics().Create(ctx, repository.CreateTopicInput{
		ChannelID:   in.ChannelID,
		OwnerID:     actorID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Visibility:  vis,
		Editability: edit,
	})
	if err != nil {
		log.Error("topic create failed", logger.Err(err))
		return nil, err
	}

	if _, _, err := s.deps.Repos.Memberships().Create(ctx, repository.Membership{
		ActorID:     actorID,
		Kind:        repository.ContainerTopic,
		ContainerID: t.ID,
		ChannelID:   t.ChannelID,
		Role:        repository.RoleOwner,
		Status:      repository.StatusJoined,
		Email:       chM.Email,
	}); err != nil {
		log.Error("owner membership create failed", logger.TopicID(t.ID), logger.Err(err))
		return nil, err
	}

	bus.Invalidate(ctx, s.deps.Bus, bus.TagTopic, cache.TopicsOfChannelKey(t.ChannelID))
	log.Info("topic created", logger.TopicID(t.ID))

	v := topicView(t)
	return &v, nil
}

// Delete removes the topic and every membership in it. Topic owner only.
func (s *manageService) Delete(ctx context.Context, ownerID, topicID string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("topic.manage"),
		logger.Op("Delete"),
		logger.ActorID(ownerID),
		logger.TopicID(topicID),
	)

	if strings.TrimSpace(ownerID) == "" || strings.TrimSpace(topicID) == "" {
		return ErrInvalidInput
	}

	t, err := s.deps.Repos.Topics().GetByID(ctx, topicID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrTopicNotFound
		}
		return err
	}
	if t.OwnerID != ownerID {
		return ErrNotOwner
	}

	if _, err := s.deps.Repos.Memberships().DeleteByContainer(ctx, repository.ContainerTopic, topicID); err != nil {
		log.Error("membership cascade delete failed", logger.Err(err))
		return err
	}
	if err := s.deps.Repos.Topics().Delete(ctx, topicID); err != nil && !repository.IsNotFound(err) {
		log.Error("topic delete failed", logger.Err(err))
		return err
	}

	bus.Invalidate(ctx, s.deps.Bus, bus.TagTopic,
		cache.TopicKey(topicID),
		cache.TopicMembersKey(topicID),
		cache.TopicsOfChannelKey(t.ChannelID),
	)
	log.Info("topic deleted")
	return nil
}

func topicView(t *repository.Topic) dto.View {
	return dto.View{
		ID:          t.ID,
		ChannelID:   t.ChannelID,
		OwnerID:     t.OwnerID,
		Name:        t.Name,
		Description: t.Description,
		Visibility:  string(t.Visibility),
		Editability: string(t.Editability),
		CreatedAt:   t.CreatedAt,
	}
}
