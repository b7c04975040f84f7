package channel

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/dropDatabas3/agora/internal/bus"
	"github.com/dropDatabas3/agora/internal/cache"
	"github.com/dropDatabas3/agora/internal/domain/repository"
	dto "github.com/dropDatabas3/agora/internal/http/dto/channel"
	"github.com/dropDatabas3/agora/internal/observability/logger"
)

const defaultInviteTTL = 7 * 24 * time.Hour

type manageService struct {
	deps Deps
}

// NewManageService creates a new ManageService.
func NewManageService(deps Deps) ManageService {
	return &manageService{deps: deps}
}

// Create creates the channel plus its owner membership in the same logical
// operation, then invalidates the owner's created-channels list.
func (s *manageService) Create(ctx context.Context, ownerID string, in dto.CreateRequest) (*dto.View, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("channel.manage"),
		logger.Op("Create"),
		logger.ActorID(ownerID),
	)

	name := strings.TrimSpace(in.Name)
	if ownerID == "" || name == "" {
		return nil, ErrInvalidInput
	}
	vis := repository.Visibility(in.Visibility)
	switch vis {
	case repository.VisibilityAnyone, repository.VisibilityInvite:
	case "":
		vis = repository.VisibilityAnyone
	default:
		// "private" es sólo de topics
		return nil, ErrInvalidInput
	}

	ch, err := s.deps.Repos.Channels().Create(ctx, repository.CreateChannelInput{
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Visibility:  vis,
	})
	if err != nil {
		log.Error("channel create failed", logger.Err(err))
		return nil, err
	}

	ownerEmail := ""
	if u, uErr := s.deps.Repos.Users().GetByID(ctx, ownerID); uErr == nil {
		ownerEmail = u.Email
	}
	if _, _, err := s.deps.Repos.Memberships().Create(ctx, repository.Membership{
		ActorID:     ownerID,
		Kind:        repository.ContainerChannel,
		ContainerID: ch.ID,
		ChannelID:   ch.ID,
		Role:        repository.RoleOwner,
		Status:      repository.StatusJoined,
		Email:       ownerEmail,
	}); err != nil {
		log.Error("owner membership create failed", logger.ChannelID(ch.ID), logger.Err(err))
		return nil, err
	}

	bus.Invalidate(ctx, s.deps.Bus, bus.TagChannel, cache.ChannelsCreatedKey(ownerID))
	log.Info("channel created", logger.ChannelID(ch.ID))

	v := channelView(ch)
	return &v, nil
}

// Delete tears the whole container down: channel, topics, every membership.
// The invalidation batch covers the aggregate, both members tiers, the
// owner's created list and every per-topic key.
func (s *manageService) Delete(ctx context.Context, ownerID, channelID string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("channel.manage"),
		logger.Op("Delete"),
		logger.ActorID(ownerID),
		logger.ChannelID(channelID),
	)

	if strings.TrimSpace(ownerID) == "" || strings.TrimSpace(channelID) == "" {
		return ErrInvalidInput
	}

	ch, err := s.deps.Repos.Channels().GetByID(ctx, channelID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrChannelNotFound
		}
		return err
	}
	if ch.OwnerID != ownerID {
		return ErrNotOwner
	}

	topics, err := s.deps.Repos.Topics().ListByChannel(ctx, channelID)
	if err != nil {
		log.Error("topic listing failed", logger.Err(err))
		return err
	}

	if _, err := s.deps.Repos.Memberships().DeleteByChannel(ctx, channelID); err != nil {
		log.Error("membership cascade delete failed", logger.Err(err))
		return err
	}
	if _, err := s.deps.Repos.Topics().DeleteByChannel(ctx, channelID); err != nil {
		log.Error("topic cascade delete failed", logger.Err(err))
		return err
	}
	if err := s.deps.Repos.Channels().Delete(ctx, channelID); err != nil && !repository.IsNotFound(err) {
		log.Error("channel delete failed", logger.Err(err))
		return err
	}

	keys := []string{
		cache.ChannelKey(channelID),
		cache.ChannelMembersKey(channelID),
		cache.ChannelsCreatedKey(ownerID),
		cache.TopicsOfChannelKey(channelID),
	}
	for _, t := range topics {
		keys = append(keys, cache.TopicKey(t.ID), cache.TopicMembersKey(t.ID))
	}

	bus.Invalidate(ctx, s.deps.Bus, bus.TagChannel, keys...)
	log.Info("channel deleted", logger.Count(len(topics)))
	return nil
}

// CreateInvite issues a single-use code bound to the current owner.
func (s *manageService) CreateInvite(ctx context.Context, ownerID, channelID string, ttl time.Duration) (*dto.InviteView, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("channel.manage"),
		logger.Op("CreateInvite"),
		logger.ActorID(ownerID),
		logger.ChannelID(channelID),
	)

	if strings.TrimSpace(ownerID) == "" || strings.TrimSpace(channelID) == "" {
		return nil, ErrInvalidInput
	}
	if ttl <= 0 {
		ttl = defaultInviteTTL
	}

	ch, err := s.deps.Repos.Channels().GetByID(ctx, channelID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	if ch.OwnerID != ownerID {
		return nil, ErrNotOwner
	}

	inv, err := s.deps.Repos.Invites().Create(ctx, repository.Invite{
		Code:       newInviteCode(),
		ChannelID:  channelID,
		IssuerID:   ownerID,
		Status:     repository.InviteActive,
		ExpireTime: time.Now().Add(ttl).UTC(),
	})
	if err != nil {
		log.Error("invite create failed", logger.Err(err))
		return nil, err
	}

	log.Info("invite issued")
	return &dto.InviteView{
		Code:       inv.Code,
		ChannelID:  inv.ChannelID,
		ExpireTime: inv.ExpireTime,
	}, nil
}

func newInviteCode() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func channelView(ch *repository.Channel) dto.View {
	return dto.View{
		ID:          ch.ID,
		OwnerID:     ch.OwnerID,
		Name:        ch.Name,
		Description: ch.Description,
		ImageURL:    ch.ImageURL,
		Visibility:  string(ch.Visibility),
		CreatedAt:   ch.CreatedAt,
	}
}
