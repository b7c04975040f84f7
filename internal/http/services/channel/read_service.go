package channel

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/dropDatabas3/agora/internal/cache"
	"github.com/dropDatabas3/agora/internal/domain/repository"
	dto "github.com/dropDatabas3/agora/internal/http/dto/channel"
	"github.com/dropDatabas3/agora/internal/metrics"
	"github.com/dropDatabas3/agora/internal/observability/logger"
)

type readService struct {
	deps Deps
}

// NewReadService creates a new ReadService.
func NewReadService(deps Deps) ReadService {
	return &readService{deps: deps}
}

// Get resolves the channel aggregate through both cache tiers: the body and
// the members list are cached under separate keys with separate TTLs, so a
// membership change never forces a re-read of the body.
func (s *readService) Get(ctx context.Context, channelID string) (*dto.Aggregate, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("channel.read"),
		logger.Op("Get"),
		logger.ChannelID(channelID),
	)

	if strings.TrimSpace(channelID) == "" {
		return nil, ErrInvalidInput
	}

	view, err := s.getBody(ctx, channelID)
	if err != nil {
		return nil, err
	}
	members, err := s.getMembers(ctx, channelID)
	if err != nil {
		log.Error("members read failed", logger.Err(err))
		return nil, err
	}

	return &dto.Aggregate{Channel: *view, Members: members}, nil
}

func (s *readService) getBody(ctx context.Context, channelID string) (*dto.View, error) {
	key := cache.ChannelKey(channelID)
	if raw, ok := s.deps.Cache.Get(ctx, key); ok {
		var v dto.View
		if err := json.Unmarshal(raw, &v); err == nil {
			metrics.CacheHits.WithLabelValues("channel").Inc()
			return &v, nil
		}
		// entrada corrupta: se repuebla desde el store
	}
	metrics.CacheMisses.WithLabelValues("channel").Inc()

	ch, err := s.deps.Repos.Channels().GetByID(ctx, channelID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	v := channelView(ch)
	if raw, err := json.Marshal(v); err == nil {
		s.deps.Cache.Set(ctx, key, raw, cache.TTLAggregate)
	}
	return &v, nil
}

func (s *readService) getMembers(ctx context.Context, channelID string) ([]dto.MemberView, error) {
	key := cache.ChannelMembersKey(channelID)
	if raw, ok := s.deps.Cache.Get(ctx, key); ok {
		var out []dto.MemberView
		if err := json.Unmarshal(raw, &out); err == nil {
			metrics.CacheHits.WithLabelValues("channel_members").Inc()
			return out, nil
		}
	}
	metrics.CacheMisses.WithLabelValues("channel_members").Inc()

	ms, err := s.deps.Repos.Memberships().ListByContainer(ctx, repository.ContainerChannel, channelID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MemberView, 0, len(ms))
	for _, m := range ms {
		out = append(out, *memberView(&m))
	}
	if raw, err := json.Marshal(out); err == nil {
		s.deps.Cache.Set(ctx, key, raw, cache.TTLAggregate)
	}
	return out, nil
}

// ListCreatedBy returns the channels an owner created, cached as a list tier
// with the longer list TTL.
func (s *readService) ListCreatedBy(ctx context.Context, ownerID string) ([]dto.View, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("channel.read"),
		logger.Op("ListCreatedBy"),
		logger.ActorID(ownerID),
	)

	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrInvalidInput
	}

	key := cache.ChannelsCreatedKey(ownerID)
	if raw, ok := s.deps.Cache.Get(ctx, key); ok {
		var out []dto.View
		if err := json.Unmarshal(raw, &out); err == nil {
			metrics.CacheHits.WithLabelValues("channels_created").Inc()
			return out, nil
		}
	}
	metrics.CacheMisses.WithLabelValues("channels_created").Inc()

	chs, err := s.deps.Repos.Channels().ListByOwner(ctx, ownerID)
	if err != nil {
		log.Error("owner listing failed", logger.Err(err))
		return nil, err
	}
	out := make([]dto.View, 0, len(chs))
	for _, ch := range chs {
		out = append(out, channelView(&ch))
	}
	if raw, err := json.Marshal(out); err == nil {
		s.deps.Cache.Set(ctx, key, raw, cache.TTLList)
	}
	return out, nil
}
