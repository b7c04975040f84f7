package topic

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/dropDatabas3/agora/internal/cache"
	"github.com/dropDatabas3/agora/internal/domain/repository"
	dto "github.com/dropDatabas3/agora/internal/http/dto/topic"
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

// Get resolves the topic aggregate through both cache tiers.
func (s *readService) Get(ctx context.Context, topicID string) (*dto.Aggregate, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("topic.read"),
		logger.Op("Get"),
		logger.TopicID(topicID),
	)

	if strings.TrimSpace(topicID) == "" {
		return nil, ErrInvalidInput
	}

	view, err := s.getBody(ctx, topicID)
	if err != nil {
		return nil, err
	}
	members, err := s.getMembers(ctx, topicID)
	if err != nil {
		log.Error("members read failed", logger.Err(err))
		return nil, err
	}

	return &dto.Aggregate{Topic: *view, Members: members}, nil
}

func (s *readService) getBody(ctx context.Context, topicID string) (*dto.View, error) {
	key := cache.TopicKey(topicID)
	if raw, ok := s.deps.Cache.Get(ctx, key); ok {
		var v dto.View
		if err := json.Unmarshal(raw, &v); err == nil {
			metrics.CacheHits.WithLabelValues("topic").Inc()
			return &v, nil
		}
	}
	metrics.CacheMisses.WithLabelValues("topic").Inc()

	t, err := s.deps.Repos.Topics().GetByID(ctx, topicID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}
	v := topicView(t)
	if raw, err := json.Marshal(v); err == nil {
		s.deps.Cache.Set(ctx, key, raw, cache.TTLAggregate)
	}
	return &v, nil
}

func (s *readService) getMembers(ctx context.Context, topicID string) ([]dto.MemberView, error) {
	key := cache.TopicMembersKey(topicID)
	if raw, ok := s.deps.Cache.Get(ctx, key); ok {
		var out []dto.MemberView
		if err := json.Unmarshal(raw, &out); err == nil {
			metrics.CacheHits.WithLabelValues("topic_members").Inc()
			return out, nil
		}
	}
	metrics.CacheMisses.WithLabelValues("topic_members").Inc()

	ms, err := s.deps.Repos.Memberships().ListByContainer(ctx, repository.ContainerTopic, topicID)
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

// ListByChannel lists a channel's topics, cached under the channel-scoped
// listing key so topic create/delete invalidates the whole list at once.
func (s *readService) ListByChannel(ctx context.Context, channelID string) ([]dto.View, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("topic.read"),
		logger.Op("ListByChannel"),
		logger.ChannelID(channelID),
	)

	if strings.TrimSpace(channelID) == "" {
		return nil, ErrInvalidInput
	}

	key := cache.TopicsOfChannelKey(channelID)
	if raw, ok := s.deps.Cache.Get(ctx, key); ok {
		var out []dto.View
		if err := json.Unmarshal(raw, &out); err == nil {
			metrics.CacheHits.WithLabelValues("topics_channel").Inc()
			return out, nil
		}
	}
	metrics.CacheMisses.WithLabelValues("topics_channel").Inc()

	ts, err := s.deps.Repos.Topics().ListByChannel(ctx, channelID)
	if err != nil {
		log.Error("topic listing failed", logger.Err(err))
		return nil, err
	}
	out := make([]dto.View, 0, len(ts))
	for _, t := range ts {
		out = append(out, topicView(&t))
	}
	if raw, err := json.Marshal(out); err == nil {
		s.deps.Cache.Set(ctx, key, raw, cache.TTLAggregate)
	}
	return out, nil
}
