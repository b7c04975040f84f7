// Package user contiene el read path de perfiles de usuario.
package user

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/dropDatabas3/agora/internal/cache"
	"github.com/dropDatabas3/agora/internal/domain/repository"
	dto "github.com/dropDatabas3/agora/internal/http/dto/user"
	"github.com/dropDatabas3/agora/internal/metrics"
	"github.com/dropDatabas3/agora/internal/observability/logger"
)

// ReadService define el read path cacheado de usuarios.
type ReadService interface {
	// Get retorna el perfil, read-through bajo user:<id>.
	Get(ctx context.Context, id string) (*dto.View, error)
}

// Deps contains dependencies for the user service.
type Deps struct {
	Repos repository.Repositories
	Cache cache.Cache
}

// User service errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUserNotFound = errors.New("user not found")
)

type readService struct {
	deps Deps
}

// NewReadService creates a new ReadService.
func NewReadService(deps Deps) ReadService {
	return &readService{deps: deps}
}

func (s *readService) Get(ctx context.Context, id string) (*dto.View, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("user.read"),
		logger.Op("Get"),
		logger.UserID(id),
	)

	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}

	key := cache.UserKey(id)
	if raw, ok := s.deps.Cache.Get(ctx, key); ok {
		var v dto.View
		if err := json.Unmarshal(raw, &v); err == nil {
			metrics.CacheHits.WithLabelValues("user").Inc()
			return &v, nil
		}
	}
	metrics.CacheMisses.WithLabelValues("user").Inc()

	u, err := s.deps.Repos.Users().GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		log.Error("user lookup failed", logger.Err(err))
		return nil, err
	}

	v := dto.View{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
	if raw, err := json.Marshal(v); err == nil {
		s.deps.Cache.Set(ctx, key, raw, cache.TTLAggregate)
	}
	return &v, nil
}
