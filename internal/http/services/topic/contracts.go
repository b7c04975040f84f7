// Package topic contiene los services del aggregate topic. La membership de
// un topic siempre está anidada en la del channel padre: nadie se une a un
// topic sin estar joined en el channel.
package topic

import (
	"context"
	"errors"

	"github.com/dropDatabas3/agora/internal/bus"
	"github.com/dropDatabas3/agora/internal/cache"
	"github.com/dropDatabas3/agora/internal/domain/repository"
	dto "github.com/dropDatabas3/agora/internal/http/dto/topic"
)

// MembershipService define las transiciones de membership de un topic.
type MembershipService interface {
	// Join intenta unir al actor según la visibility del topic. Requiere
	// membership joined en el channel padre.
	Join(ctx context.Context, actorID, topicID, actorEmail string) (*dto.JoinResult, error)

	// Accept aprueba un join request pendiente. Sólo el owner del topic.
	Accept(ctx context.Context, ownerID, topicID, actorID string) error

	// Decline rechaza un join request pendiente. Sólo el owner del topic.
	Decline(ctx context.Context, ownerID, topicID, actorID string) error

	// Leave elimina la membership del actor en el topic.
	Leave(ctx context.Context, actorID, topicID string) error
}

// ManageService define el ciclo de vida del topic.
type ManageService interface {
	// Create crea el topic y la membership owner del creador. El creador
	// debe estar joined en el channel.
	Create(ctx context.Context, actorID string, in dto.CreateRequest) (*dto.View, error)

	// Delete borra el topic y sus memberships. Sólo el owner.
	Delete(ctx context.Context, ownerID, topicID string) error
}

// ReadService define el read path cacheado.
type ReadService interface {
	// Get retorna el aggregate compuesto (body + members).
	Get(ctx context.Context, id string) (*dto.Aggregate, error)

	// ListByChannel retorna todos los topics de un channel, cacheado bajo
	// la key de listado del channel.
	ListByChannel(ctx context.Context, channelID string) ([]dto.View, error)
}

// Deps contains dependencies for the topic services.
type Deps struct {
	Repos repository.Repositories
	Cache cache.Cache
	Bus   bus.Publisher
}

// Topic service errors
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrTopicNotFound  = errors.New("topic not found")
	ErrMemberNotFound = errors.New("membership not found")
	ErrNotOwner       = errors.New("actor is not the topic owner")
	ErrNoPendingJoin  = errors.New("no pending join request")
	ErrNotInChannel   = errors.New("actor is not a member of the parent channel")
)
