// Package channel contiene los services del aggregate channel: la state
// machine de membership (join/invite/accept/decline/leave), el write path
// con invalidación y el read path cacheado en dos niveles.
package channel

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/agora/internal/bus"
	"github.com/dropDatabas3/agora/internal/cache"
	"github.com/dropDatabas3/agora/internal/domain/repository"
	"github.com/dropDatabas3/agora/internal/email"
	dto "github.com/dropDatabas3/agora/internal/http/dto/channel"
)

// MembershipService define las transiciones de membership de un channel.
type MembershipService interface {
	// Join intenta unir al actor según la visibility del channel.
	// Los rechazos de negocio vuelven como JoinResult{Success:false}.
	Join(ctx context.Context, actorID, channelID, actorEmail string) (*dto.JoinResult, error)

	// JoinWithInvite redime un código de invitación de un solo uso.
	JoinWithInvite(ctx context.Context, actorID, code, actorEmail string) (*dto.JoinResult, error)

	// Accept aprueba un join request pendiente. Sólo el owner.
	Accept(ctx context.Context, ownerID, channelID, actorID string) error

	// Decline rechaza un join request pendiente. Sólo el owner.
	Decline(ctx context.Context, ownerID, channelID, actorID string) error

	// Leave elimina la membership del actor y cascadea sus memberships
	// de topic bajo el channel.
	Leave(ctx context.Context, actorID, channelID string) error
}

// ManageService define el ciclo de vida del channel.
type ManageService interface {
	// Create crea el channel y la membership del owner en la misma
	// operación lógica.
	Create(ctx context.Context, ownerID string, in dto.CreateRequest) (*dto.View, error)

	// Delete borra el channel, sus topics y todas las memberships.
	// Sólo el owner.
	Delete(ctx context.Context, ownerID, channelID string) error

	// CreateInvite emite un código de invitación. Sólo el owner.
	CreateInvite(ctx context.Context, ownerID, channelID string, ttl time.Duration) (*dto.InviteView, error)
}

// ReadService define el read path cacheado.
type ReadService interface {
	// Get retorna el aggregate compuesto (body + members, cacheados por
	// separado).
	Get(ctx context.Context, id string) (*dto.Aggregate, error)

	// ListCreatedBy retorna los channels creados por un owner.
	ListCreatedBy(ctx context.Context, ownerID string) ([]dto.View, error)
}

// Deps contains dependencies for the channel services.
type Deps struct {
	Repos    repository.Repositories
	Cache    cache.Cache
	Bus      bus.Publisher
	Notifier email.Notifier
}

// Channel service errors
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrChannelNotFound = errors.New("channel not found")
	ErrMemberNotFound  = errors.New("membership not found")
	ErrNotOwner        = errors.New("actor is not the channel owner")
	ErrNoPendingJoin   = errors.New("no pending join request")
	ErrInviteInvalid   = errors.New("invite code invalid")
	ErrInviteExpired   = errors.New("invite code expired")
)
