package repository

import (
	"context"
	"time"
)

// InviteStatus de un código de invitación.
type InviteStatus string

const (
	InviteActive  InviteStatus = "active"
	InviteUsed    InviteStatus = "used"
	InviteExpired InviteStatus = "expired"
)

// Invite es un código de un solo uso emitido por el owner de un channel.
// No hay renovación implícita: expirado es expirado.
type Invite struct {
	ID         string
	Code       string
	ChannelID  string
	IssuerID   string
	Status     InviteStatus
	ExpireTime time.Time
	CreatedAt  time.Time
}

// InviteRepository define operaciones sobre invites.
type InviteRepository interface {
	// GetByCode busca un invite por su código. Retorna ErrNotFound si no existe.
	GetByCode(ctx context.Context, code string) (*Invite, error)

	// Create inserta un invite nuevo.
	Create(ctx context.Context, inv Invite) (*Invite, error)

	// MarkUsed transiciona active→used de forma atómica. Retorna
	// ErrConflict si el invite ya no estaba active (doble redención).
	MarkUsed(ctx context.Context, id string) error
}
