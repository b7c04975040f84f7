package repository

import (
	"context"
	"time"
)

// User es el perfil público de un usuario. La identidad/credenciales viven
// en el identity provider, acá sólo el aggregate cacheable.
type User struct {
	ID        string
	Name      string
	Email     string
	AvatarURL string
	CreatedAt time.Time
}

// UserRepository define operaciones sobre usuarios.
type UserRepository interface {
	// GetByID busca un usuario por ID. Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*User, error)

	// Create inserta un usuario.
	Create(ctx context.Context, u User) (*User, error)
}

// Repositories agrupa todos los repos del store autoritativo.
// Lo implementan store/mongo y store/memory.
type Repositories interface {
	Channels() ChannelRepository
	Topics() TopicRepository
	Memberships() MembershipRepository
	Invites() InviteRepository
	Users() UserRepository
}
