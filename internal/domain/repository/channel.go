package repository

import (
	"context"
	"time"
)

// Visibility controla quién puede unirse a un container.
type Visibility string

const (
	// VisibilityAnyone: cualquiera se une directo (y cascadea a los
	// sub-containers públicos).
	VisibilityAnyone Visibility = "anyone"
	// VisibilityInvite: el join crea un request que el owner aprueba.
	VisibilityInvite Visibility = "invite"
	// VisibilityPrivate: sólo topics (paid); el join directo se rechaza.
	VisibilityPrivate Visibility = "private"
)

// Channel es el container raíz. Un channel es dueño de sus topics.
type Channel struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	ImageURL    string
	Visibility  Visibility
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateChannelInput contiene los datos para crear un channel.
type CreateChannelInput struct {
	OwnerID     string
	Name        string
	Description string
	ImageURL    string
	Visibility  Visibility
}

// ChannelRepository define operaciones sobre channels.
type ChannelRepository interface {
	// GetByID busca un channel por ID. Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*Channel, error)

	// ListByOwner retorna los channels creados por un owner.
	ListByOwner(ctx context.Context, ownerID string) ([]Channel, error)

	// Create inserta un channel nuevo.
	Create(ctx context.Context, in CreateChannelInput) (*Channel, error)

	// Update aplica un patch parcial (sólo campos no-nil).
	Update(ctx context.Context, id string, name, description, imageURL *string) (*Channel, error)

	// Delete borra el channel. Retorna ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error
}
