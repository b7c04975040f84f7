package repository

import (
	"context"
	"time"
)

// Editability controla quién puede publicar en un topic.
type Editability string

const (
	EditabilityAnyone Editability = "anyone"
	EditabilityOwner  Editability = "owner"
)

// Topic es un sub-container de un channel. Su visibility es independiente
// de la del channel padre.
type Topic struct {
	ID          string
	ChannelID   string
	OwnerID     string
	Name        string
	Description string
	Visibility  Visibility
	Editability Editability
	CreatedAt   time.Time
}

// CreateTopicInput contiene los datos para crear un topic.
type CreateTopicInput struct {
	ChannelID   string
	OwnerID     string
	Name        string
	Description string
	Visibility  Visibility
	Editability Editability
}

// TopicRepository define operaciones sobre topics.
type TopicRepository interface {
	// GetByID busca un topic por ID. Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*Topic, error)

	// ListByChannel retorna todos los topics de un channel.
	ListByChannel(ctx context.Context, channelID string) ([]Topic, error)

	// Create inserta un topic nuevo.
	Create(ctx context.Context, in CreateTopicInput) (*Topic, error)

	// Delete borra un topic. Retorna ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error

	// DeleteByChannel borra todos los topics de un channel.
	// Retorna cuántos borró.
	DeleteByChannel(ctx context.Context, channelID string) (int, error)
}
