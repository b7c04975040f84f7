package repository

import (
	"context"
	"time"
)

// ContainerKind distingue memberships de channel y de topic.
type ContainerKind string

const (
	ContainerChannel ContainerKind = "channel"
	ContainerTopic   ContainerKind = "topic"
)

// Role dentro de un container.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleMember Role = "member"
)

// MemberStatus es el estado del actor en el container.
type MemberStatus string

const (
	StatusJoined     MemberStatus = "joined"
	StatusRequest    MemberStatus = "request"
	StatusProcessing MemberStatus = "processing"
)

// Membership es la tupla (actor, container). Invariante: a lo sumo un
// documento por (ActorID, Kind, ContainerID) — lo garantiza el conditional
// insert de Create, no un chequeo read-then-write.
type Membership struct {
	ID          string
	ActorID     string
	Kind        ContainerKind
	ContainerID string
	// ChannelID del container: igual a ContainerID para channels, el canal
	// padre para topics. Permite el cascade de leave sin joins.
	ChannelID string
	Role      Role
	Status    MemberStatus
	Email     string
	JoinedAt  time.Time
}

// MembershipRepository define operaciones sobre memberships.
type MembershipRepository interface {
	// Get busca la membership de un actor en un container.
	// Retorna ErrNotFound si no existe.
	Get(ctx context.Context, actorID string, kind ContainerKind, containerID string) (*Membership, error)

	// ListByContainer retorna todas las memberships de un container.
	ListByContainer(ctx context.Context, kind ContainerKind, containerID string) ([]Membership, error)

	// ListActorTopics retorna las memberships de topic del actor bajo un
	// channel (para el cascade de leave).
	ListActorTopics(ctx context.Context, actorID, channelID string) ([]Membership, error)

	// Create inserta con conditional-insert sobre (actor, kind, container).
	// Si ya existía retorna el documento existente y created=false; el
	// m.ID se ignora y se genera en el store.
	Create(ctx context.Context, m Membership) (out *Membership, created bool, err error)

	// UpdateStatus cambia el status de una membership por ID.
	UpdateStatus(ctx context.Context, id string, status MemberStatus) error

	// Delete borra la membership de un actor en un container.
	// Borrar una ausente es ErrNotFound.
	Delete(ctx context.Context, actorID string, kind ContainerKind, containerID string) error

	// DeleteByContainer borra todas las memberships de un container.
	// Retorna cuántas borró.
	DeleteByContainer(ctx context.Context, kind ContainerKind, containerID string) (int, error)

	// DeleteByChannel borra todas las memberships (channel y topics) bajo
	// un channel. Para el delete del container raíz.
	DeleteByChannel(ctx context.Context, channelID string) (int, error)
}
