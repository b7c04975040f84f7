package topic

import "time"

// CreateRequest represents the request body for POST /v1/topics
type CreateRequest struct {
	ChannelID   string `json:"channel_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// Visibility: "anyone" | "invite" | "private" (paid).
	Visibility string `json:"visibility"`
	// Editability: "anyone" | "owner". Default "anyone".
	Editability string `json:"editability,omitempty"`
}

// View is the serialized topic aggregate (also the cached value).
type View struct {
	ID          string    `json:"id"`
	ChannelID   string    `json:"channel_id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Visibility  string    `json:"visibility"`
	Editability string    `json:"editability"`
	CreatedAt   time.Time `json:"created_at"`
}

// MemberView is one entry of a topic members list.
type MemberView struct {
	ActorID  string    `json:"actor_id"`
	Role     string    `json:"role"`
	Status   string    `json:"status"`
	JoinedAt time.Time `json:"joined_at"`
}

// Aggregate composes the two cache tiers for a read.
type Aggregate struct {
	Topic   View         `json:"topic"`
	Members []MemberView `json:"members"`
}

// JoinResult mirrors the channel join outcome at topic scope.
type JoinResult struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	JoinStatus string      `json:"joinStatus,omitempty"`
	Membership *MemberView `json:"membership,omitempty"`
}
