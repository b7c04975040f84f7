package channel

import "time"

// CreateRequest represents the request body for POST /v1/channels
type CreateRequest struct {
	// Name is required.
	Name string `json:"name"`
	// Description is optional.
	Description string `json:"description,omitempty"`
	// Visibility must be "anyone" or "invite". Channels cannot be "private".
	Visibility string `json:"visibility"`
	// ImageURL is optional (uploaded elsewhere).
	ImageURL string `json:"image_url,omitempty"`
}

// View is the serialized channel aggregate (also the cached value).
type View struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Visibility  string    `json:"visibility"`
	CreatedAt   time.Time `json:"created_at"`
}

// MemberView is one entry of a members list (cached independently of the
// aggregate body).
type MemberView struct {
	ActorID  string    `json:"actor_id"`
	Role     string    `json:"role"`
	Status   string    `json:"status"`
	JoinedAt time.Time `json:"joined_at"`
}

// Aggregate composes the two cache tiers for a read.
type Aggregate struct {
	Channel View         `json:"channel"`
	Members []MemberView `json:"members"`
}

// JoinRequest represents the request body for POST /v1/channels/{id}/join.
type JoinRequest struct {
	// Email is optional; used for membership notifications.
	Email string `json:"email,omitempty"`
}

// JoinResult is the outcome of a join attempt. Business rejections come
// back as Success=false with a message, never as an error.
type JoinResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	// JoinStatus: "joined" | "request" | "already".
	JoinStatus string      `json:"joinStatus,omitempty"`
	Membership *MemberView `json:"membership,omitempty"`
	// AutoJoinedTopics lists topic IDs joined by the public-channel cascade.
	AutoJoinedTopics []string `json:"auto_joined_topics,omitempty"`
}

// InviteJoinRequest represents POST /v1/channels/join/invite.
type InviteJoinRequest struct {
	Code  string `json:"code"`
	Email string `json:"email,omitempty"`
}

// CreateInviteRequest represents POST /v1/channels/{id}/invites.
type CreateInviteRequest struct {
	// ExpiresIn is optional, in hours. Default 168 (7 days).
	ExpiresIn int `json:"expires_in,omitempty"`
}

// InviteView is the issued invite code.
type InviteView struct {
	Code       string    `json:"code"`
	ChannelID  string    `json:"channel_id"`
	ExpireTime time.Time `json:"expire_time"`
}
