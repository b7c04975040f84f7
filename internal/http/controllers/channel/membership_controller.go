package channel

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/agora/internal/http/dto/channel"
	httperrors "github.com/dropDatabas3/agora/internal/http/errors"
	"github.com/dropDatabas3/agora/internal/http/middlewares"
	svc "github.com/dropDatabas3/agora/internal/http/services/channel"
	"github.com/dropDatabas3/agora/internal/observability/logger"
)

// MembershipController maneja join/invite/accept/decline/leave de channels.
type MembershipController struct {
	service svc.MembershipService
}

// NewMembershipController crea un nuevo controller de membership.
func NewMembershipController(service svc.MembershipService) *MembershipController {
	return &MembershipController{service: service}
}

// Join maneja POST /v1/channels/{id}/join
func (c *MembershipController) Join(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MembershipController.Join"))

	channelID := chi.URLParam(r, "id")
	actorID := middlewares.GetActorID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	// body opcional: sólo el email
	var req dto.JoinRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	email := req.Email
	if email == "" {
		email = middlewares.GetActorEmail(ctx)
	}

	result, err := c.service.Join(ctx, actorID, channelID, email)
	if err != nil {
		log.Debug("join failed", logger.Err(err))
		writeMembershipError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// JoinWithInvite maneja POST /v1/channels/join/invite
func (c *MembershipController) JoinWithInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MembershipController.JoinWithInvite"))

	actorID := middlewares.GetActorID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	var req dto.InviteJoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}
	email := req.Email
	if email == "" {
		email = middlewares.GetActorEmail(ctx)
	}

	result, err := c.service.JoinWithInvite(ctx, actorID, req.Code, email)
	if err != nil {
		log.Debug("invite join failed", logger.Err(err))
		writeMembershipError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Accept maneja POST /v1/channels/{id}/members/{actorID}/accept
func (c *MembershipController) Accept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MembershipController.Accept"))

	channelID := chi.URLParam(r, "id")
	actorID := chi.URLParam(r, "actorID")
	ownerID := middlewares.GetActorID(ctx)

	if err := c.service.Accept(ctx, ownerID, channelID, actorID); err != nil {
		log.Debug("accept failed", logger.Err(err))
		writeMembershipError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "member accepted"})
}

// Decline maneja POST /v1/channels/{id}/members/{actorID}/decline
func (c *MembershipController) Decline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MembershipController.Decline"))

	channelID := chi.URLParam(r, "id")
	actorID := chi.URLParam(r, "actorID")
	ownerID := middlewares.GetActorID(ctx)

	if err := c.service.Decline(ctx, ownerID, channelID, actorID); err != nil {
		log.Debug("decline failed", logger.Err(err))
		writeMembershipError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "request declined"})
}

// Leave maneja POST /v1/channels/{id}/leave
func (c *MembershipController) Leave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MembershipController.Leave"))

	channelID := chi.URLParam(r, "id")
	actorID := middlewares.GetActorID(ctx)

	if err := c.service.Leave(ctx, actorID, channelID); err != nil {
		log.Debug("leave failed", logger.Err(err))
		writeMembershipError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "left channel"})
}

func writeMembershipError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrInvalidInput):
		httperrors.WriteError(w, httperrors.ErrBadRequest)
	case errors.Is(err, svc.ErrChannelNotFound):
		httperrors.WriteError(w, httperrors.ErrChannelNotFound)
	case errors.Is(err, svc.ErrMemberNotFound):
		httperrors.WriteError(w, httperrors.ErrMemberNotFound)
	case errors.Is(err, svc.ErrNotOwner):
		httperrors.WriteError(w, httperrors.ErrNotOwner)
	case errors.Is(err, svc.ErrNoPendingJoin):
		httperrors.WriteError(w, httperrors.ErrNoPendingJoin)
	case errors.Is(err, svc.ErrInviteExpired):
		httperrors.WriteError(w, httperrors.ErrInviteExpired)
	case errors.Is(err, svc.ErrInviteInvalid):
		httperrors.WriteError(w, httperrors.ErrInviteInvalid)
	default:
		httperrors.WriteError(w, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
