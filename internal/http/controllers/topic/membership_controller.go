package topic

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/agora/internal/http/errors"
	"github.com/dropDatabas3/agora/internal/http/middlewares"
	svc "github.com/dropDatabas3/agora/internal/http/services/topic"
	"github.com/dropDatabas3/agora/internal/observability/logger"
)

// MembershipController maneja join/accept/decline/leave de topics.
type MembershipController struct {
	service svc.MembershipService
}

// NewMembershipController crea un nuevo controller de membership.
func NewMembershipController(service svc.MembershipService) *MembershipController {
	return &MembershipController{service: service}
}

// Join maneja POST /v1/topics/{id}/join
func (c *MembershipController) Join(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MembershipController.Join"))

	topicID := chi.URLParam(r, "id")
	actorID := middlewares.GetActorID(ctx)
	email := middlewares.GetActorEmail(ctx)

	result, err := c.service.Join(ctx, actorID, topicID, email)
	if err != nil {
		log.Debug("join failed", logger.Err(err))
		writeMembershipError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Accept maneja POST /v1/topics/{id}/members/{actorID}/accept
func (c *MembershipController) Accept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MembershipController.Accept"))

	topicID := chi.URLParam(r, "id")
	actorID := chi.URLParam(r, "actorID")
	ownerID := middlewares.GetActorID(ctx)

	if err := c.service.Accept(ctx, ownerID, topicID, actorID); err != nil {
		log.Debug("accept failed", logger.Err(err))
		writeMembershipError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "member accepted"})
}

// Decline maneja POST /v1/topics/{id}/members/{actorID}/decline
func (c *MembershipController) Decline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MembershipController.Decline"))

	topicID := chi.URLParam(r, "id")
	actorID := chi.URLParam(r, "actorID")
	ownerID := middlewares.GetActorID(ctx)

	if err := c.service.Decline(ctx, ownerID, topicID, actorID); err != nil {
		log.Debug("decline failed", logger.Err(err))
		writeMembershipError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "request declined"})
}

// Leave maneja POST /v1/topics/{id}/leave
func (c *MembershipController) Leave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MembershipController.Leave"))

	topicID := chi.URLParam(r, "id")
	actorID := middlewares.GetActorID(ctx)

	if err := c.service.Leave(ctx, actorID, topicID); err != nil {
		log.Debug("leave failed", logger.Err(err))
		writeMembershipError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "left topic"})
}

func writeMembershipError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrInvalidInput):
		httperrors.WriteError(w, httperrors.ErrBadRequest)
	case errors.Is(err, svc.ErrTopicNotFound):
		httperrors.WriteError(w, httperrors.ErrTopicNotFound)
	case errors.Is(err, svc.ErrMemberNotFound):
		httperrors.WriteError(w, httperrors.ErrMemberNotFound)
	case errors.Is(err, svc.ErrNotOwner):
		httperrors.WriteError(w, httperrors.ErrNotOwner)
	case errors.Is(err, svc.ErrNoPendingJoin):
		httperrors.WriteError(w, httperrors.ErrNoPendingJoin)
	case errors.Is(err, svc.ErrNotInChannel):
		httperrors.WriteError(w, httperrors.ErrNotInChannel)
	default:
		httperrors.WriteError(w, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
