package channel

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/agora/internal/http/dto/channel"
	httperrors "github.com/dropDatabas3/agora/internal/http/errors"
	"github.com/dropDatabas3/agora/internal/http/middlewares"
	svc "github.com/dropDatabas3/agora/internal/http/services/channel"
	"github.com/dropDatabas3/agora/internal/observability/logger"
)

// ManageController maneja el ciclo de vida del channel.
type ManageController struct {
	service svc.ManageService
}

// NewManageController crea un nuevo controller de manage.
func NewManageController(service svc.ManageService) *ManageController {
	return &ManageController{service: service}
}

// Create maneja POST /v1/channels
func (c *ManageController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ManageController.Create"))

	ownerID := middlewares.GetActorID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	var req dto.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	view, err := c.service.Create(ctx, ownerID, req)
	if err != nil {
		log.Debug("create failed", logger.Err(err))
		writeManageError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

// Delete maneja DELETE /v1/channels/{id}
func (c *ManageController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ManageController.Delete"))

	channelID := chi.URLParam(r, "id")
	ownerID := middlewares.GetActorID(ctx)

	if err := c.service.Delete(ctx, ownerID, channelID); err != nil {
		log.Debug("delete failed", logger.Err(err))
		writeManageError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "channel deleted"})
}

// CreateInvite maneja POST /v1/channels/{id}/invites
func (c *ManageController) CreateInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ManageController.CreateInvite"))

	channelID := chi.URLParam(r, "id")
	ownerID := middlewares.GetActorID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	// body opcional: sólo el TTL en horas
	var req dto.CreateInviteRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	ttl := time.Duration(req.ExpiresIn) * time.Hour

	inv, err := c.service.CreateInvite(ctx, ownerID, channelID, ttl)
	if err != nil {
		log.Debug("invite create failed", logger.Err(err))
		writeManageError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, inv)
}

func writeManageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrInvalidInput):
		httperrors.WriteError(w, httperrors.ErrBadRequest)
	case errors.Is(err, svc.ErrChannelNotFound):
		httperrors.WriteError(w, httperrors.ErrChannelNotFound)
	case errors.Is(err, svc.ErrNotOwner):
		httperrors.WriteError(w, httperrors.ErrNotOwner)
	default:
		httperrors.WriteError(w, err)
	}
}
