package topic

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/agora/internal/http/dto/topic"
	httperrors "github.com/dropDatabas3/agora/internal/http/errors"
	"github.com/dropDatabas3/agora/internal/http/middlewares"
	svc "github.com/dropDatabas3/agora/internal/http/services/topic"
	"github.com/dropDatabas3/agora/internal/observability/logger"
)

// ManageController maneja el ciclo de vida del topic.
type ManageController struct {
	service svc.ManageService
}

// NewManageController crea un nuevo controller de manage.
func NewManageController(service svc.ManageService) *ManageController {
	return &ManageController{service: service}
}

// Create maneja POST /v1/topics
func (c *ManageController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ManageController.Create"))

	actorID := middlewares.GetActorID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	var req dto.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	view, err := c.service.Create(ctx, actorID, req)
	if err != nil {
		log.Debug("create failed", logger.Err(err))
		writeManageError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

// Delete maneja DELETE /v1/topics/{id}
func (c *ManageController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ManageController.Delete"))

	topicID := chi.URLParam(r, "id")
	ownerID := middlewares.GetActorID(ctx)

	if err := c.service.Delete(ctx, ownerID, topicID); err != nil {
		log.Debug("delete failed", logger.Err(err))
		writeManageError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "topic deleted"})
}

func writeManageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrInvalidInput):
		httperrors.WriteError(w, httperrors.ErrBadRequest)
	case errors.Is(err, svc.ErrTopicNotFound):
		httperrors.WriteError(w, httperrors.ErrTopicNotFound)
	case errors.Is(err, svc.ErrNotOwner):
		httperrors.WriteError(w, httperrors.ErrNotOwner)
	case errors.Is(err, svc.ErrNotInChannel):
		httperrors.WriteError(w, httperrors.ErrNotInChannel)
	default:
		httperrors.WriteError(w, err)
	}
}
