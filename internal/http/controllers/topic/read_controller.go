package topic

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/agora/internal/http/errors"
	svc "github.com/dropDatabas3/agora/internal/http/services/topic"
	"github.com/dropDatabas3/agora/internal/observability/logger"
)

// ReadController maneja el read path de topics.
type ReadController struct {
	service svc.ReadService
}

// NewReadController crea un nuevo controller de lectura.
func NewReadController(service svc.ReadService) *ReadController {
	return &ReadController{service: service}
}

// Get maneja GET /v1/topics/{id}
func (c *ReadController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ReadController.Get"))

	topicID := chi.URLParam(r, "id")

	agg, err := c.service.Get(ctx, topicID)
	if err != nil {
		log.Debug("get failed", logger.Err(err))
		writeReadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, agg)
}

// ListByChannel maneja GET /v1/channels/{id}/topics
func (c *ReadController) ListByChannel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ReadController.ListByChannel"))

	channelID := chi.URLParam(r, "id")

	views, err := c.service.ListByChannel(ctx, channelID)
	if err != nil {
		log.Debug("list failed", logger.Err(err))
		writeReadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

func writeReadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrInvalidInput):
		httperrors.WriteError(w, httperrors.ErrInvalidParameter)
	case errors.Is(err, svc.ErrTopicNotFound):
		httperrors.WriteError(w, httperrors.ErrTopicNotFound)
	default:
		httperrors.WriteError(w, err)
	}
}
