package channel

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/agora/internal/http/errors"
	"github.com/dropDatabas3/agora/internal/http/middlewares"
	svc "github.com/dropDatabas3/agora/internal/http/services/channel"
	"github.com/dropDatabas3/agora/internal/observability/logger"
)

// ReadController maneja el read path de channels.
type ReadController struct {
	service svc.ReadService
}

// NewReadController crea un nuevo controller de lectura.
func NewReadController(service svc.ReadService) *ReadController {
	return &ReadController{service: service}
}

// Get maneja GET /v1/channels/{id}
func (c *ReadController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ReadController.Get"))

	channelID := chi.URLParam(r, "id")

	agg, err := c.service.Get(ctx, channelID)
	if err != nil {
		log.Debug("get failed", logger.Err(err))
		writeReadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, agg)
}

// ListCreated maneja GET /v1/channels (los channels creados por el actor)
func (c *ReadController) ListCreated(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ReadController.ListCreated"))

	ownerID := middlewares.GetActorID(ctx)

	views, err := c.service.ListCreatedBy(ctx, ownerID)
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
	case errors.Is(err, svc.ErrChannelNotFound):
		httperrors.WriteError(w, httperrors.ErrChannelNotFound)
	default:
		httperrors.WriteError(w, err)
	}
}
