// Package user contiene el controller de perfiles de usuario.
package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/agora/internal/http/errors"
	svc "github.com/dropDatabas3/agora/internal/http/services/user"
	"github.com/dropDatabas3/agora/internal/observability/logger"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Controller maneja el read path de usuarios.
type Controller struct {
	service svc.ReadService
}

// NewController crea un nuevo controller de usuarios.
func NewController(service svc.ReadService) *Controller {
	return &Controller{service: service}
}

// Get maneja GET /v1/users/{id}
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("UserController.Get"))

	id := chi.URLParam(r, "id")

	view, err := c.service.Get(ctx, id)
	if err != nil {
		log.Debug("get failed", logger.Err(err))
		switch {
		case errors.Is(err, svc.ErrInvalidInput):
			httperrors.WriteError(w, httperrors.ErrInvalidParameter)
		case errors.Is(err, svc.ErrUserNotFound):
			httperrors.WriteError(w, httperrors.ErrUserNotFound)
		default:
			httperrors.WriteError(w, err)
		}
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(view)
}
