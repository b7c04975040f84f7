// Package health contiene el controller para health checks.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dropDatabas3/agora/internal/observability/logger"
)

// CheckFunc es un ping a un componente de infraestructura.
type CheckFunc func(ctx context.Context) error

// Deps contiene los checks inyectables por componente. Un check nil se omite.
type Deps struct {
	StoreCheck CheckFunc
	CacheCheck CheckFunc
	BusCheck   CheckFunc
	Version    string
}

// Response es el cuerpo del health check.
type Response struct {
	Status     string            `json:"status"` // "ready" | "degraded"
	Version    string            `json:"version,omitempty"`
	Components map[string]string `json:"components,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Controller maneja las rutas de health check.
type Controller struct {
	deps Deps
}

// NewController crea un nuevo controller de health check.
func NewController(deps Deps) *Controller {
	return &Controller{deps: deps}
}

// Healthz maneja GET /healthz. El store caído marca unavailable; cache o bus
// caídos sólo degradan (el read path sigue sirviendo desde el store).
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Healthz"))

	resp := Response{
		Status:     "ready",
		Version:    c.deps.Version,
		Components: make(map[string]string),
		Timestamp:  time.Now().UTC(),
	}
	statusCode := http.StatusOK

	if c.deps.StoreCheck != nil {
		if err := c.deps.StoreCheck(ctx); err != nil {
			resp.Components["store"] = err.Error()
			resp.Status = "unavailable"
			statusCode = http.StatusServiceUnavailable
		} else {
			resp.Components["store"] = "ok"
		}
	}
	for name, check := range map[string]CheckFunc{"cache": c.deps.CacheCheck, "bus": c.deps.BusCheck} {
		if check == nil {
			continue
		}
		if err := check(ctx); err != nil {
			resp.Components[name] = err.Error()
			if resp.Status == "ready" {
				resp.Status = "degraded"
			}
		} else {
			resp.Components[name] = "ok"
		}
	}

	if resp.Status != "ready" {
		log.Warn("health check degraded", logger.String("status", resp.Status))
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}
