// Package router arma el chi.Router de la API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	channelctrl "github.com/dropDatabas3/agora/internal/http/controllers/channel"
	healthctrl "github.com/dropDatabas3/agora/internal/http/controllers/health"
	topicctrl "github.com/dropDatabas3/agora/internal/http/controllers/topic"
	userctrl "github.com/dropDatabas3/agora/internal/http/controllers/user"
	"github.com/dropDatabas3/agora/internal/http/errors"
	mw "github.com/dropDatabas3/agora/internal/http/middlewares"
)

// Deps contiene las dependencias del router.
type Deps struct {
	Channels  *channelctrl.Controllers
	Topics    *topicctrl.Controllers
	Users     *userctrl.Controller
	Health    *healthctrl.Controller
	JWTSecret []byte
}

// New construye el router completo. Las rutas /v1 requieren bearer token;
// /healthz y /metrics son públicas.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRecover())
	r.Use(mw.WithRequestID())

	// Públicas, sin logging (se consultan con alta frecuencia)
	r.Get("/healthz", deps.Health.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.RequireAuth(deps.JWTSecret))
		r.Use(mw.WithLogging())

		r.Route("/channels", func(r chi.Router) {
			r.Post("/", deps.Channels.Manage.Create)
			r.Get("/", deps.Channels.Read.ListCreated)
			r.Post("/join/invite", deps.Channels.Membership.JoinWithInvite)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", deps.Channels.Read.Get)
				r.Delete("/", deps.Channels.Manage.Delete)
				r.Get("/topics", deps.Topics.Read.ListByChannel)
				r.Post("/join", deps.Channels.Membership.Join)
				r.Post("/leave", deps.Channels.Membership.Leave)
				r.Post("/invites", deps.Channels.Manage.CreateInvite)
				r.Post("/members/{actorID}/accept", deps.Channels.Membership.Accept)
				r.Post("/members/{actorID}/decline", deps.Channels.Membership.Decline)
			})
		})

		r.Route("/topics", func(r chi.Router) {
			r.Post("/", deps.Topics.Manage.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", deps.Topics.Read.Get)
				r.Delete("/", deps.Topics.Manage.Delete)
				r.Post("/join", deps.Topics.Membership.Join)
				r.Post("/leave", deps.Topics.Membership.Leave)
				r.Post("/members/{actorID}/accept", deps.Topics.Membership.Accept)
				r.Post("/members/{actorID}/decline", deps.Topics.Membership.Decline)
			})
		})

		r.Get("/users/{id}", deps.Users.Get)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		errors.WriteError(w, errors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		errors.WriteError(w, errors.ErrMethodNotAllowed)
	})

	return r
}
