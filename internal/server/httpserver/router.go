package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the API routes. limiter throttles /register and /token per
// client address and may be nil.
func NewRouter(api *API, m *Metrics, limiter *ClientLimiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(api.logger))
	r.Use(m.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", api.handleHealthz)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(limiter))
		r.Post("/register", api.handleRegister)
		r.Post("/token", api.handleToken)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(api.tokens))

		r.Get("/users/me", api.handleMe)

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", api.handleCreateTask)
			r.Get("/", api.handleListTasks)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", api.handleGetTask)
				r.Patch("/", api.handleUpdateTask)
				r.Put("/", api.handleUpdateTask)
				r.Delete("/", api.handleDeleteTask)

				r.Post("/attachment", api.handleAttachmentUpload)
				r.Get("/attachment", api.handleAttachmentDownload)
			})
		})
	})

	return r
}
