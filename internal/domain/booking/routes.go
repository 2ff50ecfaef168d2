package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atelio/atelio-api/internal/middleware"
)

// Routes returns authenticated booking routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/cancel", h.Cancel)
	r.Post("/{id}/confirm", h.Confirm)

	return r
}

// AdminRoutes returns admin booking routes
func (h *Handler) AdminRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)
	r.Use(middleware.RequireAdmin())

	r.Post("/{id}/complete", h.Complete)
	r.Post("/{id}/no-show", h.MarkNoShow)

	return r
}
