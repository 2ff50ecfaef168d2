package slot

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atelio/atelio-api/internal/middleware"
)

// Routes returns authenticated slot browsing routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Get("/available", h.ListAvailable)
	r.Get("/{id}", h.Get)

	return r
}

// AdminRoutes returns admin slot management routes
func (h *Handler) AdminRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)
	r.Use(middleware.RequireAdmin())

	r.Post("/", h.Create)
	r.Post("/bulk", h.CreateBulk)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}
