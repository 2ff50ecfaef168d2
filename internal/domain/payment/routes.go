package payment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atelio/atelio-api/internal/middleware"
)

// Routes returns authenticated payment routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Get("/{id}", h.Get)
	r.Get("/booking/{bookingID}", h.GetByBooking)
	r.Post("/{id}/retry", h.Retry)

	return r
}

// AdminRoutes returns admin payment routes
func (h *Handler) AdminRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)
	r.Use(middleware.RequireAdmin())

	r.Get("/statistics", h.Statistics)

	return r
}
