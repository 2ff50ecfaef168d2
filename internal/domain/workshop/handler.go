package workshop

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atelio/atelio-api/internal/pkg/response"
	"github.com/atelio/atelio-api/internal/pkg/validate"
	"github.com/atelio/atelio-api/internal/pkg/validator"
)

// Handler handles workshop HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates workshop handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /workshops
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}
	tag := r.URL.Query().Get("tag")

	workshops, total, err := h.svc.List(r.Context(), tag, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	page := offset/limit + 1
	pages := (total + limit - 1) / limit
	response.WithMeta(w, workshops, response.Meta{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   pages,
		HasNext: offset+limit < total,
		HasPrev: offset > 0,
	})
}

// Get handles GET /workshops/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid workshop ID")
		return
	}

	workshop, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrWorkshopNotFound) {
			response.NotFound(w, "Workshop not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, workshop)
}

// Create handles POST /admin/workshops
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkshopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	workshop, err := h.svc.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, validate.ErrInvalid) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w)
		return
	}
	response.Created(w, workshop)
}

// Update handles PUT /admin/workshops/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid workshop ID")
		return
	}

	var req UpdateWorkshopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	workshop, err := h.svc.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrWorkshopNotFound):
			response.NotFound(w, "Workshop not found")
		case errors.Is(err, ErrWorkshopInUse):
			response.Conflict(w, "WORKSHOP_IN_USE", "Workshop is referenced by bookings; only price, description and tags may change")
		case errors.Is(err, validate.ErrInvalid):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w)
		}
		return
	}
	response.OK(w, workshop)
}

// Delete handles DELETE /admin/workshops/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid workshop ID")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrWorkshopNotFound) {
			response.NotFound(w, "Workshop not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.NoContent(w)
}
