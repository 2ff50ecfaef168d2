package slot

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atelio/atelio-api/internal/pkg/response"
	"github.com/atelio/atelio-api/internal/pkg/validate"
	"github.com/atelio/atelio-api/internal/pkg/validator"
)

// Handler handles slot HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates slot handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ListAvailable handles GET /slots/available?item_id=&from=&to=
func (h *Handler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	var itemID uuid.NullUUID
	if raw := r.URL.Query().Get("item_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid item_id")
			return
		}
		itemID = uuid.NullUUID{UUID: id, Valid: true}
	}

	now := time.Now()
	from := now
	to := now.AddDate(0, 1, 0) // default window: one month ahead
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(w, "Invalid from timestamp, expected RFC3339")
			return
		}
		from = t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(w, "Invalid to timestamp, expected RFC3339")
			return
		}
		to = t
	}

	slots, err := h.svc.ListAvailable(r.Context(), itemID, from, to)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, slots)
}

// Get handles GET /slots/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid slot ID")
		return
	}

	slot, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			response.NotFound(w, "Slot not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, slot)
}

// Create handles POST /admin/slots
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	slot, err := h.svc.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, validate.ErrInvalid) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w)
		return
	}
	response.Created(w, slot)
}

// CreateBulk handles POST /admin/slots/bulk
func (h *Handler) CreateBulk(w http.ResponseWriter, r *http.Request) {
	var req BulkCreateSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	slots, err := h.svc.CreateBulk(r.Context(), &req)
	if err != nil {
		if errors.Is(err, validate.ErrInvalid) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w)
		return
	}
	response.Created(w, slots)
}

// Update handles PUT /admin/slots/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid slot ID")
		return
	}

	var req UpdateSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	slot, err := h.svc.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotNotFound):
			response.NotFound(w, "Slot not found")
		case errors.Is(err, validate.ErrInvalid):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w)
		}
		return
	}
	response.OK(w, slot)
}

// Delete handles DELETE /admin/slots/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid slot ID")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrSlotNotFound):
			response.NotFound(w, "Slot not found")
		case errors.Is(err, ErrSlotHasActiveBookings):
			response.Conflict(w, "SLOT_HAS_BOOKINGS", "Slot still has active bookings")
		default:
			response.InternalError(w)
		}
		return
	}
	response.NoContent(w)
}
