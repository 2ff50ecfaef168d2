package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atelio/atelio-api/internal/domain/payment"
	"github.com/atelio/atelio-api/internal/domain/slot"
	"github.com/atelio/atelio-api/internal/middleware"
	"github.com/atelio/atelio-api/internal/pkg/response"
	"github.com/atelio/atelio-api/internal/pkg/validate"
	"github.com/atelio/atelio-api/internal/pkg/validator"
)

// Handler handles booking HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates booking handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /bookings
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	b, err := h.svc.Create(r.Context(), userID, &req)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}
	response.Created(w, b)
}

// Get handles GET /bookings/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	role := middleware.GetRole(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	b, err := h.svc.Get(r.Context(), id, userID, role)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}
	response.OK(w, b)
}

// List handles GET /bookings
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	bookings, err := h.svc.ListMine(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, bookings)
}

// Cancel handles POST /bookings/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	role := middleware.GetRole(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	var req CancelBookingRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid JSON body")
			return
		}
	}

	b, err := h.svc.Cancel(r.Context(), id, userID, role, req.Reason)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}
	response.OK(w, b)
}

// Confirm handles POST /bookings/{id}/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	role := middleware.GetRole(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	// confirm is owner-gated like Get; the payment check happens inside
	if _, err := h.svc.Get(r.Context(), id, userID, role); err != nil {
		h.writeBookingError(w, err)
		return
	}

	b, err := h.svc.Confirm(r.Context(), id)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}
	response.OK(w, b)
}

// Complete handles POST /admin/bookings/{id}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	b, err := h.svc.Complete(r.Context(), id)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}
	response.OK(w, b)
}

// MarkNoShow handles POST /admin/bookings/{id}/no-show
func (h *Handler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	b, err := h.svc.MarkNoShow(r.Context(), id)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}
	response.OK(w, b)
}

func (h *Handler) writeBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, validate.ErrInvalid):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, slot.ErrSlotNotFound):
		response.NotFound(w, "Booking not found")
	case errors.Is(err, ErrNotOwner):
		response.Forbidden(w, "You do not have access to this booking")
	case errors.Is(err, slot.ErrCapacityExceeded):
		response.Conflict(w, "SLOT_FULL", "Slot is fully booked")
	case errors.Is(err, slot.ErrSlotClosed):
		response.Gone(w, "BOOKING_CUTOFF_PASSED", "Booking cutoff for this slot has passed")
	case errors.Is(err, ErrCancellationWindowClosed):
		response.Gone(w, "CANCELLATION_WINDOW_CLOSED", "Cancellation window has closed")
	case errors.Is(err, ErrInvalidTransition):
		response.Conflict(w, "INVALID_TRANSITION", "Booking status does not allow this action")
	case errors.Is(err, ErrSlotNotFinished):
		response.Conflict(w, "SLOT_NOT_FINISHED", "Slot has not finished yet")
	case errors.Is(err, ErrPaymentNotCompleted):
		response.Conflict(w, "PAYMENT_NOT_COMPLETED", "Payment has not completed")
	case errors.Is(err, ErrConcurrencyConflict):
		response.Conflict(w, "CONCURRENT_MODIFICATION", "Booking was modified concurrently, retry")
	case errors.Is(err, payment.ErrPaymentDeclined):
		response.PaymentRequired(w, "Payment was declined")
	case errors.Is(err, payment.ErrGatewayTimeout):
		response.Error(w, http.StatusGatewayTimeout, "GATEWAY_TIMEOUT", "Payment gateway timed out")
	default:
		response.InternalError(w)
	}
}
