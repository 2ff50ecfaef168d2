package payment

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atelio/atelio-api/internal/pkg/response"
	"github.com/atelio/atelio-api/internal/pkg/validate"
)

// Handler handles payment HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates payment handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Get handles GET /payments/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid payment ID")
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			response.NotFound(w, "Payment not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, p)
}

// GetByBooking handles GET /payments/booking/{bookingID}
func (h *Handler) GetByBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	p, err := h.svc.GetByBooking(r.Context(), bookingID)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			response.NotFound(w, "No payment for booking")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, p)
}

// Retry handles POST /payments/{id}/retry
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid payment ID")
		return
	}

	p, err := h.svc.Retry(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrPaymentNotFound):
			response.NotFound(w, "Payment not found")
		case errors.Is(err, ErrRetryNotAllowed):
			response.Conflict(w, "RETRY_NOT_ALLOWED", "Only failed payments can be retried")
		case errors.Is(err, ErrPaymentDeclined):
			response.PaymentRequired(w, "Payment was declined again")
		case errors.Is(err, ErrGatewayTimeout):
			response.Error(w, http.StatusGatewayTimeout, "GATEWAY_TIMEOUT", "Payment gateway timed out")
		default:
			response.InternalError(w)
		}
		return
	}
	response.OK(w, p)
}

// Statistics handles GET /admin/payments/statistics?from=&to=
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	from := now.AddDate(0, -1, 0)
	to := now
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

	stats, err := h.svc.Statistics(r.Context(), from, to)
	if err != nil {
		if errors.Is(err, validate.ErrInvalid) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, stats)
}
