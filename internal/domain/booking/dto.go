package booking

import (
	"github.com/google/uuid"

	"github.com/atelio/atelio-api/internal/domain/payment"
)

// CreateBookingRequest is the payload for creating a booking. Seats defaults
// to 1. IdempotencyKey, when supplied by the client, makes a retried request
// reuse the same payment; otherwise one is generated per call.
type CreateBookingRequest struct {
	SlotID         uuid.UUID      `json:"slot_id" validate:"required"`
	Seats          int            `json:"seats"`
	TotalAmount    int64          `json:"total_amount" validate:"gte=0"`
	Method         payment.Method `json:"method" validate:"required,payment_method"`
	Notes          string         `json:"notes"`
	IdempotencyKey string         `json:"idempotency_key"`
}

// CancelBookingRequest carries the optional cancellation reason
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}
