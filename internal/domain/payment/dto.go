package payment

import "github.com/google/uuid"

// ChargeRequest is the internal charge order placed by the booking flow.
// IdempotencyKey is caller-supplied so a retried booking attempt maps onto
// the same payment.
type ChargeRequest struct {
	BookingID      uuid.UUID
	BookingRef     string
	Amount         int64
	Currency       string
	Method         Method
	IdempotencyKey string
}

// RefundRequest asks for money back against a completed payment
type RefundRequest struct {
	PaymentID uuid.UUID
	Amount    int64
	Reason    string
}
