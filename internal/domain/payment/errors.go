package payment

import "errors"

var (
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrGatewayTimeout means the gateway response was lost; the charge is
	// safely retryable with the same idempotency key
	ErrGatewayTimeout = errors.New("payment gateway timeout")

	// ErrPaymentDeclined is the recorded business outcome of a failed charge
	ErrPaymentDeclined = errors.New("payment declined")

	// ErrRetryNotAllowed is returned when retrying a payment that is not failed
	ErrRetryNotAllowed = errors.New("retry only allowed for failed payments")

	// ErrCancelNotAllowed is returned when cancelling a payment that is not pending
	ErrCancelNotAllowed = errors.New("cancel only allowed for pending payments")

	// ErrRefundNotAllowed is returned when the payment is not refund-eligible
	ErrRefundNotAllowed = errors.New("payment cannot be refunded")

	ErrInvalidRefundAmount = errors.New("refund amount must be positive and not exceed the paid amount")

	// ErrIdempotencyConflict signals a concurrent insert with the same
	// idempotency key; callers re-read and continue on the existing record
	ErrIdempotencyConflict = errors.New("payment with this idempotency key already exists")
)
