package booking

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidTransition is returned for any status change outside the
	// transition table
	ErrInvalidTransition = errors.New("booking status transition not allowed")

	// ErrCancellationWindowClosed is returned when a non-admin cancels a
	// confirmed booking less than 24 hours before the slot starts
	ErrCancellationWindowClosed = errors.New("cancellation window has closed")

	// ErrConcurrencyConflict means the booking changed under the caller;
	// reload and retry the original intent
	ErrConcurrencyConflict = errors.New("booking was modified concurrently")

	// ErrNotOwner is returned when a non-admin acts on someone else's booking
	ErrNotOwner = errors.New("booking belongs to another user")

	// ErrPaymentNotCompleted blocks confirming a booking whose payment has
	// not completed yet
	ErrPaymentNotCompleted = errors.New("payment has not completed")

	// ErrSlotNotFinished blocks completing or no-showing a booking before the
	// slot has ended
	ErrSlotNotFinished = errors.New("slot has not finished yet")
)
