package slot

import "errors"

var (
	ErrSlotNotFound = errors.New("slot not found")
	// ErrCapacityExceeded is returned when a reservation would push
	// current_bookings past max_capacity
	ErrCapacityExceeded = errors.New("slot is fully booked")
	// ErrSlotClosed is returned when the slot is unavailable or the booking
	// cutoff has passed
	ErrSlotClosed = errors.New("slot is closed for booking")
	// ErrSlotHasActiveBookings blocks deleting a slot that still holds bookings
	ErrSlotHasActiveBookings = errors.New("slot has active bookings")
)
