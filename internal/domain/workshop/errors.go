package workshop

import "errors"

var (
	ErrWorkshopNotFound = errors.New("workshop not found")
	// ErrWorkshopInUse is returned when an update would change a structural
	// field (title, capacity) of a workshop that existing bookings reference.
	ErrWorkshopInUse = errors.New("workshop is referenced by bookings")
)
