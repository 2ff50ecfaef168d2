package slot

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Kind says what a slot sells: a seat in a workshop session or a rentable space
type Kind string

const (
	KindWorkshop Kind = "workshop"
	KindSpace    Kind = "space"
)

// BookingCutoff is how long before a slot starts that booking closes
const BookingCutoff = time.Hour

// TimeSlot is a capacity-bearing time window. current_bookings is mutated
// only through Repository.Reserve/Release; 0 <= CurrentBookings <= MaxCapacity
// holds at all times, including under concurrent reservations.
type TimeSlot struct {
	ID              uuid.UUID     `db:"id" json:"id"`
	Kind            Kind          `db:"kind" json:"kind"`
	ItemID          uuid.NullUUID `db:"item_id" json:"item_id,omitempty"`
	StartTime       time.Time     `db:"start_time" json:"start_time"`
	EndTime         time.Time     `db:"end_time" json:"end_time"`
	IsAvailable     bool          `db:"is_available" json:"is_available"`
	MaxCapacity     int           `db:"max_capacity" json:"max_capacity"`
	CurrentBookings int           `db:"current_bookings" json:"current_bookings"`
	PriceOverride   sql.NullInt64 `db:"price_override" json:"price_override,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// HasAvailableCapacity reports whether another booking fits
func (s *TimeSlot) HasAvailableCapacity() bool {
	return s.IsAvailable && s.CurrentBookings < s.MaxCapacity
}

// BookingAllowed reports whether booking is still open: the slot must start
// more than BookingCutoff from now
func (s *TimeSlot) BookingAllowed(now time.Time) bool {
	return s.StartTime.After(now.Add(BookingCutoff))
}

// Reservation acknowledges that capacity was held for a booking attempt
type Reservation struct {
	Token      uuid.UUID `json:"token"`
	SlotID     uuid.UUID `json:"slot_id"`
	Count      int       `json:"count"`
	ReservedAt time.Time `json:"reserved_at"`
}
