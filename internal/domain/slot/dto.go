package slot

import (
	"time"

	"github.com/google/uuid"
)

// CreateSlotRequest is the admin payload for a single slot
type CreateSlotRequest struct {
	Kind          string     `json:"kind" validate:"required,booking_kind"`
	ItemID        *uuid.UUID `json:"item_id,omitempty"`
	StartTime     time.Time  `json:"start_time" validate:"required"`
	EndTime       time.Time  `json:"end_time" validate:"required"`
	MaxCapacity   int        `json:"max_capacity" validate:"required"`
	PriceOverride *int64     `json:"price_override,omitempty"`
	IsAvailable   *bool      `json:"is_available,omitempty"`
}

// BulkCreateSlotsRequest creates several slots at once (e.g. a week's schedule)
type BulkCreateSlotsRequest struct {
	Slots []CreateSlotRequest `json:"slots" validate:"required,min=1,max=100,dive"`
}

// UpdateSlotRequest carries optional field updates; nil means unchanged
type UpdateSlotRequest struct {
	StartTime     *time.Time `json:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	MaxCapacity   *int       `json:"max_capacity,omitempty"`
	PriceOverride *int64     `json:"price_override,omitempty"`
	IsAvailable   *bool      `json:"is_available,omitempty"`
}
