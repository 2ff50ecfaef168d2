package workshop

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Workshop is a bookable catalog item. Price is in minor currency units;
// bookings snapshot their total at creation time, so later price updates
// never change existing bookings.
type Workshop struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Price       int64          `db:"price" json:"price"`
	Capacity    int            `db:"capacity" json:"capacity"`
	Tags        pq.StringArray `db:"tags" json:"tags"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
