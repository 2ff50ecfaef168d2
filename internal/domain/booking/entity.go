package booking

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atelio/atelio-api/internal/domain/payment"
	"github.com/atelio/atelio-api/internal/domain/slot"
)

// Booking is a user's reservation of slot capacity. Status and payment are
// mutated only through the Service; bookings are never deleted, only moved to
// a terminal status. Version backs optimistic locking on status transitions.
type Booking struct {
	ID                 uuid.UUID      `db:"id" json:"id"`
	Reference          string         `db:"reference" json:"reference"`
	UserID             uuid.UUID      `db:"user_id" json:"user_id"`
	SlotID             uuid.UUID      `db:"slot_id" json:"slot_id"`
	Kind               slot.Kind      `db:"kind" json:"kind"`
	ItemID             uuid.NullUUID  `db:"item_id" json:"item_id,omitempty"`
	Status             Status         `db:"status" json:"status"`
	Seats              int            `db:"seats" json:"seats"`
	TotalAmount        int64          `db:"total_amount" json:"total_amount"`
	Currency           string         `db:"currency" json:"currency"`
	Notes              sql.NullString `db:"notes" json:"notes,omitempty"`
	PaymentID          uuid.NullUUID  `db:"payment_id" json:"payment_id,omitempty"`
	CancellationReason sql.NullString `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CancelledAt        sql.NullTime   `db:"cancelled_at" json:"cancelled_at,omitempty"`
	Version            int            `db:"version" json:"-"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`

	// Payment is attached on reads when a payment exists
	Payment *payment.Payment `db:"-" json:"payment,omitempty"`
}

// newReference derives the human-facing booking reference from the id
func newReference(id uuid.UUID) string {
	return "BK-" + strings.ToUpper(id.String()[:8])
}
