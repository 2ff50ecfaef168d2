package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines slot data access. Reserve and Release are the only
// operations allowed to touch current_bookings.
type Repository interface {
	Create(ctx context.Context, s *TimeSlot) error
	CreateBulk(ctx context.Context, slots []*TimeSlot) error
	GetByID(ctx context.Context, id uuid.UUID) (*TimeSlot, error)
	Update(ctx context.Context, s *TimeSlot) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListAvailable(ctx context.Context, itemID uuid.NullUUID, from, to time.Time) ([]*TimeSlot, error)
	// Reserve atomically checks capacity and the booking cutoff and increments
	// current_bookings. Fails with ErrSlotNotFound, ErrCapacityExceeded or
	// ErrSlotClosed.
	Reserve(ctx context.Context, id uuid.UUID, count int) error
	// Release decrements current_bookings, floor-clamped at 0.
	Release(ctx context.Context, id uuid.UUID, count int) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates slot repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, s *TimeSlot) error {
	query := `
		INSERT INTO time_slots (
			id, kind, item_id, start_time, end_time,
			is_available, max_capacity, current_bookings, price_override,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Kind, s.ItemID, s.StartTime, s.EndTime,
		s.IsAvailable, s.MaxCapacity, s.CurrentBookings, s.PriceOverride,
		s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *repository) CreateBulk(ctx context.Context, slots []*TimeSlot) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO time_slots (
			id, kind, item_id, start_time, end_time,
			is_available, max_capacity, current_bookings, price_override,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	for _, s := range slots {
		if _, err := tx.ExecContext(ctx, query,
			s.ID, s.Kind, s.ItemID, s.StartTime, s.EndTime,
			s.IsAvailable, s.MaxCapacity, s.CurrentBookings, s.PriceOverride,
			s.CreatedAt, s.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert slot: %w", err)
		}
	}

	return tx.Commit()
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*TimeSlot, error) {
	query := `SELECT * FROM time_slots WHERE id = $1`
	var s TimeSlot
	err := r.db.GetContext(ctx, &s, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) Update(ctx context.Context, s *TimeSlot) error {
	query := `
		UPDATE time_slots
		SET start_time = $2, end_time = $3, max_capacity = $4,
		    price_override = $5, is_available = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		s.ID, s.StartTime, s.EndTime, s.MaxCapacity, s.PriceOverride, s.IsAvailable, s.UpdatedAt,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSlotNotFound
	}
	return nil
}

// Delete removes a slot, refusing while bookings still hold capacity
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM time_slots WHERE id = $1 AND current_bookings = 0`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	// Nothing deleted: either missing or still booked
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrSlotHasActiveBookings
}

func (r *repository) ListAvailable(ctx context.Context, itemID uuid.NullUUID, from, to time.Time) ([]*TimeSlot, error) {
	query := `
		SELECT * FROM time_slots
		WHERE is_available
		  AND current_bookings < max_capacity
		  AND start_time > now() + interval '1 hour'
		  AND start_time >= $1
		  AND start_time <= $2
		  AND ($3::uuid IS NULL OR item_id = $3)
		ORDER BY start_time ASC
	`
	var slots []*TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, from, to, itemID); err != nil {
		return nil, err
	}
	return slots, nil
}

// Reserve performs the capacity check-and-increment in a single conditional
// UPDATE so concurrent callers on the same slot serialize at the row level.
func (r *repository) Reserve(ctx context.Context, id uuid.UUID, count int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE time_slots
		SET current_bookings = current_bookings + $2, updated_at = now()
		WHERE id = $1
		  AND is_available
		  AND current_bookings + $2 <= max_capacity
		  AND start_time > now() + interval '1 hour'
	`, id, count)
	if err != nil {
		return fmt.Errorf("reserve capacity: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reserve capacity: %w", err)
	}
	if rows > 0 {
		return nil
	}

	// The guarded update matched nothing; re-read to report the precise reason
	s, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.IsAvailable || !s.BookingAllowed(time.Now()) {
		return ErrSlotClosed
	}
	return ErrCapacityExceeded
}

func (r *repository) Release(ctx context.Context, id uuid.UUID, count int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE time_slots
		SET current_bookings = GREATEST(current_bookings - $2, 0), updated_at = now()
		WHERE id = $1
	`, id, count)
	if err != nil {
		return fmt.Errorf("release capacity: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("release capacity: %w", err)
	}
	if rows == 0 {
		return ErrSlotNotFound
	}
	return nil
}
