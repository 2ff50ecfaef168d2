package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines booking data access. Update is versioned: writes against
// a stale version fail with ErrConcurrencyConflict instead of overwriting.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Booking, error)
	Update(ctx context.Context, b *Booking) error
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewRepository creates booking repository
func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, b *Booking) error {
	query := `
		INSERT INTO bookings (id, reference, user_id, slot_id, kind, item_id, status,
		                      seats, total_amount, currency, notes, payment_id,
		                      version, created_at, updated_at)
		VALUES (:id, :reference, :user_id, :slot_id, :kind, :item_id, :status,
		        :seats, :total_amount, :currency, :notes, :payment_id,
		        :version, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, b); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b, `SELECT * FROM bookings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Booking, error) {
	bookings := []*Booking{}
	err := r.db.SelectContext(ctx, &bookings,
		`SELECT * FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// Update writes the booking guarded by its version and bumps the version on
// success. Zero affected rows against an existing booking means a concurrent
// writer won.
func (r *postgresRepository) Update(ctx context.Context, b *Booking) error {
	query := `
		UPDATE bookings
		SET status = :status, notes = :notes, payment_id = :payment_id,
		    cancellation_reason = :cancellation_reason, cancelled_at = :cancelled_at,
		    updated_at = :updated_at, version = version + 1
		WHERE id = :id AND version = :version`

	result, err := r.db.NamedExecContext(ctx, query, b)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, b.ID); err != nil {
			return fmt.Errorf("failed to check booking existence: %w", err)
		}
		if !exists {
			return ErrBookingNotFound
		}
		return ErrConcurrencyConflict
	}
	b.Version++
	return nil
}
