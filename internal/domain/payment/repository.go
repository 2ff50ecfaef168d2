package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines payment data access
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*Payment, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error)
	Update(ctx context.Context, p *Payment) error
	CreateRefund(ctx context.Context, r *Refund) error
	Statistics(ctx context.Context, from, to time.Time) (*Statistics, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewRepository creates payment repository
func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO payments (id, booking_id, idempotency_key, method, status,
		                      amount, currency, created_at, updated_at)
		VALUES (:id, :booking_id, :idempotency_key, :method, :status,
		        :amount, :currency, :created_at, :updated_at)`

	_, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrIdempotencyConflict
		}
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `SELECT * FROM payments WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if err := r.attachRefund(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepository) GetByIdempotencyKey(ctx context.Context, key string) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `SELECT * FROM payments WHERE idempotency_key = $1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment by idempotency key: %w", err)
	}
	if err := r.attachRefund(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p,
		`SELECT * FROM payments WHERE booking_id = $1 ORDER BY created_at DESC LIMIT 1`, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment by booking: %w", err)
	}
	if err := r.attachRefund(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepository) Update(ctx context.Context, p *Payment) error {
	query := `
		UPDATE payments
		SET status = :status, paid_at = :paid_at, receipt_id = :receipt_id,
		    transaction_id = :transaction_id, failure_reason = :failure_reason,
		    updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *postgresRepository) CreateRefund(ctx context.Context, ref *Refund) error {
	query := `
		INSERT INTO refunds (id, payment_id, amount, reason, gateway_txn_id, refunded_at)
		VALUES (:id, :payment_id, :amount, :reason, :gateway_txn_id, :refunded_at)`

	if _, err := r.db.NamedExecContext(ctx, query, ref); err != nil {
		return fmt.Errorf("failed to insert refund: %w", err)
	}
	return nil
}

func (r *postgresRepository) Statistics(ctx context.Context, from, to time.Time) (*Statistics, error) {
	stats := &Statistics{
		CountByStatus: make(map[Status]int),
		CountByMethod: make(map[Method]int),
	}

	err := r.db.GetContext(ctx, &stats.TotalRevenue, `
		SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE status IN ('completed', 'refunded', 'partially_refunded')
		  AND created_at >= $1 AND created_at < $2`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get total revenue: %w", err)
	}

	err = r.db.GetContext(ctx, &stats.TotalRefunds, `
		SELECT COALESCE(SUM(r.amount), 0) FROM refunds r
		JOIN payments p ON p.id = r.payment_id
		WHERE r.refunded_at >= $1 AND r.refunded_at < $2`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get total refunds: %w", err)
	}

	rows, err := r.db.QueryxContext(ctx, `
		SELECT status, method, COUNT(*) FROM payments
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY status, method`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status Status
		var method Method
		var count int
		if err := rows.Scan(&status, &method, &count); err != nil {
			return nil, fmt.Errorf("failed to scan payment counts: %w", err)
		}
		stats.CountByStatus[status] += count
		stats.CountByMethod[method] += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment counts: %w", err)
	}

	err = r.db.SelectContext(ctx, &stats.DailyRevenue, `
		SELECT to_char(date_trunc('day', created_at), 'YYYY-MM-DD') AS day,
		       COALESCE(SUM(amount), 0) AS revenue
		FROM payments
		WHERE status IN ('completed', 'refunded', 'partially_refunded')
		  AND created_at >= $1 AND created_at < $2
		GROUP BY 1 ORDER BY 1`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily revenue: %w", err)
	}

	return stats, nil
}

func (r *postgresRepository) attachRefund(ctx context.Context, p *Payment) error {
	var ref Refund
	err := r.db.GetContext(ctx, &ref, `SELECT * FROM refunds WHERE payment_id = $1`, p.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("failed to get refund: %w", err)
	}
	p.Refund = &ref
	return nil
}
