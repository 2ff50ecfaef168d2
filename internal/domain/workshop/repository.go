package workshop

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines workshop data access
type Repository interface {
	Create(ctx context.Context, w *Workshop) error
	GetByID(ctx context.Context, id uuid.UUID) (*Workshop, error)
	List(ctx context.Context, tag string, limit, offset int) ([]*Workshop, int, error)
	Update(ctx context.Context, w *Workshop) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Referenced reports whether any booking points at this workshop.
	Referenced(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates workshop repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, w *Workshop) error {
	query := `
		INSERT INTO workshops (id, title, description, price, capacity, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		w.ID, w.Title, w.Description, w.Price, w.Capacity, pq.Array([]string(w.Tags)), w.CreatedAt, w.UpdatedAt,
	)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Workshop, error) {
	query := `SELECT * FROM workshops WHERE id = $1`
	var w Workshop
	err := r.db.GetContext(ctx, &w, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWorkshopNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *repository) List(ctx context.Context, tag string, limit, offset int) ([]*Workshop, int, error) {
	var workshops []*Workshop
	var total int

	if tag != "" {
		countQuery := `SELECT COUNT(*) FROM workshops WHERE $1 = ANY(tags)`
		if err := r.db.GetContext(ctx, &total, countQuery, tag); err != nil {
			return nil, 0, err
		}
		query := `SELECT * FROM workshops WHERE $1 = ANY(tags) ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		if err := r.db.SelectContext(ctx, &workshops, query, tag, limit, offset); err != nil {
			return nil, 0, err
		}
		return workshops, total, nil
	}

	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM workshops`); err != nil {
		return nil, 0, err
	}
	query := `SELECT * FROM workshops ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &workshops, query, limit, offset); err != nil {
		return nil, 0, err
	}
	return workshops, total, nil
}

func (r *repository) Update(ctx context.Context, w *Workshop) error {
	query := `
		UPDATE workshops
		SET title = $2, description = $3, price = $4, capacity = $5, tags = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		w.ID, w.Title, w.Description, w.Price, w.Capacity, pq.Array([]string(w.Tags)), w.UpdatedAt,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrWorkshopNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM workshops WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrWorkshopNotFound
	}
	return nil
}

func (r *repository) Referenced(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM bookings WHERE item_id = $1)`
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, err
	}
	return exists, nil
}
