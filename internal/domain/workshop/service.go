package workshop

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/atelio/atelio-api/internal/pkg/validate"
)

// Service handles workshop catalog business logic. Create/Update/Delete are
// admin-only; the role check lives in the route middleware.
type Service struct {
	repo Repository
}

// NewService creates workshop service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new workshop
func (s *Service) Create(ctx context.Context, req *CreateWorkshopRequest) (*Workshop, error) {
	if err := validate.Title(req.Title); err != nil {
		return nil, err
	}
	if err := validate.Description(req.Description); err != nil {
		return nil, err
	}
	if err := validate.Price(req.Price); err != nil {
		return nil, err
	}
	if err := validate.Capacity(req.Capacity); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	w := &Workshop{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Capacity:    req.Capacity,
		Tags:        req.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to create workshop: %w", err)
	}

	log.Info().Str("workshop_id", w.ID.String()).Str("title", w.Title).Msg("Workshop created")
	return w, nil
}

// Get returns a workshop by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Workshop, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns workshops, optionally filtered by tag
func (s *Service) List(ctx context.Context, tag string, limit, offset int) ([]*Workshop, int, error) {
	return s.repo.List(ctx, tag, limit, offset)
}

// Update applies partial updates. Once a workshop is referenced by bookings
// only price, description and tags may change; existing bookings keep the
// total they were created with either way.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateWorkshopRequest) (*Workshop, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	referenced, err := s.repo.Referenced(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check bookings: %w", err)
	}
	if referenced && (req.Title != nil || req.Capacity != nil) {
		return nil, ErrWorkshopInUse
	}

	if req.Title != nil {
		if err := validate.Title(*req.Title); err != nil {
			return nil, err
		}
		w.Title = *req.Title
	}
	if req.Description != nil {
		if err := validate.Description(*req.Description); err != nil {
			return nil, err
		}
		w.Description = *req.Description
	}
	if req.Price != nil {
		if err := validate.Price(*req.Price); err != nil {
			return nil, err
		}
		w.Price = *req.Price
	}
	if req.Capacity != nil {
		if err := validate.Capacity(*req.Capacity); err != nil {
			return nil, err
		}
		w.Capacity = *req.Capacity
	}
	if req.Tags != nil {
		w.Tags = req.Tags
	}
	w.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to update workshop: %w", err)
	}
	return w, nil
}

// Delete removes a workshop from the catalog
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("workshop_id", id.String()).Msg("Workshop deleted")
	return nil
}
