package slot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/atelio/atelio-api/internal/pkg/validate"
)

// availableCacheTTL bounds how stale a cached availability listing can be.
// Reservations are still guarded by the atomic Reserve, so a stale listing
// can never cause an over-booking.
const availableCacheTTL = 15 * time.Second

// Service is the availability service: the only component that reserves and
// releases slot capacity.
type Service struct {
	repo  Repository
	redis *redis.Client
}

// NewService creates slot service. redisClient may be nil; listings are then
// served straight from the repository.
func NewService(repo Repository, redisClient *redis.Client) *Service {
	return &Service{repo: repo, redis: redisClient}
}

// Reserve atomically holds capacity on a slot and returns a reservation token
func (s *Service) Reserve(ctx context.Context, slotID uuid.UUID, count int) (*Reservation, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: reservation count must be at least 1", validate.ErrInvalid)
	}

	if err := s.repo.Reserve(ctx, slotID, count); err != nil {
		return nil, err
	}

	res := &Reservation{
		Token:      uuid.New(),
		SlotID:     slotID,
		Count:      count,
		ReservedAt: time.Now().UTC(),
	}
	log.Debug().
		Str("slot_id", slotID.String()).
		Str("token", res.Token.String()).
		Int("count", count).
		Msg("Capacity reserved")
	return res, nil
}

// Release returns previously reserved capacity. Callers must release each
// reservation at most once; the decrement is clamped at zero but a double
// release is a caller bug, not something this service absorbs.
func (s *Service) Release(ctx context.Context, slotID uuid.UUID, count int) error {
	if count < 1 {
		return fmt.Errorf("%w: release count must be at least 1", validate.ErrInvalid)
	}
	if err := s.repo.Release(ctx, slotID, count); err != nil {
		return err
	}
	log.Debug().Str("slot_id", slotID.String()).Int("count", count).Msg("Capacity released")
	return nil
}

// Get returns a slot by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*TimeSlot, error) {
	return s.repo.GetByID(ctx, id)
}

// ListAvailable returns bookable slots in the window ordered by start time
func (s *Service) ListAvailable(ctx context.Context, itemID uuid.NullUUID, from, to time.Time) ([]*TimeSlot, error) {
	cacheKey := ""
	if s.redis != nil {
		item := "all"
		if itemID.Valid {
			item = itemID.UUID.String()
		}
		cacheKey = fmt.Sprintf("slots:available:%s:%d:%d", item, from.Unix(), to.Unix())

		if raw, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []*TimeSlot
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	slots, err := s.repo.ListAvailable(ctx, itemID, from, to)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if raw, err := json.Marshal(slots); err == nil {
			if err := s.redis.Set(ctx, cacheKey, raw, availableCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("Failed to cache slot listing")
			}
		}
	}
	return slots, nil
}

// Create validates and persists a single slot
func (s *Service) Create(ctx context.Context, req *CreateSlotRequest) (*TimeSlot, error) {
	slot, err := buildSlot(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("failed to create slot: %w", err)
	}
	log.Info().Str("slot_id", slot.ID.String()).Time("start", slot.StartTime).Msg("Slot created")
	return slot, nil
}

// CreateBulk validates and persists a batch of slots atomically
func (s *Service) CreateBulk(ctx context.Context, req *BulkCreateSlotsRequest) ([]*TimeSlot, error) {
	slots := make([]*TimeSlot, 0, len(req.Slots))
	for i := range req.Slots {
		slot, err := buildSlot(&req.Slots[i])
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		slots = append(slots, slot)
	}
	if err := s.repo.CreateBulk(ctx, slots); err != nil {
		return nil, fmt.Errorf("failed to create slots: %w", err)
	}
	log.Info().Int("count", len(slots)).Msg("Slots created in bulk")
	return slots, nil
}

// Update applies partial updates to a slot. Capacity can never be lowered
// below the bookings already placed.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateSlotRequest) (*TimeSlot, error) {
	slot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.StartTime != nil {
		slot.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		slot.EndTime = *req.EndTime
	}
	if err := validate.SlotWindow(slot.StartTime, slot.EndTime); err != nil {
		return nil, err
	}
	if req.MaxCapacity != nil {
		if err := validate.Capacity(*req.MaxCapacity); err != nil {
			return nil, err
		}
		if *req.MaxCapacity < slot.CurrentBookings {
			return nil, fmt.Errorf("%w: capacity cannot drop below current bookings (%d)",
				validate.ErrInvalid, slot.CurrentBookings)
		}
		slot.MaxCapacity = *req.MaxCapacity
	}
	if req.PriceOverride != nil {
		if err := validate.Price(*req.PriceOverride); err != nil {
			return nil, err
		}
		slot.PriceOverride = sql.NullInt64{Int64: *req.PriceOverride, Valid: true}
	}
	if req.IsAvailable != nil {
		slot.IsAvailable = *req.IsAvailable
	}
	slot.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, slot); err != nil {
		return nil, fmt.Errorf("failed to update slot: %w", err)
	}
	return slot, nil
}

// Delete removes a slot; fails with ErrSlotHasActiveBookings while booked
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("slot_id", id.String()).Msg("Slot deleted")
	return nil
}

func buildSlot(req *CreateSlotRequest) (*TimeSlot, error) {
	if err := validate.SlotWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if err := validate.Capacity(req.MaxCapacity); err != nil {
		return nil, err
	}
	if req.PriceOverride != nil {
		if err := validate.Price(*req.PriceOverride); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	slot := &TimeSlot{
		ID:          uuid.New(),
		Kind:        Kind(req.Kind),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsAvailable: true,
		MaxCapacity: req.MaxCapacity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.ItemID != nil {
		slot.ItemID = uuid.NullUUID{UUID: *req.ItemID, Valid: true}
	}
	if req.PriceOverride != nil {
		slot.PriceOverride = sql.NullInt64{Int64: *req.PriceOverride, Valid: true}
	}
	if req.IsAvailable != nil {
		slot.IsAvailable = *req.IsAvailable
	}
	return slot, nil
}
