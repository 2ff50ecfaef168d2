package slot

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository for tests and local development.
// A per-slot mutex serializes Reserve/Release the way the conditional UPDATE
// does in Postgres; unrelated slots never contend.
type MemoryRepository struct {
	mu    sync.RWMutex
	slots map[uuid.UUID]*slotEntry
}

type slotEntry struct {
	mu   sync.Mutex
	slot TimeSlot
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{slots: make(map[uuid.UUID]*slotEntry)}
}

func (m *MemoryRepository) entry(id uuid.UUID) (*slotEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.slots[id]
	return e, ok
}

func (m *MemoryRepository) Create(ctx context.Context, s *TimeSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[s.ID] = &slotEntry{slot: *s}
	return nil
}

func (m *MemoryRepository) CreateBulk(ctx context.Context, slots []*TimeSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range slots {
		m.slots[s.ID] = &slotEntry{slot: *s}
	}
	return nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*TimeSlot, error) {
	e, ok := m.entry(id)
	if !ok {
		return nil, ErrSlotNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := e.slot
	return &cp, nil
}

func (m *MemoryRepository) Update(ctx context.Context, s *TimeSlot) error {
	e, ok := m.entry(s.ID)
	if !ok {
		return ErrSlotNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	current := e.slot.CurrentBookings
	e.slot = *s
	e.slot.CurrentBookings = current
	return nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.slots[id]
	if !ok {
		return ErrSlotNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.slot.CurrentBookings > 0 {
		return ErrSlotHasActiveBookings
	}
	delete(m.slots, id)
	return nil
}

func (m *MemoryRepository) ListAvailable(ctx context.Context, itemID uuid.NullUUID, from, to time.Time) ([]*TimeSlot, error) {
	m.mu.RLock()
	entries := make([]*slotEntry, 0, len(m.slots))
	for _, e := range m.slots {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	now := time.Now()
	var result []*TimeSlot
	for _, e := range entries {
		e.mu.Lock()
		s := e.slot
		e.mu.Unlock()

		if !s.HasAvailableCapacity() || !s.BookingAllowed(now) {
			continue
		}
		if s.StartTime.Before(from) || s.StartTime.After(to) {
			continue
		}
		if itemID.Valid && (!s.ItemID.Valid || s.ItemID.UUID != itemID.UUID) {
			continue
		}
		cp := s
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (m *MemoryRepository) Reserve(ctx context.Context, id uuid.UUID, count int) error {
	e, ok := m.entry(id)
	if !ok {
		return ErrSlotNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.slot.IsAvailable || !e.slot.BookingAllowed(time.Now()) {
		return ErrSlotClosed
	}
	if e.slot.CurrentBookings+count > e.slot.MaxCapacity {
		return ErrCapacityExceeded
	}
	e.slot.CurrentBookings += count
	e.slot.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryRepository) Release(ctx context.Context, id uuid.UUID, count int) error {
	e, ok := m.entry(id)
	if !ok {
		return ErrSlotNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.slot.CurrentBookings -= count
	if e.slot.CurrentBookings < 0 {
		e.slot.CurrentBookings = 0
	}
	e.slot.UpdatedAt = time.Now().UTC()
	return nil
}
