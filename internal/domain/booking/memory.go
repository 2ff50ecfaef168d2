package booking

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository for tests. It enforces the same
// version check the database does.
type MemoryRepository struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*Booking
}

// NewMemoryRepository creates an empty in-memory booking repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{bookings: make(map[uuid.UUID]*Booking)}
}

func (m *MemoryRepository) Create(_ context.Context, b *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *b
	cp.Payment = nil
	m.bookings[b.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *MemoryRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []*Booking{}
	for _, b := range m.bookings {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) Update(_ context.Context, b *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.bookings[b.ID]
	if !ok {
		return ErrBookingNotFound
	}
	if stored.Version != b.Version {
		return ErrConcurrencyConflict
	}
	cp := *b
	cp.Payment = nil
	cp.Version++
	m.bookings[b.ID] = &cp
	b.Version++
	return nil
}
