package workshop

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository used in tests and local
// development. Safe for concurrent use.
type MemoryRepository struct {
	mu         sync.RWMutex
	workshops  map[uuid.UUID]*Workshop
	referenced map[uuid.UUID]bool
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		workshops:  make(map[uuid.UUID]*Workshop),
		referenced: make(map[uuid.UUID]bool),
	}
}

func (m *MemoryRepository) Create(ctx context.Context, w *Workshop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *w
	m.workshops[w.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Workshop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.workshops[id]
	if !ok {
		return nil, ErrWorkshopNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *MemoryRepository) List(ctx context.Context, tag string, limit, offset int) ([]*Workshop, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []*Workshop
	for _, w := range m.workshops {
		if tag != "" && !hasTag(w, tag) {
			continue
		}
		cp := *w
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *MemoryRepository) Update(ctx context.Context, w *Workshop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workshops[w.ID]; !ok {
		return ErrWorkshopNotFound
	}
	cp := *w
	m.workshops[w.ID] = &cp
	return nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workshops[id]; !ok {
		return ErrWorkshopNotFound
	}
	delete(m.workshops, id)
	return nil
}

func (m *MemoryRepository) Referenced(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.referenced[id], nil
}

// MarkReferenced records that a booking references the workshop (test helper)
func (m *MemoryRepository) MarkReferenced(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.referenced[id] = true
}

func hasTag(w *Workshop, tag string) bool {
	for _, t := range w.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
