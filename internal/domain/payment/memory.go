package payment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository used in tests. It enforces the
// same idempotency key uniqueness the database does.
type MemoryRepository struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*Payment
	byKey    map[string]uuid.UUID
	refunds  map[uuid.UUID]*Refund // keyed by payment id
}

// NewMemoryRepository creates an empty in-memory payment repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		payments: make(map[uuid.UUID]*Payment),
		byKey:    make(map[string]uuid.UUID),
		refunds:  make(map[uuid.UUID]*Refund),
	}
}

func (m *MemoryRepository) Create(_ context.Context, p *Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byKey[p.IdempotencyKey]; exists {
		return ErrIdempotencyConflict
	}
	cp := *p
	m.payments[p.ID] = &cp
	m.byKey[p.IdempotencyKey] = p.ID
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot(id)
}

func (m *MemoryRepository) GetByIdempotencyKey(_ context.Context, key string) (*Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byKey[key]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	return m.snapshot(id)
}

func (m *MemoryRepository) GetByBookingID(_ context.Context, bookingID uuid.UUID) (*Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest *Payment
	for _, p := range m.payments {
		if p.BookingID != bookingID {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, ErrPaymentNotFound
	}
	return m.snapshot(latest.ID)
}

func (m *MemoryRepository) Update(_ context.Context, p *Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.payments[p.ID]; !ok {
		return ErrPaymentNotFound
	}
	cp := *p
	cp.Refund = nil
	m.payments[p.ID] = &cp
	return nil
}

func (m *MemoryRepository) CreateRefund(_ context.Context, r *Refund) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *r
	m.refunds[r.PaymentID] = &cp
	return nil
}

func (m *MemoryRepository) Statistics(_ context.Context, from, to time.Time) (*Statistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &Statistics{
		CountByStatus: make(map[Status]int),
		CountByMethod: make(map[Method]int),
	}
	daily := make(map[string]int64)

	for _, p := range m.payments {
		if p.CreatedAt.Before(from) || !p.CreatedAt.Before(to) {
			continue
		}
		stats.CountByStatus[p.Status]++
		stats.CountByMethod[p.Method]++
		switch p.Status {
		case StatusCompleted, StatusRefunded, StatusPartiallyRefunded:
			stats.TotalRevenue += p.Amount
			daily[p.CreatedAt.UTC().Format("2006-01-02")] += p.Amount
		}
	}
	for _, r := range m.refunds {
		if r.RefundedAt.Before(from) || !r.RefundedAt.Before(to) {
			continue
		}
		stats.TotalRefunds += r.Amount
	}

	days := make([]string, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		stats.DailyRevenue = append(stats.DailyRevenue, DailyRevenue{Day: day, Revenue: daily[day]})
	}
	return stats, nil
}

// snapshot copies a payment with its refund attached; caller holds m.mu
func (m *MemoryRepository) snapshot(id uuid.UUID) (*Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	cp := *p
	if r, ok := m.refunds[id]; ok {
		rc := *r
		cp.Refund = &rc
	}
	return &cp, nil
}
