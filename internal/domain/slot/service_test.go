package slot_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/atelio/atelio-api/internal/domain/slot"
)

func newTestService() (*slot.Service, *slot.MemoryRepository) {
	repo := slot.NewMemoryRepository()
	return slot.NewService(repo, nil), repo
}

func createTestSlot(t *testing.T, svc *slot.Service, capacity int, startsIn time.Duration) *slot.TimeSlot {
	t.Helper()
	start := time.Now().Add(startsIn)
	s, err := svc.Create(context.Background(), &slot.CreateSlotRequest{
		Kind:        "workshop",
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		MaxCapacity: capacity,
	})
	if err != nil {
		t.Fatalf("failed to create slot: %v", err)
	}
	return s
}

/* =========================
   Concurrency: Reserve
   ========================= */

func TestConcurrentReserveNeverOverbooks(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	const capacity = 5
	const goroutines = 20

	s := createTestSlot(t, svc, capacity, 48*time.Hour)

	var wg sync.WaitGroup
	success := 0
	var mu sync.Mutex

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			_, err := svc.Reserve(ctx, s.ID, 1)
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
				return
			}
			if !errors.Is(err, slot.ErrCapacityExceeded) {
				t.Errorf("goroutine %d: unexpected error: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if success != capacity {
		t.Fatalf("expected exactly %d successful reservations, got %d", capacity, success)
	}

	got, err := svc.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("failed to load slot: %v", err)
	}
	if got.CurrentBookings != capacity {
		t.Fatalf("current_bookings = %d, want %d", got.CurrentBookings, capacity)
	}
}

func TestReserveReleaseBalance(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	const capacity = 10
	s := createTestSlot(t, svc, capacity, 48*time.Hour)

	// Interleave reservations and releases and check the counter equals
	// successes minus releases at the end.
	reserved := 0
	for i := 0; i < 7; i++ {
		if _, err := svc.Reserve(ctx, s.ID, 1); err != nil {
			t.Fatalf("reserve %d failed: %v", i, err)
		}
		reserved++
	}
	for i := 0; i < 3; i++ {
		if err := svc.Release(ctx, s.ID, 1); err != nil {
			t.Fatalf("release %d failed: %v", i, err)
		}
		reserved--
	}

	got, err := svc.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("failed to load slot: %v", err)
	}
	if got.CurrentBookings != reserved {
		t.Fatalf("current_bookings = %d, want %d", got.CurrentBookings, reserved)
	}
}

func TestReserveMultiSeatRespectsHeadroom(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	s := createTestSlot(t, svc, 5, 48*time.Hour)

	if _, err := svc.Reserve(ctx, s.ID, 3); err != nil {
		t.Fatalf("first reserve failed: %v", err)
	}
	if _, err := svc.Reserve(ctx, s.ID, 3); !errors.Is(err, slot.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if _, err := svc.Reserve(ctx, s.ID, 2); err != nil {
		t.Fatalf("filling remaining capacity failed: %v", err)
	}
}

/* =========================
   Guards
   ========================= */

func TestReserveFailsAfterCutoff(t *testing.T) {
	svc, _ := newTestService()

	// Slot starts in 30 minutes, inside the 1 hour cutoff
	s := createTestSlot(t, svc, 5, 30*time.Minute)

	_, err := svc.Reserve(context.Background(), s.ID, 1)
	if !errors.Is(err, slot.ErrSlotClosed) {
		t.Fatalf("expected ErrSlotClosed, got %v", err)
	}
}

func TestReserveFailsWhenUnavailable(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	s := createTestSlot(t, svc, 5, 48*time.Hour)

	off := false
	if _, err := svc.Update(ctx, s.ID, &slot.UpdateSlotRequest{IsAvailable: &off}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if _, err := svc.Reserve(ctx, s.ID, 1); !errors.Is(err, slot.ErrSlotClosed) {
		t.Fatalf("expected ErrSlotClosed, got %v", err)
	}
}

func TestReserveUnknownSlot(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Reserve(context.Background(), uuid.New(), 1)
	if !errors.Is(err, slot.ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestDeleteWithActiveBookings(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	s := createTestSlot(t, svc, 5, 48*time.Hour)

	if _, err := svc.Reserve(ctx, s.ID, 1); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	if err := svc.Delete(ctx, s.ID); !errors.Is(err, slot.ErrSlotHasActiveBookings) {
		t.Fatalf("expected ErrSlotHasActiveBookings, got %v", err)
	}

	if err := svc.Release(ctx, s.ID, 1); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if err := svc.Delete(ctx, s.ID); err != nil {
		t.Fatalf("delete after release failed: %v", err)
	}
}

/* =========================
   Listing
   ========================= */

func TestListAvailableFiltersAndOrders(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	later := createTestSlot(t, svc, 5, 72*time.Hour)
	sooner := createTestSlot(t, svc, 5, 24*time.Hour)
	insideCutoff := createTestSlot(t, svc, 5, 30*time.Minute)

	// Fill one slot completely; it must disappear from the listing
	full := createTestSlot(t, svc, 1, 48*time.Hour)
	if _, err := svc.Reserve(ctx, full.ID, 1); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	got, err := svc.ListAvailable(ctx, uuid.NullUUID{}, time.Now(), time.Now().Add(30*24*time.Hour))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(got) != 2 {
		ids := make([]string, 0, len(got))
		for _, s := range got {
			ids = append(ids, s.ID.String())
		}
		t.Fatalf("expected 2 slots, got %d (%v)", len(got), ids)
	}
	if got[0].ID != sooner.ID || got[1].ID != later.ID {
		t.Errorf("slots not ordered by start time ascending")
	}
	for _, s := range got {
		if s.ID == insideCutoff.ID || s.ID == full.ID {
			t.Errorf("slot %s should have been filtered out", s.ID)
		}
	}
}

func TestCapacityValidationOnCreate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, capacity := range []int{0, 101} {
		start := time.Now().Add(48 * time.Hour)
		_, err := svc.Create(ctx, &slot.CreateSlotRequest{
			Kind:        "workshop",
			StartTime:   start,
			EndTime:     start.Add(time.Hour),
			MaxCapacity: capacity,
		})
		if err == nil {
			t.Errorf("capacity %d: expected validation error", capacity)
		}
	}
}

func TestBulkCreate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	req := &slot.BulkCreateSlotsRequest{}
	for day := 1; day <= 5; day++ {
		start := time.Now().AddDate(0, 0, day)
		req.Slots = append(req.Slots, slot.CreateSlotRequest{
			Kind:        "space",
			StartTime:   start,
			EndTime:     start.Add(4 * time.Hour),
			MaxCapacity: 3,
		})
	}

	created, err := svc.CreateBulk(ctx, req)
	if err != nil {
		t.Fatalf("bulk create failed: %v", err)
	}
	if len(created) != 5 {
		t.Fatalf("expected 5 slots, got %d", len(created))
	}
	for _, s := range created {
		if s.Kind != slot.KindSpace {
			t.Errorf("kind = %s, want space", s.Kind)
		}
	}
}
