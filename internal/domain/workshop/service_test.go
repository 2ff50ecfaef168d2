package workshop_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/atelio/atelio-api/internal/domain/workshop"
	"github.com/atelio/atelio-api/internal/pkg/validate"
)

func newTestService() (*workshop.Service, *workshop.MemoryRepository) {
	repo := workshop.NewMemoryRepository()
	return workshop.NewService(repo), repo
}

func TestCreateValidatesFields(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  workshop.CreateWorkshopRequest
	}{
		{"short title", workshop.CreateWorkshopRequest{Title: "ab", Description: "a valid description", Price: 1000, Capacity: 10}},
		{"short description", workshop.CreateWorkshopRequest{Title: "Pottery", Description: "short", Price: 1000, Capacity: 10}},
		{"negative price", workshop.CreateWorkshopRequest{Title: "Pottery", Description: "a valid description", Price: -1, Capacity: 10}},
		{"zero capacity", workshop.CreateWorkshopRequest{Title: "Pottery", Description: "a valid description", Price: 1000, Capacity: 0}},
		{"capacity above max", workshop.CreateWorkshopRequest{Title: "Pottery", Description: "a valid description", Price: 1000, Capacity: 101}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, &tt.req); !errors.Is(err, validate.ErrInvalid) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpdateLockedFieldsWhenReferenced(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	w, err := svc.Create(ctx, &workshop.CreateWorkshopRequest{
		Title:       "Ceramics intro",
		Description: "Two hours of wheel throwing",
		Price:       50_000,
		Capacity:    8,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	repo.MarkReferenced(w.ID)

	newCapacity := 12
	if _, err := svc.Update(ctx, w.ID, &workshop.UpdateWorkshopRequest{Capacity: &newCapacity}); !errors.Is(err, workshop.ErrWorkshopInUse) {
		t.Errorf("expected ErrWorkshopInUse for capacity change, got %v", err)
	}

	// Price and description stay editable
	newPrice := int64(60_000)
	updated, err := svc.Update(ctx, w.ID, &workshop.UpdateWorkshopRequest{Price: &newPrice})
	if err != nil {
		t.Fatalf("price update failed: %v", err)
	}
	if updated.Price != newPrice {
		t.Errorf("price = %d, want %d", updated.Price, newPrice)
	}
}

func TestGetMissingWorkshop(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Get(context.Background(), uuid.New())
	if !errors.Is(err, workshop.ErrWorkshopNotFound) {
		t.Errorf("expected ErrWorkshopNotFound, got %v", err)
	}
}

func TestListFiltersByTag(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, &workshop.CreateWorkshopRequest{
		Title: "Ceramics intro", Description: "Two hours of wheel throwing", Price: 50_000, Capacity: 8,
		Tags: []string{"ceramics", "beginner"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err = svc.Create(ctx, &workshop.CreateWorkshopRequest{
		Title: "Screen printing", Description: "Print your own posters", Price: 30_000, Capacity: 12,
		Tags: []string{"printing"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, total, err := svc.List(ctx, "ceramics", 10, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(got) != 1 {
		t.Fatalf("expected 1 workshop with tag, got total=%d len=%d", total, len(got))
	}
	if got[0].Title != "Ceramics intro" {
		t.Errorf("unexpected workshop: %s", got[0].Title)
	}
}
