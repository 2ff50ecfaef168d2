package validate

import (
	"strings"
	"testing"
	"time"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"too short", "ab", true},
		{"min length", "abc", false},
		{"normal", "Pottery for beginners", false},
		{"max length", strings.Repeat("a", 100), false},
		{"too long", strings.Repeat("a", 101), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Title(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Title(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestDescription(t *testing.T) {
	if err := Description("too short"); err == nil {
		t.Error("expected error for 9-char description")
	}
	if err := Description("exactly 10"); err != nil {
		t.Errorf("unexpected error at lower bound: %v", err)
	}
	if err := Description(strings.Repeat("x", 1001)); err == nil {
		t.Error("expected error above upper bound")
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		wantErr bool
	}{
		{"negative", -1, true},
		{"zero is free", 0, false},
		{"normal", 50_000, false},
		{"max", MaxPrice, false},
		{"above max", MaxPrice + 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Price(tt.amount)
			if (err != nil) != tt.wantErr {
				t.Errorf("Price(%d) error = %v, wantErr %v", tt.amount, err, tt.wantErr)
			}
		})
	}
}

func TestCapacity(t *testing.T) {
	for _, n := range []int{1, 50, 100} {
		if err := Capacity(n); err != nil {
			t.Errorf("Capacity(%d) unexpected error: %v", n, err)
		}
	}
	for _, n := range []int{0, -1, 101} {
		if err := Capacity(n); err == nil {
			t.Errorf("Capacity(%d) expected error", n)
		}
	}
}

func TestRating(t *testing.T) {
	if err := Rating(0); err == nil {
		t.Error("expected error for rating 0")
	}
	if err := Rating(5); err != nil {
		t.Errorf("unexpected error for rating 5: %v", err)
	}
	if err := Rating(6); err == nil {
		t.Error("expected error for rating 6")
	}
}

func TestNotes(t *testing.T) {
	if err := Notes(""); err != nil {
		t.Errorf("empty notes should be valid: %v", err)
	}
	if err := Notes(strings.Repeat("n", 500)); err != nil {
		t.Errorf("500-char notes should be valid: %v", err)
	}
	if err := Notes(strings.Repeat("n", 501)); err == nil {
		t.Error("expected error for 501-char notes")
	}
}

func TestSlotWindow(t *testing.T) {
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		end     time.Time
		wantErr bool
	}{
		{"end before start", base.Add(-time.Hour), true},
		{"end equals start", base, true},
		{"too short", base.Add(29 * time.Minute), true},
		{"min duration", base.Add(30 * time.Minute), false},
		{"max duration", base.Add(480 * time.Minute), false},
		{"too long", base.Add(481 * time.Minute), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SlotWindow(base, tt.end)
			if (err != nil) != tt.wantErr {
				t.Errorf("SlotWindow error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
