package booking

import (
	"testing"
	"time"
)

func TestRefundAmountTiers(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	const total = int64(100_000)

	tests := []struct {
		name       string
		untilStart time.Duration
		want       int64
	}{
		{"200 hours ahead", 200 * time.Hour, 100_000},
		{"100 hours ahead", 100 * time.Hour, 80_000},
		{"48 hours ahead", 48 * time.Hour, 50_000},
		{"10 hours ahead", 10 * time.Hour, 0},
		{"exactly 168 hours", 168 * time.Hour, 100_000},
		{"exactly 72 hours", 72 * time.Hour, 80_000},
		{"exactly 24 hours", 24 * time.Hour, 50_000},
		{"just under 168 hours", 168*time.Hour - time.Minute, 80_000},
		{"just under 24 hours", 24*time.Hour - time.Minute, 0},
		{"slot already started", -2 * time.Hour, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RefundAmount(total, now.Add(tt.untilStart), now)
			if got != tt.want {
				t.Errorf("RefundAmount(%d, +%v) = %d, want %d", total, tt.untilStart, got, tt.want)
			}
		})
	}
}

func TestRefundAmountZeroTotal(t *testing.T) {
	now := time.Now()
	if got := RefundAmount(0, now.Add(200*time.Hour), now); got != 0 {
		t.Errorf("refund on zero total = %d, want 0", got)
	}
}
