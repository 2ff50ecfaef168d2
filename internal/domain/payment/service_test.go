package payment_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/atelio/atelio-api/internal/domain/payment"
)

func newTestService(gw *payment.FakeGateway) (*payment.Service, *payment.MemoryRepository) {
	repo := payment.NewMemoryRepository()
	return payment.NewService(repo, gw, time.Second, 0), repo
}

func chargeRequest(key string) payment.ChargeRequest {
	return payment.ChargeRequest{
		BookingID:      uuid.New(),
		BookingRef:     "BK-TEST",
		Amount:         15000,
		Currency:       "EUR",
		Method:         payment.MethodCard,
		IdempotencyKey: key,
	}
}

/* =========================
   Charge + idempotency
   ========================= */

func TestChargeSucceeds(t *testing.T) {
	gw := payment.NewFakeGateway()
	svc, _ := newTestService(gw)

	p, err := svc.Charge(context.Background(), chargeRequest("key-1"))
	if err != nil {
		t.Fatalf("charge failed: %v", err)
	}
	if p.Status != payment.StatusCompleted {
		t.Errorf("status = %s, want completed", p.Status)
	}
	if !p.PaidAt.Valid {
		t.Errorf("paid_at not set")
	}
	if !p.TransactionID.Valid || p.TransactionID.String == "" {
		t.Errorf("transaction id not recorded")
	}
	if gw.ChargeCalls != 1 {
		t.Errorf("gateway charged %d times, want 1", gw.ChargeCalls)
	}
}

func TestChargeReplaySkipsGateway(t *testing.T) {
	gw := payment.NewFakeGateway()
	svc, _ := newTestService(gw)
	ctx := context.Background()

	first, err := svc.Charge(ctx, chargeRequest("key-replay"))
	if err != nil {
		t.Fatalf("first charge failed: %v", err)
	}
	second, err := svc.Charge(ctx, chargeRequest("key-replay"))
	if err != nil {
		t.Fatalf("replayed charge failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("replay created a second payment")
	}
	if gw.ChargeCalls != 1 {
		t.Errorf("gateway charged %d times, want 1", gw.ChargeCalls)
	}
}

func TestChargeDeclined(t *testing.T) {
	gw := payment.NewFakeGateway()
	gw.DeclineWith = "insufficient funds"
	svc, _ := newTestService(gw)
	ctx := context.Background()

	p, err := svc.Charge(ctx, chargeRequest("key-declined"))
	if !errors.Is(err, payment.ErrPaymentDeclined) {
		t.Fatalf("expected ErrPaymentDeclined, got %v", err)
	}
	if p.Status != payment.StatusFailed {
		t.Errorf("status = %s, want failed", p.Status)
	}
	if p.FailureReason.String != "insufficient funds" {
		t.Errorf("failure reason = %q", p.FailureReason.String)
	}

	// The decline is a recorded outcome; replaying must not hit the gateway
	if _, err := svc.Charge(ctx, chargeRequest("key-declined")); !errors.Is(err, payment.ErrPaymentDeclined) {
		t.Fatalf("expected ErrPaymentDeclined on replay, got %v", err)
	}
	if gw.ChargeCalls != 1 {
		t.Errorf("gateway charged %d times, want 1", gw.ChargeCalls)
	}
}

func TestChargeTimeoutLeavesRetryableRecord(t *testing.T) {
	gw := payment.NewFakeGateway()
	gw.TimeoutNext = 1
	svc, repo := newTestService(gw)
	ctx := context.Background()

	_, err := svc.Charge(ctx, chargeRequest("key-timeout"))
	if !errors.Is(err, payment.ErrGatewayTimeout) {
		t.Fatalf("expected ErrGatewayTimeout, got %v", err)
	}

	stuck, err := repo.GetByIdempotencyKey(ctx, "key-timeout")
	if err != nil {
		t.Fatalf("payment row missing after timeout: %v", err)
	}
	if stuck.Status != payment.StatusProcessing {
		t.Errorf("status after timeout = %s, want processing", stuck.Status)
	}

	// Same key again: the gateway is re-driven and dedupes on its side
	p, err := svc.Charge(ctx, chargeRequest("key-timeout"))
	if err != nil {
		t.Fatalf("retry after timeout failed: %v", err)
	}
	if p.ID != stuck.ID {
		t.Errorf("retry created a second payment")
	}
	if p.Status != payment.StatusCompleted {
		t.Errorf("status = %s, want completed", p.Status)
	}
}

func TestChargeAutoRetriesTimeouts(t *testing.T) {
	gw := payment.NewFakeGateway()
	gw.TimeoutNext = 2
	repo := payment.NewMemoryRepository()
	svc := payment.NewService(repo, gw, time.Second, 2)

	p, err := svc.Charge(context.Background(), chargeRequest("key-auto-retry"))
	if err != nil {
		t.Fatalf("charge failed: %v", err)
	}
	if p.Status != payment.StatusCompleted {
		t.Errorf("status = %s, want completed", p.Status)
	}
	if gw.ChargeCalls != 3 {
		t.Errorf("gateway called %d times, want 3", gw.ChargeCalls)
	}
}

func TestConcurrentChargesSameKey(t *testing.T) {
	gw := payment.NewFakeGateway()
	svc, _ := newTestService(gw)
	ctx := context.Background()

	const goroutines = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	ids := make(map[uuid.UUID]bool)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := svc.Charge(ctx, chargeRequest("key-race"))
			if err != nil {
				t.Errorf("charge failed: %v", err)
				return
			}
			mu.Lock()
			ids[p.ID] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(ids) != 1 {
		t.Fatalf("expected a single payment record, got %d", len(ids))
	}
}

/* =========================
   Retry / Cancel
   ========================= */

func TestRetryOnlyAllowedForFailed(t *testing.T) {
	gw := payment.NewFakeGateway()
	svc, _ := newTestService(gw)
	ctx := context.Background()

	p, err := svc.Charge(ctx, chargeRequest("key-retry-guard"))
	if err != nil {
		t.Fatalf("charge failed: %v", err)
	}

	if _, err := svc.Retry(ctx, p.ID); !errors.Is(err, payment.ErrRetryNotAllowed) {
		t.Fatalf("expected ErrRetryNotAllowed, got %v", err)
	}
}

func TestRetryAfterDecline(t *testing.T) {
	gw := payment.NewFakeGateway()
	gw.DeclineWith = "card expired"
	svc, _ := newTestService(gw)
	ctx := context.Background()

	p, err := svc.Charge(ctx, chargeRequest("key-retry"))
	if !errors.Is(err, payment.ErrPaymentDeclined) {
		t.Fatalf("expected decline, got %v", err)
	}

	gw.DeclineWith = ""
	retried, err := svc.Retry(ctx, p.ID)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if retried.Status != payment.StatusCompleted {
		t.Errorf("status = %s, want completed", retried.Status)
	}
	if retried.FailureReason.Valid {
		t.Errorf("failure reason not cleared after successful retry")
	}
}

func TestCancelOnlyAllowedForPending(t *testing.T) {
	gw := payment.NewFakeGateway()
	gw.PendingResult = true
	svc, _ := newTestService(gw)
	ctx := context.Background()

	p, err := svc.Charge(ctx, chargeRequest("key-cancel"))
	if err != nil {
		t.Fatalf("charge failed: %v", err)
	}
	if p.Status != payment.StatusPending {
		t.Fatalf("status = %s, want pending", p.Status)
	}

	cancelled, err := svc.Cancel(ctx, p.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != payment.StatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}

	// A cancelled payment cannot be cancelled again
	if _, err := svc.Cancel(ctx, p.ID); !errors.Is(err, payment.ErrCancelNotAllowed) {
		t.Fatalf("expected ErrCancelNotAllowed, got %v", err)
	}

	gw.PendingResult = false
	completed, err := svc.Charge(ctx, chargeRequest("key-cancel-2"))
	if err != nil {
		t.Fatalf("charge failed: %v", err)
	}
	if _, err := svc.Cancel(ctx, completed.ID); !errors.Is(err, payment.ErrCancelNotAllowed) {
		t.Fatalf("expected ErrCancelNotAllowed for completed payment, got %v", err)
	}
}

/* =========================
   Refunds
   ========================= */

func TestRefundFull(t *testing.T) {
	gw := payment.NewFakeGateway()
	svc, _ := newTestService(gw)
	ctx := context.Background()

	p, err := svc.Charge(ctx, chargeRequest("key-refund-full"))
	if err != nil {
		t.Fatalf("charge failed: %v", err)
	}

	ref, err := svc.Refund(ctx, payment.RefundRequest{
		PaymentID: p.ID,
		Amount:    p.Amount,
		Reason:    "booking cancelled",
	})
	if err != nil {
		t.Fatalf("refund failed: %v", err)
	}
	if ref.Amount != p.Amount {
		t.Errorf("refund amount = %d, want %d", ref.Amount, p.Amount)
	}

	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != payment.StatusRefunded {
		t.Errorf("status = %s, want refunded", got.Status)
	}
	if got.Refund == nil {
		t.Errorf("refund not attached to payment")
	}
}

func TestRefundPartial(t *testing.T) {
	gw := payment.NewFakeGateway()
	svc, _ := newTestService(gw)
	ctx := context.Background()

	p, err := svc.Charge(ctx, chargeRequest("key-refund-partial"))
	if err != nil {
		t.Fatalf("charge failed: %v", err)
	}

	half := p.Amount / 2
	if _, err := svc.Refund(ctx, payment.RefundRequest{PaymentID: p.ID, Amount: half, Reason: "late cancellation"}); err != nil {
		t.Fatalf("refund failed: %v", err)
	}

	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != payment.StatusPartiallyRefunded {
		t.Errorf("status = %s, want partially_refunded", got.Status)
	}
	if got.Refund.Amount != half {
		t.Errorf("refund amount = %d, want %d", got.Refund.Amount, half)
	}
}

func TestRefundNeverIssuedTwice(t *testing.T) {
	gw := payment.NewFakeGateway()
	svc, _ := newTestService(gw)
	ctx := context.Background()

	p, err := svc.Charge(ctx, chargeRequest("key-refund-twice"))
	if err != nil {
		t.Fatalf("charge failed: %v", err)
	}

	req := payment.RefundRequest{PaymentID: p.ID, Amount: p.Amount, Reason: "cancelled"}
	if _, err := svc.Refund(ctx, req); err != nil {
		t.Fatalf("first refund failed: %v", err)
	}
	if _, err := svc.Refund(ctx, req); !errors.Is(err, payment.ErrRefundNotAllowed) {
		t.Fatalf("expected ErrRefundNotAllowed, got %v", err)
	}
	if gw.RefundCalls != 1 {
		t.Errorf("gateway refunded %d times, want 1", gw.RefundCalls)
	}
}

func TestRefundAmountBounds(t *testing.T) {
	gw := payment.NewFakeGateway()
	svc, _ := newTestService(gw)
	ctx := context.Background()

	p, err := svc.Charge(ctx, chargeRequest("key-refund-bounds"))
	if err != nil {
		t.Fatalf("charge failed: %v", err)
	}

	for _, amount := range []int64{0, -100, p.Amount + 1} {
		_, err := svc.Refund(ctx, payment.RefundRequest{PaymentID: p.ID, Amount: amount, Reason: "x"})
		if !errors.Is(err, payment.ErrInvalidRefundAmount) {
			t.Errorf("amount %d: expected ErrInvalidRefundAmount, got %v", amount, err)
		}
	}
}

/* =========================
   Statistics
   ========================= */

func TestGetByBookingReturnsLatest(t *testing.T) {
	gw := payment.NewFakeGateway()
	svc, _ := newTestService(gw)
	ctx := context.Background()

	req := chargeRequest("key-by-booking")
	created, err := svc.Charge(ctx, req)
	if err != nil {
		t.Fatalf("charge failed: %v", err)
	}

	got, err := svc.GetByBooking(ctx, req.BookingID)
	if err != nil {
		t.Fatalf("get by booking failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("payment id = %s, want %s", got.ID, created.ID)
	}

	if _, err := svc.GetByBooking(ctx, uuid.New()); !errors.Is(err, payment.ErrPaymentNotFound) {
		t.Errorf("unknown booking err = %v, want ErrPaymentNotFound", err)
	}
}

func TestStatistics(t *testing.T) {
	gw := payment.NewFakeGateway()
	svc, _ := newTestService(gw)
	ctx := context.Background()

	first, err := svc.Charge(ctx, chargeRequest("key-stats-1"))
	if err != nil {
		t.Fatalf("charge failed: %v", err)
	}
	if _, err := svc.Charge(ctx, chargeRequest("key-stats-2")); err != nil {
		t.Fatalf("charge failed: %v", err)
	}

	gw.DeclineWith = "insufficient funds"
	if _, err := svc.Charge(ctx, chargeRequest("key-stats-3")); !errors.Is(err, payment.ErrPaymentDeclined) {
		t.Fatalf("expected decline, got %v", err)
	}
	gw.DeclineWith = ""

	if _, err := svc.Refund(ctx, payment.RefundRequest{PaymentID: first.ID, Amount: 5000, Reason: "partial"}); err != nil {
		t.Fatalf("refund failed: %v", err)
	}

	stats, err := svc.Statistics(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("statistics failed: %v", err)
	}

	if stats.TotalRevenue != 30000 {
		t.Errorf("total revenue = %d, want 30000", stats.TotalRevenue)
	}
	if stats.TotalRefunds != 5000 {
		t.Errorf("total refunds = %d, want 5000", stats.TotalRefunds)
	}
	if stats.CountByStatus[payment.StatusFailed] != 1 {
		t.Errorf("failed count = %d, want 1", stats.CountByStatus[payment.StatusFailed])
	}
	if stats.CountByStatus[payment.StatusCompleted] != 1 {
		t.Errorf("completed count = %d, want 1", stats.CountByStatus[payment.StatusCompleted])
	}
	if stats.CountByStatus[payment.StatusPartiallyRefunded] != 1 {
		t.Errorf("partially refunded count = %d, want 1", stats.CountByStatus[payment.StatusPartiallyRefunded])
	}
	if stats.CountByMethod[payment.MethodCard] != 3 {
		t.Errorf("card count = %d, want 3", stats.CountByMethod[payment.MethodCard])
	}
	if len(stats.DailyRevenue) != 1 {
		t.Errorf("daily revenue points = %d, want 1", len(stats.DailyRevenue))
	}
}
