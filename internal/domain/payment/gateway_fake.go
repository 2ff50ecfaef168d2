package payment

import (
	"context"
	"fmt"
	"sync"
)

// FakeGateway is an in-memory Gateway for tests. It counts calls, can be
// scripted to decline or time out, and deduplicates charges by idempotency
// key the way a real gateway does.
type FakeGateway struct {
	mu sync.Mutex

	ChargeCalls int
	RetryCalls  int
	CancelCalls int
	RefundCalls int

	// DeclineWith, when set, makes charges come back failed with this reason
	DeclineWith string
	// TimeoutNext makes the next N charge calls return ErrGatewayTimeout
	TimeoutNext int
	// PendingResult makes charges come back pending instead of completed
	PendingResult bool

	results map[string]*GatewayResult // by idempotency key
	seq     int
}

// NewFakeGateway creates a fake gateway that approves everything
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{results: make(map[string]*GatewayResult)}
}

func (g *FakeGateway) Charge(_ context.Context, req GatewayChargeRequest) (*GatewayResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.ChargeCalls++

	if g.TimeoutNext > 0 {
		g.TimeoutNext--
		return nil, ErrGatewayTimeout
	}

	if prev, ok := g.results[req.IdempotencyKey]; ok {
		cp := *prev
		return &cp, nil
	}

	g.seq++
	result := &GatewayResult{
		Status:        StatusCompleted,
		TransactionID: fmt.Sprintf("txn_%06d", g.seq),
		ReceiptID:     fmt.Sprintf("rcpt_%06d", g.seq),
	}
	if g.PendingResult {
		result.Status = StatusPending
	}
	if g.DeclineWith != "" {
		result.Status = StatusFailed
		result.FailureReason = g.DeclineWith
		result.ReceiptID = ""
	}
	g.results[req.IdempotencyKey] = result
	cp := *result
	return &cp, nil
}

func (g *FakeGateway) Retry(_ context.Context, transactionID string) (*GatewayResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.RetryCalls++
	if g.DeclineWith != "" {
		return &GatewayResult{
			Status:        StatusFailed,
			TransactionID: transactionID,
			FailureReason: g.DeclineWith,
		}, nil
	}
	g.seq++
	result := &GatewayResult{
		Status:        StatusCompleted,
		TransactionID: transactionID,
		ReceiptID:     fmt.Sprintf("rcpt_%06d", g.seq),
	}
	for _, prev := range g.results {
		if prev.TransactionID == transactionID {
			*prev = *result
		}
	}
	cp := *result
	return &cp, nil
}

func (g *FakeGateway) Cancel(_ context.Context, transactionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.CancelCalls++
	for _, prev := range g.results {
		if prev.TransactionID == transactionID {
			prev.Status = StatusCancelled
		}
	}
	return nil
}

func (g *FakeGateway) Refund(_ context.Context, transactionID string, amount int64) (*GatewayResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.RefundCalls++
	g.seq++
	return &GatewayResult{
		Status:        StatusCompleted,
		TransactionID: fmt.Sprintf("re_%06d", g.seq),
	}, nil
}
