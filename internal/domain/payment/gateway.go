package payment

import "context"

// GatewayChargeRequest is the charge order sent to the external gateway
type GatewayChargeRequest struct {
	BookingRef     string
	Amount         int64
	Currency       string
	Method         Method
	IdempotencyKey string
}

// GatewayResult is the gateway's view of a charge or refund. Business
// outcomes (declines) come back as Status failed with a reason; errors are
// reserved for transport failures where the outcome is unknown.
type GatewayResult struct {
	Status        Status
	TransactionID string
	ReceiptID     string
	FailureReason string
}

// Gateway abstracts the external payment provider. Implementations must
// deduplicate charges by idempotency key on their side.
type Gateway interface {
	Charge(ctx context.Context, req GatewayChargeRequest) (*GatewayResult, error)
	Retry(ctx context.Context, transactionID string) (*GatewayResult, error)
	Cancel(ctx context.Context, transactionID string) error
	Refund(ctx context.Context, transactionID string, amount int64) (*GatewayResult, error)
}
