package payment

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents payment status
type Status string

const (
	StatusPending           Status = "pending"
	StatusProcessing        Status = "processing"
	StatusCompleted         Status = "completed"
	StatusFailed            Status = "failed"
	StatusCancelled         Status = "cancelled"
	StatusRefunded          Status = "refunded"
	StatusPartiallyRefunded Status = "partially_refunded"
)

// Method represents how a payment is made
type Method string

const (
	MethodCard         Method = "card"
	MethodWallet       Method = "wallet"
	MethodBankTransfer Method = "bank_transfer"
)

// Payment is the local record of one charge attempt chain. The idempotency
// key is unique: retries with the same key land on the same row and the
// gateway is never charged twice for it. Amounts are minor currency units.
type Payment struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	BookingID      uuid.UUID      `db:"booking_id" json:"booking_id"`
	IdempotencyKey string         `db:"idempotency_key" json:"-"`
	Method         Method         `db:"method" json:"method"`
	Status         Status         `db:"status" json:"status"`
	Amount         int64          `db:"amount" json:"amount"`
	Currency       string         `db:"currency" json:"currency"`
	PaidAt         sql.NullTime   `db:"paid_at" json:"paid_at,omitempty"`
	ReceiptID      sql.NullString `db:"receipt_id" json:"receipt_id,omitempty"`
	TransactionID  sql.NullString `db:"transaction_id" json:"transaction_id,omitempty"`
	FailureReason  sql.NullString `db:"failure_reason" json:"failure_reason,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`

	// Refund is attached when one has been issued; loaded separately
	Refund *Refund `db:"-" json:"refund,omitempty"`
}

// CanRefund reports refund eligibility: the payment completed and no refund
// has been issued yet
func (p *Payment) CanRefund() bool {
	return p.Status == StatusCompleted && p.Refund == nil
}

// Refund records money returned against a payment; Amount never exceeds the
// original payment amount
type Refund struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	PaymentID    uuid.UUID      `db:"payment_id" json:"payment_id"`
	Amount       int64          `db:"amount" json:"amount"`
	Reason       string         `db:"reason" json:"reason"`
	GatewayTxnID sql.NullString `db:"gateway_txn_id" json:"gateway_txn_id,omitempty"`
	RefundedAt   time.Time      `db:"refunded_at" json:"refunded_at"`
}

// DailyRevenue is one point of the revenue time series
type DailyRevenue struct {
	Day     string `db:"day" json:"day"`
	Revenue int64  `db:"revenue" json:"revenue"`
}

// Statistics is the read-side aggregate over payments in a date range
type Statistics struct {
	TotalRevenue  int64          `json:"total_revenue"`
	TotalRefunds  int64          `json:"total_refunds"`
	CountByStatus map[Status]int `json:"count_by_status"`
	CountByMethod map[Method]int `json:"count_by_method"`
	DailyRevenue  []DailyRevenue `json:"daily_revenue"`
}
