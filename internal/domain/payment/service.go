package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/atelio/atelio-api/internal/pkg/validate"
)

// Service orchestrates charges against the external gateway. Every gateway
// call runs under a bounded timeout; a timed-out charge is left in processing
// so a retry with the same idempotency key can pick it up.
type Service struct {
	repo       Repository
	gateway    Gateway
	timeout    time.Duration
	maxRetries int
}

// NewService creates payment service. maxRetries bounds automatic re-attempts
// after gateway timeouts within a single Charge call.
func NewService(repo Repository, gateway Gateway, timeout time.Duration, maxRetries int) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Service{repo: repo, gateway: gateway, timeout: timeout, maxRetries: maxRetries}
}

// Charge executes a charge exactly once per idempotency key. A repeat call
// with a key whose outcome is already recorded returns that outcome without
// touching the gateway; a repeat after a timeout re-drives the gateway, which
// deduplicates by the same key.
func (s *Service) Charge(ctx context.Context, req ChargeRequest) (*Payment, error) {
	if err := validate.Amount(req.Amount); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.IdempotencyKey) == "" {
		return nil, fmt.Errorf("%w: idempotency key is required", validate.ErrInvalid)
	}

	p, fresh, err := s.claimPayment(ctx, req)
	if err != nil {
		return nil, err
	}
	if !fresh {
		switch p.Status {
		case StatusProcessing:
			// outcome unknown, fall through and re-drive the gateway
		case StatusFailed:
			return p, ErrPaymentDeclined
		default:
			log.Debug().
				Str("payment_id", p.ID.String()).
				Str("status", string(p.Status)).
				Msg("Charge replayed from recorded outcome")
			return p, nil
		}
	}

	result, err := s.callWithRetry(ctx, func(cctx context.Context) (*GatewayResult, error) {
		return s.gateway.Charge(cctx, GatewayChargeRequest{
			BookingRef:     req.BookingRef,
			Amount:         req.Amount,
			Currency:       req.Currency,
			Method:         req.Method,
			IdempotencyKey: req.IdempotencyKey,
		})
	})
	if err != nil {
		// leave the payment in processing; the row pins the idempotency key
		log.Error().Err(err).
			Str("payment_id", p.ID.String()).
			Str("booking_ref", req.BookingRef).
			Msg("Gateway charge failed with unknown outcome")
		return nil, err
	}

	s.applyResult(p, result)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to record charge outcome: %w", err)
	}

	if p.Status == StatusFailed {
		log.Warn().
			Str("payment_id", p.ID.String()).
			Str("reason", p.FailureReason.String).
			Msg("Payment declined")
		return p, ErrPaymentDeclined
	}

	log.Info().
		Str("payment_id", p.ID.String()).
		Str("booking_id", p.BookingID.String()).
		Int64("amount", p.Amount).
		Str("status", string(p.Status)).
		Msg("Payment charged")
	return p, nil
}

// claimPayment finds or creates the payment row for the idempotency key.
// fresh is true when this call inserted the row.
func (s *Service) claimPayment(ctx context.Context, req ChargeRequest) (*Payment, bool, error) {
	existing, err := s.repo.GetByIdempotencyKey(ctx, req.IdempotencyKey)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrPaymentNotFound) {
		return nil, false, err
	}

	now := time.Now().UTC()
	p := &Payment{
		ID:             uuid.New(),
		BookingID:      req.BookingID,
		IdempotencyKey: req.IdempotencyKey,
		Method:         req.Method,
		Status:         StatusProcessing,
		Amount:         req.Amount,
		Currency:       req.Currency,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, ErrIdempotencyConflict) {
			// lost the insert race; the winner's row carries the outcome
			winner, gerr := s.repo.GetByIdempotencyKey(ctx, req.IdempotencyKey)
			if gerr != nil {
				return nil, false, gerr
			}
			return winner, false, nil
		}
		return nil, false, fmt.Errorf("failed to create payment: %w", err)
	}
	return p, true, nil
}

// Retry re-attempts a failed payment. Only failed payments are retryable;
// anything else either succeeded already or is still in flight.
func (s *Service) Retry(ctx context.Context, id uuid.UUID) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusFailed {
		return nil, ErrRetryNotAllowed
	}

	var result *GatewayResult
	if p.TransactionID.Valid {
		result, err = s.callWithRetry(ctx, func(cctx context.Context) (*GatewayResult, error) {
			return s.gateway.Retry(cctx, p.TransactionID.String)
		})
	} else {
		result, err = s.callWithRetry(ctx, func(cctx context.Context) (*GatewayResult, error) {
			return s.gateway.Charge(cctx, GatewayChargeRequest{
				BookingRef:     p.BookingID.String(),
				Amount:         p.Amount,
				Currency:       p.Currency,
				Method:         p.Method,
				IdempotencyKey: p.IdempotencyKey,
			})
		})
	}
	if err != nil {
		return nil, err
	}

	p.FailureReason = sql.NullString{}
	s.applyResult(p, result)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to record retry outcome: %w", err)
	}
	if p.Status == StatusFailed {
		return p, ErrPaymentDeclined
	}

	log.Info().Str("payment_id", p.ID.String()).Str("status", string(p.Status)).Msg("Payment retried")
	return p, nil
}

// Cancel voids a payment that the gateway has not confirmed yet
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusPending {
		return nil, ErrCancelNotAllowed
	}

	if p.TransactionID.Valid {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		err = s.gateway.Cancel(cctx, p.TransactionID.String)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("gateway cancel failed: %w", err)
		}
	}

	p.Status = StatusCancelled
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to record cancellation: %w", err)
	}

	log.Info().Str("payment_id", p.ID.String()).Msg("Payment cancelled")
	return p, nil
}

// Refund returns money against a completed payment. At most one refund per
// payment; a partial amount moves the payment to partially_refunded.
func (s *Service) Refund(ctx context.Context, req RefundRequest) (*Refund, error) {
	p, err := s.repo.GetByID(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if req.Amount <= 0 || req.Amount > p.Amount {
		return nil, ErrInvalidRefundAmount
	}
	if !p.CanRefund() {
		return nil, ErrRefundNotAllowed
	}

	result, err := s.callWithRetry(ctx, func(cctx context.Context) (*GatewayResult, error) {
		return s.gateway.Refund(cctx, p.TransactionID.String, req.Amount)
	})
	if err != nil {
		return nil, err
	}
	if result.Status == StatusFailed {
		return nil, fmt.Errorf("%w: %s", ErrRefundNotAllowed, result.FailureReason)
	}

	ref := &Refund{
		ID:         uuid.New(),
		PaymentID:  p.ID,
		Amount:     req.Amount,
		Reason:     req.Reason,
		RefundedAt: time.Now().UTC(),
	}
	if result.TransactionID != "" {
		ref.GatewayTxnID = sql.NullString{String: result.TransactionID, Valid: true}
	}
	if err := s.repo.CreateRefund(ctx, ref); err != nil {
		return nil, fmt.Errorf("failed to record refund: %w", err)
	}

	if req.Amount == p.Amount {
		p.Status = StatusRefunded
	} else {
		p.Status = StatusPartiallyRefunded
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update payment after refund: %w", err)
	}

	log.Info().
		Str("payment_id", p.ID.String()).
		Int64("amount", ref.Amount).
		Str("status", string(p.Status)).
		Msg("Payment refunded")
	return ref, nil
}

// Get returns a payment with any refund attached
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByBooking returns the latest payment for a booking
func (s *Service) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*Payment, error) {
	return s.repo.GetByBookingID(ctx, bookingID)
}

// Statistics aggregates payments in [from, to)
func (s *Service) Statistics(ctx context.Context, from, to time.Time) (*Statistics, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: statistics range must not be empty", validate.ErrInvalid)
	}
	return s.repo.Statistics(ctx, from, to)
}

// callWithRetry runs one gateway call under the configured timeout, retrying
// timeouts up to maxRetries times. Non-timeout errors are returned as-is.
func (s *Service) callWithRetry(ctx context.Context, call func(context.Context) (*GatewayResult, error)) (*GatewayResult, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		result, err := call(cctx)
		cancel()
		if err == nil {
			return result, nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrGatewayTimeout
		}
		if !errors.Is(err, ErrGatewayTimeout) {
			return nil, fmt.Errorf("gateway call failed: %w", err)
		}
		lastErr = err
		log.Warn().Int("attempt", attempt+1).Msg("Gateway timeout")
	}
	return nil, lastErr
}

// applyResult folds a gateway result into the payment record
func (s *Service) applyResult(p *Payment, result *GatewayResult) {
	now := time.Now().UTC()
	p.Status = result.Status
	p.UpdatedAt = now
	if result.TransactionID != "" {
		p.TransactionID = sql.NullString{String: result.TransactionID, Valid: true}
	}
	if result.ReceiptID != "" {
		p.ReceiptID = sql.NullString{String: result.ReceiptID, Valid: true}
	}
	switch result.Status {
	case StatusCompleted:
		p.PaidAt = sql.NullTime{Time: now, Valid: true}
	case StatusFailed:
		p.FailureReason = sql.NullString{String: result.FailureReason, Valid: true}
	}
}
