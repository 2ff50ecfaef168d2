package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/atelio/atelio-api/internal/domain/payment"
	"github.com/atelio/atelio-api/internal/domain/slot"
	"github.com/atelio/atelio-api/internal/middleware"
	"github.com/atelio/atelio-api/internal/pkg/validate"
)

// CancellationCutoff is how long before slot start a non-admin can still
// cancel a confirmed booking
const CancellationCutoff = 24 * time.Hour

// SlotService is the capacity collaborator; satisfied by *slot.Service
type SlotService interface {
	Get(ctx context.Context, id uuid.UUID) (*slot.TimeSlot, error)
	Reserve(ctx context.Context, slotID uuid.UUID, count int) (*slot.Reservation, error)
	Release(ctx context.Context, slotID uuid.UUID, count int) error
}

// PaymentService is the payment collaborator; satisfied by *payment.Service
type PaymentService interface {
	Charge(ctx context.Context, req payment.ChargeRequest) (*payment.Payment, error)
	Cancel(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
	Refund(ctx context.Context, req payment.RefundRequest) (*payment.Refund, error)
	Get(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
}

// Notifier receives fire-and-forget lifecycle events; the service never
// awaits or depends on its outcome
type Notifier interface {
	BookingStatusChanged(b *Booking, previous Status)
	PaymentCompleted(b *Booking)
	RefundProcessed(b *Booking, amount int64)
}

// Service is the booking state machine. Every status change goes through a
// versioned update, so concurrent writers on the same booking cannot lose
// each other's transitions.
type Service struct {
	repo     Repository
	slots    SlotService
	payments PaymentService
	notifier Notifier
	currency string
}

// NewService creates booking service. notifier may be nil.
func NewService(repo Repository, slots SlotService, payments PaymentService, notifier Notifier, currency string) *Service {
	if currency == "" {
		currency = "EUR"
	}
	return &Service{repo: repo, slots: slots, payments: payments, notifier: notifier, currency: currency}
}

// Create reserves capacity, charges, and persists the booking. The charge
// happens after the reservation; if it is declined the reservation is
// released before the error is returned, so a booking is never half-paid.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *CreateBookingRequest) (*Booking, error) {
	if req.Seats == 0 {
		req.Seats = 1
	}
	if req.Seats < 1 {
		return nil, fmt.Errorf("%w: seats must be at least 1", validate.ErrInvalid)
	}
	if err := validate.Amount(req.TotalAmount); err != nil {
		return nil, err
	}
	if err := validate.Notes(req.Notes); err != nil {
		return nil, err
	}

	ts, err := s.slots.Get(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}

	if _, err := s.slots.Reserve(ctx, req.SlotID, req.Seats); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b := &Booking{
		ID:          uuid.New(),
		UserID:      userID,
		SlotID:      ts.ID,
		Kind:        ts.Kind,
		ItemID:      ts.ItemID,
		Status:      StatusPending,
		Seats:       req.Seats,
		TotalAmount: req.TotalAmount,
		Currency:    s.currency,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	b.Reference = newReference(b.ID)
	if strings.TrimSpace(req.Notes) != "" {
		b.Notes = sql.NullString{String: req.Notes, Valid: true}
	}

	if req.TotalAmount > 0 {
		key := req.IdempotencyKey
		if key == "" {
			key = uuid.NewString()
		}
		p, err := s.payments.Charge(ctx, payment.ChargeRequest{
			BookingID:      b.ID,
			BookingRef:     b.Reference,
			Amount:         req.TotalAmount,
			Currency:       s.currency,
			Method:         req.Method,
			IdempotencyKey: key,
		})
		if err != nil {
			if rerr := s.slots.Release(ctx, req.SlotID, req.Seats); rerr != nil {
				log.Error().Err(rerr).
					Str("slot_id", req.SlotID.String()).
					Msg("Failed to release reservation after charge failure")
			}
			return nil, err
		}
		b.PaymentID = uuid.NullUUID{UUID: p.ID, Valid: true}
		b.Payment = p
		if p.Status == payment.StatusCompleted {
			b.Status = StatusConfirmed
		}
	} else {
		// nothing to charge, the booking confirms immediately
		b.Status = StatusConfirmed
	}

	if err := s.repo.Create(ctx, b); err != nil {
		if rerr := s.slots.Release(ctx, req.SlotID, req.Seats); rerr != nil {
			log.Error().Err(rerr).Str("slot_id", req.SlotID.String()).Msg("Failed to release reservation")
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	log.Info().
		Str("booking_id", b.ID.String()).
		Str("reference", b.Reference).
		Str("user_id", userID.String()).
		Str("status", string(b.Status)).
		Msg("Booking created")

	s.notifyStatusChanged(b, "")
	if b.Status == StatusConfirmed && b.Payment != nil {
		s.notifyPaymentCompleted(b)
	}
	return b, nil
}

// Cancel transitions a booking to cancelled, refunds per the policy tiers
// and releases the held capacity. The cancelled status is claimed first via
// the versioned update; of two concurrent cancels only one proceeds to the
// refund, the other sees ErrConcurrencyConflict.
func (s *Service) Cancel(ctx context.Context, id, actorID uuid.UUID, actorRole, reason string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorRole != middleware.RoleAdmin && b.UserID != actorID {
		return nil, ErrNotOwner
	}
	if !CanTransition(b.Status, StatusCancelled) {
		return nil, ErrInvalidTransition
	}

	ts, err := s.slots.Get(ctx, b.SlotID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if actorRole != middleware.RoleAdmin && b.Status == StatusConfirmed &&
		now.After(ts.StartTime.Add(-CancellationCutoff)) {
		return nil, ErrCancellationWindowClosed
	}

	previous := b.Status
	b.Status = StatusCancelled
	b.CancelledAt = sql.NullTime{Time: now, Valid: true}
	if strings.TrimSpace(reason) != "" {
		b.CancellationReason = sql.NullString{String: reason, Valid: true}
	}
	b.UpdatedAt = now
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	// A pending booking has no settled payment; void the intent instead of
	// refunding. ErrCancelNotAllowed means the payment already left pending
	// and needs no voiding.
	if previous == StatusPending && b.PaymentID.Valid {
		if _, err := s.payments.Cancel(ctx, b.PaymentID.UUID); err != nil &&
			!errors.Is(err, payment.ErrCancelNotAllowed) {
			log.Warn().Err(err).
				Str("booking_id", b.ID.String()).
				Str("payment_id", b.PaymentID.UUID.String()).
				Msg("Failed to void payment for cancelled booking")
		}
	}

	refundAmount := int64(0)
	if previous == StatusConfirmed && b.PaymentID.Valid {
		refundAmount = RefundAmount(b.TotalAmount, ts.StartTime, now)
	}
	if refundAmount > 0 {
		ref, err := s.payments.Refund(ctx, payment.RefundRequest{
			PaymentID: b.PaymentID.UUID,
			Amount:    refundAmount,
			Reason:    "booking " + b.Reference + " cancelled",
		})
		if err != nil {
			// the booking is already cancelled; surface the refund failure
			// so it can be retried against the payment directly
			log.Error().Err(err).
				Str("booking_id", b.ID.String()).
				Str("payment_id", b.PaymentID.UUID.String()).
				Msg("Refund failed for cancelled booking")
			return nil, fmt.Errorf("booking cancelled but refund failed: %w", err)
		}
		log.Info().
			Str("booking_id", b.ID.String()).
			Int64("amount", ref.Amount).
			Msg("Refund issued")
	}

	if err := s.slots.Release(ctx, b.SlotID, b.Seats); err != nil {
		log.Error().Err(err).
			Str("booking_id", b.ID.String()).
			Str("slot_id", b.SlotID.String()).
			Msg("Failed to release capacity for cancelled booking")
	}

	log.Info().
		Str("booking_id", b.ID.String()).
		Str("reference", b.Reference).
		Int64("refund", refundAmount).
		Msg("Booking cancelled")

	s.notifyStatusChanged(b, previous)
	if refundAmount > 0 {
		s.notifyRefundProcessed(b, refundAmount)
	}
	return s.attachPayment(ctx, b), nil
}

// Confirm moves a pending booking to confirmed once its payment completed
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, StatusConfirmed) {
		return nil, ErrInvalidTransition
	}
	if b.TotalAmount > 0 {
		if !b.PaymentID.Valid {
			return nil, ErrPaymentNotCompleted
		}
		p, err := s.payments.Get(ctx, b.PaymentID.UUID)
		if err != nil {
			return nil, err
		}
		if p.Status != payment.StatusCompleted {
			return nil, ErrPaymentNotCompleted
		}
	}

	previous := b.Status
	b.Status = StatusConfirmed
	b.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	log.Info().Str("booking_id", b.ID.String()).Msg("Booking confirmed")
	s.notifyStatusChanged(b, previous)
	s.notifyPaymentCompleted(b)
	return s.attachPayment(ctx, b), nil
}

// Complete marks a confirmed booking as completed after the slot has ended
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.finish(ctx, id, StatusCompleted)
}

// MarkNoShow records that the user did not attend. Capacity is not released;
// a no-show still consumed the slot.
func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.finish(ctx, id, StatusNoShow)
}

func (s *Service) finish(ctx context.Context, id uuid.UUID, to Status) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, to) {
		return nil, ErrInvalidTransition
	}

	ts, err := s.slots.Get(ctx, b.SlotID)
	if err != nil {
		return nil, err
	}
	if time.Now().Before(ts.EndTime) {
		return nil, ErrSlotNotFinished
	}

	previous := b.Status
	b.Status = to
	b.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	log.Info().Str("booking_id", b.ID.String()).Str("status", string(to)).Msg("Booking finished")
	s.notifyStatusChanged(b, previous)
	return s.attachPayment(ctx, b), nil
}

// Get returns a booking visible to the actor: its owner or an admin
func (s *Service) Get(ctx context.Context, id, actorID uuid.UUID, actorRole string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorRole != middleware.RoleAdmin && b.UserID != actorID {
		return nil, ErrNotOwner
	}
	return s.attachPayment(ctx, b), nil
}

// ListMine returns the actor's bookings, newest first
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]*Booking, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) attachPayment(ctx context.Context, b *Booking) *Booking {
	if b.Payment != nil || !b.PaymentID.Valid {
		return b
	}
	p, err := s.payments.Get(ctx, b.PaymentID.UUID)
	if err != nil {
		log.Warn().Err(err).Str("booking_id", b.ID.String()).Msg("Failed to load booking payment")
		return b
	}
	b.Payment = p
	return b
}

func (s *Service) notifyStatusChanged(b *Booking, previous Status) {
	if s.notifier != nil {
		s.notifier.BookingStatusChanged(b, previous)
	}
}

func (s *Service) notifyPaymentCompleted(b *Booking) {
	if s.notifier != nil {
		s.notifier.PaymentCompleted(b)
	}
}

func (s *Service) notifyRefundProcessed(b *Booking, amount int64) {
	if s.notifier != nil {
		s.notifier.RefundProcessed(b, amount)
	}
}
