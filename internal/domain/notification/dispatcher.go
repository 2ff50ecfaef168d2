// Package notification publishes booking lifecycle events. Dispatch is
// fire-and-forget: callers never await or depend on delivery.
package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/atelio/atelio-api/internal/domain/booking"
)

// Event types published on the notification channel
const (
	EventBookingStatusChanged = "booking.status_changed"
	EventPaymentCompleted     = "booking.payment_completed"
	EventRefundProcessed      = "booking.refund_processed"
)

// publishTimeout bounds each background publish
const publishTimeout = 5 * time.Second

// Event is the wire format published to subscribers
type Event struct {
	Type           string    `json:"type"`
	BookingID      string    `json:"booking_id"`
	Reference      string    `json:"reference"`
	UserID         string    `json:"user_id"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	RefundAmount   int64     `json:"refund_amount,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Dispatcher implements booking.Notifier over Redis pub/sub. With a nil
// client events are only logged.
type Dispatcher struct {
	redis   *redis.Client
	channel string
}

// NewDispatcher creates a dispatcher publishing on the given channel
func NewDispatcher(redisClient *redis.Client, channel string) *Dispatcher {
	if channel == "" {
		channel = "atelio:bookings"
	}
	return &Dispatcher{redis: redisClient, channel: channel}
}

func (d *Dispatcher) BookingStatusChanged(b *booking.Booking, previous booking.Status) {
	d.publish(Event{
		Type:           EventBookingStatusChanged,
		BookingID:      b.ID.String(),
		Reference:      b.Reference,
		UserID:         b.UserID.String(),
		Status:         string(b.Status),
		PreviousStatus: string(previous),
		OccurredAt:     time.Now().UTC(),
	})
}

func (d *Dispatcher) PaymentCompleted(b *booking.Booking) {
	d.publish(Event{
		Type:       EventPaymentCompleted,
		BookingID:  b.ID.String(),
		Reference:  b.Reference,
		UserID:     b.UserID.String(),
		Status:     string(b.Status),
		OccurredAt: time.Now().UTC(),
	})
}

func (d *Dispatcher) RefundProcessed(b *booking.Booking, amount int64) {
	d.publish(Event{
		Type:         EventRefundProcessed,
		BookingID:    b.ID.String(),
		Reference:    b.Reference,
		UserID:       b.UserID.String(),
		Status:       string(b.Status),
		RefundAmount: amount,
		OccurredAt:   time.Now().UTC(),
	})
}

func (d *Dispatcher) publish(event Event) {
	log.Info().
		Str("event", event.Type).
		Str("booking_id", event.BookingID).
		Str("status", event.Status).
		Msg("Booking event")

	if d.redis == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		payload, err := json.Marshal(event)
		if err != nil {
			log.Error().Err(err).Str("event", event.Type).Msg("Failed to marshal event")
			return
		}
		if err := d.redis.Publish(ctx, d.channel, payload).Err(); err != nil {
			log.Warn().Err(err).Str("event", event.Type).Msg("Failed to publish event")
		}
	}()
}
