// Package stripegw adapts Stripe PaymentIntents to the payment gateway port.
// Stripe's own idempotency keys back the exactly-once charge guarantee.
package stripegw

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"

	"github.com/atelio/atelio-api/internal/domain/payment"
)

// Gateway is a payment.Gateway backed by Stripe
type Gateway struct{}

// New configures the global Stripe client and returns the gateway
func New(secretKey string) *Gateway {
	stripe.Key = secretKey
	return &Gateway{}
}

// Charge creates and confirms a PaymentIntent. Stripe deduplicates by the
// idempotency key, so re-driving a timed-out charge never double-charges.
func (g *Gateway) Charge(ctx context.Context, req payment.GatewayChargeRequest) (*payment.GatewayResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(req.Amount),
		Currency:    stripe.String(strings.ToLower(req.Currency)),
		Description: stripe.String("booking " + req.BookingRef),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)

	pi, err := paymentintent.New(params)
	if err != nil {
		return mapError(err)
	}
	return resultFromIntent(pi), nil
}

// Retry re-confirms an existing PaymentIntent
func (g *Gateway) Retry(ctx context.Context, transactionID string) (*payment.GatewayResult, error) {
	params := &stripe.PaymentIntentConfirmParams{}
	params.Context = ctx

	pi, err := paymentintent.Confirm(transactionID, params)
	if err != nil {
		return mapError(err)
	}
	return resultFromIntent(pi), nil
}

// Cancel voids an unconfirmed PaymentIntent
func (g *Gateway) Cancel(ctx context.Context, transactionID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx

	if _, err := paymentintent.Cancel(transactionID, params); err != nil {
		if isTimeout(err) {
			return payment.ErrGatewayTimeout
		}
		return err
	}
	return nil
}

// Refund returns amount (minor units) against a confirmed PaymentIntent
func (g *Gateway) Refund(ctx context.Context, transactionID string, amount int64) (*payment.GatewayResult, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(transactionID),
		Amount:        stripe.Int64(amount),
	}
	params.Context = ctx

	re, err := refund.New(params)
	if err != nil {
		return mapError(err)
	}
	result := &payment.GatewayResult{TransactionID: re.ID}
	switch re.Status {
	case stripe.RefundStatusFailed:
		result.Status = payment.StatusFailed
		result.FailureReason = string(re.FailureReason)
	default:
		result.Status = payment.StatusCompleted
	}
	return result, nil
}

func resultFromIntent(pi *stripe.PaymentIntent) *payment.GatewayResult {
	result := &payment.GatewayResult{TransactionID: pi.ID}
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		result.Status = payment.StatusCompleted
		if pi.LatestCharge != nil {
			result.ReceiptID = pi.LatestCharge.ID
		}
	case stripe.PaymentIntentStatusCanceled:
		result.Status = payment.StatusCancelled
	default:
		// requires_* and processing resolve out of band
		result.Status = payment.StatusPending
	}
	return result
}

// mapError separates business declines, which are recorded outcomes, from
// transport failures, where the outcome is unknown
func mapError(err error) (*payment.GatewayResult, error) {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Type == stripe.ErrorTypeCard {
			reason := string(stripeErr.Code)
			if stripeErr.DeclineCode != "" {
				reason = string(stripeErr.DeclineCode)
			}
			result := &payment.GatewayResult{
				Status:        payment.StatusFailed,
				FailureReason: reason,
			}
			if stripeErr.PaymentIntent != nil {
				result.TransactionID = stripeErr.PaymentIntent.ID
			}
			return result, nil
		}
	}
	if isTimeout(err) {
		return nil, payment.ErrGatewayTimeout
	}
	return nil, err
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
