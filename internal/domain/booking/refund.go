package booking

import "time"

// Refund policy tiers, in whole hours before slot start. Each bound is
// inclusive: cancelling exactly 168 hours ahead still refunds 100%.
const (
	fullRefundHours = 168
	highRefundHours = 72
	halfRefundHours = 24
)

// RefundAmount computes the refund entitled for cancelling a booking of
// totalAmount (minor units) whose slot starts at slotStart, evaluated at now.
// Pure and deterministic; elapsed time is truncated to whole hours.
func RefundAmount(totalAmount int64, slotStart, now time.Time) int64 {
	if totalAmount <= 0 {
		return 0
	}

	hoursUntilStart := int(slotStart.Sub(now).Hours())
	switch {
	case hoursUntilStart >= fullRefundHours:
		return totalAmount
	case hoursUntilStart >= highRefundHours:
		return totalAmount * 80 / 100
	case hoursUntilStart >= halfRefundHours:
		return totalAmount * 50 / 100
	default:
		return 0
	}
}
