// Package validate holds the pure field-level validation rules shared by the
// booking domains. Every function returns nil when the value is acceptable or
// an error wrapping ErrInvalid whose message is a human-readable violation
// reason. No function here has side effects; services call these before any
// mutation.
package validate

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is wrapped by every violation so callers can classify with
// errors.Is regardless of the specific rule that failed.
var ErrInvalid = errors.New("validation failed")

// Amounts are integer minor currency units (1 unit = 100 minor units).
const (
	MaxPrice = 1_000_000 * 100

	MinTitleLen       = 3
	MaxTitleLen       = 100
	MinDescriptionLen = 10
	MaxDescriptionLen = 1000
	MinCapacity       = 1
	MaxCapacity       = 100
	MinRating         = 1
	MaxRating         = 5
	MinCommentLen     = 10
	MaxCommentLen     = 500
	MaxNotesLen       = 500

	MinSlotDuration = 30 * time.Minute
	MaxSlotDuration = 480 * time.Minute
)

func Title(s string) error {
	if len(s) < MinTitleLen || len(s) > MaxTitleLen {
		return fmt.Errorf("%w: title must be between %d and %d characters", ErrInvalid, MinTitleLen, MaxTitleLen)
	}
	return nil
}

func Description(s string) error {
	if len(s) < MinDescriptionLen || len(s) > MaxDescriptionLen {
		return fmt.Errorf("%w: description must be between %d and %d characters", ErrInvalid, MinDescriptionLen, MaxDescriptionLen)
	}
	return nil
}

func Price(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalid)
	}
	if amount > MaxPrice {
		return fmt.Errorf("%w: price must not exceed %d minor units", ErrInvalid, int64(MaxPrice))
	}
	return nil
}

func Capacity(n int) error {
	if n < MinCapacity || n > MaxCapacity {
		return fmt.Errorf("%w: capacity must be between %d and %d", ErrInvalid, MinCapacity, MaxCapacity)
	}
	return nil
}

func Rating(n int) error {
	if n < MinRating || n > MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrInvalid, MinRating, MaxRating)
	}
	return nil
}

func Comment(s string) error {
	if len(s) < MinCommentLen || len(s) > MaxCommentLen {
		return fmt.Errorf("%w: comment must be between %d and %d characters", ErrInvalid, MinCommentLen, MaxCommentLen)
	}
	return nil
}

// Notes validates optional booking notes; empty is allowed.
func Notes(s string) error {
	if len(s) > MaxNotesLen {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalid, MaxNotesLen)
	}
	return nil
}

// Amount validates a booking/payment amount in minor units.
func Amount(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalid)
	}
	if amount > MaxPrice {
		return fmt.Errorf("%w: amount must not exceed %d minor units", ErrInvalid, int64(MaxPrice))
	}
	return nil
}

// SlotWindow validates a slot's time window.
func SlotWindow(start, end time.Time) error {
	if !end.After(start) {
		return fmt.Errorf("%w: end time must be after start time", ErrInvalid)
	}
	d := end.Sub(start)
	if d < MinSlotDuration || d > MaxSlotDuration {
		return fmt.Errorf("%w: slot duration must be between %d and %d minutes",
			ErrInvalid, int(MinSlotDuration.Minutes()), int(MaxSlotDuration.Minutes()))
	}
	return nil
}
