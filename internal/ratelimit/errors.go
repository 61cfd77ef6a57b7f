package ratelimit

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrPerMinuteExceeded is returned when the per-minute quota is used up.
	ErrPerMinuteExceeded = errors.New("per-minute-exceeded")
	// ErrPerHourExceeded is returned when the per-hour quota is used up.
	ErrPerHourExceeded = errors.New("per-hour-exceeded")
)

// LimitError describes a denied admission.
type LimitError struct {
	Identity   string
	Cause      error
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("admission denied for %s: %s", e.Identity, e.Cause)
}

func (e *LimitError) Unwrap() error {
	return e.Cause
}

// Reason returns the machine-readable denial reason.
func (e *LimitError) Reason() string {
	return e.Cause.Error()
}

// Message returns the client-facing text for the denial.
func (e *LimitError) Message() string {
	if errors.Is(e.Cause, ErrPerHourExceeded) {
		return "Rate limit: hourly limit reached. Please try again later."
	}
	return "Rate limit: too many messages per minute. Please slow down."
}
