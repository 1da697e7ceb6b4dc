package preferences

import (
	"context"
	"time"
)

// CounterStore tracks per-user hourly and daily send counters. Counters
// reset when the elapsed time since the last reset exceeds the window
// (1 hour / 24 hours).
type CounterStore interface {
	// Increment bumps both windows and returns the updated counts.
	Increment(ctx context.Context, userID string, now time.Time) (hourly, daily int, err error)

	// Decrement rolls back a provisional increment after a limit
	// rejection. Counters never go below zero.
	Decrement(ctx context.Context, userID string) error
}
