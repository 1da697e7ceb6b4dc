package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/pushkit/pkg/notification"
)

// Item is a pending delivery. ScheduledFor defers the item past its
// enqueue time; a nil value means deliver on the next tick.
type Item struct {
	ID           uuid.UUID                 `json:"id"`
	Notification notification.Notification `json:"notification"`
	Attempts     int                       `json:"attempts"`
	MaxAttempts  int                       `json:"max_attempts"`
	ScheduledFor *time.Time                `json:"scheduled_for,omitempty"`
	EnqueuedAt   time.Time                 `json:"enqueued_at"`
	LastError    string                    `json:"last_error,omitempty"`
}

// Due reports whether the item is ready for delivery at the given time.
func (i *Item) Due(now time.Time) bool {
	return i.ScheduledFor == nil || !i.ScheduledFor.After(now)
}

// Exhausted reports whether the item has used up its delivery attempts.
func (i *Item) Exhausted() bool {
	return i.MaxAttempts > 0 && i.Attempts >= i.MaxAttempts
}
