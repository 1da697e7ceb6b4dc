package schedule

import (
	"context"
	"time"
)

// Storage persists scheduled notifications. DuePending returns pending
// schedules whose send time has arrived, earliest first, up to limit.
// UpdateStatus also stamps SentAt when the new status is sent.
type Storage interface {
	Put(ctx context.Context, sched ScheduledNotification) error
	Get(ctx context.Context, id string) (*ScheduledNotification, error)
	ListByUser(ctx context.Context, userID string) ([]ScheduledNotification, error)
	DuePending(ctx context.Context, now time.Time, limit int) ([]ScheduledNotification, error)
	UpdateStatus(ctx context.Context, id string, status Status, at time.Time) error
	MarkFailed(ctx context.Context, id string, reason string, at time.Time) error
}
