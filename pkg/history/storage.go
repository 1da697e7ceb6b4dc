package history

import (
	"context"
	"time"

	"github.com/dmitrymomot/pushkit/pkg/notification"
)

// ListOptions controls pagination and filtering of a user's history.
// A zero Limit means no limit. UnreadOnly restricts results to records
// without a read timestamp.
type ListOptions struct {
	Limit      int
	Offset     int
	Category   notification.Category // empty means all categories
	UnreadOnly bool
}

// Storage persists notification history records. List returns records
// newest first. MarkRead and MarkAllRead return the number of records
// transitioned from unread to read.
type Storage interface {
	Append(ctx context.Context, n notification.Notification) error
	Get(ctx context.Context, id string) (*notification.Notification, error)
	List(ctx context.Context, userID string, opts ListOptions) ([]notification.Notification, error)
	MarkRead(ctx context.Context, id string, at time.Time) (*notification.Notification, error)
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error)
	CountUnread(ctx context.Context, userID string) (notification.BadgeCounts, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
