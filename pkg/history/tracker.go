package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/pushkit/pkg/logger"
	"github.com/dmitrymomot/pushkit/pkg/notification"
)

// Tracker records delivered notifications and maintains per-user
// read state and unread badge counts.
type Tracker struct {
	storage Storage
	logger  *slog.Logger
	now     func() time.Time
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithTrackerLogger sets the logger for the Tracker.
func WithTrackerLogger(l *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithTrackerClock overrides the time source, used by tests.
func WithTrackerClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTracker creates a new history tracker.
func NewTracker(storage Storage, opts ...TrackerOption) (*Tracker, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}

	t := &Tracker{
		storage: storage,
		logger:  slog.Default(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Record appends a delivered notification to the user's history.
func (t *Tracker) Record(ctx context.Context, n notification.Notification) error {
	if n.ID == "" {
		return ErrNotificationIDRequired
	}
	if n.UserID == "" {
		return ErrUserIDRequired
	}

	if err := t.storage.Append(ctx, n); err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}

	t.logger.DebugContext(ctx, "notification recorded",
		logger.NotificationID(n.ID), logger.UserID(n.UserID))
	return nil
}

// List returns a page of the user's history, newest first.
func (t *Tracker) List(ctx context.Context, userID string, opts ListOptions) ([]notification.Notification, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	return t.storage.List(ctx, userID, opts)
}

// MarkRead marks a single notification as read. Marking an already-read
// notification is a no-op that keeps the original timestamp. The record
// must belong to the given user.
func (t *Tracker) MarkRead(ctx context.Context, userID, notificationID string) (*notification.Notification, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if notificationID == "" {
		return nil, ErrNotificationIDRequired
	}

	n, err := t.storage.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, ErrNotOwned
	}
	if n.IsRead() {
		return n, nil
	}

	return t.storage.MarkRead(ctx, notificationID, t.now())
}

// MarkAllRead marks every unread notification of the user as read and
// returns how many records changed.
func (t *Tracker) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrUserIDRequired
	}

	count, err := t.storage.MarkAllRead(ctx, userID, t.now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark all read: %w", err)
	}

	if count > 0 {
		t.logger.DebugContext(ctx, "notifications marked read",
			logger.UserID(userID), slog.Int("count", count))
	}
	return count, nil
}

// BadgeCounts returns the user's unread counts partitioned by category
// and priority.
func (t *Tracker) BadgeCounts(ctx context.Context, userID string) (notification.BadgeCounts, error) {
	if userID == "" {
		return notification.BadgeCounts{}, ErrUserIDRequired
	}
	return t.storage.CountUnread(ctx, userID)
}

// Cleanup deletes history records older than the given retention period
// and returns how many were removed.
func (t *Tracker) Cleanup(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := t.now().Add(-retention)

	removed, err := t.storage.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up history: %w", err)
	}

	if removed > 0 {
		t.logger.InfoContext(ctx, "history cleaned up",
			slog.Int("removed", removed), slog.Time("cutoff", cutoff))
	}
	return removed, nil
}
