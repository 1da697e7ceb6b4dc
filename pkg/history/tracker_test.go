package history_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pushkit/pkg/history"
	"github.com/dmitrymomot/pushkit/pkg/notification"
)

func newTracker(t *testing.T) *history.Tracker {
	t.Helper()

	tracker, err := history.NewTracker(history.NewMemoryStorage())
	require.NoError(t, err)
	return tracker
}

func record(userID string, cat notification.Category, prio notification.Priority) notification.Notification {
	return notification.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     "Order filled",
		Body:      "Your limit order was filled",
		Category:  cat,
		Priority:  prio,
		CreatedAt: time.Now(),
	}
}

func TestNewTracker(t *testing.T) {
	t.Parallel()

	_, err := history.NewTracker(nil)
	require.ErrorIs(t, err, history.ErrStorageNil)
}

func TestRecord_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tracker := newTracker(t)

	n := record("u1", notification.CategoryTrade, notification.PriorityHigh)
	n.ID = ""
	require.ErrorIs(t, tracker.Record(ctx, n), history.ErrNotificationIDRequired)

	n = record("", notification.CategoryTrade, notification.PriorityHigh)
	require.ErrorIs(t, tracker.Record(ctx, n), history.ErrUserIDRequired)
}

func TestList_PaginationAndFilters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tracker := newTracker(t)

	var ids []string
	for i := range 5 {
		n := record("u1", notification.CategoryTrade, notification.PriorityMedium)
		n.Title = fmt.Sprintf("notification %d", i)
		require.NoError(t, tracker.Record(ctx, n))
		ids = append(ids, n.ID)
	}
	other := record("u1", notification.CategorySystem, notification.PriorityLow)
	require.NoError(t, tracker.Record(ctx, other))
	require.NoError(t, tracker.Record(ctx, record("u2", notification.CategoryTrade, notification.PriorityLow)))

	t.Run("newest first", func(t *testing.T) {
		list, err := tracker.List(ctx, "u1", history.ListOptions{})
		require.NoError(t, err)
		require.Len(t, list, 6)
		assert.Equal(t, other.ID, list[0].ID)
		assert.Equal(t, ids[4], list[1].ID)
	})

	t.Run("limit and offset", func(t *testing.T) {
		list, err := tracker.List(ctx, "u1", history.ListOptions{Limit: 2, Offset: 1})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, ids[4], list[0].ID)
		assert.Equal(t, ids[3], list[1].ID)
	})

	t.Run("category filter", func(t *testing.T) {
		list, err := tracker.List(ctx, "u1", history.ListOptions{Category: notification.CategorySystem})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, other.ID, list[0].ID)
	})

	t.Run("offset past end", func(t *testing.T) {
		list, err := tracker.List(ctx, "u1", history.ListOptions{Offset: 100})
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestMarkRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tracker := newTracker(t)

	n := record("u1", notification.CategoryTrade, notification.PriorityHigh)
	require.NoError(t, tracker.Record(ctx, n))

	got, err := tracker.MarkRead(ctx, "u1", n.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReadAt)
	first := *got.ReadAt

	// Idempotent: second call keeps the original timestamp.
	got, err = tracker.MarkRead(ctx, "u1", n.ID)
	require.NoError(t, err)
	assert.Equal(t, first, *got.ReadAt)

	t.Run("ownership enforced", func(t *testing.T) {
		_, err := tracker.MarkRead(ctx, "someone-else", n.ID)
		require.ErrorIs(t, err, history.ErrNotOwned)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := tracker.MarkRead(ctx, "u1", uuid.NewString())
		require.ErrorIs(t, err, history.ErrNotFound)
	})
}

func TestMarkAllRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tracker := newTracker(t)

	for range 3 {
		require.NoError(t, tracker.Record(ctx, record("u1", notification.CategoryTrade, notification.PriorityMedium)))
	}
	already := record("u1", notification.CategoryAccount, notification.PriorityLow)
	require.NoError(t, tracker.Record(ctx, already))
	_, err := tracker.MarkRead(ctx, "u1", already.ID)
	require.NoError(t, err)

	count, err := tracker.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Nothing left to mark.
	count, err = tracker.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBadgeCounts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tracker := newTracker(t)

	require.NoError(t, tracker.Record(ctx, record("u1", notification.CategoryTrade, notification.PriorityHigh)))
	require.NoError(t, tracker.Record(ctx, record("u1", notification.CategoryTrade, notification.PriorityLow)))
	read := record("u1", notification.CategorySecurity, notification.PriorityCritical)
	require.NoError(t, tracker.Record(ctx, read))
	_, err := tracker.MarkRead(ctx, "u1", read.ID)
	require.NoError(t, err)

	counts, err := tracker.BadgeCounts(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Total)
	assert.Equal(t, 2, counts.ByCategory[notification.CategoryTrade])
	assert.Zero(t, counts.ByCategory[notification.CategorySecurity])
	assert.Equal(t, 1, counts.ByPriority[notification.PriorityHigh])
	assert.Equal(t, 1, counts.ByPriority[notification.PriorityLow])

	t.Run("empty user", func(t *testing.T) {
		counts, err := tracker.BadgeCounts(ctx, "nobody")
		require.NoError(t, err)
		assert.Zero(t, counts.Total)
	})
}

func TestCleanup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := history.NewMemoryStorage()
	tracker, err := history.NewTracker(store,
		history.WithTrackerClock(func() time.Time { return now }))
	require.NoError(t, err)

	old := record("u1", notification.CategoryTrade, notification.PriorityLow)
	old.CreatedAt = now.Add(-48 * time.Hour)
	recent := record("u1", notification.CategoryTrade, notification.PriorityLow)
	recent.CreatedAt = now.Add(-1 * time.Hour)
	require.NoError(t, tracker.Record(ctx, old))
	require.NoError(t, tracker.Record(ctx, recent))

	removed, err := tracker.Cleanup(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	list, err := tracker.List(ctx, "u1", history.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, recent.ID, list[0].ID)
}
