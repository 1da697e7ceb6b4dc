package queue_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pushkit/pkg/notification"
	"github.com/dmitrymomot/pushkit/pkg/queue"
)

type captureDispatch struct {
	mu   sync.Mutex
	sent []notification.Notification
	fail map[string]error // by notification ID
}

func (c *captureDispatch) fn(ctx context.Context, n notification.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err, ok := c.fail[n.ID]; ok {
		return err
	}
	c.sent = append(c.sent, n)
	return nil
}

func testNotification(userID string) notification.Notification {
	return notification.Notification{
		ID:       uuid.NewString(),
		UserID:   userID,
		Title:    "Margin call",
		Body:     "Your position is below maintenance margin",
		Category: notification.CategoryTrade,
		Priority: notification.PriorityCritical,
	}
}

func TestNewWorker(t *testing.T) {
	t.Parallel()

	capture := &captureDispatch{}

	_, err := queue.NewWorker(nil, capture.fn)
	require.ErrorIs(t, err, queue.ErrStorageNil)

	_, err = queue.NewWorker(queue.NewMemoryStorage(), nil)
	require.ErrorIs(t, err, queue.ErrDispatcherNil)
}

func TestTick_DeliversAndRemoves(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	capture := &captureDispatch{}
	w, err := queue.NewWorker(queue.NewMemoryStorage(), capture.fn)
	require.NoError(t, err)

	n := testNotification("u1")
	id, err := w.Enqueue(ctx, queue.Item{Notification: n})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	require.NoError(t, w.Tick(ctx))

	require.Len(t, capture.sent, 1)
	assert.Equal(t, n.ID, capture.sent[0].ID)

	stats, err := w.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Pending)
	assert.EqualValues(t, 1, stats.Delivered)

	// Nothing left to deliver.
	require.NoError(t, w.Tick(ctx))
	assert.Len(t, capture.sent, 1)
}

func TestTick_RetryThenDeadLetter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	n := testNotification("u1")
	capture := &captureDispatch{fail: map[string]error{n.ID: errors.New("gateway down")}}
	w, err := queue.NewWorker(queue.NewMemoryStorage(), capture.fn,
		queue.WithMaxAttempts(3))
	require.NoError(t, err)

	_, err = w.Enqueue(ctx, queue.Item{Notification: n})
	require.NoError(t, err)

	// Two failing ticks keep the item queued.
	for i := range 2 {
		require.NoError(t, w.Tick(ctx))
		stats, err := w.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Pending, "tick %d", i+1)
	}

	// Third failure exhausts the budget and drops the item.
	require.NoError(t, w.Tick(ctx))
	stats, err := w.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Pending)
	assert.EqualValues(t, 2, stats.Retried)
	assert.EqualValues(t, 1, stats.DeadLettered)
	assert.Empty(t, capture.sent)
}

func TestTick_DeferredItemWaits(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	capture := &captureDispatch{}
	w, err := queue.NewWorker(queue.NewMemoryStorage(), capture.fn,
		queue.WithWorkerClock(func() time.Time { return now }))
	require.NoError(t, err)

	future := now.Add(time.Hour)
	_, err = w.Enqueue(ctx, queue.Item{
		Notification: testNotification("u1"),
		ScheduledFor: &future,
	})
	require.NoError(t, err)

	require.NoError(t, w.Tick(ctx))
	assert.Empty(t, capture.sent, "not due yet")

	now = future
	require.NoError(t, w.Tick(ctx))
	assert.Len(t, capture.sent, 1)
}

func TestTick_BatchBound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	capture := &captureDispatch{}
	w, err := queue.NewWorker(queue.NewMemoryStorage(), capture.fn,
		queue.WithBatchSize(2))
	require.NoError(t, err)

	for range 5 {
		_, err := w.Enqueue(ctx, queue.Item{Notification: testNotification("u1")})
		require.NoError(t, err)
	}

	require.NoError(t, w.Tick(ctx))
	assert.Len(t, capture.sent, 2)

	require.NoError(t, w.Tick(ctx))
	require.NoError(t, w.Tick(ctx))
	assert.Len(t, capture.sent, 5)
}

func TestTick_OldestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	capture := &captureDispatch{}
	store := queue.NewMemoryStorage()
	w, err := queue.NewWorker(store, capture.fn, queue.WithBatchSize(1))
	require.NoError(t, err)

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	first := testNotification("u1")
	second := testNotification("u1")
	_, err = w.Enqueue(ctx, queue.Item{Notification: second, EnqueuedAt: base.Add(time.Minute)})
	require.NoError(t, err)
	_, err = w.Enqueue(ctx, queue.Item{Notification: first, EnqueuedAt: base})
	require.NoError(t, err)

	require.NoError(t, w.Tick(ctx))
	require.Len(t, capture.sent, 1)
	assert.Equal(t, first.ID, capture.sent[0].ID)
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	capture := &captureDispatch{}
	w, err := queue.NewWorker(queue.NewMemoryStorage(), capture.fn,
		queue.WithInterval(10*time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, w.Start(ctx))
	require.ErrorIs(t, w.Start(ctx), queue.ErrAlreadyRunning)

	_, err = w.Enqueue(ctx, queue.Item{Notification: testNotification("u1")})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		capture.mu.Lock()
		defer capture.mu.Unlock()
		return len(capture.sent) == 1
	}, time.Second, 5*time.Millisecond)

	w.Stop()
	// Stop is idempotent.
	w.Stop()
}
