package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/pushkit/pkg/logger"
	"github.com/dmitrymomot/pushkit/pkg/metrics"
	"github.com/dmitrymomot/pushkit/pkg/notification"
)

// DispatchFunc delivers one notification. A nil return is terminal
// success; a non-nil return means the delivery is retryable.
type DispatchFunc func(ctx context.Context, n notification.Notification) error

// Stats is a point-in-time snapshot of worker activity.
type Stats struct {
	Pending      int   `json:"pending"`
	Delivered    int64 `json:"delivered"`
	Retried      int64 `json:"retried"`
	DeadLettered int64 `json:"dead_lettered"`
}

// Worker drains the delivery queue. Each tick it claims a bounded batch
// of due items and hands them to the dispatch function one at a time;
// failed items stay queued with an incremented attempt count until
// MaxAttempts is reached, then are dropped with a dead-letter log line.
type Worker struct {
	storage  Storage
	dispatch DispatchFunc
	logger   *slog.Logger
	now      func() time.Time

	interval    time.Duration
	batchSize   int
	maxAttempts int

	delivered    atomic.Int64
	retried      atomic.Int64
	deadLettered atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithWorkerLogger sets the logger for the Worker.
func WithWorkerLogger(l *slog.Logger) WorkerOption {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithInterval sets the tick interval of the delivery loop.
func WithInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithBatchSize bounds how many items one tick may process.
func WithBatchSize(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// WithMaxAttempts sets the default attempt budget for enqueued items.
func WithMaxAttempts(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.maxAttempts = n
		}
	}
}

// WithWorkerClock overrides the time source, used by tests.
func WithWorkerClock(now func() time.Time) WorkerOption {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

// NewWorker creates a new queue worker.
func NewWorker(storage Storage, dispatch DispatchFunc, opts ...WorkerOption) (*Worker, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}
	if dispatch == nil {
		return nil, ErrDispatcherNil
	}

	w := &Worker{
		storage:     storage,
		dispatch:    dispatch,
		logger:      slog.Default(),
		now:         time.Now,
		interval:    time.Second,
		batchSize:   50,
		maxAttempts: 3,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Enqueue adds a notification to the queue. A zero item ID gets a fresh
// UUID; a zero MaxAttempts inherits the worker default.
func (w *Worker) Enqueue(ctx context.Context, item Item) (uuid.UUID, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.MaxAttempts == 0 {
		item.MaxAttempts = w.maxAttempts
	}
	if item.EnqueuedAt.IsZero() {
		item.EnqueuedAt = w.now()
	}

	if err := w.storage.Enqueue(ctx, item); err != nil {
		return uuid.Nil, fmt.Errorf("failed to enqueue: %w", err)
	}

	w.updateDepth(ctx)
	return item.ID, nil
}

// Tick processes one batch of due items. It is exported so callers and
// tests can drive the queue deterministically without the background loop.
func (w *Worker) Tick(ctx context.Context) error {
	now := w.now()

	batch, err := w.storage.Due(ctx, now, w.batchSize)
	if err != nil {
		return fmt.Errorf("failed to load due items: %w", err)
	}

	for _, item := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.process(ctx, item)
	}

	w.updateDepth(ctx)
	return nil
}

func (w *Worker) process(ctx context.Context, item Item) {
	err := w.dispatch(ctx, item.Notification)
	if err == nil {
		w.delivered.Add(1)
		if err := w.storage.Remove(ctx, item.ID); err != nil {
			w.logger.WarnContext(ctx, "failed to remove delivered item",
				logger.NotificationID(item.Notification.ID), logger.Error(err))
		}
		return
	}

	item.Attempts++
	if item.Exhausted() {
		w.deadLettered.Add(1)
		metrics.DeadLettered.Inc()
		w.logger.ErrorContext(ctx, "notification dead-lettered",
			logger.NotificationID(item.Notification.ID),
			logger.UserID(item.Notification.UserID),
			logger.Attempts(item.Attempts),
			logger.Error(err))
		if err := w.storage.Remove(ctx, item.ID); err != nil {
			w.logger.WarnContext(ctx, "failed to remove dead-lettered item",
				logger.NotificationID(item.Notification.ID), logger.Error(err))
		}
		return
	}

	w.retried.Add(1)
	w.logger.WarnContext(ctx, "delivery failed, will retry",
		logger.NotificationID(item.Notification.ID),
		logger.Attempts(item.Attempts),
		logger.Error(err))
	if err := w.storage.RecordFailure(ctx, item.ID, err.Error()); err != nil {
		w.logger.WarnContext(ctx, "failed to record delivery failure",
			logger.NotificationID(item.Notification.ID), logger.Error(err))
	}
}

// Start launches the background delivery loop. It returns immediately;
// use Stop for a graceful shutdown.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return ErrAlreadyRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.run(loopCtx, w.done)
	return nil
}

func (w *Worker) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Tick(ctx); err != nil && ctx.Err() == nil {
				w.logger.ErrorContext(ctx, "queue tick failed", logger.Error(err))
			}
		}
	}
}

// Stop halts the background loop and waits for the in-flight tick to
// finish. Pending items stay in storage.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Clear drops every pending item without delivering it.
func (w *Worker) Clear(ctx context.Context) error {
	if err := w.storage.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}
	w.updateDepth(ctx)
	return nil
}

// Stats returns a snapshot of queue activity.
func (w *Worker) Stats(ctx context.Context) (Stats, error) {
	pending, err := w.storage.Size(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read queue size: %w", err)
	}
	return Stats{
		Pending:      pending,
		Delivered:    w.delivered.Load(),
		Retried:      w.retried.Load(),
		DeadLettered: w.deadLettered.Load(),
	}, nil
}

func (w *Worker) updateDepth(ctx context.Context) {
	if size, err := w.storage.Size(ctx); err == nil {
		metrics.QueueDepth.Set(float64(size))
	}
}
