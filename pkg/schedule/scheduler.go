package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/pushkit/pkg/logger"
	"github.com/dmitrymomot/pushkit/pkg/notification"
	"github.com/dmitrymomot/pushkit/pkg/queue"
)

// Enqueuer is the slice of the delivery queue the scheduler needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, item queue.Item) (uuid.UUID, error)
}

// Scheduler fires scheduled notifications into the delivery queue when
// their send time arrives and advances recurring series.
type Scheduler struct {
	storage  Storage
	enqueuer Enqueuer
	logger   *slog.Logger
	now      func() time.Time

	interval  time.Duration
	batchSize int

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerLogger sets the logger for the Scheduler.
func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSchedulerInterval sets the tick interval of the due-scan loop.
func WithSchedulerInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSchedulerBatchSize bounds how many due schedules one tick fires.
func WithSchedulerBatchSize(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithSchedulerClock overrides the time source, used by tests.
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// NewScheduler creates a new notification scheduler.
func NewScheduler(storage Storage, enqueuer Enqueuer, opts ...SchedulerOption) (*Scheduler, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}
	if enqueuer == nil {
		return nil, ErrEnqueuerNil
	}

	s := &Scheduler{
		storage:   storage,
		enqueuer:  enqueuer,
		logger:    slog.Default(),
		now:       time.Now,
		interval:  time.Minute,
		batchSize: 100,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Create registers a notification for future delivery. The send time
// must be in the future and the recurrence rule well-formed.
func (s *Scheduler) Create(ctx context.Context, userID string, n notification.Notification, sendAt time.Time, rec Recurrence) (*ScheduledNotification, error) {
	return s.create(ctx, userID, "", n, sendAt, rec)
}

// CreateFromTemplate registers template-rendered content for future
// delivery, remembering which template produced it.
func (s *Scheduler) CreateFromTemplate(ctx context.Context, userID, templateID string, n notification.Notification, sendAt time.Time, rec Recurrence) (*ScheduledNotification, error) {
	return s.create(ctx, userID, templateID, n, sendAt, rec)
}

func (s *Scheduler) create(ctx context.Context, userID, templateID string, n notification.Notification, sendAt time.Time, rec Recurrence) (*ScheduledNotification, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if !sendAt.After(s.now()) {
		return nil, ErrSendTimePast
	}
	if rec.Frequency == "" {
		rec.Frequency = FrequencyOnce
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	n.UserID = userID
	sched := ScheduledNotification{
		ID:           uuid.New().String(),
		UserID:       userID,
		TemplateID:   templateID,
		Notification: n,
		SendAt:       sendAt,
		Recurrence:   rec,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.Put(ctx, sched); err != nil {
		return nil, fmt.Errorf("failed to store schedule: %w", err)
	}

	s.logger.InfoContext(ctx, "notification scheduled",
		logger.ScheduleID(sched.ID),
		logger.UserID(userID),
		slog.Time("send_at", sendAt),
		slog.String("frequency", string(rec.Frequency)))

	return &sched, nil
}

// Cancel stops a pending schedule. Only the owner can cancel, and only
// while the schedule is still pending.
func (s *Scheduler) Cancel(ctx context.Context, userID, scheduleID string) error {
	sched, err := s.storage.Get(ctx, scheduleID)
	if err != nil {
		return err
	}
	if sched.UserID != userID {
		return ErrNotOwned
	}
	if sched.Status != StatusPending {
		return ErrNotCancellable
	}

	if err := s.storage.UpdateStatus(ctx, scheduleID, StatusCancelled, s.now()); err != nil {
		return fmt.Errorf("failed to cancel schedule: %w", err)
	}

	s.logger.InfoContext(ctx, "schedule cancelled",
		logger.ScheduleID(scheduleID), logger.UserID(userID))
	return nil
}

// ListByUser returns the user's schedules, earliest send time first.
func (s *Scheduler) ListByUser(ctx context.Context, userID string) ([]ScheduledNotification, error) {
	return s.storage.ListByUser(ctx, userID)
}

// Tick fires every due pending schedule. A failure on one schedule is
// isolated: it is marked failed and the scan moves on. It is exported
// so callers and tests can drive the scheduler deterministically.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := s.now()

	due, err := s.storage.DuePending(ctx, now, s.batchSize)
	if err != nil {
		return fmt.Errorf("failed to scan due schedules: %w", err)
	}

	for _, sched := range due {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.fire(ctx, sched)
	}
	return nil
}

// fire enqueues one due schedule, marks it sent, and creates the
// successor occurrence for recurring series.
func (s *Scheduler) fire(ctx context.Context, sched ScheduledNotification) {
	now := s.now()

	n := sched.Notification
	n.ID = uuid.New().String()
	n.UserID = sched.UserID
	n.CreatedAt = now

	if _, err := s.enqueuer.Enqueue(ctx, queue.Item{Notification: n}); err != nil {
		s.logger.ErrorContext(ctx, "failed to enqueue scheduled notification",
			logger.ScheduleID(sched.ID), logger.Error(err))
		if err := s.storage.MarkFailed(ctx, sched.ID, err.Error(), now); err != nil {
			s.logger.ErrorContext(ctx, "failed to mark schedule failed",
				logger.ScheduleID(sched.ID), logger.Error(err))
		}
		return
	}

	if err := s.storage.UpdateStatus(ctx, sched.ID, StatusSent, now); err != nil {
		s.logger.ErrorContext(ctx, "failed to mark schedule sent",
			logger.ScheduleID(sched.ID), logger.Error(err))
	}

	next, ok := sched.Recurrence.Next(sched.SendAt)
	if !ok {
		return
	}

	successor := ScheduledNotification{
		ID:           uuid.New().String(),
		UserID:       sched.UserID,
		TemplateID:   sched.TemplateID,
		Notification: sched.Notification,
		SendAt:       next,
		Recurrence:   sched.Recurrence,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.storage.Put(ctx, successor); err != nil {
		s.logger.ErrorContext(ctx, "failed to store recurring successor",
			logger.ScheduleID(sched.ID), logger.Error(err))
		return
	}

	s.logger.DebugContext(ctx, "recurring schedule advanced",
		logger.ScheduleID(sched.ID),
		slog.String("successor_id", successor.ID),
		slog.Time("next_send_at", next))
}

// Start launches the background due-scan loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrAlreadyRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(loopCtx, s.done)
	return nil
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil && ctx.Err() == nil {
				s.logger.ErrorContext(ctx, "schedule tick failed", logger.Error(err))
			}
		}
	}
}

// Stop halts the background loop and waits for the in-flight tick.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
