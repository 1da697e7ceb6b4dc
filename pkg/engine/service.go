package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/pushkit/pkg/dispatch"
	"github.com/dmitrymomot/pushkit/pkg/history"
	"github.com/dmitrymomot/pushkit/pkg/logger"
	"github.com/dmitrymomot/pushkit/pkg/metrics"
	"github.com/dmitrymomot/pushkit/pkg/notification"
	"github.com/dmitrymomot/pushkit/pkg/preferences"
	"github.com/dmitrymomot/pushkit/pkg/queue"
	"github.com/dmitrymomot/pushkit/pkg/schedule"
	"github.com/dmitrymomot/pushkit/pkg/subscription"
	"github.com/dmitrymomot/pushkit/pkg/template"
)

// Deps carries the components the Service wires together. QueueStorage
// and ScheduleStorage default to in-memory implementations when nil;
// everything else is required.
type Deps struct {
	Registry        *subscription.Registry
	Gate            *preferences.Gate
	Templates       template.Storage
	Tracker         *history.Tracker
	Dispatcher      *dispatch.Dispatcher
	QueueStorage    queue.Storage
	ScheduleStorage schedule.Storage
	Logger          *slog.Logger
}

// Service is the public facade of the notification engine. It owns the
// delivery queue worker and the scheduler loop and routes every
// operation through the preference gate where admission applies.
type Service struct {
	cfg        Config
	registry   *subscription.Registry
	gate       *preferences.Gate
	templates  template.Storage
	tracker    *history.Tracker
	dispatcher *dispatch.Dispatcher
	worker     *queue.Worker
	scheduler  *schedule.Scheduler
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a notification engine service from the given config and
// dependencies.
func New(cfg Config, deps Deps) (*Service, error) {
	if deps.Registry == nil {
		return nil, ErrRegistryNil
	}
	if deps.Gate == nil {
		return nil, ErrGateNil
	}
	if deps.Templates == nil {
		return nil, ErrTemplatesNil
	}
	if deps.Tracker == nil {
		return nil, ErrTrackerNil
	}
	if deps.Dispatcher == nil {
		return nil, ErrDispatcherNil
	}
	if deps.QueueStorage == nil {
		deps.QueueStorage = queue.NewMemoryStorage()
	}
	if deps.ScheduleStorage == nil {
		deps.ScheduleStorage = schedule.NewMemoryStorage()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	s := &Service{
		cfg:        cfg,
		registry:   deps.Registry,
		gate:       deps.Gate,
		templates:  deps.Templates,
		tracker:    deps.Tracker,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        time.Now,
	}

	worker, err := queue.NewWorker(deps.QueueStorage,
		func(ctx context.Context, n notification.Notification) error {
			_, err := s.dispatcher.Dispatch(ctx, n)
			return err
		},
		queue.WithWorkerLogger(deps.Logger),
		queue.WithInterval(cfg.QueueInterval),
		queue.WithBatchSize(cfg.BatchSize),
		queue.WithMaxAttempts(cfg.MaxAttempts),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build queue worker: %w", err)
	}
	s.worker = worker

	// Scheduled notifications pass through the same admission gate as
	// direct queueing, evaluated at fire time.
	scheduler, err := schedule.NewScheduler(deps.ScheduleStorage, gatedEnqueuer{s},
		schedule.WithSchedulerLogger(deps.Logger),
		schedule.WithSchedulerInterval(cfg.ScheduleInterval),
		schedule.WithSchedulerBatchSize(cfg.BatchSize),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build scheduler: %w", err)
	}
	s.scheduler = scheduler

	return s, nil
}

// gatedEnqueuer routes scheduler fires through the service's admission
// gate so a schedule created weeks ago still honors current preferences.
type gatedEnqueuer struct {
	s *Service
}

func (g gatedEnqueuer) Enqueue(ctx context.Context, item queue.Item) (uuid.UUID, error) {
	return g.s.admitAndEnqueue(ctx, item)
}

// RegisterSubscription stores a delivery endpoint for a user.
// Registration is idempotent on the endpoint.
func (s *Service) RegisterSubscription(ctx context.Context, userID string, platform subscription.Platform, endpoint string, keys *subscription.Keys, deviceInfo map[string]string) (*subscription.Subscription, error) {
	return s.registry.Register(ctx, userID, platform, endpoint, keys, deviceInfo)
}

// UnregisterSubscription deactivates the user's endpoint. Returns false
// when no matching subscription exists.
func (s *Service) UnregisterSubscription(ctx context.Context, userID, endpoint string) (bool, error) {
	return s.registry.Unregister(ctx, userID, endpoint)
}

// Subscriptions returns the user's active delivery endpoints.
func (s *Service) Subscriptions(ctx context.Context, userID string) ([]subscription.Subscription, error) {
	return s.registry.ActiveByUser(ctx, userID)
}

// Queue validates a notification, runs it through the preference gate,
// and enqueues it for delivery. A policy denial is not an error: the
// notification is silently dropped and uuid.Nil is returned.
func (s *Service) Queue(ctx context.Context, n notification.Notification) (uuid.UUID, error) {
	if err := validate(n); err != nil {
		return uuid.Nil, err
	}
	return s.admitAndEnqueue(ctx, queue.Item{Notification: n})
}

func (s *Service) admitAndEnqueue(ctx context.Context, item queue.Item) (uuid.UUID, error) {
	n := &item.Notification

	decision, err := s.gate.Admit(ctx, n.UserID, n.Category, n.Priority)
	if err != nil {
		return uuid.Nil, fmt.Errorf("admission check failed: %w", err)
	}
	if !decision.Allowed {
		metrics.PolicyDenied.WithLabelValues(string(decision.Reason)).Inc()
		s.logger.InfoContext(ctx, "notification dropped by policy",
			logger.UserID(n.UserID),
			logger.Category(string(n.Category)),
			logger.Reason(string(decision.Reason)))
		return uuid.Nil, nil
	}

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}

	return s.worker.Enqueue(ctx, item)
}

// QueueAt enqueues a notification whose delivery is deferred until the
// given time. Admission is evaluated now, at queue time.
func (s *Service) QueueAt(ctx context.Context, n notification.Notification, at time.Time) (uuid.UUID, error) {
	if err := validate(n); err != nil {
		return uuid.Nil, err
	}
	return s.admitAndEnqueue(ctx, queue.Item{Notification: n, ScheduledFor: &at})
}

// QueueTemplate renders a stored template with the given variables and
// queues the result. Extra data rides along in the notification payload.
func (s *Service) QueueTemplate(ctx context.Context, userID, templateID string, vars map[string]string, data map[string]any) (uuid.UUID, error) {
	tmpl, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return uuid.Nil, err
	}

	title, body := tmpl.Render(vars)
	return s.Queue(ctx, notification.Notification{
		UserID:   userID,
		Title:    title,
		Body:     body,
		Category: tmpl.Category,
		Priority: tmpl.Priority,
		Data:     data,
	})
}

// Send dispatches a notification immediately, skipping the queue and
// the preference gate. Intended for administrative and test traffic;
// regular product notifications should go through Queue.
func (s *Service) Send(ctx context.Context, n notification.Notification) (dispatch.Result, error) {
	if err := validate(n); err != nil {
		return dispatch.Result{}, err
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	return s.dispatcher.Dispatch(ctx, n)
}

// Schedule registers a notification for future delivery, possibly
// recurring. Admission is evaluated when the schedule fires, not when
// it is created.
func (s *Service) Schedule(ctx context.Context, userID string, n notification.Notification, sendAt time.Time, rec schedule.Recurrence) (*schedule.ScheduledNotification, error) {
	if err := validate(notification.Notification{
		UserID:   userID,
		Title:    n.Title,
		Category: n.Category,
		Priority: n.Priority,
	}); err != nil {
		return nil, err
	}
	return s.scheduler.Create(ctx, userID, n, sendAt, rec)
}

// ScheduleTemplate renders a stored template and registers the result
// for future delivery. The rendered content is frozen at creation; a
// later template edit does not change pending occurrences.
func (s *Service) ScheduleTemplate(ctx context.Context, userID, templateID string, vars map[string]string, data map[string]any, sendAt time.Time, rec schedule.Recurrence) (*schedule.ScheduledNotification, error) {
	tmpl, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}

	title, body := tmpl.Render(vars)
	n := notification.Notification{
		UserID:   userID,
		Title:    title,
		Body:     body,
		Category: tmpl.Category,
		Priority: tmpl.Priority,
		Data:     data,
	}
	if err := validate(n); err != nil {
		return nil, err
	}
	return s.scheduler.CreateFromTemplate(ctx, userID, templateID, n, sendAt, rec)
}

// ClearQueue drops every pending delivery. Administrative use only.
func (s *Service) ClearQueue(ctx context.Context) error {
	return s.worker.Clear(ctx)
}

// CancelScheduled stops a pending schedule owned by the user.
func (s *Service) CancelScheduled(ctx context.Context, userID, scheduleID string) error {
	return s.scheduler.Cancel(ctx, userID, scheduleID)
}

// ListScheduled returns the user's schedules, earliest first.
func (s *Service) ListScheduled(ctx context.Context, userID string) ([]schedule.ScheduledNotification, error) {
	return s.scheduler.ListByUser(ctx, userID)
}

// Preferences returns the user's settings, creating defaults on first access.
func (s *Service) Preferences(ctx context.Context, userID string) (preferences.UserPreferences, error) {
	return s.gate.Preferences(ctx, userID)
}

// UpdatePreferences applies a partial update and returns the merged result.
func (s *Service) UpdatePreferences(ctx context.Context, userID string, update preferences.Update) (preferences.UserPreferences, error) {
	return s.gate.UpdatePreferences(ctx, userID, update)
}

// History returns a page of the user's notification log, newest first.
func (s *Service) History(ctx context.Context, userID string, opts history.ListOptions) ([]notification.Notification, error) {
	return s.tracker.List(ctx, userID, opts)
}

// BadgeCounts returns the user's unread counts by category and priority.
func (s *Service) BadgeCounts(ctx context.Context, userID string) (notification.BadgeCounts, error) {
	return s.tracker.BadgeCounts(ctx, userID)
}

// MarkRead marks one notification as read, idempotently.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) (*notification.Notification, error) {
	return s.tracker.MarkRead(ctx, userID, notificationID)
}

// MarkAllRead marks all of the user's unread notifications as read.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return s.tracker.MarkAllRead(ctx, userID)
}

// CleanupHistory deletes history records older than the configured
// retention period.
func (s *Service) CleanupHistory(ctx context.Context) (int, error) {
	return s.tracker.Cleanup(ctx, s.cfg.HistoryRetention)
}

// Stats returns a snapshot of delivery queue activity.
func (s *Service) Stats(ctx context.Context) (queue.Stats, error) {
	return s.worker.Stats(ctx)
}

// TickQueue processes one delivery batch synchronously. Exposed for
// deterministic tests and manual draining.
func (s *Service) TickQueue(ctx context.Context) error {
	return s.worker.Tick(ctx)
}

// TickScheduler fires due schedules synchronously.
func (s *Service) TickScheduler(ctx context.Context) error {
	return s.scheduler.Tick(ctx)
}

// Start launches the delivery and scheduler loops.
func (s *Service) Start(ctx context.Context) error {
	if err := s.worker.Start(ctx); err != nil {
		return err
	}
	if err := s.scheduler.Start(ctx); err != nil {
		s.worker.Stop()
		return err
	}
	s.logger.InfoContext(ctx, "notification engine started")
	return nil
}

// Stop halts both loops, waiting for in-flight ticks to finish.
func (s *Service) Stop() {
	s.scheduler.Stop()
	s.worker.Stop()
	s.logger.Info("notification engine stopped")
}

func validate(n notification.Notification) error {
	if n.UserID == "" {
		return ErrUserIDRequired
	}
	if n.Title == "" {
		return ErrTitleRequired
	}
	if !n.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, n.Category)
	}
	if !n.Priority.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPriority, n.Priority)
	}
	return nil
}
