package dispatch

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/pushkit/pkg/logger"
	"github.com/dmitrymomot/pushkit/pkg/metrics"
	"github.com/dmitrymomot/pushkit/pkg/notification"
	"github.com/dmitrymomot/pushkit/pkg/subscription"
)

// SubscriptionSource is the slice of the registry the dispatcher needs.
type SubscriptionSource interface {
	ActiveByUser(ctx context.Context, userID string) ([]subscription.Subscription, error)
	Deactivate(ctx context.Context, id string) error
	MarkUsed(ctx context.Context, id string)
}

// Recorder is the slice of the history tracker the dispatcher needs.
type Recorder interface {
	Record(ctx context.Context, n notification.Notification) error
}

// Result summarizes one dispatch across all of the user's endpoints.
type Result struct {
	BrowserSent   int
	BrowserFailed int
	MobileSent    int
	MobileFailed  int
	Deactivated   int
}

// Sent returns the total number of successful gateway deliveries.
func (r Result) Sent() int { return r.BrowserSent + r.MobileSent }

// Attempted returns the total number of gateway attempts.
func (r Result) Attempted() int {
	return r.BrowserSent + r.BrowserFailed + r.MobileSent + r.MobileFailed
}

// Dispatcher fans a notification out to every active endpoint of a user
// and records the outcome in history. Gateways are optional: a nil
// browser or mobile gateway skips that channel.
type Dispatcher struct {
	subs    SubscriptionSource
	tracker Recorder
	browser BrowserGateway
	mobile  MobileGateway

	logger      *slog.Logger
	now         func() time.Time
	concurrency int
	sendTimeout time.Duration
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithBrowserGateway enables the browser push channel.
func WithBrowserGateway(g BrowserGateway) DispatcherOption {
	return func(d *Dispatcher) { d.browser = g }
}

// WithMobileGateway enables the mobile push channel.
func WithMobileGateway(g MobileGateway) DispatcherOption {
	return func(d *Dispatcher) { d.mobile = g }
}

// WithDispatcherLogger sets the logger for the Dispatcher.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithConcurrency bounds the number of parallel gateway calls per dispatch.
func WithConcurrency(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// WithSendTimeout bounds each individual gateway call.
func WithSendTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.sendTimeout = timeout
		}
	}
}

// WithDispatcherClock overrides the time source, used by tests.
func WithDispatcherClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDispatcher creates a new channel dispatcher.
func NewDispatcher(subs SubscriptionSource, tracker Recorder, opts ...DispatcherOption) (*Dispatcher, error) {
	if subs == nil {
		return nil, ErrRegistryNil
	}
	if tracker == nil {
		return nil, ErrTrackerNil
	}

	d := &Dispatcher{
		subs:        subs,
		tracker:     tracker,
		logger:      slog.Default(),
		now:         time.Now,
		concurrency: 8,
		sendTimeout: 10 * time.Second,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Dispatch delivers the notification to every active endpoint of its
// user and appends a single history record. A user with no push
// endpoints still gets the in-app record. The returned error is non-nil
// only when the dispatch is retryable: the subscription lookup failed,
// or every attempted channel failed transiently. In both retryable
// cases no history record is written, so a retry cannot duplicate it.
func (d *Dispatcher) Dispatch(ctx context.Context, n notification.Notification) (Result, error) {
	subs, err := d.subs.ActiveByUser(ctx, n.UserID)
	if err != nil {
		return Result{}, err
	}

	result, channels := d.fanOut(ctx, subs, Payload{
		Title:    n.Title,
		Body:     n.Body,
		Category: n.Category,
		Priority: n.Priority,
		Data:     n.Data,
	})

	if result.Attempted() > 0 && result.Sent() == 0 {
		d.logger.WarnContext(ctx, "dispatch failed on all channels",
			logger.NotificationID(n.ID),
			logger.UserID(n.UserID),
			slog.Int("attempted", result.Attempted()))
		return result, ErrAllChannelsFailed
	}

	sentAt := d.now()
	// The history record itself is the in-app channel.
	n.ChannelsAttempted = append(channels, "in_app")
	n.SentAt = &sentAt
	if n.CreatedAt.IsZero() {
		n.CreatedAt = sentAt
	}

	if err := d.tracker.Record(ctx, n); err != nil {
		// Delivery already happened; failing the dispatch now would
		// re-send on retry. Log and report success.
		d.logger.ErrorContext(ctx, "failed to record dispatched notification",
			logger.NotificationID(n.ID), logger.Error(err))
	}

	return result, nil
}

type sendOutcome struct {
	sub     subscription.Subscription
	outcome Outcome
	err     error
}

// fanOut sends to all endpoints with bounded parallelism and returns
// the tally plus the list of channels that accepted the message.
func (d *Dispatcher) fanOut(ctx context.Context, subs []subscription.Subscription, payload Payload) (Result, []string) {
	outcomes := make([]sendOutcome, len(subs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, sub := range subs {
		g.Go(func() error {
			sendCtx, cancel := context.WithTimeout(gctx, d.sendTimeout)
			defer cancel()

			outcome, err := d.send(sendCtx, sub, payload)
			outcomes[i] = sendOutcome{sub: sub, outcome: outcome, err: err}
			return nil
		})
	}
	// Workers never return errors; they record outcomes in place.
	_ = g.Wait()

	var result Result
	channelSet := make(map[string]struct{}, 2)

	for _, o := range outcomes {
		channel := "mobile"
		if o.sub.Platform == subscription.PlatformBrowser {
			channel = "browser"
		}

		switch o.outcome {
		case OutcomeDelivered:
			if channel == "browser" {
				result.BrowserSent++
			} else {
				result.MobileSent++
			}
			channelSet[channel] = struct{}{}
			metrics.Delivered.WithLabelValues(channel).Inc()
			d.subs.MarkUsed(ctx, o.sub.ID)

		case OutcomeGone:
			if channel == "browser" {
				result.BrowserFailed++
			} else {
				result.MobileFailed++
			}
			metrics.DeliveryFailures.WithLabelValues(channel, "gone").Inc()
			if err := d.subs.Deactivate(ctx, o.sub.ID); err != nil {
				d.logger.WarnContext(ctx, "failed to deactivate dead subscription",
					logger.Channel(channel), logger.Error(err))
			} else {
				result.Deactivated++
			}

		default:
			if channel == "browser" {
				result.BrowserFailed++
			} else {
				result.MobileFailed++
			}
			metrics.DeliveryFailures.WithLabelValues(channel, "transient").Inc()
			d.logger.WarnContext(ctx, "delivery attempt failed",
				logger.Channel(channel), logger.Error(o.err))
		}
	}

	channels := make([]string, 0, len(channelSet))
	for c := range channelSet {
		channels = append(channels, c)
	}
	return result, channels
}

// send routes one endpoint to the matching gateway. A platform without
// a configured gateway counts as a transient failure so the message can
// be retried once the gateway is enabled.
func (d *Dispatcher) send(ctx context.Context, sub subscription.Subscription, payload Payload) (Outcome, error) {
	switch {
	case sub.Platform == subscription.PlatformBrowser && d.browser != nil:
		return d.browser.Send(ctx, sub, payload)
	case sub.Platform.Mobile() && d.mobile != nil:
		return d.mobile.Send(ctx, sub, payload)
	}
	return OutcomeTransient, nil
}
