package preferences

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/pushkit/pkg/logger"
	"github.com/dmitrymomot/pushkit/pkg/notification"
)

// DenyReason explains why the gate dropped a candidate notification.
type DenyReason string

const (
	DenyCategoryDisabled DenyReason = "category_disabled"
	DenyBelowMinPriority DenyReason = "below_priority_threshold"
	DenyQuietHours       DenyReason = "quiet_hours"
	DenyRateLimited      DenyReason = "rate_limited"
)

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed bool
	Reason  DenyReason // set only when Allowed is false
}

var allow = Decision{Allowed: true}

func deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// Gate admits or silently drops candidate notifications based on
// per-user settings. Rules are evaluated in order, first match wins:
// security category and critical priority bypass everything, then
// category toggles, minimum priority, quiet hours, and frequency
// limits are checked in turn.
type Gate struct {
	storage  Storage
	counters CounterStore
	logger   *slog.Logger
	now      func() time.Time
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithGateLogger sets the logger for the Gate.
func WithGateLogger(l *slog.Logger) GateOption {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithGateClock overrides the time source, used by tests to drive
// quiet-hour and rate-window checks deterministically.
func WithGateClock(now func() time.Time) GateOption {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGate creates a new preference and policy gate.
func NewGate(storage Storage, counters CounterStore, opts ...GateOption) (*Gate, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}
	if counters == nil {
		return nil, ErrCounterStoreNil
	}

	g := &Gate{
		storage:  storage,
		counters: counters,
		logger:   slog.Default(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Admit decides whether a candidate notification may be queued.
// A successful admit counts against the user's frequency limits;
// a denial mutates no counters beyond any reset that was already due.
func (g *Gate) Admit(ctx context.Context, userID string, category notification.Category, priority notification.Priority) (Decision, error) {
	if userID == "" {
		return Decision{}, ErrUserIDRequired
	}

	// Security and critical notifications bypass all user settings,
	// including frequency limits.
	if category == notification.CategorySecurity {
		return allow, nil
	}
	if priority == notification.PriorityCritical {
		return allow, nil
	}

	prefs, err := g.Preferences(ctx, userID)
	if err != nil {
		return Decision{}, err
	}

	if enabled, ok := prefs.Categories[category]; ok && !enabled {
		return deny(DenyCategoryDisabled), nil
	}

	if priority < prefs.MinPriority {
		return deny(DenyBelowMinPriority), nil
	}

	inQuiet, err := inQuietHours(prefs.QuietHours, g.now())
	if err != nil {
		return Decision{}, err
	}
	if inQuiet {
		return deny(DenyQuietHours), nil
	}

	// Increment-then-compare: the provisional increment is rolled back
	// when either window is over its limit.
	hourly, daily, err := g.counters.Increment(ctx, userID, g.now())
	if err != nil {
		return Decision{}, fmt.Errorf("failed to update rate counters: %w", err)
	}
	if (prefs.FrequencyLimits.MaxPerHour > 0 && hourly > prefs.FrequencyLimits.MaxPerHour) ||
		(prefs.FrequencyLimits.MaxPerDay > 0 && daily > prefs.FrequencyLimits.MaxPerDay) {
		if err := g.counters.Decrement(ctx, userID); err != nil {
			g.logger.WarnContext(ctx, "failed to roll back rate counter",
				logger.UserID(userID), logger.Error(err))
		}
		return deny(DenyRateLimited), nil
	}

	return allow, nil
}

// Preferences returns the user's settings, lazily creating and
// persisting defaults on first access.
func (g *Gate) Preferences(ctx context.Context, userID string) (UserPreferences, error) {
	if userID == "" {
		return UserPreferences{}, ErrUserIDRequired
	}

	prefs, err := g.storage.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return UserPreferences{}, fmt.Errorf("failed to load preferences: %w", err)
		}

		defaults := Default(userID)
		defaults.UpdatedAt = g.now()
		if err := g.storage.Put(ctx, defaults); err != nil {
			return UserPreferences{}, fmt.Errorf("failed to store default preferences: %w", err)
		}
		return defaults, nil
	}

	return *prefs, nil
}

// UpdatePreferences applies a partial update and returns the merged result.
func (g *Gate) UpdatePreferences(ctx context.Context, userID string, update Update) (UserPreferences, error) {
	current, err := g.Preferences(ctx, userID)
	if err != nil {
		return UserPreferences{}, err
	}

	merged := current.Merge(update)
	merged.UpdatedAt = g.now()

	if err := g.storage.Put(ctx, merged); err != nil {
		return UserPreferences{}, fmt.Errorf("failed to store preferences: %w", err)
	}

	return merged, nil
}

// inQuietHours reports whether now falls inside the user's quiet hours
// window, converted to the user's timezone. A window with start > end
// spans midnight: [start, 24:00) plus [00:00, end).
func inQuietHours(qh QuietHours, now time.Time) (bool, error) {
	if !qh.Enabled {
		return false, nil
	}

	loc, err := time.LoadLocation(qh.Timezone)
	if err != nil {
		return false, fmt.Errorf("%w: unknown timezone %q", ErrInvalidQuietHours, qh.Timezone)
	}

	start, err := parseMinutes(qh.Start)
	if err != nil {
		return false, err
	}
	end, err := parseMinutes(qh.End)
	if err != nil {
		return false, err
	}

	if start == end {
		// Degenerate window; treat as disabled rather than all-day silence.
		return false, nil
	}

	local := now.In(loc)
	minutes := local.Hour()*60 + local.Minute()

	if start < end {
		return minutes >= start && minutes < end, nil
	}
	// Overnight wrap.
	return minutes >= start || minutes < end, nil
}

// parseMinutes converts "HH:MM" to minutes since midnight.
func parseMinutes(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuietHours, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}
