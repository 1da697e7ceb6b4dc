package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/pushkit/pkg/logger"
)

// Registry manages delivery endpoints and their liveness state.
type Registry struct {
	storage Storage
	logger  *slog.Logger
	now     func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger for the Registry.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRegistryClock overrides the time source, used by tests.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry creates a new subscription registry.
func NewRegistry(storage Storage, opts ...RegistryOption) (*Registry, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}

	r := &Registry{
		storage: storage,
		logger:  slog.Default(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Register stores a delivery endpoint for a user. Registration is
// idempotent on the endpoint: an existing record (active or not) is
// updated in place and reactivated, never duplicated.
func (r *Registry) Register(ctx context.Context, userID string, platform Platform, endpoint string, keys *Keys, deviceInfo map[string]string) (*Subscription, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}
	if !platform.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlatform, platform)
	}
	if platform == PlatformBrowser && keys == nil {
		return nil, ErrKeysRequired
	}

	now := r.now()

	existing, err := r.storage.GetByEndpoint(ctx, endpoint)
	if err == nil && existing != nil {
		existing.UserID = userID
		existing.Platform = platform
		existing.Keys = keys
		if deviceInfo != nil {
			existing.DeviceInfo = deviceInfo
		}
		existing.IsActive = true
		existing.LastUsedAt = now

		if err := r.storage.Put(ctx, *existing); err != nil {
			return nil, fmt.Errorf("failed to update subscription: %w", err)
		}

		r.logger.DebugContext(ctx, "subscription reactivated",
			logger.UserID(userID),
			logger.Channel(string(platform)))
		return existing, nil
	}

	sub := Subscription{
		ID:         uuid.New().String(),
		UserID:     userID,
		Platform:   platform,
		Endpoint:   endpoint,
		Keys:       keys,
		DeviceInfo: deviceInfo,
		IsActive:   true,
		CreatedAt:  now,
		LastUsedAt: now,
	}

	if err := r.storage.Put(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to store subscription: %w", err)
	}

	r.logger.InfoContext(ctx, "subscription registered",
		logger.UserID(userID),
		logger.Channel(string(platform)))

	return &sub, nil
}

// Unregister deactivates the subscription matching the endpoint, if it
// belongs to the user. Returns false when no matching subscription exists.
func (r *Registry) Unregister(ctx context.Context, userID, endpoint string) (bool, error) {
	if userID == "" {
		return false, ErrUserIDRequired
	}
	if endpoint == "" {
		return false, ErrEndpointRequired
	}

	sub, err := r.storage.GetByEndpoint(ctx, endpoint)
	if err != nil || sub == nil || sub.UserID != userID {
		return false, nil
	}

	if err := r.storage.Deactivate(ctx, sub.ID); err != nil {
		return false, fmt.Errorf("failed to deactivate subscription: %w", err)
	}

	r.logger.InfoContext(ctx, "subscription unregistered",
		logger.UserID(userID),
		logger.Channel(string(sub.Platform)))

	return true, nil
}

// ActiveByUser returns the user's active subscriptions. Inactive
// records are filtered out so a dispatch never reads a dead endpoint.
func (r *Registry) ActiveByUser(ctx context.Context, userID string) ([]Subscription, error) {
	subs, err := r.storage.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	active := make([]Subscription, 0, len(subs))
	for _, sub := range subs {
		if sub.IsActive {
			active = append(active, sub)
		}
	}
	return active, nil
}

// Deactivate marks a subscription inactive after a confirmed-invalid
// gateway response. The record stays in storage so re-registration can
// revive it.
func (r *Registry) Deactivate(ctx context.Context, id string) error {
	if err := r.storage.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate subscription: %w", err)
	}
	return nil
}

// MarkUsed refreshes the last-used timestamp after a successful delivery.
func (r *Registry) MarkUsed(ctx context.Context, id string) {
	if err := r.storage.Touch(ctx, id, r.now()); err != nil {
		// Best effort; a stale LastUsedAt is harmless.
		r.logger.DebugContext(ctx, "failed to touch subscription", logger.Error(err))
	}
}
