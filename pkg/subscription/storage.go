package subscription

import (
	"context"
	"time"
)

// Storage handles subscription persistence. Implementations must treat
// Endpoint as unique: Put with an existing endpoint replaces the record.
type Storage interface {
	// Put stores or replaces a subscription.
	Put(ctx context.Context, sub Subscription) error

	// GetByEndpoint retrieves a subscription by its endpoint or token.
	GetByEndpoint(ctx context.Context, endpoint string) (*Subscription, error)

	// ListByUser returns all subscriptions of a user, active or not.
	ListByUser(ctx context.Context, userID string) ([]Subscription, error)

	// Deactivate flips IsActive to false for the given subscription.
	Deactivate(ctx context.Context, id string) error

	// Touch refreshes LastUsedAt after a successful delivery.
	Touch(ctx context.Context, id string, usedAt time.Time) error
}
