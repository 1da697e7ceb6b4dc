package preferences

import "context"

// Storage handles user preference persistence.
type Storage interface {
	// Get retrieves the preferences of a user.
	// Returns ErrNotFound if the user has none stored yet.
	Get(ctx context.Context, userID string) (*UserPreferences, error)

	// Put stores or replaces the preferences of a user.
	Put(ctx context.Context, prefs UserPreferences) error
}
