package preferences

import "errors"

var (
	// ErrStorageNil is returned when a nil storage is provided.
	ErrStorageNil = errors.New("storage cannot be nil")

	// ErrCounterStoreNil is returned when a nil counter store is provided.
	ErrCounterStoreNil = errors.New("counter store cannot be nil")

	// ErrNotFound is returned when a user has no stored preferences.
	ErrNotFound = errors.New("preferences not found")

	// ErrUserIDRequired is returned when a user ID is missing.
	ErrUserIDRequired = errors.New("user ID is required")

	// ErrInvalidQuietHours is returned when a quiet hours window cannot be parsed.
	ErrInvalidQuietHours = errors.New("invalid quiet hours window")
)
