package history

import "errors"

var (
	// ErrStorageNil is returned when a Tracker is created without storage.
	ErrStorageNil = errors.New("history storage is nil")
	// ErrNotFound is returned when a notification record does not exist.
	ErrNotFound = errors.New("notification not found")
	// ErrUserIDRequired is returned when an operation is missing the user ID.
	ErrUserIDRequired = errors.New("user ID is required")
	// ErrNotificationIDRequired is returned when a record is missing its ID.
	ErrNotificationIDRequired = errors.New("notification ID is required")
	// ErrNotOwned is returned when a record belongs to a different user.
	ErrNotOwned = errors.New("notification belongs to another user")
)
