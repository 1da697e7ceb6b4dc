package subscription

import "errors"

var (
	// ErrStorageNil is returned when a nil storage is provided.
	ErrStorageNil = errors.New("storage cannot be nil")

	// ErrUserIDRequired is returned when a user ID is missing.
	ErrUserIDRequired = errors.New("user ID is required")

	// ErrEndpointRequired is returned when an endpoint or token is missing.
	ErrEndpointRequired = errors.New("endpoint or token is required")

	// ErrInvalidPlatform is returned for an unknown platform value.
	ErrInvalidPlatform = errors.New("invalid platform")

	// ErrKeysRequired is returned when a browser subscription lacks encryption keys.
	ErrKeysRequired = errors.New("browser subscription requires encryption keys")

	// ErrNotFound is returned when a subscription does not exist.
	ErrNotFound = errors.New("subscription not found")
)
