package engine

import "errors"

var (
	// ErrRegistryNil is returned when the service is created without a
	// subscription registry.
	ErrRegistryNil = errors.New("subscription registry is nil")
	// ErrGateNil is returned when the service is created without a
	// preference gate.
	ErrGateNil = errors.New("preference gate is nil")
	// ErrTemplatesNil is returned when the service is created without
	// template storage.
	ErrTemplatesNil = errors.New("template storage is nil")
	// ErrTrackerNil is returned when the service is created without a
	// history tracker.
	ErrTrackerNil = errors.New("history tracker is nil")
	// ErrDispatcherNil is returned when the service is created without a
	// dispatcher.
	ErrDispatcherNil = errors.New("dispatcher is nil")
	// ErrUserIDRequired is returned when an operation is missing the user ID.
	ErrUserIDRequired = errors.New("user ID is required")
	// ErrTitleRequired is returned when a notification has no title.
	ErrTitleRequired = errors.New("notification title is required")
	// ErrInvalidCategory is returned for an unknown notification category.
	ErrInvalidCategory = errors.New("invalid notification category")
	// ErrInvalidPriority is returned for an out-of-range priority.
	ErrInvalidPriority = errors.New("invalid notification priority")
)
