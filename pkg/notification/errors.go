package notification

import "errors"

var (
	// ErrUnknownPriority is returned when a priority string cannot be parsed.
	ErrUnknownPriority = errors.New("unknown priority")

	// ErrUnknownCategory is returned when a category value is not recognized.
	ErrUnknownCategory = errors.New("unknown category")
)
