package queue

import "errors"

var (
	// ErrStorageNil is returned when a Worker is created without storage.
	ErrStorageNil = errors.New("queue storage is nil")
	// ErrDispatcherNil is returned when a Worker is created without a
	// dispatch function.
	ErrDispatcherNil = errors.New("dispatcher is nil")
	// ErrItemNotFound is returned when a queue item does not exist.
	ErrItemNotFound = errors.New("queue item not found")
	// ErrAlreadyRunning is returned when Start is called on a running worker.
	ErrAlreadyRunning = errors.New("worker already running")
)
