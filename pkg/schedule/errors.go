package schedule

import "errors"

var (
	// ErrStorageNil is returned when a Scheduler is created without storage.
	ErrStorageNil = errors.New("schedule storage is nil")
	// ErrEnqueuerNil is returned when a Scheduler is created without a
	// delivery queue.
	ErrEnqueuerNil = errors.New("enqueuer is nil")
	// ErrUserIDRequired is returned when an operation is missing the user ID.
	ErrUserIDRequired = errors.New("user ID is required")
	// ErrNotFound is returned when a scheduled notification does not exist.
	ErrNotFound = errors.New("scheduled notification not found")
	// ErrNotOwned is returned when a schedule belongs to a different user.
	ErrNotOwned = errors.New("schedule belongs to another user")
	// ErrNotCancellable is returned when cancelling a schedule that has
	// already been sent, cancelled, or failed.
	ErrNotCancellable = errors.New("schedule is not pending")
	// ErrSendTimePast is returned when creating a schedule whose send
	// time is not in the future.
	ErrSendTimePast = errors.New("send time must be in the future")
	// ErrInvalidRecurrence is returned when a recurrence rule is malformed.
	ErrInvalidRecurrence = errors.New("invalid recurrence rule")
	// ErrAlreadyRunning is returned when Start is called on a running
	// scheduler.
	ErrAlreadyRunning = errors.New("scheduler already running")
)
