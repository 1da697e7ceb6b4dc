package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage holds pending queue items. Due returns at most limit items
// that are ready at the given time, oldest first; it does not remove
// them. Remove is called after a terminal outcome (delivered, dropped,
// or dead-lettered).
type Storage interface {
	Enqueue(ctx context.Context, item Item) error
	Due(ctx context.Context, now time.Time, limit int) ([]Item, error)
	Remove(ctx context.Context, id uuid.UUID) error
	RecordFailure(ctx context.Context, id uuid.UUID, lastError string) error
	Size(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}
