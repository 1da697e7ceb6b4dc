package queue

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory implementation of the Storage
// interface. Pending items are process local and lost on restart.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Item
}

// NewMemoryStorage creates a new in-memory queue storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		items: make(map[uuid.UUID]*Item),
	}
}

func (s *MemoryStorage) Enqueue(ctx context.Context, item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := item
	s.items[item.ID] = &cp
	return nil
}

func (s *MemoryStorage) Due(ctx context.Context, now time.Time, limit int) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	due := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		if item.Due(now) {
			due = append(due, *item)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].EnqueuedAt.Before(due[j].EnqueuedAt)
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *MemoryStorage) Remove(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrItemNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryStorage) RecordFailure(ctx context.Context, id uuid.UUID, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return ErrItemNotFound
	}
	item.Attempts++
	item.LastError = lastError
	return nil
}

func (s *MemoryStorage) Size(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

func (s *MemoryStorage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[uuid.UUID]*Item)
	return nil
}
