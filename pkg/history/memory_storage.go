package history

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/pushkit/pkg/notification"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development and testing.
type MemoryStorage struct {
	mu     sync.RWMutex
	items  map[string]*notification.Notification
	byUser map[string][]string // ordered oldest first
}

// NewMemoryStorage creates a new in-memory history storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		items:  make(map[string]*notification.Notification),
		byUser: make(map[string][]string),
	}
}

func (s *MemoryStorage) Append(ctx context.Context, n notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := n
	s.items[n.ID] = &cp
	s.byUser[n.UserID] = append(s.byUser[n.UserID], n.ID)
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, id string) (*notification.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (s *MemoryStorage) List(ctx context.Context, userID string, opts ListOptions) ([]notification.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUser[userID]
	result := make([]notification.Notification, 0, len(ids))

	// Walk newest first.
	for i := len(ids) - 1; i >= 0; i-- {
		n := s.items[ids[i]]
		if opts.Category != "" && n.Category != opts.Category {
			continue
		}
		if opts.UnreadOnly && n.IsRead() {
			continue
		}
		result = append(result, *n)
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(result) {
			return []notification.Notification{}, nil
		}
		result = result[opts.Offset:]
	}
	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return slices.Clip(result), nil
}

func (s *MemoryStorage) MarkRead(ctx context.Context, id string, at time.Time) (*notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if n.ReadAt == nil {
		t := at
		n.ReadAt = &t
	}
	cp := *n
	return &cp, nil
}

func (s *MemoryStorage) MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, id := range s.byUser[userID] {
		n := s.items[id]
		if n.ReadAt == nil {
			t := at
			n.ReadAt = &t
			count++
		}
	}
	return count, nil
}

func (s *MemoryStorage) CountUnread(ctx context.Context, userID string) (notification.BadgeCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := notification.BadgeCounts{
		ByCategory: make(map[notification.Category]int),
		ByPriority: make(map[notification.Priority]int),
	}
	for _, id := range s.byUser[userID] {
		n := s.items[id]
		if n.IsRead() {
			continue
		}
		counts.Total++
		counts.ByCategory[n.Category]++
		counts.ByPriority[n.Priority]++
	}
	return counts, nil
}

func (s *MemoryStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, n := range s.items {
		if n.CreatedAt.Before(cutoff) {
			delete(s.items, id)
			s.byUser[n.UserID] = slices.DeleteFunc(s.byUser[n.UserID], func(v string) bool {
				return v == id
			})
			removed++
		}
	}
	return removed, nil
}
