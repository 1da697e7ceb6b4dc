package schedule

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development and testing.
type MemoryStorage struct {
	mu     sync.RWMutex
	scheds map[string]*ScheduledNotification
}

// NewMemoryStorage creates a new in-memory schedule storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		scheds: make(map[string]*ScheduledNotification),
	}
}

func (s *MemoryStorage) Put(ctx context.Context, sched ScheduledNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := sched
	s.scheds[sched.ID] = &cp
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, id string) (*ScheduledNotification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sched, ok := s.scheds[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sched
	return &cp, nil
}

func (s *MemoryStorage) ListByUser(ctx context.Context, userID string) ([]ScheduledNotification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ScheduledNotification, 0)
	for _, sched := range s.scheds {
		if sched.UserID == userID {
			out = append(out, *sched)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SendAt.Before(out[j].SendAt)
	})
	return out, nil
}

func (s *MemoryStorage) DuePending(ctx context.Context, now time.Time, limit int) ([]ScheduledNotification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	due := make([]ScheduledNotification, 0)
	for _, sched := range s.scheds {
		if sched.Status == StatusPending && !sched.SendAt.After(now) {
			due = append(due, *sched)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].SendAt.Before(due[j].SendAt)
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *MemoryStorage) UpdateStatus(ctx context.Context, id string, status Status, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, ok := s.scheds[id]
	if !ok {
		return ErrNotFound
	}
	sched.Status = status
	sched.UpdatedAt = at
	if status == StatusSent {
		t := at
		sched.SentAt = &t
	}
	return nil
}

func (s *MemoryStorage) MarkFailed(ctx context.Context, id string, reason string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, ok := s.scheds[id]
	if !ok {
		return ErrNotFound
	}
	sched.Status = StatusFailed
	sched.FailureReason = reason
	sched.UpdatedAt = at
	return nil
}
