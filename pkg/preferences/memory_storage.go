package preferences

import (
	"context"
	"sync"

	"github.com/dmitrymomot/pushkit/pkg/notification"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development and testing.
type MemoryStorage struct {
	mu    sync.RWMutex
	prefs map[string]UserPreferences
}

// NewMemoryStorage creates a new in-memory preferences storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		prefs: make(map[string]UserPreferences),
	}
}

func (s *MemoryStorage) Get(ctx context.Context, userID string) (*UserPreferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prefs[userID]
	if !ok {
		return nil, ErrNotFound
	}

	// Copy the categories map so callers cannot mutate stored state.
	cp := p
	cp.Categories = make(map[notification.Category]bool, len(p.Categories))
	for k, v := range p.Categories {
		cp.Categories[k] = v
	}
	return &cp, nil
}

func (s *MemoryStorage) Put(ctx context.Context, prefs UserPreferences) error {
	if prefs.UserID == "" {
		return ErrUserIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs[prefs.UserID] = prefs
	return nil
}
