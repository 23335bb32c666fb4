package store

import (
	"context"
	"sync"
	"time"

	"stafflink/internal/exam/models"
	"stafflink/pkg/platform/sentinel"
)

// InMemoryStore is the in-memory progress store used in tests.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	clock   func() time.Time
}

type memoryEntry struct {
	progress  models.Progress
	expiresAt time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		entries: make(map[string]memoryEntry),
		clock:   time.Now,
	}
}

// SetClock overrides the expiry clock. Test hook.
func (s *InMemoryStore) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

func (s *InMemoryStore) Put(_ context.Context, progress *models.Progress, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[progress.Token] = memoryEntry{
		progress:  *progress,
		expiresAt: s.clock().Add(ttl),
	}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, token string) (*models.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[token]
	if !ok || s.clock().After(entry.expiresAt) {
		delete(s.entries, token)
		return nil, sentinel.ErrNotFound
	}
	progress := entry.progress
	return &progress, nil
}

func (s *InMemoryStore) Update(_ context.Context, progress *models.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[progress.Token]
	if !ok || s.clock().After(entry.expiresAt) {
		delete(s.entries, progress.Token)
		return sentinel.ErrNotFound
	}
	entry.progress = *progress
	s.entries[progress.Token] = entry
	return nil
}
