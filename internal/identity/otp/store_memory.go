package otp

import (
	"context"
	"sync"
	"time"

	"stafflink/pkg/platform/sentinel"
)

type entry struct {
	code      string
	expiresAt time.Time
}

// InMemoryStore backs unit tests.
type InMemoryStore struct {
	mu    sync.Mutex
	codes map[string]entry
	now   func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{codes: make(map[string]entry), now: time.Now}
}

// SetClock overrides the clock so tests can force expiry.
func (s *InMemoryStore) SetClock(now func() time.Time) { s.now = now }

func (s *InMemoryStore) Put(_ context.Context, purpose Purpose, k, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[key(purpose, k)] = entry{code: code, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *InMemoryStore) Consume(_ context.Context, purpose Purpose, k, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.codes[key(purpose, k)]
	if !ok || s.now().After(e.expiresAt) {
		delete(s.codes, key(purpose, k))
		return sentinel.ErrExpired
	}
	if e.code != code {
		return sentinel.ErrInvalidState
	}
	delete(s.codes, key(purpose, k))
	return nil
}
