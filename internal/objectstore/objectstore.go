// Package objectstore persists uploaded files (resumes, KYC documents, exam
// captures) and returns stable URLs for the stored objects.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Store uploads a file and returns its public URL. A failed upload must abort
// the enclosing write; callers never persist a record pointing at an object
// that does not exist.
type Store interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// InMemory keeps object bytes in a map. Test double.
type InMemory struct {
	mu      sync.Mutex
	objects map[string][]byte
	// FailNext forces the next Upload to fail, for abort-path tests.
	FailNext bool
}

func NewInMemory() *InMemory {
	return &InMemory{objects: make(map[string][]byte)}
}

func (s *InMemory) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailNext {
		s.FailNext = false
		return "", fmt.Errorf("upload %s: store unavailable", key)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	s.objects[key] = data
	return "memory://" + key, nil
}

// Object returns the stored bytes for assertions.
func (s *InMemory) Object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, ok
}
