package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"stafflink/internal/candidates/models"
	"stafflink/pkg/platform/sentinel"
)

// InMemory is the in-memory candidate store for unit tests and local
// development.
type InMemory struct {
	mu         sync.RWMutex
	candidates map[uuid.UUID]*models.Candidate
}

func NewInMemory() *InMemory {
	return &InMemory{candidates: make(map[uuid.UUID]*models.Candidate)}
}

func (s *InMemory) Create(_ context.Context, candidate *models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[candidate.ID] = cloneCandidate(candidate)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.candidates[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneCandidate(c), nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.candidates {
		if strings.EqualFold(c.Email, email) {
			return cloneCandidate(c), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Update(_ context.Context, candidate *models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.candidates[candidate.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.candidates[candidate.ID] = cloneCandidate(candidate)
	return nil
}

func (s *InMemory) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Candidate
	for _, id := range ids {
		if c, ok := s.candidates[id]; ok {
			out = append(out, cloneCandidate(c))
		}
	}
	return out, nil
}

func cloneCandidate(c *models.Candidate) *models.Candidate {
	cp := *c
	if c.AccountID != nil {
		id := *c.AccountID
		cp.AccountID = &id
	}
	cp.Education = append(models.FlexList(nil), c.Education...)
	cp.Experience = append(models.FlexList(nil), c.Experience...)
	cp.Certifications = append(models.FlexList(nil), c.Certifications...)
	cp.Skills = append([]string(nil), c.Skills...)
	return &cp
}
