package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"stafflink/internal/interviews/models"
	"stafflink/pkg/platform/sentinel"
)

// InMemory is the in-memory interview store used in tests and local runs.
type InMemory struct {
	mu         sync.RWMutex
	interviews map[uuid.UUID]*models.Interview
}

func NewInMemory() *InMemory {
	return &InMemory{interviews: make(map[uuid.UUID]*models.Interview)}
}

func (s *InMemory) Create(_ context.Context, interview *models.Interview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interviews[interview.ID] = cloneInterview(interview)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.Interview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	interview, ok := s.interviews[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneInterview(interview), nil
}

func (s *InMemory) Update(_ context.Context, interview *models.Interview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.interviews[interview.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.interviews[interview.ID] = cloneInterview(interview)
	return nil
}

func (s *InMemory) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.interviews[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.interviews, id)
	return nil
}

func (s *InMemory) ListByEmployer(_ context.Context, employerID uuid.UUID) ([]*models.Interview, error) {
	return s.listWhere(func(i *models.Interview) bool { return i.EmployerID == employerID })
}

func (s *InMemory) ListByCandidate(_ context.Context, candidateID uuid.UUID) ([]*models.Interview, error) {
	return s.listWhere(func(i *models.Interview) bool { return i.CandidateID == candidateID })
}

func (s *InMemory) listWhere(keep func(*models.Interview) bool) ([]*models.Interview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Interview
	for _, interview := range s.interviews {
		if keep(interview) {
			out = append(out, cloneInterview(interview))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ScheduledAt.Before(out[b].ScheduledAt) })
	return out, nil
}

func (s *InMemory) Execute(_ context.Context, id uuid.UUID, validate func(*models.Interview) error, mutate func(*models.Interview)) (*models.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	interview, ok := s.interviews[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := cloneInterview(interview)
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.interviews[id] = working
	return cloneInterview(working), nil
}

func cloneInterview(i *models.Interview) *models.Interview {
	out := *i
	if i.JobID != nil {
		jobID := *i.JobID
		out.JobID = &jobID
	}
	out.Interviewers = append([]string(nil), i.Interviewers...)
	return &out
}
