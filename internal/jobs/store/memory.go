package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"stafflink/internal/jobs/models"
	"stafflink/pkg/platform/sentinel"
)

// InMemory is the in-memory job store for unit tests and local development.
type InMemory struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*models.Job
}

func NewInMemory() *InMemory {
	return &InMemory{jobs: make(map[uuid.UUID]*models.Job)}
}

func (s *InMemory) Create(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = cloneJob(job)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneJob(job), nil
}

func (s *InMemory) Update(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.jobs[job.ID] = cloneJob(job)
	return nil
}

func (s *InMemory) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.jobs, id)
	return nil
}

func (s *InMemory) ListByEmployer(_ context.Context, employerID uuid.UUID) ([]*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Job
	for _, j := range s.jobs {
		if j.EmployerID == employerID {
			out = append(out, cloneJob(j))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemory) ListOpen(_ context.Context) ([]*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Job
	for _, j := range s.jobs {
		if j.Status == models.JobStatusOpen {
			out = append(out, cloneJob(j))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(jobs []*models.Job) {
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
}

func cloneJob(j *models.Job) *models.Job {
	c := *j
	c.Skills = append([]string(nil), j.Skills...)
	c.Screening = append([]models.ScreeningQuestion(nil), j.Screening...)
	return &c
}
