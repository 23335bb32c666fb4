package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"stafflink/internal/applications/models"
	"stafflink/pkg/platform/sentinel"
)

// InMemory is the in-memory application store for unit tests and local
// development.
type InMemory struct {
	mu   sync.RWMutex
	apps map[uuid.UUID]*models.Application
}

func NewInMemory() *InMemory {
	return &InMemory{apps: make(map[uuid.UUID]*models.Application)}
}

func (s *InMemory) Create(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[app.ID] = cloneApp(app)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneApp(app), nil
}

func (s *InMemory) Update(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[app.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.apps[app.ID] = cloneApp(app)
	return nil
}

func (s *InMemory) ListByJob(_ context.Context, jobID uuid.UUID) ([]*models.Application, error) {
	return s.listWhere(func(a *models.Application) bool { return a.JobID == jobID })
}

func (s *InMemory) ListByCandidate(_ context.Context, candidateID uuid.UUID) ([]*models.Application, error) {
	return s.listWhere(func(a *models.Application) bool { return a.CandidateID == candidateID })
}

func (s *InMemory) listWhere(keep func(*models.Application) bool) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Application
	for _, a := range s.apps {
		if keep(a) {
			out = append(out, cloneApp(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AppliedDate.After(out[j].AppliedDate)
	})
	return out, nil
}

func (s *InMemory) Execute(_ context.Context, id uuid.UUID, validate func(*models.Application) error, mutate func(*models.Application)) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := cloneApp(app)
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.apps[id] = working
	return cloneApp(working), nil
}

func cloneApp(a *models.Application) *models.Application {
	c := *a
	c.History = append([]models.HistoryEntry(nil), a.History...)
	return &c
}

// InMemoryPendingLinks is the in-memory pending-link store.
type InMemoryPendingLinks struct {
	mu    sync.Mutex
	links map[uuid.UUID]*models.PendingLink
}

func NewInMemoryPendingLinks() *InMemoryPendingLinks {
	return &InMemoryPendingLinks{links: make(map[uuid.UUID]*models.PendingLink)}
}

func (s *InMemoryPendingLinks) Create(_ context.Context, link *models.PendingLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *link
	s.links[link.ID] = &c
	return nil
}

func (s *InMemoryPendingLinks) TakeByEmail(_ context.Context, email string, now time.Time) ([]*models.PendingLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.PendingLink
	for id, l := range s.links {
		if !strings.EqualFold(l.Email, email) {
			continue
		}
		delete(s.links, id)
		if now.After(l.ExpiresAt) {
			continue
		}
		c := *l
		out = append(out, &c)
	}
	return out, nil
}
