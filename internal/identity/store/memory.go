package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"stafflink/internal/identity/models"
	"stafflink/pkg/platform/sentinel"
)

// InMemory is the in-memory account store used by unit tests and local
// development wiring.
type InMemory struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*models.Account
	byEmail  map[string]uuid.UUID
}

func NewInMemory() *InMemory {
	return &InMemory{
		accounts: make(map[uuid.UUID]*models.Account),
		byEmail:  make(map[string]uuid.UUID),
	}
}

func (s *InMemory) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(account.Email)
	if _, exists := s.byEmail[key]; exists {
		return sentinel.ErrConflict
	}
	s.accounts[account.ID] = clone(account)
	s.byEmail[key] = account.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(account), nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(s.accounts[id]), nil
}

func (s *InMemory) Update(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.accounts[account.ID] = clone(account)
	return nil
}

func (s *InMemory) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byEmail, strings.ToLower(account.Email))
	delete(s.accounts, id)
	return nil
}

func (s *InMemory) ListReviewQueue(_ context.Context) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var queue []*models.Account
	for _, a := range s.accounts {
		if a.UserType == models.UserTypeEmployee && a.Verification != nil &&
			a.Verification.Status == models.VerificationPending {
			queue = append(queue, clone(a))
		}
	}
	sort.Slice(queue, func(i, j int) bool {
		return queue[i].CreatedAt.Before(queue[j].CreatedAt)
	})
	return queue, nil
}

func (s *InMemory) Execute(_ context.Context, id uuid.UUID, validate func(*models.Account) error, mutate func(*models.Account)) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := clone(account)
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.accounts[id] = working
	return clone(working), nil
}

func clone(a *models.Account) *models.Account {
	c := *a
	if a.KYC != nil {
		kyc := *a.KYC
		c.KYC = &kyc
	}
	if a.Verification != nil {
		v := *a.Verification
		if a.Verification.RejectedAt != nil {
			t := *a.Verification.RejectedAt
			v.RejectedAt = &t
		}
		if a.Verification.AppealedAt != nil {
			t := *a.Verification.AppealedAt
			v.AppealedAt = &t
		}
		c.Verification = &v
	}
	return &c
}
