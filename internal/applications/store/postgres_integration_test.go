//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"stafflink/internal/applications/models"
	"stafflink/internal/applications/store"
	candidatemodels "stafflink/internal/candidates/models"
	"stafflink/pkg/platform/sentinel"
	"stafflink/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	apps     *store.Postgres
	pending  *store.PostgresPendingLinks
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.apps = store.NewPostgres(s.postgres.DB)
	s.pending = store.NewPostgresPendingLinks(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "applications", "pending_applications")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newApplication() *models.Application {
	app := models.NewApplication(uuid.New(), uuid.New(), uuid.New(), time.Now().UTC().Truncate(time.Millisecond))
	s.Require().NoError(s.apps.Create(context.Background(), app))
	return app
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	app := s.newApplication()

	found, err := s.apps.FindByID(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(app.ID, found.ID)
	s.Equal(candidatemodels.StatusApplied, found.Status)
	s.Require().Len(found.History, 1)
	s.WithinDuration(app.AppliedDate, found.History[0].Date, time.Millisecond)

	_, err = s.apps.FindByID(ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentTransitions hammers Execute from many goroutines and checks
// the history never loses an entry under the row lock.
func (s *PostgresStoreSuite) TestConcurrentTransitions() {
	ctx := context.Background()
	app := s.newApplication()
	const goroutines = 20

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.apps.Execute(ctx, app.ID,
				func(*models.Application) error { return nil },
				func(a *models.Application) {
					a.SetStatus(candidatemodels.StatusShortlisted, "", time.Now().UTC())
				},
			)
			s.NoError(err)
		}()
	}
	wg.Wait()

	found, err := s.apps.FindByID(ctx, app.ID)
	s.Require().NoError(err)
	s.Len(found.History, goroutines+1)
	s.Equal(candidatemodels.StatusShortlisted, found.Status)
}

func (s *PostgresStoreSuite) TestExecuteValidationRollsBack() {
	ctx := context.Background()
	app := s.newApplication()

	_, err := s.apps.Execute(ctx, app.ID,
		func(*models.Application) error { return sentinel.ErrInvalidState },
		func(a *models.Application) {
			a.SetStatus(candidatemodels.StatusRejected, "", time.Now().UTC())
		},
	)
	s.ErrorIs(err, sentinel.ErrInvalidState)

	found, err := s.apps.FindByID(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(candidatemodels.StatusApplied, found.Status)
	s.Len(found.History, 1)
}

func (s *PostgresStoreSuite) TestListByJob() {
	ctx := context.Background()
	jobID := uuid.New()
	for i := 0; i < 3; i++ {
		app := models.NewApplication(uuid.New(), jobID, uuid.New(), time.Now().UTC().Add(time.Duration(i)*time.Second))
		s.Require().NoError(s.apps.Create(ctx, app))
	}
	s.newApplication()

	apps, err := s.apps.ListByJob(ctx, jobID)
	s.Require().NoError(err)
	s.Require().Len(apps, 3)
	// Newest first.
	s.True(apps[0].AppliedDate.After(apps[2].AppliedDate))
}

func (s *PostgresStoreSuite) TestPendingLinks() {
	ctx := context.Background()
	now := time.Now().UTC()

	live := &models.PendingLink{
		ID:          uuid.New(),
		Email:       "Asha@Example.com",
		CandidateID: uuid.New(),
		CreatedAt:   now,
		ExpiresAt:   now.Add(models.PendingLinkTTL),
	}
	stale := &models.PendingLink{
		ID:          uuid.New(),
		Email:       "asha@example.com",
		CandidateID: uuid.New(),
		CreatedAt:   now.Add(-8 * 24 * time.Hour),
		ExpiresAt:   now.Add(-24 * time.Hour),
	}
	s.Require().NoError(s.pending.Create(ctx, live))
	s.Require().NoError(s.pending.Create(ctx, stale))

	s.Run("takes live links case-insensitively and drops expired ones", func() {
		links, err := s.pending.TakeByEmail(ctx, "ASHA@example.com", now)
		s.Require().NoError(err)
		s.Require().Len(links, 1)
		s.Equal(live.CandidateID, links[0].CandidateID)
	})

	s.Run("a second take finds nothing", func() {
		links, err := s.pending.TakeByEmail(ctx, "asha@example.com", now)
		s.Require().NoError(err)
		s.Empty(links)
	})
}
