//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"stafflink/internal/exam/models"
	"stafflink/internal/exam/store"
	"stafflink/pkg/platform/sentinel"
	"stafflink/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = store.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) newProgress() *models.Progress {
	return models.NewProgress(uuid.NewString(), uuid.New(), time.Now().UTC())
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	progress := s.newProgress()
	s.Require().NoError(s.store.Put(ctx, progress, time.Minute))

	found, err := s.store.Get(ctx, progress.Token)
	s.Require().NoError(err)
	s.Equal(progress.Token, found.Token)
	s.Equal(progress.CandidateID, found.CandidateID)
	s.False(found.SystemCheckPassed)

	_, err = s.store.Get(ctx, "unknown-token")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestUpdateKeepsExpiry() {
	ctx := context.Background()
	progress := s.newProgress()
	s.Require().NoError(s.store.Put(ctx, progress, 2*time.Second))

	progress.SystemCheckPassed = true
	s.Require().NoError(s.store.Update(ctx, progress))

	found, err := s.store.Get(ctx, progress.Token)
	s.Require().NoError(err)
	s.True(found.SystemCheckPassed)

	// The update must not have reset the invitation TTL.
	ttl, err := s.redis.Client.TTL(ctx, "exam:progress:"+progress.Token).Result()
	s.Require().NoError(err)
	s.Positive(ttl)
	s.LessOrEqual(ttl, 2*time.Second)
}

func (s *RedisStoreSuite) TestUpdateCannotResurrectExpired() {
	ctx := context.Background()
	progress := s.newProgress()
	s.Require().NoError(s.store.Put(ctx, progress, 50*time.Millisecond))
	time.Sleep(100 * time.Millisecond)

	progress.RulesAcknowledged = true
	s.ErrorIs(s.store.Update(ctx, progress), sentinel.ErrNotFound)

	_, err := s.store.Get(ctx, progress.Token)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
