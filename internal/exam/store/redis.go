package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"stafflink/internal/exam/models"
	"stafflink/pkg/platform/sentinel"
)

// RedisStore keeps pre-check progress in redis, one JSON value per token,
// expiring with the invitation. Progress survives page reloads and server
// restarts but never outlives its invitation.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func progressKey(token string) string {
	return "exam:progress:" + token
}

func (s *RedisStore) Put(ctx context.Context, progress *models.Progress, ttl time.Duration) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	if err := s.client.Set(ctx, progressKey(progress.Token), data, ttl).Err(); err != nil {
		return fmt.Errorf("store progress: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (*models.Progress, error) {
	data, err := s.client.Get(ctx, progressKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	var progress models.Progress
	if err := json.Unmarshal(data, &progress); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return &progress, nil
}

func (s *RedisStore) Update(ctx context.Context, progress *models.Progress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	// KeepTTL preserves the invitation expiry; XX refuses to resurrect an
	// expired token.
	ok, err := s.client.SetXX(ctx, progressKey(progress.Token), data, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	if !ok {
		return sentinel.ErrNotFound
	}
	return nil
}
