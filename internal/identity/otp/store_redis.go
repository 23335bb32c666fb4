package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"stafflink/pkg/platform/sentinel"
)

// RedisStore keeps codes in Redis. Expiry rides on the key TTL, so expired
// codes vanish without a sweeper.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func key(purpose Purpose, k string) string {
	return fmt.Sprintf("otp:%s:%s", purpose, k)
}

func (s *RedisStore) Put(ctx context.Context, purpose Purpose, k, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key(purpose, k), code, ttl).Err(); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

func (s *RedisStore) Consume(ctx context.Context, purpose Purpose, k, code string) error {
	stored, err := s.client.Get(ctx, key(purpose, k)).Result()
	if errors.Is(err, redis.Nil) {
		return sentinel.ErrExpired
	}
	if err != nil {
		return fmt.Errorf("read otp: %w", err)
	}
	if stored != code {
		return sentinel.ErrInvalidState
	}
	// A second redeem of the same code finds the key gone and fails with
	// ErrExpired.
	if err := s.client.Del(ctx, key(purpose, k)).Err(); err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	return nil
}
