package token

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList is a shared denylist of token IDs. Logout puts the token's
// jti here for the remainder of its validity window; validation consults the
// list so a logged-out token stops working before it expires.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const revokedKeyPrefix = "revoked:jti:"

// RedisRevocations is the production revocation list. Keys carry the token's
// remaining TTL so the list cleans itself up.
type RedisRevocations struct {
	client redis.Cmdable
}

func NewRedisRevocations(client redis.Cmdable) *RedisRevocations {
	return &RedisRevocations{client: client}
}

func (r *RedisRevocations) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	// The key's existence is the marker.
	return r.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	_, err := r.client.Get(ctx, revokedKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InMemoryRevocations is the test double.
type InMemoryRevocations struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewInMemoryRevocations() *InMemoryRevocations {
	return &InMemoryRevocations{entries: make(map[string]time.Time)}
}

func (r *InMemoryRevocations) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[jti] = time.Now().Add(ttl)
	return nil
}

func (r *InMemoryRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	expiry, ok := r.entries[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(r.entries, jti)
		return false, nil
	}
	return true, nil
}
