package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions as JSON values whose TTL follows the token expiry.
type RedisStore struct {
	redis  *redis.Client
	maxAge time.Duration
	now    func() time.Time
}

// NewRedisStore creates a store. maxAge bounds sessions whose token has no expiry.
func NewRedisStore(redisClient *redis.Client, maxAge time.Duration) *RedisStore {
	return &RedisStore{redis: redisClient, maxAge: maxAge, now: time.Now}
}

func (r *RedisStore) key(id string) string {
	return fmt.Sprintf("portal:session:%s", id)
}

func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	data, err := r.redis.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("session: unmarshal: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}

	ttl := r.maxAge
	if exp, err := s.ExpiresAt(); err == nil && !exp.IsZero() {
		ttl = exp.Sub(r.now())
	}
	if ttl < time.Second {
		ttl = time.Second
	}

	if err := r.redis.Set(ctx, r.key(s.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.redis.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}
