package cache

import (
	"context"
	"errors"
	"time"

	"github.com/halls510/developerstore-sales-api-sub001/internal/usecase"
	"github.com/redis/go-redis/v9"
)

// RedisIdempotencyStore backs duplicate-suppression for checkout requests.
// TryLock claims a key atomically; Remember/Recall map the key to the sale
// it produced so replays return the original result.
type RedisIdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisIdempotencyStore(rdb *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *RedisIdempotencyStore) TryLock(ctx context.Context, scope, key string) (bool, error) {
	return s.rdb.SetNX(ctx, "idem:lock:"+scope+":"+key, "1", s.ttl).Result()
}

func (s *RedisIdempotencyStore) Remember(ctx context.Context, scope, key, value string) error {
	return s.rdb.Set(ctx, "idem:map:"+scope+":"+key, value, s.ttl).Err()
}

func (s *RedisIdempotencyStore) Recall(ctx context.Context, scope, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, "idem:map:"+scope+":"+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

var _ usecase.IdempotencyStore = (*RedisIdempotencyStore)(nil)
