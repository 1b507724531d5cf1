package cache

import (
	"context"
	"errors"
	"time"

	"github.com/halls510/developerstore-sales-api-sub001/internal/usecase"
	"github.com/redis/go-redis/v9"
)

// RedisSaleCache keeps sale statuses hot for read paths. Best effort only;
// the database stays the source of truth.
type RedisSaleCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSaleCache(rdb *redis.Client, ttl time.Duration) *RedisSaleCache {
	return &RedisSaleCache{rdb: rdb, ttl: ttl}
}

func (c *RedisSaleCache) SetStatus(ctx context.Context, saleID, status string) error {
	return c.rdb.Set(ctx, "sale:status:"+saleID, status, c.ttl).Err()
}

func (c *RedisSaleCache) GetStatus(ctx context.Context, saleID string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, "sale:status:"+saleID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

var _ usecase.SaleCache = (*RedisSaleCache)(nil)
