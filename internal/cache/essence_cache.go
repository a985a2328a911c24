package cache

import (
	"context"
	"encoding/json"
	"time"

	dom "Essence/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyListPrefix = "essence:list:"

// EssenceCache caches list pages in Redis, keyed by the serialized filter.
type EssenceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewEssenceCache returns a new EssenceCache.
func NewEssenceCache(rdb *redis.Client, ttl time.Duration) *EssenceCache {
	return &EssenceCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached page for key, or nil on miss.
func (c *EssenceCache) GetList(ctx context.Context, key string) ([]dom.Essence, error) {
	b, err := c.rdb.Get(ctx, keyListPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Essence
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []dom.Essence{}
	}
	return list, nil
}

// SetList stores the page under key.
func (c *EssenceCache) SetList(ctx context.Context, key string, list []dom.Essence) error {
	if list == nil {
		list = []dom.Essence{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyListPrefix+key, b, c.ttl).Err()
}

// InvalidateAll removes every cached page (cache invalidation on write).
func (c *EssenceCache) InvalidateAll(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, keyListPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
