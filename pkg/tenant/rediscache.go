package tenant

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces tenant cache entries in a shared Redis.
const redisKeyPrefix = "tenantkit:tenant:"

// RedisCache is a Cache backed by Redis, for deployments where multiple
// instances should share resolver lookups. Values are JSON-encoded tenants.
// Redis errors degrade to cache misses; the store of record stays
// authoritative.
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache creates a Redis-backed tenant cache.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	if client == nil {
		panic("tenant: redis client cannot be nil")
	}
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var t Tenant
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, false
	}
	return &t, true
}

func (c *RedisCache) Set(ctx context.Context, key string, t *Tenant, ttl time.Duration) {
	data, err := json.Marshal(t)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, redisKeyPrefix+key, data, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	_ = c.client.Del(ctx, redisKeyPrefix+key).Err()
}

func (c *RedisCache) Close() error {
	return nil
}
