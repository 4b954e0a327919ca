package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Cache backed by Redis, for deployments where geocode
// results should survive process restarts and be shared across instances.
// Unlike MemoryCache it applies a TTL as a size hygiene measure.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key CacheKey) (*Location, bool) {
	raw, err := c.client.Get(ctx, redisKey(key)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("geocode: redis get failed: %v", err)
		}
		return nil, false
	}
	var loc Location
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		log.Printf("geocode: corrupt cache entry for %q: %v", key.Query, err)
		return nil, false
	}
	return &loc, true
}

func (c *RedisCache) Set(ctx context.Context, key CacheKey, loc *Location) {
	if loc == nil {
		return
	}
	raw, err := json.Marshal(loc)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, redisKey(key), raw, c.ttl).Err(); err != nil {
		log.Printf("geocode: redis set failed: %v", err)
	}
}

func redisKey(key CacheKey) string {
	return fmt.Sprintf("geocode:%s|%s|%t", key.Query, key.CityHint, key.StrictLocal)
}
