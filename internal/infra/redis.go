package infra

import "github.com/redis/go-redis/v9"

// NewRedis builds a Redis client for the geocode cache.
func NewRedis(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}
