package geocode

import (
	"context"
	"strings"
	"sync"
)

// CacheKey identifies one resolution tuple. Entries keyed on it are
// immutable real-world addresses, so they never need invalidating.
type CacheKey struct {
	Query       string
	CityHint    string
	StrictLocal bool
}

// NewCacheKey builds a normalized key from the raw query inputs.
func NewCacheKey(query, cityHint string, strictLocal bool) CacheKey {
	return CacheKey{
		Query:       strings.ToLower(normalizeQuery(query)),
		CityHint:    strings.ToLower(strings.TrimSpace(cityHint)),
		StrictLocal: strictLocal,
	}
}

// Cache stores resolved locations. Implementations must be safe for
// concurrent use; concurrent writes for the same key compute identical
// values, so last-write-wins is fine.
type Cache interface {
	Get(ctx context.Context, key CacheKey) (*Location, bool)
	Set(ctx context.Context, key CacheKey, loc *Location)
}

// MemoryCache is an in-process Cache. It is unbounded: entries live for
// the life of the process.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[CacheKey]*Location
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[CacheKey]*Location)}
}

func (c *MemoryCache) Get(_ context.Context, key CacheKey) (*Location, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	loc, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	cp := *loc
	return &cp, true
}

func (c *MemoryCache) Set(_ context.Context, key CacheKey, loc *Location) {
	if loc == nil {
		return
	}
	cp := *loc
	c.mu.Lock()
	c.entries[key] = &cp
	c.mu.Unlock()
}

// Len reports the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
