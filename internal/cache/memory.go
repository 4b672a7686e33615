package cache

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is an in-process Cache backed by patrickmn/go-cache.
// Expired entries are reaped by a background janitor.
type MemoryCache struct {
	store      *gocache.Cache
	defaultTTL time.Duration
}

// Ensure MemoryCache implements the Cache interface
var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates a MemoryCache with the given default TTL,
// used when Set is called without a usable TTL. The janitor sweeps
// expired entries at twice the default TTL.
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &MemoryCache{
		store:      gocache.New(defaultTTL, 2*defaultTTL),
		defaultTTL: defaultTTL,
	}
}

// Get implements Cache.Get
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	value, found := c.store.Get(key)
	if !found {
		return nil, false
	}
	data, ok := value.([]byte)
	if !ok {
		return nil, false
	}
	return data, true
}

// Set implements Cache.Set
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	switch {
	case ttl == NoExpiration:
		c.store.Set(key, value, gocache.NoExpiration)
	case ttl <= 0:
		c.store.Set(key, value, c.defaultTTL)
	default:
		c.store.Set(key, value, ttl)
	}
}

// Delete implements Cache.Delete
func (c *MemoryCache) Delete(_ context.Context, key string) {
	c.store.Delete(key)
}

// DeletePrefix implements Cache.DeletePrefix
func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) int {
	deleted := 0
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
			deleted++
		}
	}
	return deleted
}
