// internal/service/trends/cache.go

package trends

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"newsradar/internal/domain/trend"
)

// DefaultCacheTTL is how long an aggregated result stays valid.
const DefaultCacheTTL = 30 * time.Minute

// DefaultCacheSize bounds the number of keyword sets kept in memory.
const DefaultCacheSize = 512

// Cache maps a normalized keyword-set key to a cached trend result.
// Entries are never mutated in place, only replaced; stale entries fall
// out through the TTL and the LRU bound.
type Cache struct {
	lru *expirable.LRU[string, trend.Result]
}

// NewCache creates a bounded TTL cache for trend results.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		lru: expirable.NewLRU[string, trend.Result](size, nil, ttl),
	}
}

// CacheKey derives the deterministic cache key from up to three
// normalized keywords.
func CacheKey(keywords []string) string {
	n := len(keywords)
	if n > 3 {
		n = 3
	}
	return strings.ToLower(strings.Join(keywords[:n], "_"))
}

// Get returns a copy of the cached result for key, if present and fresh.
func (c *Cache) Get(key string) (trend.Result, bool) {
	res, ok := c.lru.Get(key)
	if !ok {
		return trend.Result{}, false
	}
	return res.Clone(), true
}

// Put stores a copy of the result under key, replacing any prior entry.
func (c *Cache) Put(key string, res trend.Result) {
	c.lru.Add(key, res.Clone())
}
