package cache

import (
	"fmt"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/intl-extract/internal/messages"
)

// DefaultResultCapacity bounds the number of unit results kept in memory.
const DefaultResultCapacity = 10_000

// ResultCache keeps unit results in memory keyed by path and content hash,
// so an unchanged save in watch mode does not re-extract the file.
type ResultCache struct {
	cache otter.Cache[string, *messages.Result]
}

// NewResultCache creates a cache holding at most capacity results.
// capacity <= 0 selects DefaultResultCapacity.
func NewResultCache(capacity int) (*ResultCache, error) {
	if capacity <= 0 {
		capacity = DefaultResultCapacity
	}
	c, err := otter.MustBuilder[string, *messages.Result](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build result cache: %w", err)
	}
	return &ResultCache{cache: c}, nil
}

func resultKey(path, hash string) string {
	return path + "\x00" + hash
}

// Get returns the cached result for path at hash.
func (c *ResultCache) Get(path, hash string) (*messages.Result, bool) {
	return c.cache.Get(resultKey(path, hash))
}

// Put stores res for path at hash.
func (c *ResultCache) Put(path, hash string, res *messages.Result) {
	c.cache.Set(resultKey(path, hash), res)
}

// Invalidate drops every cached result for path, whatever its hash.
func (c *ResultCache) Invalidate(path string) {
	prefix := path + "\x00"
	c.cache.DeleteByFunc(func(key string, _ *messages.Result) bool {
		return len(key) >= len(prefix) && key[:len(prefix)] == prefix
	})
}

// Len returns the number of cached results.
func (c *ResultCache) Len() int {
	return c.cache.Size()
}

// Close releases the cache.
func (c *ResultCache) Close() {
	c.cache.Close()
}
