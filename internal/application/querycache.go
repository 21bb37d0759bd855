package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ericfisherdev/washdesk/internal/domain/model"
)

// QueryEntry is the cached state of one list query.
type QueryEntry struct {
	Data      any
	Err       error
	Loading   bool
	UpdatedAt time.Time
}

type cacheEntry struct {
	data      any
	err       error
	hasData   bool
	version   uint64
	updatedAt time.Time
}

// QueryCache stores list results keyed by model.CacheKey. A key is served
// from cache until its resource is invalidated or the entry outlives the TTL.
// At most one fetch per key and resource version is in flight at any time.
type QueryCache struct {
	mu       sync.Mutex
	entries  map[model.CacheKey]*cacheEntry
	versions map[string]uint64
	epoch    uint64
	inflight map[model.CacheKey]int
	group    singleflight.Group
	ttl      time.Duration
	now      func() time.Time
}

// NewQueryCache creates a cache. A ttl of zero keeps entries fresh until
// they are invalidated.
func NewQueryCache(ttl time.Duration) *QueryCache {
	return &QueryCache{
		entries:  make(map[model.CacheKey]*cacheEntry),
		versions: make(map[string]uint64),
		inflight: make(map[model.CacheKey]int),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Fetch returns the cached value for key when it is fresh, otherwise calls fn.
// Concurrent callers for the same key share one call of fn.
func (c *QueryCache) Fetch(ctx context.Context, key model.CacheKey, fn func(ctx context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	version := c.versionLocked(key.Resource)
	if e, ok := c.entries[key]; ok && c.freshLocked(e, version) {
		data := e.data
		c.mu.Unlock()
		return data, nil
	}
	c.inflight[key]++
	c.mu.Unlock()

	flightKey := fmt.Sprintf("%s\x00%d\x00%d\x00%s\x00%d", key.Resource, key.Page, key.PerPage, key.Keyword, version)
	v, err, _ := c.group.Do(flightKey, func() (any, error) {
		data, err := fn(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		// A result fetched before an invalidation describes the collection
		// as it was before the mutation and must not be stored as fresh.
		if c.versionLocked(key.Resource) == version {
			e, ok := c.entries[key]
			if !ok {
				e = &cacheEntry{}
				c.entries[key] = e
			}
			e.err = err
			if err == nil {
				e.data = data
				e.hasData = true
				e.version = version
				e.updatedAt = c.now()
			}
		}
		return data, err
	})

	c.mu.Lock()
	c.inflight[key]--
	if c.inflight[key] <= 0 {
		delete(c.inflight, key)
	}
	c.mu.Unlock()

	return v, err
}

// Invalidate marks every cached query of resource as stale. The next Fetch
// for any of its keys goes to the network.
func (c *QueryCache) Invalidate(resource string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[resource]++
}

// Entry returns the cached state of key.
func (c *QueryCache) Entry(key model.CacheKey) QueryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := QueryEntry{Loading: c.inflight[key] > 0}
	if e, ok := c.entries[key]; ok {
		entry.Data = e.data
		entry.Err = e.err
		entry.UpdatedAt = e.updatedAt
	}
	return entry
}

// Clear drops every entry. Used when the signed-in credential changes.
func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[model.CacheKey]*cacheEntry)
	c.epoch++
}

// versionLocked is monotonic per resource: it grows on Invalidate of that
// resource and on Clear.
func (c *QueryCache) versionLocked(resource string) uint64 {
	return c.versions[resource] + c.epoch
}

func (c *QueryCache) freshLocked(e *cacheEntry, version uint64) bool {
	if !e.hasData || e.version != version {
		return false
	}
	if c.ttl > 0 && c.now().Sub(e.updatedAt) > c.ttl {
		return false
	}
	return true
}

// FetchTyped is Fetch for callers that know the value type of key.
func FetchTyped[T any](ctx context.Context, c *QueryCache, key model.CacheKey, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("query cache: value for %s has type %T", key.Resource, v)
	}
	return typed, nil
}
