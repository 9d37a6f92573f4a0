package client

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Policy says how a read behaves: how long a cached value stays fresh, how
// many extra attempts a failed fetch gets, and which failures qualify. It is
// an explicit object so the policy itself can be tested without any UI or
// service around it.
type Policy struct {
	Freshness  time.Duration
	MaxRetries int
	Retryable  func(error) bool
}

// Standard policies per entity family. Client errors are never retried.
var (
	ProductListPolicy  = Policy{Freshness: 5 * time.Minute, MaxRetries: 2, Retryable: IsRetryable}
	ProductStatsPolicy = Policy{Freshness: 10 * time.Minute, MaxRetries: 2, Retryable: IsRetryable}
	InquiryListPolicy  = Policy{Freshness: 2 * time.Minute, MaxRetries: 2, Retryable: IsRetryable}
	InquiryStatsPolicy = Policy{Freshness: 5 * time.Minute, MaxRetries: 2, Retryable: IsRetryable}
)

type cacheEntry struct {
	data      interface{}
	fetchedAt time.Time
}

// Cache is the shared request cache: key-addressed, freshness-window reads,
// prefix invalidation on mutation. It deliberately holds decoded values, not
// response bodies.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Get returns the cached value for key while it is fresh under the policy;
// otherwise it runs fetch, retrying per policy, and caches the result.
func (c *Cache) Get(ctx context.Context, key string, policy Policy, fetch func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && time.Since(entry.fetchedAt) < policy.Freshness {
		c.mu.Unlock()
		return entry.data, nil
	}
	c.mu.Unlock()

	data, err := c.fetchWithRetry(ctx, policy, fetch)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{data: data, fetchedAt: time.Now()}
	c.mu.Unlock()

	return data, nil
}

func (c *Cache) fetchWithRetry(ctx context.Context, policy Policy, fetch func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		data, err := fetch(ctx)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if policy.Retryable == nil || !policy.Retryable(err) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// Put stores a value directly, used when a mutation response already carries
// the fresh entity.
func (c *Cache) Put(key string, data interface{}) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{data: data, fetchedAt: time.Now()}
	c.mu.Unlock()
}

// Invalidate removes exact keys.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()
}

// InvalidatePrefix removes every key under a prefix, e.g. all cached pages
// of a filtered list.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// Len reports how many entries are cached; used by tests.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
