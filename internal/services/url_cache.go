package services

import (
	"net/url"
	"sync"
	"sync/atomic"
	"time"
)

// URLCache keeps presigned URLs keyed by storage key so hot listings do not
// re-sign every object on every page load. Entries expire well before the
// underlying presigned URL does; the ctor enforces the margin.
type URLCache struct {
	entries sync.Map // map[string]*urlCacheEntry
	ttl     time.Duration

	// Statistics
	hits   atomic.Int64
	misses atomic.Int64
}

type urlCacheEntry struct {
	url       *url.URL
	expiresAt time.Time
}

// NewURLCache creates a cache whose entries live for a fraction of the
// presign TTL, so a cached URL always has most of its validity left when
// handed to a client.
func NewURLCache(presignTTL time.Duration) *URLCache {
	c := &URLCache{
		ttl: presignTTL / 2,
	}

	// Start cleanup goroutine
	go c.cleanupExpired()

	return c
}

// Get returns the cached URL for key if it has not expired.
func (c *URLCache) Get(key string) (*url.URL, bool) {
	value, ok := c.entries.Load(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	entry := value.(*urlCacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.entries.Delete(key)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return entry.url, true
}

// Put stores a freshly signed URL for key.
func (c *URLCache) Put(key string, u *url.URL) {
	c.entries.Store(key, &urlCacheEntry{
		url:       u,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Invalidate drops the cached URL for key, if any. Called when the backing
// object is removed.
func (c *URLCache) Invalidate(key string) {
	c.entries.Delete(key)
}

// Stats returns the hit and miss counters.
func (c *URLCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *URLCache) cleanupExpired() {
	interval := c.ttl
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.entries.Range(func(key, value interface{}) bool {
			if now.After(value.(*urlCacheEntry).expiresAt) {
				c.entries.Delete(key)
			}
			return true
		})
	}
}
