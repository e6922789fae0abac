package services

import (
	"net/url"
	"testing"
	"time"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parsing %s: %v", raw, err)
	}
	return u
}

func TestURLCache(t *testing.T) {
	t.Run("put then get", func(t *testing.T) {
		cache := NewURLCache(3 * time.Hour)
		cache.Put("a.jpg", mustURL(t, "http://objects.test/a.jpg"))

		got, ok := cache.Get("a.jpg")
		if !ok {
			t.Fatal("expected cache hit")
		}
		if got.String() != "http://objects.test/a.jpg" {
			t.Errorf("unexpected URL %s", got)
		}
	})

	t.Run("miss on unknown key", func(t *testing.T) {
		cache := NewURLCache(3 * time.Hour)
		if _, ok := cache.Get("missing.jpg"); ok {
			t.Fatal("expected cache miss")
		}
	})

	t.Run("entries expire before the presigned URL does", func(t *testing.T) {
		cache := NewURLCache(100 * time.Millisecond) // entry TTL is half of this
		cache.Put("b.jpg", mustURL(t, "http://objects.test/b.jpg"))

		time.Sleep(80 * time.Millisecond)
		if _, ok := cache.Get("b.jpg"); ok {
			t.Fatal("expected entry to have expired")
		}
	})

	t.Run("invalidate drops the entry", func(t *testing.T) {
		cache := NewURLCache(3 * time.Hour)
		cache.Put("c.jpg", mustURL(t, "http://objects.test/c.jpg"))
		cache.Invalidate("c.jpg")
		if _, ok := cache.Get("c.jpg"); ok {
			t.Fatal("expected entry to be gone after invalidate")
		}
	})

	t.Run("stats count hits and misses", func(t *testing.T) {
		cache := NewURLCache(3 * time.Hour)
		cache.Put("d.jpg", mustURL(t, "http://objects.test/d.jpg"))
		cache.Get("d.jpg")
		cache.Get("d.jpg")
		cache.Get("nope.jpg")

		hits, misses := cache.Stats()
		if hits != 2 || misses != 1 {
			t.Errorf("expected 2 hits / 1 miss, got %d / %d", hits, misses)
		}
	})
}
