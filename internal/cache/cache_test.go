package cache

import (
	"sync"
	"testing"
	"time"
)

type evictRecorder struct {
	mu   sync.Mutex
	keys []string
}

func (r *evictRecorder) record(key string, _ string) {
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
}

func (r *evictRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.keys...)
}

func (r *evictRecorder) waitFor(t *testing.T, count int) []string {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if keys := r.snapshot(); len(keys) >= count {
			return keys
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d evictions, got %v", count, r.snapshot())
	return nil
}

func TestCacheGetSet(t *testing.T) {
	c := New(Config[string]{MaxEntries: 4, TTL: time.Minute})
	defer c.Stop(false)
	c.Set("a", "one")
	value, ok := c.Get("a")
	if !ok || value != "one" {
		t.Fatalf("unexpected value: %q %v", value, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("did not expect missing key")
	}
	if c.Len() != 1 {
		t.Fatalf("unexpected length: %d", c.Len())
	}
}

func TestCacheLRUEviction(t *testing.T) {
	rec := &evictRecorder{}
	c := New(Config[string]{MaxEntries: 3, TTL: time.Minute, OnEvict: rec.record})
	defer c.Stop(false)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")
	c.Set("d", "4")
	keys := rec.waitFor(t, 1)
	if len(keys) != 1 || keys[0] != "a" {
		t.Fatalf("expected oldest key evicted, got %v", keys)
	}
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected a to be evicted")
	}
	if _, ok := c.Get("d"); !ok {
		t.Fatalf("expected d to be present")
	}
}

func TestCacheGetProtectsFromEviction(t *testing.T) {
	rec := &evictRecorder{}
	c := New(Config[string]{MaxEntries: 3, TTL: time.Minute, OnEvict: rec.record})
	defer c.Stop(false)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected a to be present")
	}
	c.Set("d", "4")
	keys := rec.waitFor(t, 1)
	if keys[0] != "b" {
		t.Fatalf("expected b evicted after a was refreshed, got %v", keys)
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected refreshed key to survive eviction")
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	rec := &evictRecorder{}
	c := New(Config[string]{MaxEntries: 4, TTL: 5 * time.Millisecond, PruneInterval: time.Hour, OnEvict: rec.record})
	defer c.Stop(false)
	c.Set("a", "1")
	time.Sleep(10 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected expired entry")
	}
	rec.waitFor(t, 1)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected entry to stay gone")
	}
	// Second Get on the removed key must not re-trigger the callback.
	time.Sleep(10 * time.Millisecond)
	if keys := rec.snapshot(); len(keys) != 1 {
		t.Fatalf("expected a single eviction callback, got %v", keys)
	}
}

func TestCacheSetExistingRefreshesRecency(t *testing.T) {
	rec := &evictRecorder{}
	c := New(Config[string]{MaxEntries: 3, TTL: time.Minute, OnEvict: rec.record})
	defer c.Stop(false)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")
	c.Set("a", "1b")
	c.Set("d", "4")
	// a was replaced (callback for old value) and d pushed out b, the oldest.
	keys := rec.waitFor(t, 2)
	sawB := false
	for _, key := range keys {
		if key == "b" {
			sawB = true
		}
	}
	if !sawB {
		t.Fatalf("expected b evicted, got %v", keys)
	}
	value, ok := c.Get("a")
	if !ok || value != "1b" {
		t.Fatalf("expected replaced value, got %q %v", value, ok)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	rec := &evictRecorder{}
	c := New(Config[string]{MaxEntries: 4, TTL: time.Minute, OnEvict: rec.record})
	defer c.Stop(false)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Delete("a")
	c.Delete("a")
	rec.waitFor(t, 1)
	c.Clear()
	rec.waitFor(t, 2)
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Len())
	}
}

func TestCacheEvictionCallbackPanicIsSwallowed(t *testing.T) {
	c := New(Config[string]{MaxEntries: 4, TTL: time.Minute, OnEvict: func(string, string) {
		panic("boom")
	}})
	defer c.Stop(false)
	c.Set("a", "1")
	c.Delete("a")
	time.Sleep(10 * time.Millisecond)
	c.Set("b", "2")
	if _, ok := c.Get("b"); !ok {
		t.Fatalf("expected cache to stay usable after callback panic")
	}
}

func TestCacheBackgroundPrune(t *testing.T) {
	rec := &evictRecorder{}
	c := New(Config[string]{MaxEntries: 4, TTL: 5 * time.Millisecond, PruneInterval: 10 * time.Millisecond, OnEvict: rec.record})
	defer c.Stop(false)
	c.Set("a", "1")
	rec.waitFor(t, 1)
	if c.Len() != 0 {
		t.Fatalf("expected prune to remove expired entry")
	}
}

func TestCacheStopClears(t *testing.T) {
	rec := &evictRecorder{}
	c := New(Config[string]{MaxEntries: 4, TTL: time.Minute, OnEvict: rec.record})
	c.Set("a", "1")
	c.Stop(true)
	c.Stop(true)
	rec.waitFor(t, 1)
	if c.Len() != 0 {
		t.Fatalf("expected cleared cache")
	}
}
