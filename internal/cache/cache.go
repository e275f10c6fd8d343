package cache

import (
	"container/list"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultMaxEntries    = 100
	DefaultTTL           = 30 * time.Minute
	DefaultPruneInterval = 10 * time.Minute
)

type Config[T any] struct {
	MaxEntries    int
	TTL           time.Duration
	PruneInterval time.Duration
	OnEvict       func(key string, value T)
	Logger        *zap.Logger
}

type entry[T any] struct {
	key          string
	value        T
	lastAccessed time.Time
	element      *list.Element
}

// Cache is a bounded key/value store with LRU eviction and per-entry TTL.
// Recency is tracked in a doubly linked list (oldest at front) so eviction
// of the least-recently-used entry is O(1). A background goroutine prunes
// expired entries independently of Get-triggered lazy expiry.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	order   *list.List
	cfg     Config[T]
	done    chan struct{}
	stopped bool
}

func New[T any](cfg Config[T]) *Cache[T] {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = DefaultPruneInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	c := &Cache[T]{
		entries: map[string]*entry[T]{},
		order:   list.New(),
		cfg:     cfg,
		done:    make(chan struct{}),
	}
	go c.prune()
	return c
}

func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T
	c.mu.Lock()
	ent, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return zero, false
	}
	if time.Since(ent.lastAccessed) > c.cfg.TTL {
		c.removeLocked(ent)
		c.mu.Unlock()
		c.dispatchEvict(ent.key, ent.value)
		return zero, false
	}
	ent.lastAccessed = time.Now()
	c.order.MoveToBack(ent.element)
	value := ent.value
	c.mu.Unlock()
	return value, true
}

func (c *Cache[T]) Set(key string, value T) {
	var evicted []*entry[T]
	c.mu.Lock()
	if ent, ok := c.entries[key]; ok {
		c.removeLocked(ent)
		evicted = append(evicted, ent)
	}
	if len(c.entries) >= c.cfg.MaxEntries {
		if front := c.order.Front(); front != nil {
			oldest := front.Value.(*entry[T])
			c.removeLocked(oldest)
			evicted = append(evicted, oldest)
		}
	}
	ent := &entry[T]{key: key, value: value, lastAccessed: time.Now()}
	ent.element = c.order.PushBack(ent)
	c.entries[key] = ent
	c.mu.Unlock()
	for _, ent := range evicted {
		c.dispatchEvict(ent.key, ent.value)
	}
}

func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	ent, ok := c.entries[key]
	if ok {
		c.removeLocked(ent)
	}
	c.mu.Unlock()
	if ok {
		c.dispatchEvict(ent.key, ent.value)
	}
}

// Clear snapshots the entry list before invoking callbacks so an eviction
// callback cannot observe or mutate a half-cleared cache.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	snapshot := make([]*entry[T], 0, len(c.entries))
	for _, ent := range c.entries {
		snapshot = append(snapshot, ent)
	}
	c.entries = map[string]*entry[T]{}
	c.order = list.New()
	c.mu.Unlock()
	for _, ent := range snapshot {
		c.dispatchEvict(ent.key, ent.value)
	}
}

func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stop cancels the background prune goroutine so the cache cannot keep the
// process alive. It is safe to call multiple times.
func (c *Cache[T]) Stop(clear bool) {
	c.mu.Lock()
	if !c.stopped {
		close(c.done)
		c.stopped = true
	}
	c.mu.Unlock()
	if clear {
		c.Clear()
	}
}

func (c *Cache[T]) removeLocked(ent *entry[T]) {
	c.order.Remove(ent.element)
	delete(c.entries, ent.key)
}

// dispatchEvict hands the evicted resource to the callback on its own
// goroutine; the callback is never awaited and its failures are logged,
// never propagated.
func (c *Cache[T]) dispatchEvict(key string, value T) {
	if c.cfg.OnEvict == nil {
		return
	}
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				c.cfg.Logger.Error("cache eviction callback panic",
					zap.String("key", key),
					zap.Any("panic", rec))
			}
		}()
		c.cfg.OnEvict(key, value)
	}()
}

func (c *Cache[T]) prune() {
	ticker := time.NewTicker(c.cfg.PruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.pruneExpired()
		case <-c.done:
			return
		}
	}
}

func (c *Cache[T]) pruneExpired() {
	now := time.Now()
	var expired []*entry[T]
	c.mu.Lock()
	for _, ent := range c.entries {
		if now.Sub(ent.lastAccessed) > c.cfg.TTL {
			expired = append(expired, ent)
		}
	}
	for _, ent := range expired {
		c.removeLocked(ent)
	}
	c.mu.Unlock()
	for _, ent := range expired {
		c.dispatchEvict(ent.key, ent.value)
	}
}
