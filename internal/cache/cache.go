// Package cache holds rendered list data keyed by dashboard path. A write
// that succeeds revalidates its entity's path: the entry is dropped, so the
// next read goes to the store, and subscribers are told which path changed.
package cache

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Event announces that a path was revalidated.
type Event struct {
	Path string    `json:"path"`
	At   time.Time `json:"at"`
}

type entry struct {
	value  any
	stored time.Time
}

// Cache is a named-path cache. It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	subs    map[int]chan Event
	nextSub int
	counts  map[string]int
	// gens advances on every revalidation of a path.
	gens map[string]uint64

	log *slog.Logger
	now func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the cache logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.log = logger
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New returns an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		subs:    make(map[int]chan Event),
		counts:  make(map[string]int),
		gens:    make(map[string]uint64),
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for path.
func (c *Cache) Get(path string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	return e.value, ok
}

// Put stores v under path.
func (c *Cache) Put(path string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = entry{value: v, stored: c.now()}
}

// Load returns the cached value for path, calling fetch and storing its
// result on a miss. Errors are not cached, and neither is a result whose
// path was revalidated while fetch ran.
func (c *Cache) Load(ctx context.Context, path string, fetch func(context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[path]; ok {
		c.mu.Unlock()
		return e.value, nil
	}
	gen := c.gens[path]
	c.mu.Unlock()

	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[path] == gen {
		c.entries[path] = entry{value: v, stored: c.now()}
	} else {
		c.log.Debug("stale load not cached", "path", path)
	}
	return v, nil
}

// Revalidate drops the entry for path and notifies subscribers. Slow
// subscribers miss events rather than block the caller.
func (c *Cache) Revalidate(path string) {
	ev := Event{Path: path, At: c.now()}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
	c.counts[path]++
	c.gens[path]++
	// Sends never block, so holding the lock keeps them ordered with
	// unsubscribe closing the channel.
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
			c.log.Warn("revalidation event dropped", "path", path)
		}
	}
	c.log.Debug("path revalidated", "path", path, "subscribers", len(c.subs))
}

// Revalidations returns how many times path has been revalidated.
func (c *Cache) Revalidations(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[path]
}

// Subscribe returns a channel of revalidation events and a function that
// cancels the subscription and closes the channel.
func (c *Cache) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}
