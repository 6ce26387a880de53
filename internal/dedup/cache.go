// Package dedup implements a bounded, time-windowed record of recent
// (sender, recipient) notifications.
//
// A pair is a duplicate while less than Window has elapsed since it was last
// recorded. Memory is bounded opportunistically: when a Record pushes the entry
// count above HighWater, one full sweep evicts every expired entry. Entries
// still inside the window are never evicted, so the map may stay above the
// high-water mark if that many pairs are active.
//
// The Cache is process-local and safe for concurrent use.
package dedup

import (
	"sync"
	"time"
)

const (
	DefaultWindow    = 24 * time.Hour
	DefaultHighWater = 10_000
)

// Options configures a Cache. Zero values take the defaults.
type Options struct {
	Window    time.Duration
	HighWater int
	// Now is the clock (defaults to time.Now).
	Now func() time.Time
}

// Cache maps "sender:recipient" to the time it was last recorded.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]time.Time
	window    time.Duration
	highWater int
	now       func() time.Time
}

// New constructs an empty Cache.
func New(opts Options) *Cache {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.HighWater <= 0 {
		opts.HighWater = DefaultHighWater
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		entries:   make(map[string]time.Time),
		window:    opts.Window,
		highWater: opts.HighWater,
		now:       opts.Now,
	}
}

// Key joins a pair into its map key.
func Key(sender, recipient string) string { return sender + ":" + recipient }

// IsDuplicate reports whether the pair was recorded within the window.
// It never mutates the cache.
func (c *Cache) IsDuplicate(sender, recipient string) bool {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fresh(Key(sender, recipient), now)
}

// Record stores now for the pair and returns how many expired entries a
// high-water sweep evicted (0 when no sweep ran).
func (c *Cache) Record(sender, recipient string) int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record(Key(sender, recipient), now)
}

// CheckAndRecord records the pair unless it is a duplicate, in one critical
// section. It returns true when the pair was a duplicate (and left untouched).
func (c *Cache) CheckAndRecord(sender, recipient string) bool {
	now := c.now()
	key := Key(sender, recipient)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fresh(key, now) {
		return true
	}
	c.record(key, now)
	return false
}

// Forget removes the pair. It lets a caller undo CheckAndRecord when the
// side effect it guarded did not happen.
func (c *Cache) Forget(sender, recipient string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, Key(sender, recipient))
}

// Len returns the current number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Window returns the configured dedupe window.
func (c *Cache) Window() time.Duration { return c.window }

func (c *Cache) fresh(key string, now time.Time) bool {
	last, ok := c.entries[key]
	return ok && now.Sub(last) < c.window
}

// record must be called with mu held.
func (c *Cache) record(key string, now time.Time) int {
	c.entries[key] = now
	if len(c.entries) <= c.highWater {
		return 0
	}
	evicted := 0
	for k, last := range c.entries {
		if now.Sub(last) >= c.window {
			delete(c.entries, k)
			evicted++
		}
	}
	return evicted
}
