// Package cache memoizes keyed values in memory. Entries are written once per
// key and may remove themselves after a delay without anyone reading them.
package cache

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adeilh/go-kitsu/internal/logging"
)

// Cache maps string keys to values of type V. The zero value is not usable;
// construct one with New. A Cache is safe for concurrent use.
type Cache[V any] struct {
	mu           sync.RWMutex
	items        map[string]entry[V]
	gen          uint64
	timers       map[uint64]*time.Timer
	nextTimer    uint64
	closed       bool
	generational bool

	log     logging.Logger
	metrics *metrics
}

type entry[V any] struct {
	value V
	gen   uint64
}

// New builds an empty cache.
func New[V any](opts ...Option) *Cache[V] {
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	cfg = cfg.withDefaults()

	return &Cache[V]{
		items:        make(map[string]entry[V]),
		timers:       make(map[uint64]*time.Timer),
		generational: cfg.generational,
		log:          cfg.logger,
		metrics:      newMetrics(cfg.registerer, cfg.name),
	}
}

// Get returns the entry stored under key, or nil when there is none. A
// stored zero value (a cached negative lookup) still yields a non-nil Result.
func (c *Cache[V]) Get(key string) *Result[V] {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		c.metrics.miss()
		return nil
	}
	c.metrics.hit()
	return &Result[V]{Key: key, Value: e.value}
}

// Add stores value under key unless the key is already present, in which
// case the existing entry is returned untouched. A positive expireAfter
// schedules removal of the key once that much time has passed.
func (c *Cache[V]) Add(key string, value V, expireAfter time.Duration) *Result[V] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.metrics.duplicate()
		return &Result[V]{Key: key, Value: e.value}
	}

	c.gen++
	c.items[key] = entry[V]{value: value, gen: c.gen}
	if expireAfter > 0 && !c.closed {
		c.scheduleLocked(key, c.gen, expireAfter)
	}
	c.metrics.added(len(c.items))
	c.log.Debug("cache add", "key", key, "expire_after", expireAfter)
	return &Result[V]{Key: key, Value: value}
}

// Remove deletes key if present. It does not cancel an expiry already
// scheduled for the key.
func (c *Cache[V]) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[key]; !ok {
		return
	}
	delete(c.items, key)
	c.metrics.removed(len(c.items))
}

// Clear drops every entry. Scheduled expiries keep running.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.items)
	c.items = make(map[string]entry[V])
	c.metrics.cleared(n)
	c.log.Debug("cache cleared", "entries", n)
}

// Len reports the number of stored entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Keys returns the stored keys in sorted order.
func (c *Cache[V]) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	c.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Close stops every pending expiry. Entries stay readable and later calls
// to Add still store values, but nothing is scheduled for removal anymore.
func (c *Cache[V]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
}

func (c *Cache[V]) scheduleLocked(key string, gen uint64, d time.Duration) {
	c.nextTimer++
	id := c.nextTimer
	// The callback blocks on c.mu until the caller of Add releases it, so
	// the timer is always registered before it can fire.
	c.timers[id] = time.AfterFunc(d, func() { c.expire(id, key, gen) })
}

func (c *Cache[V]) expire(id uint64, key string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.timers, id)
	if c.closed {
		return
	}

	e, ok := c.items[key]
	if !ok {
		return
	}
	if c.generational && e.gen != gen {
		return
	}
	delete(c.items, key)
	c.metrics.expired(len(c.items))
	c.log.Debug("cache expired", "key", key)
}

func (c *Cache[V]) pending() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.timers)
}

// Key joins parts into a cache key. Each part is formatted with fmt and has
// its spaces replaced by underscores; parts are separated by "_".
//
//	Key("anime", "Fullmetal Alchemist", 1) == "anime_Fullmetal_Alchemist_1"
func Key(parts ...any) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.ReplaceAll(fmt.Sprint(p), " ", "_"))
	}
	return strings.Join(out, "_")
}
