// Package drivercache implements DriverCache (C5): an LRU cache of live
// driver instances keyed by storage config, with mutation-triggered
// invalidation and retrying construction. Grounded on the teacher's
// Registry (pkg/registry/registry.go) for the RWMutex-guarded named-resource
// map shape, generalized from static named stores to a bounded, evictable
// cache of dynamically constructed drivers.
package drivercache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cloudcrate/filegate/pkg/apperrors"
	"github.com/cloudcrate/filegate/pkg/driver"
)

const (
	defaultCapacity  = 12
	evictToFraction  = 0.8
	backoffBase      = time.Second
	maxCreateRetries = 3
)

// ConfigLookup resolves a storage config ID to the driver type, public
// params, and decrypted credentials a Factory needs to construct a driver.
// Implemented by pkg/storageconfig.
type ConfigLookup func(ctx context.Context, storageConfigID string) (driver.Type, map[string]any, map[string]any, error)

// Stats is a snapshot of the cache counters; the same counts are exported
// as Prometheus collectors by Collectors.
type Stats struct {
	Hits     int64
	Misses   int64
	Errors   int64
	Cleanups int64
}

type entry struct {
	key        string
	drv        driver.Base
	lastAccess time.Time
	elem       *list.Element
}

// Cache caches live driver instances by "{type}:{storage_config_id}".
type Cache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*entry
	order    *list.List // front = most recently used

	factory *driver.Factory
	lookup  ConfigLookup

	stats Stats

	metricHits     prometheus.Counter
	metricMisses   prometheus.Counter
	metricErrors   prometheus.Counter
	metricCleanups prometheus.Counter
	metricSize     prometheus.Gauge
}

// Option configures a Cache at construction time.
type Option func(*Cache)

// WithCapacity overrides the default LRU capacity (12).
func WithCapacity(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// New constructs a Cache backed by factory, resolving storage configs via
// lookup.
func New(factory *driver.Factory, lookup ConfigLookup, opts ...Option) *Cache {
	c := &Cache{
		capacity: defaultCapacity,
		items:    make(map[string]*entry),
		order:    list.New(),
		factory:  factory,
		lookup:   lookup,

		metricHits:     prometheus.NewCounter(prometheus.CounterOpts{Name: "filegate_driver_cache_hits_total"}),
		metricMisses:   prometheus.NewCounter(prometheus.CounterOpts{Name: "filegate_driver_cache_misses_total"}),
		metricErrors:   prometheus.NewCounter(prometheus.CounterOpts{Name: "filegate_driver_cache_errors_total"}),
		metricCleanups: prometheus.NewCounter(prometheus.CounterOpts{Name: "filegate_driver_cache_cleanups_total"}),
		metricSize:     prometheus.NewGauge(prometheus.GaugeOpts{Name: "filegate_driver_cache_size"}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collectors returns the cache's prometheus collectors for registration.
func (c *Cache) Collectors() []prometheus.Collector {
	return []prometheus.Collector{c.metricHits, c.metricMisses, c.metricErrors, c.metricCleanups, c.metricSize}
}

func cacheKey(storageType driver.Type, storageConfigID string) string {
	return fmt.Sprintf("%s:%s", storageType, storageConfigID)
}

// Get returns a live driver for storageConfigID, constructing one (with
// retry) on a cache miss.
func (c *Cache) Get(ctx context.Context, storageConfigID string) (driver.Base, error) {
	storageType, params, creds, err := c.lookup(ctx, storageConfigID)
	if err != nil {
		return nil, err
	}
	key := cacheKey(storageType, storageConfigID)

	c.mu.Lock()
	if e, ok := c.items[key]; ok {
		c.order.MoveToFront(e.elem)
		e.lastAccess = time.Now()
		c.stats.Hits++
		c.metricHits.Inc()
		d := e.drv
		c.mu.Unlock()
		return d, nil
	}
	c.stats.Misses++
	c.metricMisses.Inc()
	c.mu.Unlock()

	d, err := c.createWithBackoff(ctx, storageType, params, creds)
	if err != nil {
		c.mu.Lock()
		c.stats.Errors++
		c.metricErrors.Inc()
		c.mu.Unlock()
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have raced us to the same key; prefer the
	// existing entry and discard the one we just built.
	if e, ok := c.items[key]; ok {
		c.order.MoveToFront(e.elem)
		e.lastAccess = time.Now()
		go d.Cleanup(context.Background())
		return e.drv, nil
	}

	elem := c.order.PushFront(key)
	c.items[key] = &entry{key: key, drv: d, lastAccess: time.Now(), elem: elem}
	c.metricSize.Set(float64(len(c.items)))
	c.evictIfNeeded()
	return d, nil
}

func (c *Cache) createWithBackoff(ctx context.Context, storageType driver.Type, params, creds map[string]any) (driver.Base, error) {
	var lastErr error
	for attempt := 1; attempt <= maxCreateRetries; attempt++ {
		d, err := c.factory.Create(ctx, storageType, params, creds)
		if err == nil {
			return d, nil
		}
		lastErr = err
		if apperrors.Is(err, apperrors.CodeDriverContract) {
			// Never worth retrying: the driver implementation itself is
			// broken, not the backend connection.
			return nil, err
		}
		if attempt < maxCreateRetries {
			select {
			case <-time.After(time.Duration(attempt) * backoffBase):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

// evictIfNeeded drops least-recently-used entries down to 80% capacity once
// the cache exceeds its configured capacity. Caller must hold c.mu.
func (c *Cache) evictIfNeeded() {
	if len(c.items) <= c.capacity {
		return
	}
	target := int(float64(c.capacity) * evictToFraction)
	for len(c.items) > target {
		back := c.order.Back()
		if back == nil {
			break
		}
		key := back.Value.(string)
		c.order.Remove(back)
		if e, ok := c.items[key]; ok {
			go e.drv.Cleanup(context.Background())
			delete(c.items, key)
		}
		c.stats.Cleanups++
		c.metricCleanups.Inc()
	}
	c.metricSize.Set(float64(len(c.items)))
}

// Invalidate evicts and cleans up the cached driver for a single storage
// config, if present. Called whenever an admin edits or deletes a
// StorageConfig, or deactivates a Mount referencing it.
func (c *Cache) Invalidate(storageType driver.Type, storageConfigID string) {
	key := cacheKey(storageType, storageConfigID)
	c.mu.Lock()
	e, ok := c.items[key]
	if ok {
		c.order.Remove(e.elem)
		delete(c.items, key)
	}
	c.mu.Unlock()
	if ok {
		e.drv.Cleanup(context.Background())
	}
}

// InvalidateAll evicts and cleans up every cached driver. Used on shutdown
// and in tests.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	items := c.items
	c.items = make(map[string]*entry)
	c.order.Init()
	c.mu.Unlock()
	for _, e := range items {
		e.drv.Cleanup(context.Background())
	}
}

// Stats returns a snapshot of cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Len reports the number of cached driver instances.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
