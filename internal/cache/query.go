package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"habitlog/internal/model"
	"habitlog/pkg/logger"
	"habitlog/pkg/metrics"
)

// FetchFunc loads the full record set behind a cache key.
type FetchFunc func(ctx context.Context, key string) ([]model.DailyRecord, error)

// Options control the cache windows. FreshFor marks when an entry goes
// stale; EvictAfter drops entries nobody has read for that long.
type Options struct {
	FreshFor       time.Duration
	EvictAfter     time.Duration
	RefreshTimeout time.Duration
}

type entry struct {
	records    []model.DailyRecord
	fetchedAt  time.Time
	lastAccess time.Time
}

// QueryCache wraps the log store adapter with request deduplication,
// stale-while-revalidate freshness, and idle-entry eviction. It is an
// explicit instance: main constructs it, injects it, and disposes it.
type QueryCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group

	fetch          FetchFunc
	freshFor       time.Duration
	evictAfter     time.Duration
	refreshTimeout time.Duration

	done      chan struct{}
	closeOnce sync.Once
	nowFn     func() time.Time
}

func New(fetch FetchFunc, opts Options) *QueryCache {
	if opts.FreshFor <= 0 {
		opts.FreshFor = 3 * time.Minute
	}
	if opts.EvictAfter <= 0 {
		opts.EvictAfter = 10 * time.Minute
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = 30 * time.Second
	}

	c := &QueryCache{
		entries:        make(map[string]*entry),
		fetch:          fetch,
		freshFor:       opts.FreshFor,
		evictAfter:     opts.EvictAfter,
		refreshTimeout: opts.RefreshTimeout,
		done:           make(chan struct{}),
		nowFn:          time.Now,
	}

	go c.janitor()
	return c
}

// Get returns the cached record set for key. A fresh entry is served as-is;
// a stale entry is served immediately while a background refetch runs; a
// missing entry triggers a synchronous fetch that concurrent callers share.
func (c *QueryCache) Get(ctx context.Context, key string) ([]model.DailyRecord, error) {
	now := c.nowFn()

	c.mu.Lock()
	e, ok := c.entries[key]
	if ok {
		e.lastAccess = now
		records := e.records
		fresh := now.Sub(e.fetchedAt) < c.freshFor
		c.mu.Unlock()

		if fresh {
			metrics.GetMetrics().RecordCacheHit(ctx)
			return records, nil
		}

		metrics.GetMetrics().RecordCacheStale(ctx)
		go c.refresh(key)
		return records, nil
	}
	c.mu.Unlock()

	metrics.GetMetrics().RecordCacheMiss(ctx)
	return c.fetchAndStore(ctx, key)
}

// GetFresh bypasses the staleness policy and always refetches. Concurrent
// fresh reads for the same key still collapse into one underlying fetch.
func (c *QueryCache) GetFresh(ctx context.Context, key string) ([]model.DailyRecord, error) {
	metrics.GetMetrics().RecordCacheMiss(ctx)
	return c.fetchAndStore(ctx, key)
}

// Invalidate drops the entry for key so the next read refetches. Called
// synchronously after every successful upsert.
func (c *QueryCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Dispose stops the janitor and clears the map. The cache must not be used
// afterwards.
func (c *QueryCache) Dispose() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		c.entries = make(map[string]*entry)
		c.mu.Unlock()
	})
}

func (c *QueryCache) fetchAndStore(ctx context.Context, key string) ([]model.DailyRecord, error) {
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		records, err := c.fetch(ctx, key)
		if err != nil {
			return nil, err
		}
		c.store(key, records)
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.DailyRecord), nil
}

// refresh revalidates a stale entry in the background. The stale value was
// already served, so a failure here only logs; the entry stays stale and a
// later read will try again.
func (c *QueryCache) refresh(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
	defer cancel()

	_, err, _ := c.group.Do(key, func() (interface{}, error) {
		records, err := c.fetch(ctx, key)
		if err != nil {
			return nil, err
		}
		c.store(key, records)
		return records, nil
	})
	if err != nil {
		logger.Logger.Warn("Background cache refresh failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func (c *QueryCache) store(key string, records []model.DailyRecord) {
	now := c.nowFn()
	c.mu.Lock()
	c.entries[key] = &entry{
		records:    records,
		fetchedAt:  now,
		lastAccess: now,
	}
	c.mu.Unlock()
}

func (c *QueryCache) janitor() {
	interval := c.evictAfter / 4
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			evicted := c.sweep(c.nowFn())
			metrics.GetMetrics().RecordCacheEvict(context.Background(), int64(evicted))
		}
	}
}

// sweep drops entries idle past the eviction window and reports how many.
func (c *QueryCache) sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for key, e := range c.entries {
		if now.Sub(e.lastAccess) >= c.evictAfter {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}
