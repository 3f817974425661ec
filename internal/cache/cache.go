package cache

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// FetchFunc loads the full collection from the backing store.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Cache is a read-through cache for one collection. It is Empty until the
// first successful Get or Refresh and never expires on its own.
//
// The stored slice is replaced as a whole and must not be mutated by
// callers.
type Cache[T any] struct {
	name   string
	fetch  FetchFunc[T]
	value  atomic.Pointer[[]T]
	group  singleflight.Group
	logger *slog.Logger
}

// New creates an empty cache named name (used in logs) that loads with fetch.
func New[T any](name string, fetch FetchFunc[T], logger *slog.Logger) *Cache[T] {
	return &Cache[T]{
		name:   name,
		fetch:  fetch,
		logger: logger,
	}
}

// Get returns the cached collection, fetching it if the cache is empty.
// Concurrent first reads share one fetch; the first value stored wins and
// every caller converges on it. The shared fetch is detached from the
// cancellation of whichever caller started it.
func (c *Cache[T]) Get(ctx context.Context) ([]T, error) {
	if v := c.value.Load(); v != nil {
		return *v, nil
	}

	res, err, shared := c.group.Do(c.name, func() (any, error) {
		items, err := c.fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if c.value.CompareAndSwap(nil, &items) {
			c.logger.Debug("cache filled",
				slog.String("cache", c.name),
				slog.Int("size", len(items)),
			)
			return items, nil
		}
		// A concurrent Refresh stored first.
		if v := c.value.Load(); v != nil {
			return *v, nil
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("cache fill shared", slog.String("cache", c.name))
	}
	return res.([]T), nil
}

// Refresh fetches the collection and replaces the cached value. On error
// the previous value is kept.
func (c *Cache[T]) Refresh(ctx context.Context) ([]T, error) {
	items, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.value.Store(&items)
	c.logger.Debug("cache refreshed",
		slog.String("cache", c.name),
		slog.Int("size", len(items)),
	)
	return items, nil
}

// Invalidate returns the cache to the empty state; the next Get fetches.
func (c *Cache[T]) Invalidate() {
	c.value.Store(nil)
}

// Loaded reports whether the cache currently holds a value.
func (c *Cache[T]) Loaded() bool {
	return c.value.Load() != nil
}
