// Package swr is a small stale-while-revalidate cache for list and detail
// fetches shared by the TUI screens.
package swr

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value   any
	fetched time.Time
}

// Cache keeps the last value fetched per key. Values younger than maxAge are
// served without a request; concurrent fetches of one key share a request.
type Cache struct {
	maxAge time.Duration
	logger *slog.Logger
	now    func() time.Time
	group  singleflight.Group

	mu      sync.Mutex
	entries map[string]entry
	gen     uint64 // bumped by Mutate and Invalidate
}

func New(maxAge time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		maxAge:  maxAge,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// lookup returns the cached value for key if it holds a T.
func lookup[T any](c *Cache, key string) (T, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, time.Time{}, false
	}
	v, ok := e.value.(T)
	return v, e.fetched, ok
}

// Get returns the fresh cached value for key or fetches a new one.
func Get[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	if v, at, ok := lookup[T](c, key); ok && c.now().Sub(at) < c.maxAge {
		return v, nil
	}
	return revalidate(ctx, c, key, fetch)
}

// GetStale returns any cached value at once, starting a background
// revalidation when it is older than maxAge. stale reports that case. With
// nothing cached it fetches like Get.
func GetStale[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (v T, stale bool, err error) {
	v, at, ok := lookup[T](c, key)
	if !ok {
		v, err = revalidate(ctx, c, key, fetch)
		return v, false, err
	}
	if c.now().Sub(at) < c.maxAge {
		return v, false, nil
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		if _, err := revalidate(bg, c, key, fetch); err != nil {
			c.logger.Debug("background revalidation failed", "key", key, "error", err)
		}
	}()
	return v, true, nil
}

func revalidate[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	res, err, shared := c.group.Do(key, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.entries[key] = entry{value: v, fetched: c.now()}
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if shared {
		c.logger.Debug("shared fetch", "key", key)
	}
	v, ok := res.(T)
	if !ok {
		// A different type was fetched under the same key; fetch our own.
		return fetch(ctx)
	}
	return v, nil
}

// Mutate replaces the cached value for key, for example after a local edit.
func (c *Cache) Mutate(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.entries[key] = entry{value: value, fetched: c.now()}
}

// Invalidate drops every key starting with prefix. An empty prefix clears
// the cache.
func (c *Cache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}
