// Package handlecache holds the two caches a vectorized dispatch needs
// before it can build a compound: a path-to-handle cache that lets repeated
// references to the same file skip a LOOKUP chain, and a descriptor table
// that maps library-issued Descriptors to their open NFSv4 state.
//
// The descriptor table uses a two-level locking shape: a global RWMutex
// over the map of entries plus a per-entry mutex for the entry's own
// fields, so concurrent callers touching different files never block each
// other. The handle cache guards its map with a single RWMutex and folds
// concurrent misses on one path into one resolve with singleflight.
package handlecache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/marmos91/tcnfs/pkg/tcfile"
)

// Resolver performs the LOOKUP chain for a path not yet in the cache.
// internal/client/dispatch supplies the real implementation (a compound
// that walks PUTROOTFH + one LOOKUP per path component).
type Resolver func(ctx context.Context, path string) (tcfile.FileHandle, error)

// HandleCache maps absolute paths to their last-known file handle. Misses
// are deduplicated with singleflight so that N concurrent callers naming
// the same uncached path trigger exactly one LOOKUP chain.
type HandleCache struct {
	resolve Resolver

	mu      sync.RWMutex
	entries map[string]tcfile.FileHandle

	group singleflight.Group
}

// New creates a HandleCache that calls resolve on a cache miss.
func New(resolve Resolver) *HandleCache {
	return &HandleCache{
		resolve: resolve,
		entries: make(map[string]tcfile.FileHandle),
	}
}

// Lookup returns the cached handle for path, resolving and populating the
// cache on a miss.
func (c *HandleCache) Lookup(ctx context.Context, path string) (tcfile.FileHandle, error) {
	if h, ok := c.get(path); ok {
		return h, nil
	}

	v, err, _ := c.group.Do(path, func() (any, error) {
		if h, ok := c.get(path); ok {
			return h, nil
		}
		h, err := c.resolve(ctx, path)
		if err != nil {
			return nil, err
		}
		c.put(path, h)
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(tcfile.FileHandle), nil
}

func (c *HandleCache) get(path string) (tcfile.FileHandle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.entries[path]
	return h, ok
}

func (c *HandleCache) put(path string, h tcfile.FileHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = h
}

// Invalidate drops the cached handle for path, forcing the next Lookup to
// re-resolve it. Called after renamev/removev change the namespace.
func (c *HandleCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Insert seeds the cache with a handle already known by another means
// (e.g. the handle returned by the GETFH that follows OPEN in openv).
func (c *HandleCache) Insert(path string, h tcfile.FileHandle) {
	c.put(path, h)
}

// Peek is the same as Lookup without triggering a resolve on miss; it
// reports whether path is cached.
func (c *HandleCache) Peek(path string) (tcfile.FileHandle, bool) {
	return c.get(path)
}

func (c *HandleCache) String() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fmt.Sprintf("HandleCache{entries=%d}", len(c.entries))
}
