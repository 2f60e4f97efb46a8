package containers

import (
	"fmt"

	"github.com/spaghettifunk/fusion/engine/core"
)

// KeyStrategy tells a ResourceCache how to turn a description into a lookup
// key. Normalize must be idempotent, and Hash must only read fields that
// Equal compares.
type KeyStrategy[D any] struct {
	// Normalize returns the canonical form of a description. nil means the
	// description is already canonical.
	Normalize func(D) D
	Hash      func(D) uint64
	Equal     func(a, b D) bool
	// Clone deep-copies a key before it is stored, so later changes to the
	// caller's slices cannot reach the cache. nil means keys share no memory.
	Clone func(D) D
}

type cacheEntry[D any, H any] struct {
	key    D
	handle H
}

// ResourceCache maps descriptions of immutable device objects to the single
// handle created for them. The cache owns every handle it creates; callers
// borrow them until Destroy.
//
// A ResourceCache is not safe for concurrent use. Wrap it in a
// SyncResourceCache when more than one goroutine creates objects.
type ResourceCache[D any, H any] struct {
	name     string
	strategy KeyStrategy[D]
	destroy  func(H)

	buckets  map[uint64][]cacheEntry[D, H]
	handles  []H
	stats    core.CacheStats
	tornDown bool
}

func NewResourceCache[D any, H any](name string, strategy KeyStrategy[D], destroy func(H)) *ResourceCache[D, H] {
	if strategy.Hash == nil || strategy.Equal == nil {
		panic(fmt.Sprintf("resource cache '%s': hash and equal functions are required", name))
	}
	return &ResourceCache[D, H]{
		name:     name,
		strategy: strategy,
		destroy:  destroy,
		buckets:  make(map[uint64][]cacheEntry[D, H]),
	}
}

func (c *ResourceCache[D, H]) Name() string {
	return c.name
}

// Normalize returns the canonical key for desc.
func (c *ResourceCache[D, H]) Normalize(desc D) D {
	if c.strategy.Normalize == nil {
		return desc
	}
	return c.strategy.Normalize(desc)
}

// Lookup returns the handle stored for desc without creating anything.
func (c *ResourceCache[D, H]) Lookup(desc D) (H, bool) {
	key := c.Normalize(desc)
	return c.find(c.strategy.Hash(key), key)
}

func (c *ResourceCache[D, H]) find(hash uint64, key D) (H, bool) {
	for _, e := range c.buckets[hash] {
		if c.strategy.Equal(e.key, key) {
			return e.handle, true
		}
	}
	var zero H
	return zero, false
}

// GetOrCreate returns the handle for desc, calling create with the canonical
// key only if no equal key was stored before. A failed creation stores
// nothing and its error is wrapped with core.ErrCreationFailure.
func (c *ResourceCache[D, H]) GetOrCreate(desc D, create func(D) (H, error)) (H, error) {
	var zero H
	if c.tornDown {
		core.LogError("resource cache '%s' used after teardown", c.name)
		return zero, fmt.Errorf("resource cache '%s': %w", c.name, core.ErrUseAfterTeardown)
	}

	key := c.Normalize(desc)
	hash := c.strategy.Hash(key)

	if handle, ok := c.find(hash, key); ok {
		c.stats.RecordHit()
		core.LogDebug("found object in cache '%s'", c.name)
		return handle, nil
	}

	handle, err := create(key)
	if err != nil {
		c.stats.RecordMiss(false)
		return zero, fmt.Errorf("resource cache '%s': %w: %w", c.name, core.ErrCreationFailure, err)
	}
	c.stats.RecordMiss(true)

	if c.strategy.Clone != nil {
		key = c.strategy.Clone(key)
	}
	c.buckets[hash] = append(c.buckets[hash], cacheEntry[D, H]{key: key, handle: handle})
	c.handles = append(c.handles, handle)
	return handle, nil
}

func (c *ResourceCache[D, H]) Len() int {
	return len(c.handles)
}

func (c *ResourceCache[D, H]) Stats() core.CacheStats {
	return c.stats
}

func (c *ResourceCache[D, H]) IsDestroyed() bool {
	return c.tornDown
}

// Destroy releases every handle the cache created, in creation order, and
// drops all entries. It may only be called once.
func (c *ResourceCache[D, H]) Destroy() error {
	if c.tornDown {
		return fmt.Errorf("resource cache '%s' destroyed twice: %w", c.name, core.ErrUseAfterTeardown)
	}
	c.tornDown = true

	if c.destroy != nil {
		for _, h := range c.handles {
			c.destroy(h)
		}
	}
	core.LogDebug("resource cache '%s' destroyed %d objects (%s)", c.name, len(c.handles), c.stats)

	c.handles = nil
	c.buckets = nil
	return nil
}
