package containers

import (
	"sync"

	"github.com/spaghettifunk/fusion/engine/core"
)

// SyncResourceCache serialises whole lookup-or-create transactions of a
// ResourceCache behind one mutex. Creation is rare and happens at setup
// time, so a single coarse lock is enough.
type SyncResourceCache[D any, H any] struct {
	mu    sync.Mutex
	cache *ResourceCache[D, H]
}

func NewSyncResourceCache[D any, H any](cache *ResourceCache[D, H]) *SyncResourceCache[D, H] {
	return &SyncResourceCache[D, H]{cache: cache}
}

func (s *SyncResourceCache[D, H]) GetOrCreate(desc D, create func(D) (H, error)) (H, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.GetOrCreate(desc, create)
}

func (s *SyncResourceCache[D, H]) Lookup(desc D) (H, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Lookup(desc)
}

func (s *SyncResourceCache[D, H]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

func (s *SyncResourceCache[D, H]) Stats() core.CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Stats()
}

func (s *SyncResourceCache[D, H]) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Destroy()
}
