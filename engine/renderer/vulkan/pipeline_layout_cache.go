package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/fusion/engine/containers"
	"github.com/spaghettifunk/fusion/engine/core"
)

// PipelineLayoutCache deduplicates pipeline layouts. Push constant ranges
// are compared regardless of declaration order, set layouts position by
// position.
type PipelineLayoutCache struct {
	factory ObjectFactory
	cache   *containers.SyncResourceCache[PipelineLayoutInfo, vk.PipelineLayout]
}

func NewPipelineLayoutCache(factory ObjectFactory) *PipelineLayoutCache {
	name := core.IdentifierNew("pipeline-layouts")
	return &PipelineLayoutCache{
		factory: factory,
		cache: containers.NewSyncResourceCache(
			containers.NewResourceCache(name, pipelineLayoutKeys, factory.DestroyPipelineLayout),
		),
	}
}

// CreatePipelineLayout returns the layout matching info, creating it on
// first use. The layout belongs to the cache.
func (c *PipelineLayoutCache) CreatePipelineLayout(info PipelineLayoutInfo) (vk.PipelineLayout, error) {
	return c.cache.GetOrCreate(info, func(key PipelineLayoutInfo) (vk.PipelineLayout, error) {
		return c.factory.CreatePipelineLayout(&key)
	})
}

func (c *PipelineLayoutCache) Len() int {
	return c.cache.Len()
}

func (c *PipelineLayoutCache) Stats() core.CacheStats {
	return c.cache.Stats()
}

func (c *PipelineLayoutCache) Destroy() error {
	return c.cache.Destroy()
}
