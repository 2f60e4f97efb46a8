package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/fusion/engine/containers"
	"github.com/spaghettifunk/fusion/engine/core"
)

// DescriptorLayoutCache deduplicates descriptor set layouts. Infos that only
// differ in binding declaration order share one layout.
type DescriptorLayoutCache struct {
	factory ObjectFactory
	cache   *containers.SyncResourceCache[DescriptorSetLayoutInfo, vk.DescriptorSetLayout]
}

func NewDescriptorLayoutCache(factory ObjectFactory) *DescriptorLayoutCache {
	name := core.IdentifierNew("descriptor-set-layouts")
	return &DescriptorLayoutCache{
		factory: factory,
		cache: containers.NewSyncResourceCache(
			containers.NewResourceCache(name, descriptorSetLayoutKeys, factory.DestroyDescriptorSetLayout),
		),
	}
}

// CreateDescriptorLayout returns the layout matching info, creating it on
// first use. The layout belongs to the cache and must not be destroyed by
// the caller.
func (c *DescriptorLayoutCache) CreateDescriptorLayout(info DescriptorSetLayoutInfo) (vk.DescriptorSetLayout, error) {
	return c.cache.GetOrCreate(info, func(key DescriptorSetLayoutInfo) (vk.DescriptorSetLayout, error) {
		return c.factory.CreateDescriptorSetLayout(&key)
	})
}

func (c *DescriptorLayoutCache) Len() int {
	return c.cache.Len()
}

func (c *DescriptorLayoutCache) Stats() core.CacheStats {
	return c.cache.Stats()
}

// Destroy destroys every layout held. The device must still be alive.
func (c *DescriptorLayoutCache) Destroy() error {
	return c.cache.Destroy()
}
