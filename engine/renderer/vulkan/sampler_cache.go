package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/fusion/engine/containers"
	"github.com/spaghettifunk/fusion/engine/core"
)

// SamplerCache deduplicates samplers, comparing the whole SamplerInfo field
// by field.
type SamplerCache struct {
	factory ObjectFactory
	cache   *containers.SyncResourceCache[SamplerInfo, vk.Sampler]
}

func NewSamplerCache(factory ObjectFactory) *SamplerCache {
	name := core.IdentifierNew("samplers")
	return &SamplerCache{
		factory: factory,
		cache: containers.NewSyncResourceCache(
			containers.NewResourceCache(name, samplerKeys, factory.DestroySampler),
		),
	}
}

// CreateSampler returns the sampler matching info, creating it on first
// use. The sampler belongs to the cache.
func (c *SamplerCache) CreateSampler(info SamplerInfo) (vk.Sampler, error) {
	return c.cache.GetOrCreate(info, func(key SamplerInfo) (vk.Sampler, error) {
		return c.factory.CreateSampler(&key)
	})
}

func (c *SamplerCache) Len() int {
	return c.cache.Len()
}

func (c *SamplerCache) Stats() core.CacheStats {
	return c.cache.Stats()
}

func (c *SamplerCache) Destroy() error {
	return c.cache.Destroy()
}
