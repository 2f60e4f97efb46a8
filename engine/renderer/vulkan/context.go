package vulkan

import (
	"errors"
	"sync"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/fusion/engine/core"
)

// VulkanContext owns the device object caches of one logical device. It
// holds a reference to the device but does not own it: Shutdown must run
// before the device is destroyed.
type VulkanContext struct {
	Device DeviceObjects

	DescriptorLayoutCache *DescriptorLayoutCache
	PipelineLayoutCache   *PipelineLayoutCache
	SamplerCache          *SamplerCache
	DescriptorAllocator   *DescriptorAllocator

	mu         sync.Mutex
	isShutdown bool
}

func NewVulkanContext(device DeviceObjects, config *core.Config) *VulkanContext {
	if config == nil {
		config = core.DefaultConfig()
	}
	return &VulkanContext{
		Device:                device,
		DescriptorLayoutCache: NewDescriptorLayoutCache(device),
		PipelineLayoutCache:   NewPipelineLayoutCache(device),
		SamplerCache:          NewSamplerCache(device),
		DescriptorAllocator: NewDescriptorAllocator(
			device,
			config.Descriptors.SetsPerPool,
			vk.DescriptorPoolCreateFlags(config.Descriptors.PoolFlags),
		),
	}
}

// Shutdown releases everything the context created, users first: sets and
// pipeline layouts reference set layouts, set layouts may reference samplers.
func (vc *VulkanContext) Shutdown() error {
	vc.mu.Lock()
	if vc.isShutdown {
		vc.mu.Unlock()
		return core.ErrUseAfterTeardown
	}
	vc.isShutdown = true
	vc.mu.Unlock()

	core.LogInfo("Destroying device object caches...")
	core.LogDebug("descriptor set layouts: %s", vc.DescriptorLayoutCache.Stats())
	core.LogDebug("pipeline layouts: %s", vc.PipelineLayoutCache.Stats())
	core.LogDebug("samplers: %s", vc.SamplerCache.Stats())

	err := errors.Join(
		vc.DescriptorAllocator.Destroy(),
		vc.PipelineLayoutCache.Destroy(),
		vc.DescriptorLayoutCache.Destroy(),
		vc.SamplerCache.Destroy(),
	)
	if err != nil {
		core.LogError(err.Error())
	}
	return err
}

func (vc *VulkanContext) IsShutdown() bool {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	return vc.isShutdown
}
