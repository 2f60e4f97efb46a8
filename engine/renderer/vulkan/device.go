package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/fusion/engine/core"
)

// ObjectFactory creates and destroys the immutable driver objects the caches
// hold. Create calls must have no side effect when they fail; destroy calls
// cannot fail.
type ObjectFactory interface {
	CreateDescriptorSetLayout(info *DescriptorSetLayoutInfo) (vk.DescriptorSetLayout, error)
	DestroyDescriptorSetLayout(layout vk.DescriptorSetLayout)
	CreatePipelineLayout(info *PipelineLayoutInfo) (vk.PipelineLayout, error)
	DestroyPipelineLayout(layout vk.PipelineLayout)
	CreateSampler(info *SamplerInfo) (vk.Sampler, error)
	DestroySampler(sampler vk.Sampler)
}

// PoolFactory is the part of the device the DescriptorAllocator needs.
type PoolFactory interface {
	CreateDescriptorPool(info *DescriptorPoolInfo) (vk.DescriptorPool, error)
	ResetDescriptorPool(pool vk.DescriptorPool) error
	DestroyDescriptorPool(pool vk.DescriptorPool)
	// AllocateDescriptorSet returns the raw result so the caller can tell
	// an exhausted pool from a real failure.
	AllocateDescriptorSet(pool vk.DescriptorPool, layout vk.DescriptorSetLayout) (vk.DescriptorSet, vk.Result)
}

type DeviceObjects interface {
	ObjectFactory
	PoolFactory
}

// VulkanDevice creates objects on a Vulkan logical device. Every driver call
// is serialised per object group through the lock pool.
type VulkanDevice struct {
	LogicalDevice vk.Device
	Allocator     *vk.AllocationCallbacks

	locks *VulkanLockPool
}

func NewVulkanDevice(logicalDevice vk.Device, allocator *vk.AllocationCallbacks, locks *VulkanLockPool) *VulkanDevice {
	if locks == nil {
		locks = NewVulkanLockPool()
	}
	return &VulkanDevice{
		LogicalDevice: logicalDevice,
		Allocator:     allocator,
		locks:         locks,
	}
}

func (d *VulkanDevice) CreateDescriptorSetLayout(info *DescriptorSetLayoutInfo) (vk.DescriptorSetLayout, error) {
	createInfo := info.toVulkan()
	var layout vk.DescriptorSetLayout
	if err := d.locks.SafeCall(DescriptorManagement, func() error {
		return resultError("vkCreateDescriptorSetLayout", vk.CreateDescriptorSetLayout(d.LogicalDevice, &createInfo, d.Allocator, &layout))
	}); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	core.LogDebug("Descriptor set layout created with %d bindings", len(info.Bindings))
	return layout, nil
}

func (d *VulkanDevice) DestroyDescriptorSetLayout(layout vk.DescriptorSetLayout) {
	_ = d.locks.SafeCall(DescriptorManagement, func() error {
		vk.DestroyDescriptorSetLayout(d.LogicalDevice, layout, d.Allocator)
		return nil
	})
}

func (d *VulkanDevice) CreatePipelineLayout(info *PipelineLayoutInfo) (vk.PipelineLayout, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	createInfo := info.toVulkan()
	var layout vk.PipelineLayout
	if err := d.locks.SafeCall(PipelineManagement, func() error {
		return resultError("vkCreatePipelineLayout", vk.CreatePipelineLayout(d.LogicalDevice, &createInfo, d.Allocator, &layout))
	}); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	core.LogDebug("Pipeline layout created with %d sets and %d push constant ranges", len(info.SetLayouts), len(info.PushConstantRanges))
	return layout, nil
}

func (d *VulkanDevice) DestroyPipelineLayout(layout vk.PipelineLayout) {
	_ = d.locks.SafeCall(PipelineManagement, func() error {
		vk.DestroyPipelineLayout(d.LogicalDevice, layout, d.Allocator)
		return nil
	})
}

func (d *VulkanDevice) CreateSampler(info *SamplerInfo) (vk.Sampler, error) {
	createInfo := info.toVulkan()
	var sampler vk.Sampler
	if err := d.locks.SafeCall(SamplerManagement, func() error {
		return resultError("vkCreateSampler", vk.CreateSampler(d.LogicalDevice, &createInfo, d.Allocator, &sampler))
	}); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	core.LogDebug("Sampler created")
	return sampler, nil
}

func (d *VulkanDevice) DestroySampler(sampler vk.Sampler) {
	_ = d.locks.SafeCall(SamplerManagement, func() error {
		vk.DestroySampler(d.LogicalDevice, sampler, d.Allocator)
		return nil
	})
}

func (d *VulkanDevice) CreateDescriptorPool(info *DescriptorPoolInfo) (vk.DescriptorPool, error) {
	createInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         info.Flags,
		MaxSets:       info.MaxSets,
		PoolSizeCount: uint32(len(info.PoolSizes)),
		PPoolSizes:    info.PoolSizes,
	}
	var pool vk.DescriptorPool
	if err := d.locks.SafeCall(DescriptorPoolManagement, func() error {
		return resultError("vkCreateDescriptorPool", vk.CreateDescriptorPool(d.LogicalDevice, &createInfo, d.Allocator, &pool))
	}); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return pool, nil
}

func (d *VulkanDevice) ResetDescriptorPool(pool vk.DescriptorPool) error {
	return d.locks.SafeCall(DescriptorPoolManagement, func() error {
		return resultError("vkResetDescriptorPool", vk.ResetDescriptorPool(d.LogicalDevice, pool, 0))
	})
}

func (d *VulkanDevice) DestroyDescriptorPool(pool vk.DescriptorPool) {
	_ = d.locks.SafeCall(DescriptorPoolManagement, func() error {
		vk.DestroyDescriptorPool(d.LogicalDevice, pool, d.Allocator)
		return nil
	})
}

func (d *VulkanDevice) AllocateDescriptorSet(pool vk.DescriptorPool, layout vk.DescriptorSetLayout) (vk.DescriptorSet, vk.Result) {
	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout},
	}
	sets := make([]vk.DescriptorSet, 1)
	var result vk.Result
	_ = d.locks.SafeCall(DescriptorPoolManagement, func() error {
		result = vk.AllocateDescriptorSets(d.LogicalDevice, &allocateInfo, &sets[0])
		return nil
	})
	return sets[0], result
}
