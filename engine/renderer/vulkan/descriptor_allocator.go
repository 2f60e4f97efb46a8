package vulkan

import (
	"errors"
	"fmt"
	"sync"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/fusion/engine/core"
)

/**
 * @brief The description of a descriptor pool.
 */
type DescriptorPoolInfo struct {
	Flags     vk.DescriptorPoolCreateFlags
	MaxSets   uint32
	PoolSizes []vk.DescriptorPoolSize
}

type descriptorRatio struct {
	descriptorType vk.DescriptorType
	ratio          float32
}

// How many descriptors of each type a pool holds, per descriptor set.
var descriptorPoolRatios = []descriptorRatio{
	{vk.DescriptorTypeSampler, 0.5},
	{vk.DescriptorTypeCombinedImageSampler, 4.0},
	{vk.DescriptorTypeSampledImage, 4.0},
	{vk.DescriptorTypeStorageImage, 1.0},
	{vk.DescriptorTypeUniformTexelBuffer, 1.0},
	{vk.DescriptorTypeStorageTexelBuffer, 1.0},
	{vk.DescriptorTypeUniformBuffer, 2.0},
	{vk.DescriptorTypeStorageBuffer, 2.0},
	{vk.DescriptorTypeUniformBufferDynamic, 1.0},
	{vk.DescriptorTypeStorageBufferDynamic, 1.0},
	{vk.DescriptorTypeInputAttachment, 0.5},
}

// NewDescriptorPoolInfo sizes a pool for setsPerPool descriptor sets.
func NewDescriptorPoolInfo(setsPerPool uint32, flags vk.DescriptorPoolCreateFlags) *DescriptorPoolInfo {
	sizes := make([]vk.DescriptorPoolSize, len(descriptorPoolRatios))
	for i, r := range descriptorPoolRatios {
		sizes[i] = vk.DescriptorPoolSize{
			Type:            r.descriptorType,
			DescriptorCount: uint32(r.ratio * float32(setsPerPool)),
		}
	}
	return &DescriptorPoolInfo{
		Flags:     flags,
		MaxSets:   setsPerPool,
		PoolSizes: sizes,
	}
}

// DescriptorAllocator allocates descriptor sets from a growing list of
// pools. A full pool is swapped for a fresh one; ResetPools recycles them
// all at once.
type DescriptorAllocator struct {
	factory  PoolFactory
	poolInfo *DescriptorPoolInfo

	mu          sync.Mutex
	currentPool vk.DescriptorPool
	usedPools   []vk.DescriptorPool
	freePools   []vk.DescriptorPool
	destroyed   bool
}

// NewDescriptorAllocator falls back to VULKAN_DEFAULT_SETS_PER_POOL when
// setsPerPool is zero. No pool is created until the first allocation.
func NewDescriptorAllocator(factory PoolFactory, setsPerPool uint32, flags vk.DescriptorPoolCreateFlags) *DescriptorAllocator {
	if setsPerPool == 0 {
		setsPerPool = VULKAN_DEFAULT_SETS_PER_POOL
	}
	return &DescriptorAllocator{
		factory:  factory,
		poolInfo: NewDescriptorPoolInfo(setsPerPool, flags),
	}
}

// grabPool reuses a free pool or creates a new one.
func (a *DescriptorAllocator) grabPool() (vk.DescriptorPool, error) {
	if n := len(a.freePools); n > 0 {
		pool := a.freePools[n-1]
		a.freePools = a.freePools[:n-1]
		return pool, nil
	}
	return a.factory.CreateDescriptorPool(a.poolInfo)
}

func (a *DescriptorAllocator) switchPool() error {
	pool, err := a.grabPool()
	if err != nil {
		return err
	}
	a.currentPool = pool
	a.usedPools = append(a.usedPools, pool)
	return nil
}

// Allocate returns a new descriptor set with the given layout.
func (a *DescriptorAllocator) Allocate(layout vk.DescriptorSetLayout) (vk.DescriptorSet, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.destroyed {
		return nil, fmt.Errorf("descriptor allocator: %w", core.ErrUseAfterTeardown)
	}
	if a.currentPool == nil {
		if err := a.switchPool(); err != nil {
			return nil, err
		}
	}

	set, result := a.factory.AllocateDescriptorSet(a.currentPool, layout)
	switch result {
	case vk.Success:
		return set, nil
	case vk.ErrorFragmentedPool, vk.ErrorOutOfPoolMemory:
		core.LogDebug("descriptor pool full (%s), switching to a new pool", VulkanResultString(result, false))
		if err := a.switchPool(); err != nil {
			return nil, err
		}
		set, result = a.factory.AllocateDescriptorSet(a.currentPool, layout)
		if result == vk.Success {
			return set, nil
		}
		return nil, fmt.Errorf("%w: %w", core.ErrPoolExhausted, resultError("vkAllocateDescriptorSets", result))
	default:
		return nil, resultError("vkAllocateDescriptorSets", result)
	}
}

// ResetPools frees every set allocated so far. All used pools become free.
func (a *DescriptorAllocator) ResetPools() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.destroyed {
		return fmt.Errorf("descriptor allocator: %w", core.ErrUseAfterTeardown)
	}
	var errs []error
	for _, pool := range a.usedPools {
		if err := a.factory.ResetDescriptorPool(pool); err != nil {
			errs = append(errs, err)
		}
		a.freePools = append(a.freePools, pool)
	}
	a.usedPools = nil
	a.currentPool = nil
	return errors.Join(errs...)
}

func (a *DescriptorAllocator) PoolCount() (used int, free int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.usedPools), len(a.freePools)
}

// Destroy destroys every pool, and with them all sets allocated from them.
func (a *DescriptorAllocator) Destroy() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.destroyed {
		return fmt.Errorf("descriptor allocator destroyed twice: %w", core.ErrUseAfterTeardown)
	}
	a.destroyed = true
	for _, pool := range a.freePools {
		a.factory.DestroyDescriptorPool(pool)
	}
	for _, pool := range a.usedPools {
		a.factory.DestroyDescriptorPool(pool)
	}
	a.freePools = nil
	a.usedPools = nil
	a.currentPool = nil
	return nil
}
