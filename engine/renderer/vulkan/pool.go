package vulkan

import "sync"

type LockGroup string

const (
	SamplerManagement        LockGroup = "sampler_management"
	DescriptorManagement     LockGroup = "descriptor_management"
	DescriptorPoolManagement LockGroup = "descriptor_pool_management"
	PipelineManagement       LockGroup = "pipeline_management"
)

// VulkanLockPool hands out one mutex per group of driver objects, so that
// calls touching the same kind of object are externally synchronized.
type VulkanLockPool struct {
	locks map[LockGroup]*sync.Mutex
	mu    sync.Mutex // Protects access to the locks map
}

func NewVulkanLockPool() *VulkanLockPool {
	return &VulkanLockPool{
		locks: make(map[LockGroup]*sync.Mutex),
	}
}

// Get or create the mutex for a specific group
func (vs *VulkanLockPool) lock(group LockGroup) *sync.Mutex {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if _, exists := vs.locks[group]; !exists {
		vs.locks[group] = &sync.Mutex{}
	}
	return vs.locks[group]
}

// SafeCall runs fn while holding the group's mutex.
func (vs *VulkanLockPool) SafeCall(group LockGroup, fn func() error) error {
	l := vs.lock(group)
	l.Lock()
	defer l.Unlock()

	return fn()
}
