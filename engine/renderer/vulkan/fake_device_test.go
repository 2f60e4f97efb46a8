package vulkan

import (
	"sync"
	"sync/atomic"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// fakeDevice is an in-memory DeviceObjects. Handles are unique addresses
// that are never dereferenced.
type fakeDevice struct {
	mu sync.Mutex

	createCalls  map[string]int
	destroyCalls []string
	destroyed    map[unsafe.Pointer]int

	fail error

	lastSetLayout      DescriptorSetLayoutInfo
	lastPipelineLayout PipelineLayoutInfo

	// results returned by AllocateDescriptorSet, in order; Success once empty
	allocResults []vk.Result
	allocCalls   int
	pools        []vk.DescriptorPool
	resetPools   map[unsafe.Pointer]int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		createCalls: make(map[string]int),
		destroyed:   make(map[unsafe.Pointer]int),
		resetPools:  make(map[unsafe.Pointer]int),
	}
}

// Driver handles point to C memory the garbage collector never tracks, so
// fake handles come from package storage instead of the Go heap: a heap
// address stored in a handle is not a GC reference and can be reused.
var (
	fakeHandleStorage [4096]uint64
	fakeHandleNext    atomic.Int64
)

func newFakeHandle() unsafe.Pointer {
	i := fakeHandleNext.Add(1) - 1
	if i >= int64(len(fakeHandleStorage)) {
		panic("fake handle storage exhausted")
	}
	return unsafe.Pointer(&fakeHandleStorage[i])
}

func (f *fakeDevice) CreateDescriptorSetLayout(info *DescriptorSetLayoutInfo) (vk.DescriptorSetLayout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.createCalls["set_layout"]++
	f.lastSetLayout = *info
	return vk.DescriptorSetLayout(newFakeHandle()), nil
}

func (f *fakeDevice) DestroyDescriptorSetLayout(layout vk.DescriptorSetLayout) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyCalls = append(f.destroyCalls, "set_layout")
	f.destroyed[unsafe.Pointer(layout)]++
}

func (f *fakeDevice) CreatePipelineLayout(info *PipelineLayoutInfo) (vk.PipelineLayout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}
	f.createCalls["pipeline_layout"]++
	f.lastPipelineLayout = *info
	return vk.PipelineLayout(newFakeHandle()), nil
}

func (f *fakeDevice) DestroyPipelineLayout(layout vk.PipelineLayout) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyCalls = append(f.destroyCalls, "pipeline_layout")
	f.destroyed[unsafe.Pointer(layout)]++
}

func (f *fakeDevice) CreateSampler(info *SamplerInfo) (vk.Sampler, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.createCalls["sampler"]++
	return vk.Sampler(newFakeHandle()), nil
}

func (f *fakeDevice) DestroySampler(sampler vk.Sampler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyCalls = append(f.destroyCalls, "sampler")
	f.destroyed[unsafe.Pointer(sampler)]++
}

func (f *fakeDevice) CreateDescriptorPool(info *DescriptorPoolInfo) (vk.DescriptorPool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.createCalls["pool"]++
	pool := vk.DescriptorPool(newFakeHandle())
	f.pools = append(f.pools, pool)
	return pool, nil
}

func (f *fakeDevice) ResetDescriptorPool(pool vk.DescriptorPool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetPools[unsafe.Pointer(pool)]++
	return nil
}

func (f *fakeDevice) DestroyDescriptorPool(pool vk.DescriptorPool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyCalls = append(f.destroyCalls, "pool")
	f.destroyed[unsafe.Pointer(pool)]++
}

func (f *fakeDevice) AllocateDescriptorSet(pool vk.DescriptorPool, layout vk.DescriptorSetLayout) (vk.DescriptorSet, vk.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allocCalls++
	if len(f.allocResults) > 0 {
		result := f.allocResults[0]
		f.allocResults = f.allocResults[1:]
		if result != vk.Success {
			return nil, result
		}
	}
	return vk.DescriptorSet(newFakeHandle()), vk.Success
}

func (f *fakeDevice) destroyCount(handle unsafe.Pointer) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.destroyed[handle]
}
