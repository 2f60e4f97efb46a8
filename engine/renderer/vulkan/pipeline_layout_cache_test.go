package vulkan

import (
	"errors"
	"testing"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/fusion/engine/core"
)

func vertexRange(offset, size uint32) PushConstantRange {
	return PushConstantRange{
		StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		Offset:     offset,
		Size:       size,
	}
}

func TestPipelineLayoutCacheSetLayoutOrderMatters(t *testing.T) {
	dev := newFakeDevice()
	cache := NewPipelineLayoutCache(dev)

	a := vk.DescriptorSetLayout(newFakeHandle())
	b := vk.DescriptorSetLayout(newFakeHandle())

	ab, err := cache.CreatePipelineLayout(PipelineLayoutInfo{SetLayouts: []vk.DescriptorSetLayout{a, b}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ba, err := cache.CreatePipelineLayout(PipelineLayoutInfo{SetLayouts: []vk.DescriptorSetLayout{b, a}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ab == ba {
		t.Error("swapped set layouts must be different pipeline layouts")
	}
	if dev.createCalls["pipeline_layout"] != 2 {
		t.Errorf("expected 2 creations, got %d", dev.createCalls["pipeline_layout"])
	}
	got := dev.lastPipelineLayout.SetLayouts
	if len(got) != 2 || got[0] != b || got[1] != a {
		t.Error("set layouts must reach the device in declaration order")
	}
}

func TestPipelineLayoutCacheReorderedPushConstants(t *testing.T) {
	dev := newFakeDevice()
	cache := NewPipelineLayoutCache(dev)
	set := vk.DescriptorSetLayout(newFakeHandle())

	first, err := cache.CreatePipelineLayout(PipelineLayoutInfo{
		SetLayouts:         []vk.DescriptorSetLayout{set},
		PushConstantRanges: []PushConstantRange{vertexRange(64, 16), vertexRange(0, 64)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := cache.CreatePipelineLayout(PipelineLayoutInfo{
		SetLayouts:         []vk.DescriptorSetLayout{set},
		PushConstantRanges: []PushConstantRange{vertexRange(0, 64), vertexRange(64, 16)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Error("reordered push constant ranges should return the same layout")
	}
	if dev.createCalls["pipeline_layout"] != 1 {
		t.Errorf("expected 1 creation, got %d", dev.createCalls["pipeline_layout"])
	}
	ranges := dev.lastPipelineLayout.PushConstantRanges
	if ranges[0].Offset != 0 || ranges[1].Offset != 64 {
		t.Errorf("expected ranges sorted by offset, got %+v", ranges)
	}
}

func TestPipelineLayoutCacheDistinctLayouts(t *testing.T) {
	set := vk.DescriptorSetLayout(newFakeHandle())
	fragment := vertexRange(0, 64)
	fragment.StageFlags = vk.ShaderStageFlags(vk.ShaderStageFragmentBit)

	infos := []PipelineLayoutInfo{
		{},
		{Flags: 1},
		{SetLayouts: []vk.DescriptorSetLayout{set}},
		{SetLayouts: []vk.DescriptorSetLayout{set, set}},
		{PushConstantRanges: []PushConstantRange{vertexRange(0, 64)}},
		{PushConstantRanges: []PushConstantRange{vertexRange(0, 128)}},
		{PushConstantRanges: []PushConstantRange{fragment}},
		{SetLayouts: []vk.DescriptorSetLayout{set}, PushConstantRanges: []PushConstantRange{vertexRange(0, 64)}},
	}

	dev := newFakeDevice()
	cache := NewPipelineLayoutCache(dev)
	seen := make(map[vk.PipelineLayout]int)
	for i, info := range infos {
		layout, err := cache.CreatePipelineLayout(info)
		if err != nil {
			t.Fatalf("info %d: unexpected error: %v", i, err)
		}
		if other, ok := seen[layout]; ok {
			t.Errorf("infos %d and %d share a layout", i, other)
		}
		seen[layout] = i
	}
}

func TestPipelineLayoutInfoValidate(t *testing.T) {
	tooMany := PipelineLayoutInfo{}
	for i := 0; i <= VULKAN_MAX_PUSH_CONSTANT_RANGES; i++ {
		tooMany.PushConstantRanges = append(tooMany.PushConstantRanges, vertexRange(uint32(i*4), 4))
	}
	if err := tooMany.Validate(); err == nil {
		t.Error("expected an error for too many push constant ranges")
	}

	nullSet := PipelineLayoutInfo{SetLayouts: []vk.DescriptorSetLayout{nil}}
	if err := nullSet.Validate(); err == nil {
		t.Error("expected an error for a null set layout")
	}

	dev := newFakeDevice()
	cache := NewPipelineLayoutCache(dev)
	_, err := cache.CreatePipelineLayout(nullSet)
	if !errors.Is(err, core.ErrCreationFailure) {
		t.Errorf("expected ErrCreationFailure, got %v", err)
	}
	if cache.Len() != 0 {
		t.Errorf("invalid layout must not be cached")
	}
}

func TestPipelineLayoutCacheDestroy(t *testing.T) {
	dev := newFakeDevice()
	cache := NewPipelineLayoutCache(dev)

	layout, _ := cache.CreatePipelineLayout(PipelineLayoutInfo{PushConstantRanges: []PushConstantRange{vertexRange(0, 16)}})
	if err := cache.Destroy(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dev.destroyCount(unsafe.Pointer(layout)) != 1 {
		t.Error("layout must be destroyed exactly once")
	}
	if err := cache.Destroy(); !errors.Is(err, core.ErrUseAfterTeardown) {
		t.Errorf("expected ErrUseAfterTeardown, got %v", err)
	}
	if dev.destroyCount(unsafe.Pointer(layout)) != 1 {
		t.Error("second destroy must not release the layout again")
	}
}

func TestPipelineLayoutInfoFromVulkan(t *testing.T) {
	set := vk.DescriptorSetLayout(newFakeHandle())
	createInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         1,
		PSetLayouts:            []vk.DescriptorSetLayout{set},
		PushConstantRangeCount: 1,
		PPushConstantRanges: []vk.PushConstantRange{
			{StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit), Offset: 0, Size: 64},
		},
	}
	info := PipelineLayoutInfoFromVulkan(&createInfo)
	want := PipelineLayoutInfo{
		SetLayouts:         []vk.DescriptorSetLayout{set},
		PushConstantRanges: []PushConstantRange{vertexRange(0, 64)},
	}
	if !equalPipelineLayout(info, want) {
		t.Errorf("unexpected conversion: %+v", info)
	}

	back := info.toVulkan()
	if back.PushConstantRangeCount != 1 || back.SetLayoutCount != 1 {
		t.Errorf("unexpected create info: %+v", back)
	}
}
