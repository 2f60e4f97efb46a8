package vulkan

import (
	"errors"
	"reflect"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/fusion/engine/core"
)

func TestVulkanContextShutdownOrder(t *testing.T) {
	dev := newFakeDevice()
	vc := NewVulkanContext(dev, nil)

	sampler, err := vc.SamplerCache.CreateSampler(ImageSamplerInfo(vk.FilterLinear, vk.SamplerAddressModeRepeat, 1, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	binding := samplerBinding(0)
	binding.ImmutableSamplers = []vk.Sampler{sampler}
	setLayout, err := vc.DescriptorLayoutCache.CreateDescriptorLayout(DescriptorSetLayoutInfo{
		Bindings: []DescriptorSetLayoutBinding{binding},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := vc.PipelineLayoutCache.CreatePipelineLayout(PipelineLayoutInfo{
		SetLayouts: []vk.DescriptorSetLayout{setLayout},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := vc.DescriptorAllocator.Allocate(setLayout); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := vc.Shutdown(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"pool", "pipeline_layout", "set_layout", "sampler"}
	if !reflect.DeepEqual(dev.destroyCalls, want) {
		t.Errorf("expected destroy order %v, got %v", want, dev.destroyCalls)
	}

	if err := vc.Shutdown(); !errors.Is(err, core.ErrUseAfterTeardown) {
		t.Errorf("expected ErrUseAfterTeardown, got %v", err)
	}
}

func TestVulkanContextUsesConfig(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Descriptors.SetsPerPool = 8
	vc := NewVulkanContext(newFakeDevice(), cfg)
	if vc.DescriptorAllocator.poolInfo.MaxSets != 8 {
		t.Errorf("expected 8 sets per pool, got %d", vc.DescriptorAllocator.poolInfo.MaxSets)
	}
}
