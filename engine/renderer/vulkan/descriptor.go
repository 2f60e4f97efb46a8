package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/fusion/engine/containers"
	"github.com/spaghettifunk/fusion/engine/core"
	"golang.org/x/exp/slices"
)

/**
 * @brief A single binding of a descriptor set layout.
 */
type DescriptorSetLayoutBinding struct {
	/** @brief The binding index inside the set. Bindings are identified by it. */
	Binding uint32
	/** @brief The type of resource bound. */
	DescriptorType vk.DescriptorType
	/** @brief The number of descriptors (array size) in the binding. */
	DescriptorCount uint32
	/** @brief The shader stages that can access the binding. */
	StageFlags vk.ShaderStageFlags
	/** @brief Optional immutable samplers, usually handed out by the SamplerCache. */
	ImmutableSamplers []vk.Sampler
}

/**
 * @brief The description of a descriptor set layout. Binding order carries
 * no meaning: two infos that only differ in the order of their bindings
 * describe the same layout.
 */
type DescriptorSetLayoutInfo struct {
	Flags    vk.DescriptorSetLayoutCreateFlags
	Bindings []DescriptorSetLayoutBinding
}

// DescriptorSetLayoutInfoFromVulkan copies a driver create info. The
// extension chain is not carried over.
func DescriptorSetLayoutInfoFromVulkan(info *vk.DescriptorSetLayoutCreateInfo) DescriptorSetLayoutInfo {
	if info.PNext != nil {
		core.LogWarn("descriptor set layout extension chain is ignored by the layout cache")
	}
	count := int(info.BindingCount)
	if count > len(info.PBindings) {
		count = len(info.PBindings)
	}
	out := DescriptorSetLayoutInfo{
		Flags:    info.Flags,
		Bindings: make([]DescriptorSetLayoutBinding, count),
	}
	for i := 0; i < count; i++ {
		b := info.PBindings[i]
		out.Bindings[i] = DescriptorSetLayoutBinding{
			Binding:           b.Binding,
			DescriptorType:    b.DescriptorType,
			DescriptorCount:   b.DescriptorCount,
			StageFlags:        b.StageFlags,
			ImmutableSamplers: b.PImmutableSamplers,
		}
	}
	return out
}

func (info *DescriptorSetLayoutInfo) toVulkan() vk.DescriptorSetLayoutCreateInfo {
	bindings := make([]vk.DescriptorSetLayoutBinding, len(info.Bindings))
	for i, b := range info.Bindings {
		bindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:            b.Binding,
			DescriptorType:     b.DescriptorType,
			DescriptorCount:    b.DescriptorCount,
			StageFlags:         b.StageFlags,
			PImmutableSamplers: b.ImmutableSamplers,
		}
	}
	return vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		Flags:        info.Flags,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
}

func bindingIndex(b DescriptorSetLayoutBinding) uint32 {
	return b.Binding
}

func normalizeDescriptorSetLayout(info DescriptorSetLayoutInfo) DescriptorSetLayoutInfo {
	info.Bindings = containers.NormalizeByKey(info.Bindings, bindingIndex)
	return info
}

func hashDescriptorSetLayout(info DescriptorSetLayoutInfo) uint64 {
	var h containers.Hasher
	h.Uint(uint64(info.Flags), uint64(len(info.Bindings)))
	for _, b := range info.Bindings {
		h.Uint(uint64(b.Binding), uint64(b.DescriptorType), uint64(b.DescriptorCount), uint64(b.StageFlags), uint64(len(b.ImmutableSamplers)))
		for _, s := range b.ImmutableSamplers {
			h.Pointer(unsafe.Pointer(s))
		}
	}
	return h.Sum()
}

func equalBinding(a, b DescriptorSetLayoutBinding) bool {
	if a.Binding != b.Binding ||
		a.DescriptorType != b.DescriptorType ||
		a.DescriptorCount != b.DescriptorCount ||
		a.StageFlags != b.StageFlags ||
		len(a.ImmutableSamplers) != len(b.ImmutableSamplers) {
		return false
	}
	for i := range a.ImmutableSamplers {
		if a.ImmutableSamplers[i] != b.ImmutableSamplers[i] {
			return false
		}
	}
	return true
}

func cloneDescriptorSetLayout(info DescriptorSetLayoutInfo) DescriptorSetLayoutInfo {
	bindings := make([]DescriptorSetLayoutBinding, len(info.Bindings))
	for i, b := range info.Bindings {
		b.ImmutableSamplers = slices.Clone(b.ImmutableSamplers)
		bindings[i] = b
	}
	info.Bindings = bindings
	return info
}

// Both infos must already be normalized.
func equalDescriptorSetLayout(a, b DescriptorSetLayoutInfo) bool {
	if a.Flags != b.Flags || len(a.Bindings) != len(b.Bindings) {
		return false
	}
	for i := range a.Bindings {
		if !equalBinding(a.Bindings[i], b.Bindings[i]) {
			return false
		}
	}
	return true
}

var descriptorSetLayoutKeys = containers.KeyStrategy[DescriptorSetLayoutInfo]{
	Normalize: normalizeDescriptorSetLayout,
	Hash:      hashDescriptorSetLayout,
	Equal:     equalDescriptorSetLayout,
	Clone:     cloneDescriptorSetLayout,
}
