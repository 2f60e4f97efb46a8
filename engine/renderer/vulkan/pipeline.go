package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/fusion/engine/containers"
	"github.com/spaghettifunk/fusion/engine/core"
	"golang.org/x/exp/slices"
)

/**
 * @brief A push constant range of a pipeline layout.
 */
type PushConstantRange struct {
	/** @brief The shader stages that read the range. */
	StageFlags vk.ShaderStageFlags
	/** @brief The Offset in bytes. Ranges are identified by it. */
	Offset uint32
	/** @brief The size in bytes. */
	Size uint32
}

/**
 * @brief The description of a pipeline layout.
 *
 * SetLayouts is positional: index i is descriptor set i in the shaders, so
 * its order is part of the layout. PushConstantRanges is a set and is
 * compared regardless of declaration order.
 */
type PipelineLayoutInfo struct {
	Flags              vk.PipelineLayoutCreateFlags
	SetLayouts         []vk.DescriptorSetLayout
	PushConstantRanges []PushConstantRange
}

// PipelineLayoutInfoFromVulkan copies a driver create info. The extension
// chain is not carried over.
func PipelineLayoutInfoFromVulkan(info *vk.PipelineLayoutCreateInfo) PipelineLayoutInfo {
	if info.PNext != nil {
		core.LogWarn("pipeline layout extension chain is ignored by the layout cache")
	}
	setCount := min(int(info.SetLayoutCount), len(info.PSetLayouts))
	rangeCount := min(int(info.PushConstantRangeCount), len(info.PPushConstantRanges))

	out := PipelineLayoutInfo{
		Flags:              info.Flags,
		SetLayouts:         append([]vk.DescriptorSetLayout(nil), info.PSetLayouts[:setCount]...),
		PushConstantRanges: make([]PushConstantRange, rangeCount),
	}
	for i := 0; i < rangeCount; i++ {
		r := info.PPushConstantRanges[i]
		out.PushConstantRanges[i] = PushConstantRange{
			StageFlags: r.StageFlags,
			Offset:     r.Offset,
			Size:       r.Size,
		}
	}
	return out
}

func (info *PipelineLayoutInfo) Validate() error {
	if len(info.PushConstantRanges) > VULKAN_MAX_PUSH_CONSTANT_RANGES {
		return fmt.Errorf("cannot have more than %d push constant ranges. Passed count: %d", VULKAN_MAX_PUSH_CONSTANT_RANGES, len(info.PushConstantRanges))
	}
	for i, l := range info.SetLayouts {
		if l == nil {
			return fmt.Errorf("descriptor set layout at index %d is null", i)
		}
	}
	return nil
}

func (info *PipelineLayoutInfo) toVulkan() vk.PipelineLayoutCreateInfo {
	createInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		Flags:          info.Flags,
		SetLayoutCount: uint32(len(info.SetLayouts)),
		PSetLayouts:    info.SetLayouts,
	}
	if len(info.PushConstantRanges) > 0 {
		ranges := make([]vk.PushConstantRange, len(info.PushConstantRanges))
		for i, r := range info.PushConstantRanges {
			ranges[i] = vk.PushConstantRange{
				StageFlags: r.StageFlags,
				Offset:     r.Offset,
				Size:       r.Size,
			}
		}
		createInfo.PushConstantRangeCount = uint32(len(ranges))
		createInfo.PPushConstantRanges = ranges
	}
	return createInfo
}

func pushConstantOffset(r PushConstantRange) uint32 {
	return r.Offset
}

// Only the push constant ranges are reordered.
func normalizePipelineLayout(info PipelineLayoutInfo) PipelineLayoutInfo {
	info.PushConstantRanges = containers.NormalizeByKey(info.PushConstantRanges, pushConstantOffset)
	return info
}

func hashPipelineLayout(info PipelineLayoutInfo) uint64 {
	var h containers.Hasher
	h.Uint(uint64(info.Flags), uint64(len(info.SetLayouts)), uint64(len(info.PushConstantRanges)))
	for _, l := range info.SetLayouts {
		// layouts come from the DescriptorLayoutCache, so the handle is the identity
		h.Pointer(unsafe.Pointer(l))
	}
	for _, r := range info.PushConstantRanges {
		h.Uint(uint64(r.StageFlags), uint64(r.Offset), uint64(r.Size))
	}
	return h.Sum()
}

func clonePipelineLayout(info PipelineLayoutInfo) PipelineLayoutInfo {
	info.SetLayouts = slices.Clone(info.SetLayouts)
	info.PushConstantRanges = slices.Clone(info.PushConstantRanges)
	return info
}

func equalPipelineLayout(a, b PipelineLayoutInfo) bool {
	if a.Flags != b.Flags ||
		len(a.SetLayouts) != len(b.SetLayouts) ||
		len(a.PushConstantRanges) != len(b.PushConstantRanges) {
		return false
	}
	for i := range a.SetLayouts {
		if a.SetLayouts[i] != b.SetLayouts[i] {
			return false
		}
	}
	for i := range a.PushConstantRanges {
		if a.PushConstantRanges[i] != b.PushConstantRanges[i] {
			return false
		}
	}
	return true
}

var pipelineLayoutKeys = containers.KeyStrategy[PipelineLayoutInfo]{
	Normalize: normalizePipelineLayout,
	Hash:      hashPipelineLayout,
	Equal:     equalPipelineLayout,
	Clone:     clonePipelineLayout,
}
