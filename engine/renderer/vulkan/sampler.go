package vulkan

import (
	"math"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/fusion/engine/containers"
	"github.com/spaghettifunk/fusion/engine/core"
)

/**
 * @brief The description of an image sampler. It is a flat record: two
 * infos are the same sampler when every field matches. Floats are compared
 * by their bit pattern. The extension chain is not part of the description.
 */
type SamplerInfo struct {
	Flags                   vk.SamplerCreateFlags
	MagFilter               vk.Filter
	MinFilter               vk.Filter
	MipmapMode              vk.SamplerMipmapMode
	AddressModeU            vk.SamplerAddressMode
	AddressModeV            vk.SamplerAddressMode
	AddressModeW            vk.SamplerAddressMode
	MipLodBias              float32
	AnisotropyEnable        bool
	MaxAnisotropy           float32
	CompareEnable           bool
	CompareOp               vk.CompareOp
	MinLod                  float32
	MaxLod                  float32
	BorderColor             vk.BorderColor
	UnnormalizedCoordinates bool
}

// ImageSamplerInfo describes the sampler used for regular textures: the same
// filter and address mode on every axis, linear mipmaps over mipLevels.
// A maxAnisotropy of 1 or less disables anisotropic filtering.
func ImageSamplerInfo(filter vk.Filter, addressMode vk.SamplerAddressMode, maxAnisotropy float32, mipLevels uint32) SamplerInfo {
	info := SamplerInfo{
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapMode:    vk.SamplerMipmapModeLinear,
		AddressModeU:  addressMode,
		AddressModeV:  addressMode,
		AddressModeW:  addressMode,
		MaxAnisotropy: 1.0,
		CompareOp:     vk.CompareOpAlways,
		MaxLod:        float32(mipLevels),
		BorderColor:   vk.BorderColorFloatOpaqueWhite,
	}
	if maxAnisotropy > 1.0 {
		info.AnisotropyEnable = true
		info.MaxAnisotropy = maxAnisotropy
	}
	return info
}

// SamplerInfoFromVulkan copies a driver create info, dropping the extension
// chain.
func SamplerInfoFromVulkan(info *vk.SamplerCreateInfo) SamplerInfo {
	if info.PNext != nil {
		core.LogWarn("sampler extension chain is ignored by the sampler cache")
	}
	return SamplerInfo{
		Flags:                   info.Flags,
		MagFilter:               info.MagFilter,
		MinFilter:               info.MinFilter,
		MipmapMode:              info.MipmapMode,
		AddressModeU:            info.AddressModeU,
		AddressModeV:            info.AddressModeV,
		AddressModeW:            info.AddressModeW,
		MipLodBias:              info.MipLodBias,
		AnisotropyEnable:        info.AnisotropyEnable == vk.True,
		MaxAnisotropy:           info.MaxAnisotropy,
		CompareEnable:           info.CompareEnable == vk.True,
		CompareOp:               info.CompareOp,
		MinLod:                  info.MinLod,
		MaxLod:                  info.MaxLod,
		BorderColor:             info.BorderColor,
		UnnormalizedCoordinates: info.UnnormalizedCoordinates == vk.True,
	}
}

func vulkanBool(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

func (info *SamplerInfo) toVulkan() vk.SamplerCreateInfo {
	return vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		Flags:                   info.Flags,
		MagFilter:               info.MagFilter,
		MinFilter:               info.MinFilter,
		MipmapMode:              info.MipmapMode,
		AddressModeU:            info.AddressModeU,
		AddressModeV:            info.AddressModeV,
		AddressModeW:            info.AddressModeW,
		MipLodBias:              info.MipLodBias,
		AnisotropyEnable:        vulkanBool(info.AnisotropyEnable),
		MaxAnisotropy:           info.MaxAnisotropy,
		CompareEnable:           vulkanBool(info.CompareEnable),
		CompareOp:               info.CompareOp,
		MinLod:                  info.MinLod,
		MaxLod:                  info.MaxLod,
		BorderColor:             info.BorderColor,
		UnnormalizedCoordinates: vulkanBool(info.UnnormalizedCoordinates),
	}
}

func hashSampler(info SamplerInfo) uint64 {
	var h containers.Hasher
	h.Uint(
		uint64(info.Flags),
		uint64(info.MagFilter),
		uint64(info.MinFilter),
		uint64(info.MipmapMode),
		uint64(info.AddressModeU),
		uint64(info.AddressModeV),
		uint64(info.AddressModeW),
	)
	h.Float32(info.MipLodBias).
		Bool(info.AnisotropyEnable).
		Float32(info.MaxAnisotropy).
		Bool(info.CompareEnable).
		Uint(uint64(info.CompareOp)).
		Float32(info.MinLod).
		Float32(info.MaxLod).
		Uint(uint64(info.BorderColor)).
		Bool(info.UnnormalizedCoordinates)
	return h.Sum()
}

func sameFloat(a, b float32) bool {
	return math.Float32bits(a) == math.Float32bits(b)
}

func equalSampler(a, b SamplerInfo) bool {
	return a.Flags == b.Flags &&
		a.MagFilter == b.MagFilter &&
		a.MinFilter == b.MinFilter &&
		a.MipmapMode == b.MipmapMode &&
		a.AddressModeU == b.AddressModeU &&
		a.AddressModeV == b.AddressModeV &&
		a.AddressModeW == b.AddressModeW &&
		sameFloat(a.MipLodBias, b.MipLodBias) &&
		a.AnisotropyEnable == b.AnisotropyEnable &&
		sameFloat(a.MaxAnisotropy, b.MaxAnisotropy) &&
		a.CompareEnable == b.CompareEnable &&
		a.CompareOp == b.CompareOp &&
		sameFloat(a.MinLod, b.MinLod) &&
		sameFloat(a.MaxLod, b.MaxLod) &&
		a.BorderColor == b.BorderColor &&
		a.UnnormalizedCoordinates == b.UnnormalizedCoordinates
}

// Samplers have no set-like fields, so there is no normalization step.
var samplerKeys = containers.KeyStrategy[SamplerInfo]{
	Hash:  hashSampler,
	Equal: equalSampler,
}
