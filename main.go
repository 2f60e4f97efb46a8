/*
Headless example that brings up a Vulkan device, populates the
device object caches and reports how much was deduplicated.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/fusion/engine/core"
	"github.com/spaghettifunk/fusion/engine/renderer/vulkan"
	"github.com/spaghettifunk/fusion/engine/systems"
)

func main() {
	configPath := flag.String("config", "fusion.toml", "path to the TOML configuration")
	debug := flag.Bool("debug", false, "enable the Vulkan validation layer")
	watch := flag.Bool("watch", false, "keep running and reload the log settings on config changes")
	flag.Parse()

	config, err := core.LoadConfig(*configPath)
	if err != nil {
		core.LogFatal("failed to load config: %s", err)
	}
	if err := config.Apply(); err != nil {
		core.LogFatal(err.Error())
	}

	device, err := vulkan.NewHeadlessDevice("fusion-headless", *debug)
	if err != nil {
		core.LogFatal("failed to create the device: %s", err)
	}
	context := vulkan.NewVulkanContext(device, config)

	jobs, err := systems.NewJobSystem(runtime.NumCPU(), 64)
	if err != nil {
		core.LogFatal(err.Error())
	}
	if err := context.Prewarm(jobs, defaultSamplers()); err != nil {
		core.LogError("failed to prewarm samplers: %s", err)
	}
	if err := jobs.Shutdown(); err != nil {
		core.LogError("failed to stop the job system: %s", err)
	}

	if err := warmCaches(context); err != nil {
		core.LogError("failed to populate caches: %s", err)
	}

	if *watch {
		waitForSignal(*configPath)
	}

	if err := context.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	device.Destroy()
}

// defaultSamplers covers every filter and address mode combination.
func defaultSamplers() vulkan.PrewarmRequest {
	request := vulkan.PrewarmRequest{}
	filters := []vk.Filter{vk.FilterNearest, vk.FilterLinear}
	modes := []vk.SamplerAddressMode{
		vk.SamplerAddressModeRepeat,
		vk.SamplerAddressModeMirroredRepeat,
		vk.SamplerAddressModeClampToEdge,
		vk.SamplerAddressModeClampToBorder,
	}
	for _, filter := range filters {
		for _, mode := range modes {
			request.Samplers = append(request.Samplers, vulkan.ImageSamplerInfo(filter, mode, 1, 1))
		}
	}
	return request
}

// warmCaches requests the objects a simple textured-mesh pass would need,
// twice, with the bindings listed in a different order the second time.
func warmCaches(context *vulkan.VulkanContext) error {
	sampler, err := context.SamplerCache.CreateSampler(vulkan.ImageSamplerInfo(vk.FilterLinear, vk.SamplerAddressModeRepeat, 1, 1))
	if err != nil {
		return err
	}

	global := vulkan.DescriptorSetLayoutBinding{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit),
	}
	diffuse := vulkan.DescriptorSetLayoutBinding{
		Binding:           1,
		DescriptorType:    vk.DescriptorTypeCombinedImageSampler,
		DescriptorCount:   1,
		StageFlags:        vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		ImmutableSamplers: []vk.Sampler{sampler},
	}
	orders := [][]vulkan.DescriptorSetLayoutBinding{{global, diffuse}, {diffuse, global}}

	for _, bindings := range orders {
		setLayout, err := context.DescriptorLayoutCache.CreateDescriptorLayout(vulkan.DescriptorSetLayoutInfo{Bindings: bindings})
		if err != nil {
			return err
		}
		if _, err := context.PipelineLayoutCache.CreatePipelineLayout(vulkan.PipelineLayoutInfo{
			SetLayouts: []vk.DescriptorSetLayout{setLayout},
			PushConstantRanges: []vulkan.PushConstantRange{{
				StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
				Offset:     0,
				Size:       128,
			}},
		}); err != nil {
			return err
		}
		if _, err := context.DescriptorAllocator.Allocate(setLayout); err != nil {
			return err
		}
	}

	core.LogInfo("descriptor set layouts: %s", context.DescriptorLayoutCache.Stats())
	core.LogInfo("pipeline layouts: %s", context.PipelineLayoutCache.Stats())
	core.LogInfo("samplers: %s", context.SamplerCache.Stats())
	return nil
}

func waitForSignal(configPath string) {
	watcher, err := core.NewConfigWatcher(configPath, func(config *core.Config) {
		if err := config.Apply(); err != nil {
			core.LogError(err.Error())
		}
	})
	if err != nil {
		core.LogError("failed to watch '%s': %s", configPath, err)
		return
	}
	defer watcher.Close()

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	core.LogInfo("Watching '%s', press Ctrl+C to exit.", configPath)
	<-sigCh
}
