package vulkan

import (
	"fmt"
	"runtime"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/fusion/engine/core"
)

const validationLayerName = "VK_LAYER_KHRONOS_validation"

// HeadlessDevice is a Vulkan instance plus one logical device with a single
// graphics queue. No surface is created: it exists to own driver objects.
type HeadlessDevice struct {
	*VulkanDevice

	Instance            vk.Instance
	PhysicalDevice      vk.PhysicalDevice
	GraphicsQueue       vk.Queue
	GraphicsQueueFamily uint32
	DeviceName          string

	debugCallback vk.DebugReportCallback
}

/**
 * @brief Loads the Vulkan library and creates an instance and a logical device.
 * @param appName The application name reported to the driver.
 * @param debug Enables the validation layer and the debug report callback.
 * @return The headless device or an error.
 */
func NewHeadlessDevice(appName string, debug bool) (*HeadlessDevice, error) {
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		core.LogError("failed to load the vulkan library: %s", err)
		return nil, err
	}
	if err := vk.Init(); err != nil {
		core.LogError("failed to initialize vk: %s", err)
		return nil, err
	}

	hd := &HeadlessDevice{}
	if err := hd.createInstance(appName, debug); err != nil {
		return nil, err
	}
	if err := hd.selectPhysicalDevice(); err != nil {
		hd.destroyInstance()
		return nil, err
	}
	if err := hd.createLogicalDevice(); err != nil {
		hd.destroyInstance()
		return nil, err
	}
	return hd, nil
}

func (hd *HeadlessDevice) createInstance(appName string, debug bool) error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 1, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Fusion"),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	extensions := []string{}
	if runtime.GOOS == "darwin" {
		extensions = append(extensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}

	layers := []string{}
	if debug {
		extensions = append(extensions, vk.ExtDebugReportExtensionName)
		if !hasInstanceLayer(validationLayerName) {
			err := fmt.Errorf("required validation layer is missing: %s", validationLayerName)
			core.LogError(err.Error())
			return err
		}
		layers = append(layers, validationLayerName)
		core.LogInfo("Validation layers enabled.")
	}

	createInfo.EnabledExtensionCount = uint32(len(extensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(extensions)
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	var instance vk.Instance
	if err := resultError("vkCreateInstance", vk.CreateInstance(&createInfo, nil, &instance)); err != nil {
		core.LogError(err.Error())
		return err
	}
	if err := vk.InitInstance(instance); err != nil {
		core.LogError(err.Error())
		vk.DestroyInstance(instance, nil)
		return err
	}
	hd.Instance = instance
	core.LogInfo("Vulkan Instance created.")

	if debug {
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
			PfnCallback: debugReportCallback,
		}
		var callback vk.DebugReportCallback
		if err := resultError("vkCreateDebugReportCallback", vk.CreateDebugReportCallback(instance, &debugCreateInfo, nil, &callback)); err != nil {
			// validation still runs, only the forwarding to our logger is lost
			core.LogWarn(err.Error())
		} else {
			hd.debugCallback = callback
		}
	}
	return nil
}

func hasInstanceLayer(name string) bool {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return false
	}
	available := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, available); res != vk.Success {
		return false
	}
	for i := range available {
		available[i].Deref()
		if vk.ToString(available[i].LayerName[:]) == name {
			return true
		}
	}
	return false
}

// selectPhysicalDevice picks the first device with a graphics queue,
// preferring a discrete GPU.
func (hd *HeadlessDevice) selectPhysicalDevice() error {
	var count uint32
	if err := resultError("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(hd.Instance, &count, nil)); err != nil {
		core.LogError(err.Error())
		return err
	}
	if count == 0 {
		err := fmt.Errorf("no devices which support Vulkan were found")
		core.LogError(err.Error())
		return err
	}
	devices := make([]vk.PhysicalDevice, count)
	if err := resultError("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(hd.Instance, &count, devices)); err != nil {
		core.LogError(err.Error())
		return err
	}

	found := false
	for _, device := range devices {
		family, ok := graphicsQueueFamily(device)
		if !ok {
			continue
		}
		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(device, &properties)
		properties.Deref()

		discrete := properties.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu
		if found && !discrete {
			continue
		}
		hd.PhysicalDevice = device
		hd.GraphicsQueueFamily = family
		hd.DeviceName = vk.ToString(properties.DeviceName[:])
		found = true
		if discrete {
			break
		}
	}
	if !found {
		err := fmt.Errorf("no physical devices were found which meet the requirements")
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Selected device: '%s'", hd.DeviceName)
	return nil
}

func graphicsQueueFamily(device vk.PhysicalDevice) (uint32, bool) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, families)
	for i := range families {
		families[i].Deref()
		if vk.QueueFlagBits(families[i].QueueFlags)&vk.QueueGraphicsBit > 0 {
			return uint32(i), true
		}
	}
	return 0, false
}

func (hd *HeadlessDevice) createLogicalDevice() error {
	queueCreateInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: hd.GraphicsQueueFamily,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}}

	// samplers created with anisotropy need the feature enabled
	var supported vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(hd.PhysicalDevice, &supported)
	supported.Deref()
	features := vk.PhysicalDeviceFeatures{SamplerAnisotropy: supported.SamplerAnisotropy}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: uint32(len(queueCreateInfos)),
		PQueueCreateInfos:    queueCreateInfos,
		PEnabledFeatures:     []vk.PhysicalDeviceFeatures{features},
	}

	var logicalDevice vk.Device
	if err := resultError("vkCreateDevice", vk.CreateDevice(hd.PhysicalDevice, &deviceCreateInfo, nil, &logicalDevice)); err != nil {
		core.LogError(err.Error())
		return err
	}

	var queue vk.Queue
	vk.GetDeviceQueue(logicalDevice, hd.GraphicsQueueFamily, 0, &queue)
	hd.GraphicsQueue = queue
	hd.VulkanDevice = NewVulkanDevice(logicalDevice, nil, nil)

	core.LogInfo("Logical device created.")
	return nil
}

// Destroy waits for the device to go idle and releases the device and the
// instance. Every object created on the device must be gone by then.
func (hd *HeadlessDevice) Destroy() {
	if hd.VulkanDevice != nil {
		vk.DeviceWaitIdle(hd.LogicalDevice)
		vk.DestroyDevice(hd.LogicalDevice, nil)
		hd.VulkanDevice = nil
		core.LogDebug("Logical device destroyed.")
	}
	hd.destroyInstance()
}

func (hd *HeadlessDevice) destroyInstance() {
	if hd.Instance == nil {
		return
	}
	if hd.debugCallback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(hd.Instance, hd.debugCallback, nil)
		hd.debugCallback = vk.NullDebugReportCallback
	}
	vk.DestroyInstance(hd.Instance, nil)
	hd.Instance = nil
	core.LogDebug("Vulkan instance destroyed.")
}

func debugReportCallback(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("[%s] code %d: %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("[%s] code %d: %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogDebug("[%s] code %d: %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.False
}
