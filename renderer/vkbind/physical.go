package vkbind

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/dieselrt/renderer/gpu"
)

func (d *Driver) EnumeratePhysicalDevices(instance gpu.Instance) ([]gpu.PhysicalDevice, error) {
	inst := d.instances.get(uint64(instance))
	var count uint32
	if err := check(vk.EnumeratePhysicalDevices(inst, &count, nil), "vkEnumeratePhysicalDevices"); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	gpus := make([]vk.PhysicalDevice, count)
	if err := check(vk.EnumeratePhysicalDevices(inst, &count, gpus), "vkEnumeratePhysicalDevices"); err != nil {
		return nil, err
	}
	out := make([]gpu.PhysicalDevice, 0, count)
	for _, pd := range gpus[:count] {
		out = append(out, gpu.PhysicalDevice(d.physical.intern(pd)))
	}
	return out, nil
}

func (d *Driver) PhysicalDeviceProperties(pd gpu.PhysicalDevice) gpu.PhysicalDeviceProperties {
	p := d.physical.get(uint64(pd))

	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(p, &props)
	props.Deref()

	var mem vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(p, &mem)
	mem.Deref()

	heaps := make([]gpu.MemoryHeap, 0, mem.MemoryHeapCount)
	for i := uint32(0); i < mem.MemoryHeapCount; i++ {
		heap := mem.MemoryHeaps[i]
		heap.Deref()
		heaps = append(heaps, gpu.MemoryHeap{
			Size:        uint64(heap.Size),
			DeviceLocal: heap.Flags&vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit) != 0,
		})
	}

	return gpu.PhysicalDeviceProperties{
		Name:          vk.ToString(props.DeviceName[:]),
		Type:          gpu.DeviceType(props.DeviceType),
		DriverVersion: gpu.Version(props.DriverVersion),
		APIVersion:    gpu.Version(props.ApiVersion),
		MemoryHeaps:   heaps,
	}
}

func (d *Driver) PhysicalDeviceFeatures(pd gpu.PhysicalDevice) gpu.Features {
	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(d.physical.get(uint64(pd)), &features)
	features.Deref()
	return gpu.Features{SamplerAnisotropy: features.SamplerAnisotropy == vk.True}
}

func (d *Driver) QueueFamilies(pd gpu.PhysicalDevice) []gpu.QueueFamily {
	p := d.physical.get(uint64(pd))
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(p, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(p, &count, props)

	const known = gpu.QueueGraphics | gpu.QueueCompute | gpu.QueueTransfer
	families := make([]gpu.QueueFamily, count)
	for i := range families {
		props[i].Deref()
		families[i] = gpu.QueueFamily{
			Flags: gpu.QueueFlags(props[i].QueueFlags) & known,
			Count: props[i].QueueCount,
		}
	}
	return families
}

func (d *Driver) SurfaceSupport(pd gpu.PhysicalDevice, family uint32, surface gpu.Surface) (bool, error) {
	var supported vk.Bool32
	ret := vk.GetPhysicalDeviceSurfaceSupport(d.physical.get(uint64(pd)), family,
		d.surfaces.get(uint64(surface)), &supported)
	if err := check(ret, "vkGetPhysicalDeviceSurfaceSupportKHR"); err != nil {
		return false, err
	}
	return supported.B(), nil
}

func extentOf(e vk.Extent2D) gpu.Extent2D {
	e.Deref()
	return gpu.Extent2D{Width: e.Width, Height: e.Height}
}

func (d *Driver) surfaceCapabilities(p vk.PhysicalDevice, s vk.Surface) (vk.SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(p, s, &caps)
	if err := check(ret, "vkGetPhysicalDeviceSurfaceCapabilitiesKHR"); err != nil {
		return caps, err
	}
	caps.Deref()
	return caps, nil
}

func (d *Driver) SwapchainSupport(pd gpu.PhysicalDevice, surface gpu.Surface) (gpu.SwapchainSupport, error) {
	p := d.physical.get(uint64(pd))
	s := d.surfaces.get(uint64(surface))

	caps, err := d.surfaceCapabilities(p, s)
	if err != nil {
		return gpu.SwapchainSupport{}, err
	}
	support := gpu.SwapchainSupport{
		Capabilities: gpu.SurfaceCapabilities{
			MinImageCount:    caps.MinImageCount,
			MaxImageCount:    caps.MaxImageCount,
			CurrentExtent:    extentOf(caps.CurrentExtent),
			MinImageExtent:   extentOf(caps.MinImageExtent),
			MaxImageExtent:   extentOf(caps.MaxImageExtent),
			CurrentTransform: uint32(caps.CurrentTransform),
		},
	}

	var count uint32
	if err := check(vk.GetPhysicalDeviceSurfaceFormats(p, s, &count, nil), "vkGetPhysicalDeviceSurfaceFormatsKHR"); err != nil {
		return support, err
	}
	formats := make([]vk.SurfaceFormat, count)
	if err := check(vk.GetPhysicalDeviceSurfaceFormats(p, s, &count, formats), "vkGetPhysicalDeviceSurfaceFormatsKHR"); err != nil {
		return support, err
	}
	for _, f := range formats[:count] {
		f.Deref()
		support.Formats = append(support.Formats, gpu.SurfaceFormat{
			Format:     gpu.Format(f.Format),
			ColorSpace: gpu.ColorSpace(f.ColorSpace),
		})
	}

	count = 0
	if err := check(vk.GetPhysicalDeviceSurfacePresentModes(p, s, &count, nil), "vkGetPhysicalDeviceSurfacePresentModesKHR"); err != nil {
		return support, err
	}
	modes := make([]vk.PresentMode, count)
	if err := check(vk.GetPhysicalDeviceSurfacePresentModes(p, s, &count, modes), "vkGetPhysicalDeviceSurfacePresentModesKHR"); err != nil {
		return support, err
	}
	for _, m := range modes[:count] {
		support.PresentModes = append(support.PresentModes, gpu.PresentMode(m))
	}
	return support, nil
}

func (d *Driver) DeviceExtensions(pd gpu.PhysicalDevice) ([]string, error) {
	p := d.physical.get(uint64(pd))
	var count uint32
	if err := check(vk.EnumerateDeviceExtensionProperties(p, "", &count, nil), "vkEnumerateDeviceExtensionProperties"); err != nil {
		return nil, err
	}
	list := make([]vk.ExtensionProperties, count)
	if err := check(vk.EnumerateDeviceExtensionProperties(p, "", &count, list), "vkEnumerateDeviceExtensionProperties"); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, ext := range list[:count] {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

func (d *Driver) SupportsDepthFormat(pd gpu.PhysicalDevice, format gpu.Format) bool {
	var props vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(d.physical.get(uint64(pd)), vk.Format(format), &props)
	props.Deref()
	return props.OptimalTilingFeatures&vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit) != 0
}
