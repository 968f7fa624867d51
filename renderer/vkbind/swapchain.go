package vkbind

import (
	"slices"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/dieselrt/renderer/gpu"
)

// compositeAlphaOf picks the first supported mode, opaque first. One of
// them is always supported.
func compositeAlphaOf(supported vk.CompositeAlphaFlags) vk.CompositeAlphaFlagBits {
	for _, bit := range []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	} {
		if supported&vk.CompositeAlphaFlags(bit) != 0 {
			return bit
		}
	}
	return vk.CompositeAlphaOpaqueBit
}

// preTransformOf prefers identity over whatever the surface reports.
func preTransformOf(supported vk.SurfaceTransformFlags, current uint32) vk.SurfaceTransformFlagBits {
	if supported&vk.SurfaceTransformFlags(vk.SurfaceTransformIdentityBit) != 0 {
		return vk.SurfaceTransformIdentityBit
	}
	return vk.SurfaceTransformFlagBits(current)
}

func (d *Driver) CreateSwapchain(device gpu.Device, info gpu.SwapchainInfo) (gpu.Swapchain, error) {
	entry := d.devices.get(uint64(device))
	surface := d.surfaces.get(uint64(info.Surface))

	caps, err := d.surfaceCapabilities(entry.gpu, surface)
	if err != nil {
		return 0, err
	}

	sharing := vk.SharingModeExclusive
	var families []uint32
	if len(info.QueueFamilies) > 1 {
		sharing = vk.SharingModeConcurrent
		families = info.QueueFamilies
	}

	var swapchain vk.Swapchain
	ret := vk.CreateSwapchain(entry.device, &vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		Surface:               surface,
		MinImageCount:         info.MinImageCount,
		ImageFormat:           vk.Format(info.Format.Format),
		ImageColorSpace:       vk.ColorSpace(info.Format.ColorSpace),
		ImageExtent:           vk.Extent2D{Width: info.Extent.Width, Height: info.Extent.Height},
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:          preTransformOf(caps.SupportedTransforms, info.Transform),
		CompositeAlpha:        compositeAlphaOf(caps.SupportedCompositeAlpha),
		ImageArrayLayers:      1,
		ImageSharingMode:      sharing,
		QueueFamilyIndexCount: uint32(len(families)),
		PQueueFamilyIndices:   families,
		PresentMode:           vk.PresentMode(info.PresentMode),
		OldSwapchain:          vk.NullSwapchain,
		Clipped:               vk.True,
	}, nil, &swapchain)
	if err := check(ret, "vkCreateSwapchainKHR"); err != nil {
		return 0, err
	}
	return gpu.Swapchain(d.swapchains.put(swapchain)), nil
}

func (d *Driver) DestroySwapchain(device gpu.Device, swapchain gpu.Swapchain) {
	sc, ok := d.swapchains.take(uint64(swapchain))
	if !ok {
		return
	}
	for _, h := range d.swapchainImages[uint64(swapchain)] {
		d.images.take(h)
	}
	delete(d.swapchainImages, uint64(swapchain))
	vk.DestroySwapchain(d.device(device), sc, nil)
}

func (d *Driver) SwapchainImages(device gpu.Device, swapchain gpu.Swapchain) ([]gpu.Image, error) {
	dev := d.device(device)
	sc := d.swapchains.get(uint64(swapchain))

	var count uint32
	if err := check(vk.GetSwapchainImages(dev, sc, &count, nil), "vkGetSwapchainImagesKHR"); err != nil {
		return nil, err
	}
	images := make([]vk.Image, count)
	if err := check(vk.GetSwapchainImages(dev, sc, &count, images), "vkGetSwapchainImagesKHR"); err != nil {
		return nil, err
	}

	owned := d.swapchainImages[uint64(swapchain)]
	out := make([]gpu.Image, 0, count)
	for _, img := range images[:count] {
		h := d.images.intern(img)
		if !slices.Contains(owned, h) {
			owned = append(owned, h)
		}
		out = append(out, gpu.Image(h))
	}
	d.swapchainImages[uint64(swapchain)] = owned
	return out, nil
}

// AcquireNextImage treats VK_SUBOPTIMAL_KHR as success; the image is
// still presentable and the present call reports it.
func (d *Driver) AcquireNextImage(device gpu.Device, swapchain gpu.Swapchain, timeout uint64, semaphore gpu.Semaphore) (uint32, error) {
	var index uint32
	ret := vk.AcquireNextImage(d.device(device), d.swapchains.get(uint64(swapchain)), timeout,
		d.semaphores.get(uint64(semaphore)), vk.NullFence, &index)
	if ret == vk.Suboptimal {
		return index, nil
	}
	if ret == vk.NotReady {
		return 0, errors.Wrap(gpu.ErrTimeout, "vkAcquireNextImageKHR")
	}
	if err := check(ret, "vkAcquireNextImageKHR"); err != nil {
		return 0, err
	}
	return index, nil
}

func (d *Driver) QueuePresent(queue gpu.Queue, swapchain gpu.Swapchain, image uint32, wait gpu.Semaphore) error {
	ret := vk.QueuePresent(d.queues.get(uint64(queue)), &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{d.semaphores.get(uint64(wait))},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{d.swapchains.get(uint64(swapchain))},
		PImageIndices:      []uint32{image},
	})
	return check(ret, "vkQueuePresentKHR")
}

func hasStencil(f gpu.Format) bool {
	return f == gpu.FormatD24UnormS8Uint || f == gpu.FormatD32SfloatS8Uint
}

func aspectFlags(aspect gpu.ImageAspect, format gpu.Format) vk.ImageAspectFlags {
	var flags vk.ImageAspectFlagBits
	if aspect&gpu.AspectColor != 0 {
		flags |= vk.ImageAspectColorBit
	}
	if aspect&gpu.AspectDepth != 0 {
		flags |= vk.ImageAspectDepthBit
		if hasStencil(format) {
			flags |= vk.ImageAspectStencilBit
		}
	}
	return vk.ImageAspectFlags(flags)
}

func (d *Driver) CreateImage(device gpu.Device, info gpu.ImageInfo) (gpu.Image, gpu.DeviceMemory, error) {
	entry := d.devices.get(uint64(device))

	usage := vk.ImageUsageColorAttachmentBit | vk.ImageUsageSampledBit
	if info.Aspect&gpu.AspectDepth != 0 {
		usage = vk.ImageUsageDepthStencilAttachmentBit
	}

	var image vk.Image
	ret := vk.CreateImage(entry.device, &vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        vk.Format(info.Format),
		Extent:        vk.Extent3D{Width: info.Extent.Width, Height: info.Extent.Height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &image)
	if err := check(ret, "vkCreateImage"); err != nil {
		return 0, 0, err
	}

	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(entry.device, image, &req)
	req.Deref()

	typeIndex, ok := vk.FindMemoryTypeIndex(entry.gpu, req.MemoryTypeBits,
		vk.MemoryPropertyFlagBits(vk.MemoryPropertyDeviceLocalBit))
	if !ok {
		vk.DestroyImage(entry.device, image, nil)
		return 0, 0, errors.New("vkbind: no device local memory type for image")
	}

	var memory vk.DeviceMemory
	ret = vk.AllocateMemory(entry.device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: typeIndex,
	}, nil, &memory)
	if err := check(ret, "vkAllocateMemory"); err != nil {
		vk.DestroyImage(entry.device, image, nil)
		return 0, 0, err
	}
	if err := check(vk.BindImageMemory(entry.device, image, memory, 0), "vkBindImageMemory"); err != nil {
		vk.FreeMemory(entry.device, memory, nil)
		vk.DestroyImage(entry.device, image, nil)
		return 0, 0, err
	}
	return gpu.Image(d.images.put(image)), gpu.DeviceMemory(d.memory.put(memory)), nil
}

func (d *Driver) DestroyImage(device gpu.Device, image gpu.Image, memory gpu.DeviceMemory) {
	dev := d.device(device)
	if img, ok := d.images.take(uint64(image)); ok {
		vk.DestroyImage(dev, img, nil)
	}
	if mem, ok := d.memory.take(uint64(memory)); ok {
		vk.FreeMemory(dev, mem, nil)
	}
}

func (d *Driver) CreateImageView(device gpu.Device, image gpu.Image, format gpu.Format, aspect gpu.ImageAspect) (gpu.ImageView, error) {
	var view vk.ImageView
	ret := vk.CreateImageView(d.device(device), &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    d.images.get(uint64(image)),
		ViewType: vk.ImageViewType2d,
		Format:   vk.Format(format),
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleR,
			G: vk.ComponentSwizzleG,
			B: vk.ComponentSwizzleB,
			A: vk.ComponentSwizzleA,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspectFlags(aspect, format),
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view)
	if err := check(ret, "vkCreateImageView"); err != nil {
		return 0, err
	}
	return gpu.ImageView(d.views.put(view)), nil
}

func (d *Driver) DestroyImageView(device gpu.Device, view gpu.ImageView) {
	if v, ok := d.views.take(uint64(view)); ok {
		vk.DestroyImageView(d.device(device), v, nil)
	}
}
