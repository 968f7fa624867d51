package vulkan

import (
	"github.com/pkg/errors"

	"github.com/andewx/dieselrt/logging"
	"github.com/andewx/dieselrt/rcmath"
	"github.com/andewx/dieselrt/renderer/gpu"
)

// SwapchainState tracks where a swapchain is in its lifecycle.
type SwapchainState int

const (
	SwapchainUninitialized SwapchainState = iota
	SwapchainCreated
	SwapchainPresenting
	SwapchainOutOfDate
	SwapchainDestroyed
)

func (s SwapchainState) String() string {
	switch s {
	case SwapchainUninitialized:
		return "Uninitialized"
	case SwapchainCreated:
		return "Created"
	case SwapchainPresenting:
		return "Presenting"
	case SwapchainOutOfDate:
		return "OutOfDate"
	case SwapchainDestroyed:
		return "Destroyed"
	}
	return "Unknown"
}

// DepthAttachment is the depth image shared by every framebuffer.
type DepthAttachment struct {
	Image  gpu.Image
	Memory gpu.DeviceMemory
	View   gpu.ImageView
}

// Swapchain owns the presentable images, their views and the depth
// attachment.
type Swapchain struct {
	Handle      gpu.Swapchain
	ImageFormat gpu.SurfaceFormat
	PresentMode gpu.PresentMode
	Extent      gpu.Extent2D
	Images      []gpu.Image
	Views       []gpu.ImageView
	Depth       DepthAttachment

	MaxFramesInFlight int
	// Generation increments each time the swapchain is (re)created.
	Generation uint64
	State      SwapchainState
}

var preferredSurfaceFormat = gpu.SurfaceFormat{
	Format:     gpu.FormatB8G8R8A8Unorm,
	ColorSpace: gpu.ColorSpaceSrgbNonlinear,
}

func chooseSurfaceFormat(formats []gpu.SurfaceFormat) gpu.SurfaceFormat {
	for _, f := range formats {
		if f == preferredSurfaceFormat {
			return f
		}
	}
	return formats[0]
}

// choosePresentMode prefers mailbox and falls back to FIFO, which every
// implementation supports.
func choosePresentMode(modes []gpu.PresentMode) gpu.PresentMode {
	for _, m := range modes {
		if m == gpu.PresentModeMailbox {
			return m
		}
	}
	return gpu.PresentModeFifo
}

func chooseExtent(caps gpu.SurfaceCapabilities, width, height uint32) gpu.Extent2D {
	if caps.CurrentExtent.Width != gpu.UndefinedExtent {
		return caps.CurrentExtent
	}
	return gpu.Extent2D{
		Width:  rcmath.Clamp(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: rcmath.Clamp(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

func imageCountFor(caps gpu.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// CreateSwapchain builds a swapchain for surface sized as close to
// width x height as the surface allows. The support query is refreshed so
// a resize sees the new capabilities.
func CreateSwapchain(drv gpu.Driver, dev *Device, surface gpu.Surface, width, height uint32) (*Swapchain, error) {
	sc := &Swapchain{}
	if err := sc.create(drv, dev, surface, width, height); err != nil {
		sc.Destroy(drv, dev)
		return nil, err
	}
	return sc, nil
}

func (sc *Swapchain) create(drv gpu.Driver, dev *Device, surface gpu.Surface, width, height uint32) error {
	support, err := drv.SwapchainSupport(dev.Physical, surface)
	if err != nil {
		return errors.Wrap(err, "query swapchain support")
	}
	if len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		return errors.New("surface reports no formats or present modes")
	}
	dev.SwapchainSupport = support

	sc.ImageFormat = chooseSurfaceFormat(support.Formats)
	sc.PresentMode = choosePresentMode(support.PresentModes)
	sc.Extent = chooseExtent(support.Capabilities, width, height)

	info := gpu.SwapchainInfo{
		Surface:       surface,
		MinImageCount: imageCountFor(support.Capabilities),
		Format:        sc.ImageFormat,
		Extent:        sc.Extent,
		PresentMode:   sc.PresentMode,
		Transform:     support.Capabilities.CurrentTransform,
	}
	if dev.Families.Graphics != dev.Families.Present {
		info.QueueFamilies = []uint32{uint32(dev.Families.Graphics), uint32(dev.Families.Present)}
	}

	sc.Handle, err = drv.CreateSwapchain(dev.Logical, info)
	if err != nil {
		return errors.Wrap(err, "create swapchain")
	}

	sc.Images, err = drv.SwapchainImages(dev.Logical, sc.Handle)
	if err != nil {
		return errors.Wrap(err, "get swapchain images")
	}
	sc.MaxFramesInFlight = max(len(sc.Images)-1, 1)

	sc.Views = make([]gpu.ImageView, 0, len(sc.Images))
	for i, img := range sc.Images {
		view, err := drv.CreateImageView(dev.Logical, img, sc.ImageFormat.Format, gpu.AspectColor)
		if err != nil {
			return errors.Wrapf(err, "create view for swapchain image %d", i)
		}
		sc.Views = append(sc.Views, view)
	}

	sc.Depth.Image, sc.Depth.Memory, err = drv.CreateImage(dev.Logical, gpu.ImageInfo{
		Extent: sc.Extent,
		Format: dev.DepthFormat,
		Aspect: gpu.AspectDepth,
	})
	if err != nil {
		return errors.Wrap(err, "create depth image")
	}
	sc.Depth.View, err = drv.CreateImageView(dev.Logical, sc.Depth.Image, dev.DepthFormat, gpu.AspectDepth)
	if err != nil {
		return errors.Wrap(err, "create depth image view")
	}

	sc.Generation++
	sc.State = SwapchainCreated
	logging.Logger().Info("swapchain created",
		"images", len(sc.Images),
		"framesInFlight", sc.MaxFramesInFlight,
		"width", sc.Extent.Width,
		"height", sc.Extent.Height,
		"generation", sc.Generation)
	return nil
}

// Recreate destroys and rebuilds the swapchain at the new size, keeping
// the generation counter running.
func (sc *Swapchain) Recreate(drv gpu.Driver, dev *Device, surface gpu.Surface, width, height uint32) error {
	sc.release(drv, dev)
	if err := sc.create(drv, dev, surface, width, height); err != nil {
		sc.Destroy(drv, dev)
		return err
	}
	return nil
}

// Destroy releases the depth attachment, the image views and the
// swapchain, in that order.
func (sc *Swapchain) Destroy(drv gpu.Driver, dev *Device) {
	sc.release(drv, dev)
	sc.State = SwapchainDestroyed
}

func (sc *Swapchain) release(drv gpu.Driver, dev *Device) {
	if sc.Depth.View != 0 {
		drv.DestroyImageView(dev.Logical, sc.Depth.View)
	}
	if sc.Depth.Image != 0 {
		drv.DestroyImage(dev.Logical, sc.Depth.Image, sc.Depth.Memory)
	}
	sc.Depth = DepthAttachment{}

	for _, view := range sc.Views {
		drv.DestroyImageView(dev.Logical, view)
	}
	sc.Views = nil

	if sc.Handle != 0 {
		drv.DestroySwapchain(dev.Logical, sc.Handle)
	}
	sc.Handle = 0
	sc.Images = nil
}
