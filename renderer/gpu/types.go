// Package gpu is the opaque view of the graphics API the Vulkan backend is
// written against. Handles are plain integers owned by the Driver; zero is
// never a valid handle. Enum values match their Vulkan counterparts so a
// binding can convert them with a cast.
package gpu

import "fmt"

type (
	Instance       uint64
	DebugMessenger uint64
	Surface        uint64
	PhysicalDevice uint64
	Device         uint64
	Queue          uint64
	Swapchain      uint64
	Image          uint64
	ImageView      uint64
	DeviceMemory   uint64
	RenderPass     uint64
	Framebuffer    uint64
	CommandPool    uint64
	CommandBuffer  uint64
	Semaphore      uint64
	Fence          uint64
)

// Well known extension and layer names.
const (
	ExtSurface      = "VK_KHR_surface"
	ExtSwapchain    = "VK_KHR_swapchain"
	ExtDebugReport  = "VK_EXT_debug_report"
	LayerValidation = "VK_LAYER_KHRONOS_validation"
	WaitForever     = ^uint64(0)
	UndefinedExtent = ^uint32(0)
	QueueFamilyNone = -1
)

type QueueFlags uint32

const (
	QueueGraphics QueueFlags = 1 << iota
	QueueCompute
	QueueTransfer
)

func (f QueueFlags) Has(bits QueueFlags) bool { return f&bits == bits }

type QueueFamily struct {
	Flags QueueFlags
	Count uint32
}

type DeviceType uint32

const (
	DeviceTypeOther DeviceType = iota
	DeviceTypeIntegrated
	DeviceTypeDiscrete
	DeviceTypeVirtual
	DeviceTypeCPU
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeIntegrated:
		return "Integrated"
	case DeviceTypeDiscrete:
		return "Discrete"
	case DeviceTypeVirtual:
		return "Virtual"
	case DeviceTypeCPU:
		return "CPU"
	}
	return "Unknown"
}

// Version is a packed Vulkan version number.
type Version uint32

func MakeVersion(major, minor, patch uint32) Version {
	return Version(major<<22 | minor<<12 | patch)
}

func (v Version) Major() uint32 { return uint32(v) >> 22 }
func (v Version) Minor() uint32 { return uint32(v) >> 12 & 0x3FF }
func (v Version) Patch() uint32 { return uint32(v) & 0xFFF }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

type MemoryHeap struct {
	Size        uint64
	DeviceLocal bool
}

type PhysicalDeviceProperties struct {
	Name          string
	Type          DeviceType
	DriverVersion Version
	APIVersion    Version
	MemoryHeaps   []MemoryHeap
}

type Features struct {
	SamplerAnisotropy bool
}

type Format uint32

const (
	FormatUndefined       Format = 0
	FormatR8G8B8A8Unorm   Format = 37
	FormatR8G8B8A8Srgb    Format = 43
	FormatB8G8R8A8Unorm   Format = 44
	FormatB8G8R8A8Srgb    Format = 50
	FormatD32Sfloat       Format = 126
	FormatD24UnormS8Uint  Format = 129
	FormatD32SfloatS8Uint Format = 130
)

type ColorSpace uint32

const ColorSpaceSrgbNonlinear ColorSpace = 0

type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

type PresentMode uint32

const (
	PresentModeImmediate PresentMode = iota
	PresentModeMailbox
	PresentModeFifo
	PresentModeFifoRelaxed
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeImmediate:
		return "Immediate"
	case PresentModeMailbox:
		return "Mailbox"
	case PresentModeFifo:
		return "FIFO"
	case PresentModeFifoRelaxed:
		return "FIFORelaxed"
	}
	return fmt.Sprintf("PresentMode(%d)", uint32(m))
}

type Extent2D struct {
	Width, Height uint32
}

type Rect struct {
	X, Y          int32
	Width, Height uint32
}

// SurfaceCapabilities carries the limits a swapchain must respect.
// MaxImageCount 0 means no upper bound. A CurrentExtent width of
// UndefinedExtent lets the swapchain pick its size.
type SurfaceCapabilities struct {
	MinImageCount    uint32
	MaxImageCount    uint32
	CurrentExtent    Extent2D
	MinImageExtent   Extent2D
	MaxImageExtent   Extent2D
	CurrentTransform uint32
}

type SwapchainSupport struct {
	Capabilities SurfaceCapabilities
	Formats      []SurfaceFormat
	PresentModes []PresentMode
}

type ImageAspect uint32

const (
	AspectColor ImageAspect = 1 << iota
	AspectDepth
)
