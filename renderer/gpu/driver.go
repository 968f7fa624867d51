package gpu

import "github.com/pkg/errors"

// Results a driver reports through errors. Anything else is fatal.
var (
	ErrOutOfDate  = errors.New("gpu: swapchain out of date")
	ErrSuboptimal = errors.New("gpu: swapchain suboptimal")
	ErrTimeout    = errors.New("gpu: timeout")
)

// IsStale reports whether err means the swapchain must be recreated.
func IsStale(err error) bool {
	cause := errors.Cause(err)
	return cause == ErrOutOfDate || cause == ErrSuboptimal
}

type DebugSeverity uint32

const (
	DebugInfo DebugSeverity = iota
	DebugWarning
	DebugPerformance
	DebugError
)

// DebugCallback receives validation messages.
type DebugCallback func(severity DebugSeverity, layer, message string)

type InstanceInfo struct {
	AppName       string
	AppVersion    Version
	EngineName    string
	EngineVersion Version
	APIVersion    Version
	Extensions    []string
	Layers        []string
}

type QueueRequest struct {
	Family uint32
	Count  uint32
}

type DeviceInfo struct {
	Queues     []QueueRequest
	Extensions []string
	Features   Features
}

type SwapchainInfo struct {
	Surface       Surface
	MinImageCount uint32
	Format        SurfaceFormat
	Extent        Extent2D
	PresentMode   PresentMode
	Transform     uint32
	// QueueFamilies lists distinct families sharing the images. Fewer than
	// two means exclusive ownership.
	QueueFamilies []uint32
}

type ImageInfo struct {
	Extent Extent2D
	Format Format
	Aspect ImageAspect
}

type RenderPassInfo struct {
	ColorFormat Format
	DepthFormat Format
}

type ClearValues struct {
	Color   [4]float32
	Depth   float32
	Stencil uint32
}

type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}

type SubmitInfo struct {
	CommandBuffer CommandBuffer
	Wait          Semaphore
	Signal        Semaphore
}

// InstanceDriver creates the API instance and window surface.
type InstanceDriver interface {
	// RequiredInstanceExtensions are the extensions the host window needs.
	RequiredInstanceExtensions() []string
	AvailableLayers() ([]string, error)
	CreateInstance(info InstanceInfo) (Instance, error)
	DestroyInstance(instance Instance)
	CreateDebugMessenger(instance Instance, callback DebugCallback) (DebugMessenger, error)
	DestroyDebugMessenger(instance Instance, messenger DebugMessenger)
	CreateSurface(instance Instance) (Surface, error)
	DestroySurface(instance Instance, surface Surface)
}

// PhysicalDeviceDriver answers capability queries.
type PhysicalDeviceDriver interface {
	EnumeratePhysicalDevices(instance Instance) ([]PhysicalDevice, error)
	PhysicalDeviceProperties(pd PhysicalDevice) PhysicalDeviceProperties
	PhysicalDeviceFeatures(pd PhysicalDevice) Features
	QueueFamilies(pd PhysicalDevice) []QueueFamily
	SurfaceSupport(pd PhysicalDevice, family uint32, surface Surface) (bool, error)
	SwapchainSupport(pd PhysicalDevice, surface Surface) (SwapchainSupport, error)
	DeviceExtensions(pd PhysicalDevice) ([]string, error)
	// SupportsDepthFormat reports optimal tiling depth/stencil attachment support.
	SupportsDepthFormat(pd PhysicalDevice, format Format) bool
}

type DeviceDriver interface {
	CreateDevice(pd PhysicalDevice, info DeviceInfo) (Device, error)
	DestroyDevice(device Device)
	DeviceQueue(device Device, family, index uint32) Queue
	DeviceWaitIdle(device Device) error
}

type SwapchainDriver interface {
	CreateSwapchain(device Device, info SwapchainInfo) (Swapchain, error)
	DestroySwapchain(device Device, swapchain Swapchain)
	SwapchainImages(device Device, swapchain Swapchain) ([]Image, error)
	// AcquireNextImage signals semaphore when the image is ready. It
	// returns ErrOutOfDate or ErrTimeout for a stale swapchain; a
	// suboptimal swapchain still yields a usable image.
	AcquireNextImage(device Device, swapchain Swapchain, timeout uint64, semaphore Semaphore) (uint32, error)
	// QueuePresent returns ErrOutOfDate or ErrSuboptimal when the
	// swapchain no longer matches the surface.
	QueuePresent(queue Queue, swapchain Swapchain, image uint32, wait Semaphore) error

	// CreateImage creates a device local image bound to fresh memory.
	CreateImage(device Device, info ImageInfo) (Image, DeviceMemory, error)
	DestroyImage(device Device, image Image, memory DeviceMemory)
	CreateImageView(device Device, image Image, format Format, aspect ImageAspect) (ImageView, error)
	DestroyImageView(device Device, view ImageView)
}

type RenderPassDriver interface {
	CreateRenderPass(device Device, info RenderPassInfo) (RenderPass, error)
	DestroyRenderPass(device Device, pass RenderPass)
	CreateFramebuffer(device Device, pass RenderPass, attachments []ImageView, extent Extent2D) (Framebuffer, error)
	DestroyFramebuffer(device Device, framebuffer Framebuffer)
}

type CommandDriver interface {
	CreateCommandPool(device Device, family uint32) (CommandPool, error)
	DestroyCommandPool(device Device, pool CommandPool)
	AllocateCommandBuffers(device Device, pool CommandPool, count uint32) ([]CommandBuffer, error)
	FreeCommandBuffers(device Device, pool CommandPool, buffers []CommandBuffer)
	ResetCommandBuffer(cb CommandBuffer) error
	BeginCommandBuffer(cb CommandBuffer) error
	EndCommandBuffer(cb CommandBuffer) error
	CmdBeginRenderPass(cb CommandBuffer, pass RenderPass, framebuffer Framebuffer, area Rect, clear ClearValues)
	CmdEndRenderPass(cb CommandBuffer)
	CmdSetViewport(cb CommandBuffer, viewport Viewport)
	CmdSetScissor(cb CommandBuffer, scissor Rect)
	QueueSubmit(queue Queue, submit SubmitInfo, fence Fence) error
}

type SyncDriver interface {
	CreateSemaphore(device Device) (Semaphore, error)
	DestroySemaphore(device Device, semaphore Semaphore)
	CreateFence(device Device, signaled bool) (Fence, error)
	DestroyFence(device Device, fence Fence)
	// WaitForFence returns ErrTimeout when timeout nanoseconds pass first.
	WaitForFence(device Device, fence Fence, timeout uint64) error
	ResetFence(device Device, fence Fence) error
}

// Driver is everything the Vulkan backend asks of the graphics API.
type Driver interface {
	InstanceDriver
	PhysicalDeviceDriver
	DeviceDriver
	SwapchainDriver
	RenderPassDriver
	CommandDriver
	SyncDriver
}
