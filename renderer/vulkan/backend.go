// Package vulkan is the Vulkan rendering backend. It selects a device,
// owns the swapchain and drives the fence and semaphore protocol that keeps
// the CPU at most MaxFramesInFlight frames ahead of the GPU.
//
// All API calls go through gpu.Driver, so the package runs unchanged over
// the real binding in renderer/vkbind and over gputest.
package vulkan

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/andewx/dieselrt/logging"
	"github.com/andewx/dieselrt/renderer"
	"github.com/andewx/dieselrt/renderer/gpu"
)

// Options configure the backend.
type Options struct {
	Requirements DeviceRequirements
	Validation   bool
	Clear        gpu.ClearValues
	// FenceTimeout bounds fence waits and image acquisition, in
	// nanoseconds. Zero waits forever.
	FenceTimeout uint64
	EngineName   string
}

// DefaultOptions requires a discrete GPU and waits on fences forever.
func DefaultOptions() Options {
	return Options{
		Requirements: DefaultRequirements(),
		Clear:        DefaultClear,
		FenceTimeout: gpu.WaitForever,
		EngineName:   "dieselrt",
	}
}

// Backend implements renderer.Backend on Vulkan.
type Backend struct {
	drv  gpu.Driver
	opts Options

	mu sync.Mutex

	instance gpu.Instance
	debug    gpu.DebugMessenger
	surface  gpu.Surface

	device    *Device
	swapchain *Swapchain
	mainPass  *RenderPass

	framebuffers   []gpu.Framebuffer
	commandBuffers []*CommandBuffer

	// Indexed by frame slot.
	imageAvailable []gpu.Semaphore
	queueComplete  []gpu.Semaphore
	inFlight       []*Fence
	// Indexed by swapchain image. Entries are nil or alias inFlight.
	imagesInFlight []*Fence

	imageIndex   uint32
	currentFrame int
	frameNumber  uint64

	width, height  uint32
	sizeGeneration uint64
	lastGeneration uint64

	recreateNeeded bool
	rebuildSync    bool
	frameActive    bool
	initialized    bool
}

var _ renderer.Backend = (*Backend)(nil)

// New returns an uninitialized backend issuing every call through drv.
func New(drv gpu.Driver, opts Options) *Backend {
	if opts.FenceTimeout == 0 {
		opts.FenceTimeout = gpu.WaitForever
	}
	if opts.EngineName == "" {
		opts.EngineName = "dieselrt"
	}
	return &Backend{drv: drv, opts: opts}
}

// Initialize brings the backend up. On failure everything created so far
// is released and the error names the failing stage.
func (b *Backend) Initialize(appName string, width, height uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return errors.New("vulkan: backend already initialized")
	}
	if width == 0 || height == 0 {
		width, height = 800, 600
	}
	b.width, b.height = width, height

	if err := b.initialize(appName); err != nil {
		b.shutdown()
		return err
	}
	b.initialized = true
	logging.Logger().Info("Vulkan renderer initialized successfully")
	return nil
}

func (b *Backend) initialize(appName string) error {
	drv := b.drv
	var err error

	b.instance, err = createInstance(drv, appName, b.opts.EngineName, b.opts.Validation)
	if err != nil {
		return stageError(StageInstance, err)
	}

	if b.opts.Validation {
		logging.Logger().Debug("creating Vulkan debugger")
		b.debug, err = drv.CreateDebugMessenger(b.instance, debugCallback)
		if err != nil {
			return stageError(StageDebugMessenger, errors.Wrap(err, "create debug messenger"))
		}
	}

	b.surface, err = drv.CreateSurface(b.instance)
	if err != nil {
		return stageError(StageSurface, errors.Wrap(err, "create surface"))
	}
	logging.Logger().Debug("Vulkan surface created")

	b.device, err = SelectPhysicalDevice(drv, b.instance, b.surface, b.opts.Requirements)
	if err != nil {
		return stageError(StageDeviceSelection, err)
	}
	if err := b.device.CreateLogicalDevice(drv, b.opts.Requirements); err != nil {
		return stageError(StageDeviceCreation, err)
	}

	b.swapchain, err = CreateSwapchain(drv, b.device, b.surface, b.width, b.height)
	if err != nil {
		return stageError(StageSwapchainCreation, err)
	}

	b.mainPass, err = CreateRenderPass(drv, b.device, b.swapchain.ImageFormat.Format, b.renderArea(), b.opts.Clear)
	if err != nil {
		return stageError(StageRenderPass, err)
	}

	b.framebuffers, err = createFramebuffers(drv, b.device, b.swapchain, b.mainPass)
	if err != nil {
		return stageError(StageFramebuffers, err)
	}

	b.commandBuffers, err = allocateCommandBuffers(drv, b.device, len(b.swapchain.Images))
	if err != nil {
		return stageError(StageCommandBuffers, err)
	}

	if err := b.createSync(); err != nil {
		return stageError(StageSync, err)
	}
	b.imagesInFlight = make([]*Fence, len(b.swapchain.Images))
	b.lastGeneration = b.sizeGeneration
	return nil
}

func (b *Backend) renderArea() gpu.Rect {
	return gpu.Rect{Width: b.swapchain.Extent.Width, Height: b.swapchain.Extent.Height}
}

func (b *Backend) createSync() error {
	n := b.swapchain.MaxFramesInFlight
	b.imageAvailable = make([]gpu.Semaphore, 0, n)
	b.queueComplete = make([]gpu.Semaphore, 0, n)
	b.inFlight = make([]*Fence, 0, n)

	for range n {
		sem, err := b.drv.CreateSemaphore(b.device.Logical)
		if err != nil {
			return errors.Wrap(err, "create image available semaphore")
		}
		b.imageAvailable = append(b.imageAvailable, sem)

		sem, err = b.drv.CreateSemaphore(b.device.Logical)
		if err != nil {
			return errors.Wrap(err, "create queue complete semaphore")
		}
		b.queueComplete = append(b.queueComplete, sem)

		// Signaled so the first wait on every slot passes.
		fence, err := createFence(b.drv, b.device, true)
		if err != nil {
			return err
		}
		b.inFlight = append(b.inFlight, fence)
	}
	return nil
}

func (b *Backend) destroySync() {
	for _, sem := range b.imageAvailable {
		b.drv.DestroySemaphore(b.device.Logical, sem)
	}
	for _, sem := range b.queueComplete {
		b.drv.DestroySemaphore(b.device.Logical, sem)
	}
	for _, f := range b.inFlight {
		f.Destroy(b.drv, b.device)
	}
	b.imageAvailable, b.queueComplete, b.inFlight = nil, nil, nil
	clear(b.imagesInFlight)
}

// Shutdown waits for the device to go idle and destroys everything in
// reverse creation order.
func (b *Backend) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shutdown()
}

func (b *Backend) shutdown() {
	drv := b.drv
	log := logging.Logger()

	if b.device != nil && b.device.Logical != 0 {
		if err := drv.DeviceWaitIdle(b.device.Logical); err != nil {
			log.Warn("device wait idle failed during shutdown", "err", err)
		}

		log.Debug("destroying sync objects")
		b.destroySync()

		log.Debug("freeing command buffers")
		freeCommandBuffers(drv, b.device, b.commandBuffers)
		b.commandBuffers = nil

		log.Debug("destroying framebuffers")
		destroyFramebuffers(drv, b.device, b.framebuffers)
		b.framebuffers = nil

		if b.mainPass != nil {
			log.Debug("destroying render pass")
			b.mainPass.Destroy(drv, b.device)
			b.mainPass = nil
		}
		if b.swapchain != nil {
			log.Debug("destroying swapchain")
			b.swapchain.Destroy(drv, b.device)
		}
	}
	if b.device != nil {
		log.Debug("destroying Vulkan device")
		b.device.Destroy(drv)
		b.device = nil
	}
	if b.surface != 0 {
		log.Debug("destroying Vulkan surface")
		drv.DestroySurface(b.instance, b.surface)
		b.surface = 0
	}
	if b.debug != 0 {
		log.Debug("destroying Vulkan debugger")
		drv.DestroyDebugMessenger(b.instance, b.debug)
		b.debug = 0
	}
	if b.instance != 0 {
		log.Debug("destroying Vulkan instance")
		drv.DestroyInstance(b.instance)
		b.instance = 0
	}
	b.imagesInFlight = nil
	b.frameActive = false
	b.initialized = false
}

// OnResized stores the new size. The swapchain is rebuilt by the next
// BeginFrame.
func (b *Backend) OnResized(width, height uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.width, b.height = uint32(width), uint32(height)
	b.sizeGeneration++
	logging.Logger().Debug("Vulkan backend resized",
		"width", width, "height", height, "generation", b.sizeGeneration)
}

// FrameNumber counts frames that reached EndFrame.
func (b *Backend) FrameNumber() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frameNumber
}

func (b *Backend) MaxFramesInFlight() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.swapchain == nil {
		return 0
	}
	return b.swapchain.MaxFramesInFlight
}

func (b *Backend) ImageCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.swapchain == nil {
		return 0
	}
	return len(b.swapchain.Images)
}

// Swapchain exposes the current swapchain for inspection. It must not be
// retained across frames.
func (b *Backend) Swapchain() *Swapchain {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.swapchain
}

// Device exposes the selected device for inspection.
func (b *Backend) Device() *Device {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.device
}
