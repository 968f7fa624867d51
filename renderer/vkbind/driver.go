// Package vkbind implements gpu.Driver on top of github.com/vulkan-go/vulkan.
//
// The driver hands out small integer handles and keeps the real Vulkan
// objects in per-type tables. It is not safe for concurrent use; the
// backend serializes every call.
package vkbind

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/dieselrt/logging"
	"github.com/andewx/dieselrt/renderer/gpu"
)

// SurfaceProvider is the window side of the binding. desktop.Window
// satisfies it.
type SurfaceProvider interface {
	RequiredInstanceExtensions() []string
	CreateWindowSurface(instance interface{}, allocator unsafe.Pointer) (uintptr, error)
	InstanceProcAddr() unsafe.Pointer
}

// table maps driver handles to Vulkan objects. Handle zero is never used.
type table[T comparable] struct {
	next  uint64
	items map[uint64]T
}

func newTable[T comparable]() *table[T] {
	return &table[T]{items: make(map[uint64]T)}
}

func (t *table[T]) put(v T) uint64 {
	t.next++
	t.items[t.next] = v
	return t.next
}

// intern returns the existing handle for v, or registers it.
func (t *table[T]) intern(v T) uint64 {
	for h, item := range t.items {
		if item == v {
			return h
		}
	}
	return t.put(v)
}

func (t *table[T]) get(h uint64) T {
	return t.items[h]
}

func (t *table[T]) take(h uint64) (T, bool) {
	v, ok := t.items[h]
	delete(t.items, h)
	return v, ok
}

func (t *table[T]) len() int { return len(t.items) }

type deviceEntry struct {
	device vk.Device
	gpu    vk.PhysicalDevice
}

type Driver struct {
	sp SurfaceProvider

	instances      *table[vk.Instance]
	debug          *table[vk.DebugReportCallback]
	surfaces       *table[vk.Surface]
	physical       *table[vk.PhysicalDevice]
	devices        *table[deviceEntry]
	queues         *table[vk.Queue]
	swapchains     *table[vk.Swapchain]
	images         *table[vk.Image]
	views          *table[vk.ImageView]
	memory         *table[vk.DeviceMemory]
	passes         *table[vk.RenderPass]
	framebuffers   *table[vk.Framebuffer]
	pools          *table[vk.CommandPool]
	commandBuffers *table[vk.CommandBuffer]
	semaphores     *table[vk.Semaphore]
	fences         *table[vk.Fence]

	// Swapchain images belong to their swapchain and go with it.
	swapchainImages map[uint64][]uint64
}

var _ gpu.Driver = (*Driver)(nil)

// New loads the Vulkan entry points through the window's loader.
func New(sp SurfaceProvider) (*Driver, error) {
	proc := sp.InstanceProcAddr()
	if proc == nil {
		return nil, errors.New("vkbind: vkGetInstanceProcAddr not available")
	}
	vk.SetGetInstanceProcAddr(proc)
	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(err, "vkbind: load vulkan")
	}
	logging.Logger().Debug("vulkan entry points loaded")
	return newDriver(sp), nil
}

func newDriver(sp SurfaceProvider) *Driver {
	return &Driver{
		sp:              sp,
		instances:       newTable[vk.Instance](),
		debug:           newTable[vk.DebugReportCallback](),
		surfaces:        newTable[vk.Surface](),
		physical:        newTable[vk.PhysicalDevice](),
		devices:         newTable[deviceEntry](),
		queues:          newTable[vk.Queue](),
		swapchains:      newTable[vk.Swapchain](),
		images:          newTable[vk.Image](),
		views:           newTable[vk.ImageView](),
		memory:          newTable[vk.DeviceMemory](),
		passes:          newTable[vk.RenderPass](),
		framebuffers:    newTable[vk.Framebuffer](),
		pools:           newTable[vk.CommandPool](),
		commandBuffers:  newTable[vk.CommandBuffer](),
		semaphores:      newTable[vk.Semaphore](),
		fences:          newTable[vk.Fence](),
		swapchainImages: make(map[uint64][]uint64),
	}
}

func (d *Driver) device(h gpu.Device) vk.Device {
	return d.devices.get(uint64(h)).device
}
