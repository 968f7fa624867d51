// Package gputest provides a scripted gpu.Driver that tracks every object it
// hands out. It records protocol violations instead of crashing so tests can
// assert on destroy ordering and fence/semaphore usage.
package gputest

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/andewx/dieselrt/renderer/gpu"
)

// FamilySpec describes one queue family of a fake device.
type FamilySpec struct {
	Flags   gpu.QueueFlags
	Count   uint32
	Present bool
}

// DeviceSpec describes one fake physical device.
type DeviceSpec struct {
	Name          string
	Type          gpu.DeviceType
	Families      []FamilySpec
	Extensions    []string
	Anisotropy    bool
	Support       gpu.SwapchainSupport
	DepthFormats  []gpu.Format
	MemoryHeaps   []gpu.MemoryHeap
	DriverVersion gpu.Version
}

// GoodDevice is a discrete GPU with a single graphics/present/transfer
// family, which passes every default requirement.
func GoodDevice(name string) DeviceSpec {
	return DeviceSpec{
		Name: name,
		Type: gpu.DeviceTypeDiscrete,
		Families: []FamilySpec{
			{Flags: gpu.QueueGraphics | gpu.QueueCompute | gpu.QueueTransfer, Count: 16, Present: true},
		},
		Extensions: []string{gpu.ExtSwapchain},
		Anisotropy: true,
		Support: gpu.SwapchainSupport{
			Capabilities: gpu.SurfaceCapabilities{
				MinImageCount:  2,
				MaxImageCount:  0,
				CurrentExtent:  gpu.Extent2D{Width: gpu.UndefinedExtent, Height: gpu.UndefinedExtent},
				MinImageExtent: gpu.Extent2D{Width: 1, Height: 1},
				MaxImageExtent: gpu.Extent2D{Width: 4096, Height: 4096},
			},
			Formats:      []gpu.SurfaceFormat{{Format: gpu.FormatB8G8R8A8Unorm, ColorSpace: gpu.ColorSpaceSrgbNonlinear}},
			PresentModes: []gpu.PresentMode{gpu.PresentModeFifo, gpu.PresentModeMailbox},
		},
		DepthFormats:  []gpu.Format{gpu.FormatD32Sfloat},
		MemoryHeaps:   []gpu.MemoryHeap{{Size: 8 << 30, DeviceLocal: true}, {Size: 16 << 30}},
		DriverVersion: gpu.MakeVersion(1, 2, 3),
	}
}

type resource struct {
	kind string
	deps []uint64
}

// Submission is one recorded QueueSubmit.
type Submission struct {
	CommandBuffer gpu.CommandBuffer
	Image         uint32
	Fence         gpu.Fence
	Wait          gpu.Semaphore
	Signal        gpu.Semaphore
}

// Driver implements gpu.Driver in memory.
type Driver struct {
	Devices          []DeviceSpec
	Layers           []string
	WindowExtensions []string

	// AcquireErrors is consumed front to back, one entry per
	// AcquireNextImage call; nil entries and an empty queue succeed.
	AcquireErrors []error
	// PresentErrors works like AcquireErrors for QueuePresent.
	PresentErrors []error
	// AcquireOrder, when set, is cycled through for image indices instead
	// of plain round robin.
	AcquireOrder []uint32
	// FailOn makes the named method fail once with the given error.
	FailOn map[string]error

	// Calls logs every mutating call by method name.
	Calls []string

	Instances  []gpu.InstanceInfo
	DeviceInfo []gpu.DeviceInfo
	Swapchains []gpu.SwapchainInfo
	Submits    []Submission
	Presents   []uint32
	Debug      gpu.DebugCallback

	next       uint64
	live       map[uint64]resource
	violations []string

	busy          bool
	acquireCount  int
	swapchainImgs map[gpu.Swapchain][]gpu.Image
	imageIndex    map[gpu.Image]uint32
	viewImage     map[gpu.ImageView]gpu.Image
	fbViews       map[gpu.Framebuffer][]gpu.ImageView
	cbImage       map[gpu.CommandBuffer]uint32
	cbRecording   map[gpu.CommandBuffer]bool
	fenceSignaled map[gpu.Fence]bool
	semSignaled   map[gpu.Semaphore]bool
	imagePending  map[uint32]gpu.Fence
	deviceSpec    map[gpu.Device]int
	pendingFences map[gpu.Fence]bool
}

var _ gpu.Driver = (*Driver)(nil)

// New returns a fake driver exposing devices in enumeration order.
func New(devices ...DeviceSpec) *Driver {
	return &Driver{
		Devices:       devices,
		Layers:        []string{gpu.LayerValidation},
		live:          make(map[uint64]resource),
		swapchainImgs: make(map[gpu.Swapchain][]gpu.Image),
		imageIndex:    make(map[gpu.Image]uint32),
		viewImage:     make(map[gpu.ImageView]gpu.Image),
		fbViews:       make(map[gpu.Framebuffer][]gpu.ImageView),
		cbImage:       make(map[gpu.CommandBuffer]uint32),
		cbRecording:   make(map[gpu.CommandBuffer]bool),
		fenceSignaled: make(map[gpu.Fence]bool),
		semSignaled:   make(map[gpu.Semaphore]bool),
		imagePending:  make(map[uint32]gpu.Fence),
		deviceSpec:    make(map[gpu.Device]int),
		pendingFences: make(map[gpu.Fence]bool),
	}
}

// Violations lists every protocol error observed so far.
func (d *Driver) Violations() []string { return d.violations }

// Live counts objects that have not been destroyed, by kind.
func (d *Driver) Live() map[string]int {
	out := make(map[string]int)
	for _, r := range d.live {
		out[r.kind]++
	}
	return out
}

// CallIndex returns the index of the first call named name at or after
// from, or -1.
func (d *Driver) CallIndex(name string, from int) int {
	for i := max(from, 0); i < len(d.Calls); i++ {
		if d.Calls[i] == name {
			return i
		}
	}
	return -1
}

// LastCallIndex returns the index of the last call named name, or -1.
func (d *Driver) LastCallIndex(name string) int {
	for i := len(d.Calls) - 1; i >= 0; i-- {
		if d.Calls[i] == name {
			return i
		}
	}
	return -1
}

// CountCalls counts calls named name.
func (d *Driver) CountCalls(name string) int {
	n := 0
	for _, c := range d.Calls {
		if c == name {
			n++
		}
	}
	return n
}

// SetSurfaceExtent changes the current extent reported for every device.
func (d *Driver) SetSurfaceExtent(width, height uint32) {
	for i := range d.Devices {
		d.Devices[i].Support.Capabilities.CurrentExtent = gpu.Extent2D{Width: width, Height: height}
	}
}

func (d *Driver) violate(format string, args ...any) {
	d.violations = append(d.violations, fmt.Sprintf(format, args...))
}

func (d *Driver) call(name string) error {
	d.Calls = append(d.Calls, name)
	if err, ok := d.FailOn[name]; ok {
		delete(d.FailOn, name)
		return err
	}
	return nil
}

func (d *Driver) create(kind string, deps ...uint64) uint64 {
	d.next++
	d.live[d.next] = resource{kind: kind, deps: deps}
	return d.next
}

func (d *Driver) destroy(kind string, h uint64) {
	r, ok := d.live[h]
	if !ok {
		d.violate("destroy of unknown or already destroyed %s %d", kind, h)
		return
	}
	if r.kind != kind {
		d.violate("destroy %s called on a %s", kind, r.kind)
	}
	var users []string
	for other, o := range d.live {
		if slices.Contains(o.deps, h) {
			users = append(users, fmt.Sprintf("%s %d", o.kind, other))
		}
	}
	if len(users) > 0 {
		slices.Sort(users)
		d.violate("destroy %s %d while referenced by %s", kind, h, strings.Join(users, ", "))
	}
	delete(d.live, h)
}

func (d *Driver) checkIdle(kind string) {
	if d.busy {
		d.violate("destroy %s while the device may still be executing work", kind)
	}
}

// Instance

func (d *Driver) RequiredInstanceExtensions() []string {
	return slices.Clone(d.WindowExtensions)
}

func (d *Driver) AvailableLayers() ([]string, error) {
	if err := d.call("AvailableLayers"); err != nil {
		return nil, err
	}
	return slices.Clone(d.Layers), nil
}

func (d *Driver) CreateInstance(info gpu.InstanceInfo) (gpu.Instance, error) {
	if err := d.call("CreateInstance"); err != nil {
		return 0, err
	}
	d.Instances = append(d.Instances, info)
	return gpu.Instance(d.create("Instance")), nil
}

func (d *Driver) DestroyInstance(instance gpu.Instance) {
	d.call("DestroyInstance")
	d.destroy("Instance", uint64(instance))
	if len(d.live) != 0 {
		d.violate("instance destroyed with %d objects alive: %v", len(d.live), d.Live())
	}
}

func (d *Driver) CreateDebugMessenger(instance gpu.Instance, callback gpu.DebugCallback) (gpu.DebugMessenger, error) {
	if err := d.call("CreateDebugMessenger"); err != nil {
		return 0, err
	}
	d.Debug = callback
	return gpu.DebugMessenger(d.create("DebugMessenger", uint64(instance))), nil
}

func (d *Driver) DestroyDebugMessenger(instance gpu.Instance, messenger gpu.DebugMessenger) {
	d.call("DestroyDebugMessenger")
	d.destroy("DebugMessenger", uint64(messenger))
}

func (d *Driver) CreateSurface(instance gpu.Instance) (gpu.Surface, error) {
	if err := d.call("CreateSurface"); err != nil {
		return 0, err
	}
	return gpu.Surface(d.create("Surface", uint64(instance))), nil
}

func (d *Driver) DestroySurface(instance gpu.Instance, surface gpu.Surface) {
	d.call("DestroySurface")
	d.destroy("Surface", uint64(surface))
}

// Physical devices. Handles are the device index plus one and are not
// tracked as live objects.

func (d *Driver) spec(pd gpu.PhysicalDevice) *DeviceSpec {
	i := int(pd) - 1
	if i < 0 || i >= len(d.Devices) {
		d.violate("unknown physical device %d", pd)
		return &DeviceSpec{}
	}
	return &d.Devices[i]
}

func (d *Driver) EnumeratePhysicalDevices(instance gpu.Instance) ([]gpu.PhysicalDevice, error) {
	if err := d.call("EnumeratePhysicalDevices"); err != nil {
		return nil, err
	}
	out := make([]gpu.PhysicalDevice, len(d.Devices))
	for i := range d.Devices {
		out[i] = gpu.PhysicalDevice(i + 1)
	}
	return out, nil
}

func (d *Driver) PhysicalDeviceProperties(pd gpu.PhysicalDevice) gpu.PhysicalDeviceProperties {
	s := d.spec(pd)
	return gpu.PhysicalDeviceProperties{
		Name:          s.Name,
		Type:          s.Type,
		DriverVersion: s.DriverVersion,
		APIVersion:    gpu.MakeVersion(1, 3, 0),
		MemoryHeaps:   slices.Clone(s.MemoryHeaps),
	}
}

func (d *Driver) PhysicalDeviceFeatures(pd gpu.PhysicalDevice) gpu.Features {
	return gpu.Features{SamplerAnisotropy: d.spec(pd).Anisotropy}
}

func (d *Driver) QueueFamilies(pd gpu.PhysicalDevice) []gpu.QueueFamily {
	s := d.spec(pd)
	out := make([]gpu.QueueFamily, len(s.Families))
	for i, f := range s.Families {
		out[i] = gpu.QueueFamily{Flags: f.Flags, Count: f.Count}
	}
	return out
}

func (d *Driver) SurfaceSupport(pd gpu.PhysicalDevice, family uint32, surface gpu.Surface) (bool, error) {
	s := d.spec(pd)
	if int(family) >= len(s.Families) {
		return false, errors.Errorf("queue family %d out of range", family)
	}
	return s.Families[family].Present, nil
}

func (d *Driver) SwapchainSupport(pd gpu.PhysicalDevice, surface gpu.Surface) (gpu.SwapchainSupport, error) {
	s := d.spec(pd)
	return gpu.SwapchainSupport{
		Capabilities: s.Support.Capabilities,
		Formats:      slices.Clone(s.Support.Formats),
		PresentModes: slices.Clone(s.Support.PresentModes),
	}, nil
}

func (d *Driver) DeviceExtensions(pd gpu.PhysicalDevice) ([]string, error) {
	return slices.Clone(d.spec(pd).Extensions), nil
}

func (d *Driver) SupportsDepthFormat(pd gpu.PhysicalDevice, format gpu.Format) bool {
	return slices.Contains(d.spec(pd).DepthFormats, format)
}

// Device

func (d *Driver) CreateDevice(pd gpu.PhysicalDevice, info gpu.DeviceInfo) (gpu.Device, error) {
	if err := d.call("CreateDevice"); err != nil {
		return 0, err
	}
	s := d.spec(pd)
	seen := make(map[uint32]bool)
	for _, q := range info.Queues {
		if seen[q.Family] {
			d.violate("duplicate queue create request for family %d", q.Family)
		}
		seen[q.Family] = true
		if int(q.Family) >= len(s.Families) || q.Count > s.Families[q.Family].Count {
			d.violate("queue request %+v exceeds family capacity", q)
		}
	}
	d.DeviceInfo = append(d.DeviceInfo, info)
	dev := gpu.Device(d.create("Device"))
	d.deviceSpec[dev] = int(pd) - 1
	return dev, nil
}

func (d *Driver) DestroyDevice(device gpu.Device) {
	d.call("DestroyDevice")
	d.checkIdle("Device")
	d.destroy("Device", uint64(device))
	delete(d.deviceSpec, device)
}

// DeviceQueue encodes the family and index into the handle.
func (d *Driver) DeviceQueue(device gpu.Device, family, index uint32) gpu.Queue {
	return gpu.Queue(uint64(device)<<32 | uint64(family)<<8 | uint64(index) + 1)
}

func (d *Driver) DeviceWaitIdle(device gpu.Device) error {
	if err := d.call("DeviceWaitIdle"); err != nil {
		return err
	}
	d.busy = false
	for f := range d.pendingFences {
		d.fenceSignaled[f] = true
	}
	clear(d.pendingFences)
	clear(d.imagePending)
	return nil
}

// Swapchain

func (d *Driver) CreateSwapchain(device gpu.Device, info gpu.SwapchainInfo) (gpu.Swapchain, error) {
	if err := d.call("CreateSwapchain"); err != nil {
		return 0, err
	}
	d.Swapchains = append(d.Swapchains, info)
	sc := gpu.Swapchain(d.create("Swapchain", uint64(device), uint64(info.Surface)))
	images := make([]gpu.Image, info.MinImageCount)
	for i := range images {
		img := gpu.Image(d.create("SwapchainImage", uint64(sc)))
		images[i] = img
		d.imageIndex[img] = uint32(i)
	}
	d.swapchainImgs[sc] = images
	clear(d.imagePending)
	return sc, nil
}

func (d *Driver) DestroySwapchain(device gpu.Device, swapchain gpu.Swapchain) {
	d.call("DestroySwapchain")
	d.checkIdle("Swapchain")
	// Swapchain images go with their swapchain.
	for _, img := range d.swapchainImgs[swapchain] {
		d.destroy("SwapchainImage", uint64(img))
		delete(d.imageIndex, img)
	}
	delete(d.swapchainImgs, swapchain)
	d.destroy("Swapchain", uint64(swapchain))
	d.acquireCount = 0
}

func (d *Driver) SwapchainImages(device gpu.Device, swapchain gpu.Swapchain) ([]gpu.Image, error) {
	images, ok := d.swapchainImgs[swapchain]
	if !ok {
		return nil, errors.Errorf("unknown swapchain %d", swapchain)
	}
	return slices.Clone(images), nil
}

func (d *Driver) popError(queue *[]error) error {
	if len(*queue) == 0 {
		return nil
	}
	err := (*queue)[0]
	*queue = (*queue)[1:]
	return err
}

func (d *Driver) AcquireNextImage(device gpu.Device, swapchain gpu.Swapchain, timeout uint64, semaphore gpu.Semaphore) (uint32, error) {
	if err := d.call("AcquireNextImage"); err != nil {
		return 0, err
	}
	if err := d.popError(&d.AcquireErrors); err != nil {
		return 0, err
	}
	images := d.swapchainImgs[swapchain]
	if len(images) == 0 {
		return 0, errors.Errorf("acquire from unknown swapchain %d", swapchain)
	}
	if d.semSignaled[semaphore] {
		d.violate("acquire signals semaphore %d which is already signaled", semaphore)
	}
	d.semSignaled[semaphore] = true

	var idx uint32
	if len(d.AcquireOrder) > 0 {
		idx = d.AcquireOrder[d.acquireCount%len(d.AcquireOrder)] % uint32(len(images))
	} else {
		idx = uint32(d.acquireCount % len(images))
	}
	d.acquireCount++
	return idx, nil
}

func (d *Driver) QueuePresent(queue gpu.Queue, swapchain gpu.Swapchain, image uint32, wait gpu.Semaphore) error {
	if err := d.call("QueuePresent"); err != nil {
		return err
	}
	if !d.semSignaled[wait] {
		d.violate("present of image %d waits on unsignaled semaphore %d", image, wait)
	}
	d.semSignaled[wait] = false
	d.busy = true
	d.Presents = append(d.Presents, image)
	return d.popError(&d.PresentErrors)
}

func (d *Driver) CreateImage(device gpu.Device, info gpu.ImageInfo) (gpu.Image, gpu.DeviceMemory, error) {
	if err := d.call("CreateImage"); err != nil {
		return 0, 0, err
	}
	mem := gpu.DeviceMemory(d.create("DeviceMemory", uint64(device)))
	img := gpu.Image(d.create("Image", uint64(device), uint64(mem)))
	return img, mem, nil
}

func (d *Driver) DestroyImage(device gpu.Device, image gpu.Image, memory gpu.DeviceMemory) {
	d.call("DestroyImage")
	d.destroy("Image", uint64(image))
	d.destroy("DeviceMemory", uint64(memory))
}

func (d *Driver) CreateImageView(device gpu.Device, image gpu.Image, format gpu.Format, aspect gpu.ImageAspect) (gpu.ImageView, error) {
	if err := d.call("CreateImageView"); err != nil {
		return 0, err
	}
	view := gpu.ImageView(d.create("ImageView", uint64(device), uint64(image)))
	d.viewImage[view] = image
	return view, nil
}

func (d *Driver) DestroyImageView(device gpu.Device, view gpu.ImageView) {
	d.call("DestroyImageView")
	d.destroy("ImageView", uint64(view))
	delete(d.viewImage, view)
}

// Render pass

func (d *Driver) CreateRenderPass(device gpu.Device, info gpu.RenderPassInfo) (gpu.RenderPass, error) {
	if err := d.call("CreateRenderPass"); err != nil {
		return 0, err
	}
	return gpu.RenderPass(d.create("RenderPass", uint64(device))), nil
}

func (d *Driver) DestroyRenderPass(device gpu.Device, pass gpu.RenderPass) {
	d.call("DestroyRenderPass")
	d.destroy("RenderPass", uint64(pass))
}

func (d *Driver) CreateFramebuffer(device gpu.Device, pass gpu.RenderPass, attachments []gpu.ImageView, extent gpu.Extent2D) (gpu.Framebuffer, error) {
	if err := d.call("CreateFramebuffer"); err != nil {
		return 0, err
	}
	deps := []uint64{uint64(device), uint64(pass)}
	for _, v := range attachments {
		deps = append(deps, uint64(v))
	}
	fb := gpu.Framebuffer(d.create("Framebuffer", deps...))
	d.fbViews[fb] = slices.Clone(attachments)
	return fb, nil
}

func (d *Driver) DestroyFramebuffer(device gpu.Device, framebuffer gpu.Framebuffer) {
	d.call("DestroyFramebuffer")
	d.checkIdle("Framebuffer")
	d.destroy("Framebuffer", uint64(framebuffer))
	delete(d.fbViews, framebuffer)
}

// Commands

func (d *Driver) CreateCommandPool(device gpu.Device, family uint32) (gpu.CommandPool, error) {
	if err := d.call("CreateCommandPool"); err != nil {
		return 0, err
	}
	return gpu.CommandPool(d.create("CommandPool", uint64(device))), nil
}

func (d *Driver) DestroyCommandPool(device gpu.Device, pool gpu.CommandPool) {
	d.call("DestroyCommandPool")
	for h, r := range d.live {
		if r.kind == "CommandBuffer" && slices.Contains(r.deps, uint64(pool)) {
			delete(d.live, h)
		}
	}
	d.destroy("CommandPool", uint64(pool))
}

func (d *Driver) AllocateCommandBuffers(device gpu.Device, pool gpu.CommandPool, count uint32) ([]gpu.CommandBuffer, error) {
	if err := d.call("AllocateCommandBuffers"); err != nil {
		return nil, err
	}
	out := make([]gpu.CommandBuffer, count)
	for i := range out {
		out[i] = gpu.CommandBuffer(d.create("CommandBuffer", uint64(pool)))
	}
	return out, nil
}

func (d *Driver) FreeCommandBuffers(device gpu.Device, pool gpu.CommandPool, buffers []gpu.CommandBuffer) {
	d.call("FreeCommandBuffers")
	d.checkIdle("CommandBuffer")
	for _, cb := range buffers {
		d.destroy("CommandBuffer", uint64(cb))
		delete(d.cbImage, cb)
		delete(d.cbRecording, cb)
	}
}

func (d *Driver) ResetCommandBuffer(cb gpu.CommandBuffer) error {
	if err := d.call("ResetCommandBuffer"); err != nil {
		return err
	}
	d.cbRecording[cb] = false
	delete(d.cbImage, cb)
	return nil
}

func (d *Driver) BeginCommandBuffer(cb gpu.CommandBuffer) error {
	if err := d.call("BeginCommandBuffer"); err != nil {
		return err
	}
	if d.cbRecording[cb] {
		d.violate("begin on command buffer %d which is already recording", cb)
	}
	d.cbRecording[cb] = true
	return nil
}

func (d *Driver) EndCommandBuffer(cb gpu.CommandBuffer) error {
	if err := d.call("EndCommandBuffer"); err != nil {
		return err
	}
	if !d.cbRecording[cb] {
		d.violate("end on command buffer %d which is not recording", cb)
	}
	d.cbRecording[cb] = false
	return nil
}

func (d *Driver) CmdBeginRenderPass(cb gpu.CommandBuffer, pass gpu.RenderPass, framebuffer gpu.Framebuffer, area gpu.Rect, clear gpu.ClearValues) {
	d.call("CmdBeginRenderPass")
	if !d.cbRecording[cb] {
		d.violate("render pass begun on command buffer %d outside recording", cb)
	}
	views := d.fbViews[framebuffer]
	if len(views) == 0 {
		d.violate("render pass begun with unknown framebuffer %d", framebuffer)
		return
	}
	if idx, ok := d.imageIndex[d.viewImage[views[0]]]; ok {
		d.cbImage[cb] = idx
	}
}

func (d *Driver) CmdEndRenderPass(cb gpu.CommandBuffer) { d.call("CmdEndRenderPass") }

func (d *Driver) CmdSetViewport(cb gpu.CommandBuffer, viewport gpu.Viewport) { d.call("CmdSetViewport") }

func (d *Driver) CmdSetScissor(cb gpu.CommandBuffer, scissor gpu.Rect) { d.call("CmdSetScissor") }

func (d *Driver) QueueSubmit(queue gpu.Queue, submit gpu.SubmitInfo, fence gpu.Fence) error {
	if err := d.call("QueueSubmit"); err != nil {
		return err
	}
	if d.fenceSignaled[fence] {
		d.violate("submit with fence %d still signaled", fence)
	}
	if !d.semSignaled[submit.Wait] {
		d.violate("submit waits on unsignaled semaphore %d", submit.Wait)
	}
	if d.semSignaled[submit.Signal] {
		d.violate("submit signals semaphore %d which is already signaled", submit.Signal)
	}
	d.semSignaled[submit.Wait] = false
	d.semSignaled[submit.Signal] = true

	img, ok := d.cbImage[submit.CommandBuffer]
	if !ok {
		d.violate("submit of command buffer %d with no render pass recorded", submit.CommandBuffer)
	} else if prev, pending := d.imagePending[img]; pending {
		d.violate("image %d submitted while fence %d of an earlier submission is pending", img, prev)
	}
	d.imagePending[img] = fence
	d.pendingFences[fence] = true
	d.busy = true
	d.Submits = append(d.Submits, Submission{
		CommandBuffer: submit.CommandBuffer,
		Image:         img,
		Fence:         fence,
		Wait:          submit.Wait,
		Signal:        submit.Signal,
	})
	return nil
}

// Sync

func (d *Driver) CreateSemaphore(device gpu.Device) (gpu.Semaphore, error) {
	if err := d.call("CreateSemaphore"); err != nil {
		return 0, err
	}
	return gpu.Semaphore(d.create("Semaphore", uint64(device))), nil
}

func (d *Driver) DestroySemaphore(device gpu.Device, semaphore gpu.Semaphore) {
	d.call("DestroySemaphore")
	d.checkIdle("Semaphore")
	d.destroy("Semaphore", uint64(semaphore))
	delete(d.semSignaled, semaphore)
}

func (d *Driver) CreateFence(device gpu.Device, signaled bool) (gpu.Fence, error) {
	if err := d.call("CreateFence"); err != nil {
		return 0, err
	}
	f := gpu.Fence(d.create("Fence", uint64(device)))
	d.fenceSignaled[f] = signaled
	return f, nil
}

func (d *Driver) DestroyFence(device gpu.Device, fence gpu.Fence) {
	d.call("DestroyFence")
	d.checkIdle("Fence")
	d.destroy("Fence", uint64(fence))
	delete(d.fenceSignaled, fence)
}

// WaitForFence completes every submission fenced by fence.
func (d *Driver) WaitForFence(device gpu.Device, fence gpu.Fence, timeout uint64) error {
	if err := d.call("WaitForFence"); err != nil {
		return err
	}
	if _, ok := d.live[uint64(fence)]; !ok {
		d.violate("wait on unknown fence %d", fence)
	}
	if !d.fenceSignaled[fence] && !d.pendingFences[fence] {
		d.violate("wait on fence %d that nothing will signal", fence)
		return gpu.ErrTimeout
	}
	d.fenceSignaled[fence] = true
	delete(d.pendingFences, fence)
	for img, f := range d.imagePending {
		if f == fence {
			delete(d.imagePending, img)
		}
	}
	return nil
}

func (d *Driver) ResetFence(device gpu.Device, fence gpu.Fence) error {
	if err := d.call("ResetFence"); err != nil {
		return err
	}
	if d.pendingFences[fence] {
		d.violate("reset of fence %d with a pending submission", fence)
	}
	d.fenceSignaled[fence] = false
	return nil
}
