package vulkan

import (
	"context"
	"fmt"
	"slices"

	"github.com/pkg/errors"

	"github.com/andewx/dieselrt/logging"
	"github.com/andewx/dieselrt/renderer/gpu"
)

// DeviceRequirements is the fixed set a physical device must satisfy to be
// selected.
type DeviceRequirements struct {
	Graphics          bool
	Present           bool
	Compute           bool
	Transfer          bool
	SamplerAnisotropy bool
	DiscreteGPU       bool
	Extensions        []string
}

// DefaultRequirements asks for graphics, present and transfer queues,
// anisotropic sampling, the swapchain extension and a discrete GPU.
func DefaultRequirements() DeviceRequirements {
	return DeviceRequirements{
		Graphics:          true,
		Present:           true,
		Transfer:          true,
		SamplerAnisotropy: true,
		DiscreteGPU:       true,
		Extensions:        []string{gpu.ExtSwapchain},
	}
}

// QueueFamilyInfo holds resolved family indices, gpu.QueueFamilyNone when
// absent.
type QueueFamilyInfo struct {
	Graphics int
	Present  int
	Compute  int
	Transfer int
}

// Device is the selected GPU with its logical device and queues.
type Device struct {
	Physical         gpu.PhysicalDevice
	Logical          gpu.Device
	Properties       gpu.PhysicalDeviceProperties
	Features         gpu.Features
	SwapchainSupport gpu.SwapchainSupport
	Families         QueueFamilyInfo

	GraphicsQueue gpu.Queue
	PresentQueue  gpu.Queue
	TransferQueue gpu.Queue

	GraphicsCommandPool gpu.CommandPool
	DepthFormat         gpu.Format
}

// SelectPhysicalDevice returns the first enumerated device that meets req.
// Devices that fail are logged and skipped.
func SelectPhysicalDevice(drv gpu.Driver, instance gpu.Instance, surface gpu.Surface, req DeviceRequirements) (*Device, error) {
	devices, err := drv.EnumeratePhysicalDevices(instance)
	if err != nil {
		return nil, errors.Wrap(err, "enumerate physical devices")
	}
	if len(devices) == 0 {
		logging.Logger().Log(context.Background(), logging.LevelFatal, "no devices which support Vulkan were found")
		return nil, ErrNoPhysicalDevices
	}

	log := logging.Logger()
	for _, pd := range devices {
		props := drv.PhysicalDeviceProperties(pd)
		features := drv.PhysicalDeviceFeatures(pd)

		families, support, err := meetsRequirements(drv, pd, surface, props, features, req)
		if err != nil {
			log.Info("skipping physical device", "name", props.Name, "reason", err)
			continue
		}

		logDeviceProperties(props)
		dev := &Device{
			Physical:         pd,
			Properties:       props,
			Features:         features,
			SwapchainSupport: support,
			Families:         families,
		}
		log.Info("physical device selected", "name", props.Name)
		return dev, nil
	}

	log.Error("no physical devices were found which meet the requirements")
	return nil, ErrNoSuitableDevice
}

// meetsRequirements resolves queue families and checks req in order. The
// returned error names the first unmet requirement.
//
// Graphics, compute and present take the last family that qualifies.
// Transfer takes the family with the fewest graphics/compute bits; on equal
// scores the later family wins.
func meetsRequirements(drv gpu.Driver, pd gpu.PhysicalDevice, surface gpu.Surface,
	props gpu.PhysicalDeviceProperties, features gpu.Features, req DeviceRequirements,
) (QueueFamilyInfo, gpu.SwapchainSupport, error) {
	info := QueueFamilyInfo{
		Graphics: gpu.QueueFamilyNone,
		Present:  gpu.QueueFamilyNone,
		Compute:  gpu.QueueFamilyNone,
		Transfer: gpu.QueueFamilyNone,
	}
	var support gpu.SwapchainSupport

	if req.DiscreteGPU && props.Type != gpu.DeviceTypeDiscrete {
		return info, support, errors.New("device is not a discrete GPU, which is required")
	}

	minTransferScore := 255
	for i, family := range drv.QueueFamilies(pd) {
		score := 0
		if family.Flags.Has(gpu.QueueGraphics) {
			info.Graphics = i
			score++
		}
		if family.Flags.Has(gpu.QueueCompute) {
			info.Compute = i
			score++
		}
		if family.Flags.Has(gpu.QueueTransfer) && score <= minTransferScore {
			minTransferScore = score
			info.Transfer = i
		}

		present, err := drv.SurfaceSupport(pd, uint32(i), surface)
		if err != nil {
			logging.Logger().Warn("surface support query failed", "device", props.Name, "family", i, "err", err)
			continue
		}
		if present {
			info.Present = i
		}
	}

	logging.Logger().Info("queue families",
		"name", props.Name,
		"graphics", info.Graphics != gpu.QueueFamilyNone,
		"present", info.Present != gpu.QueueFamilyNone,
		"compute", info.Compute != gpu.QueueFamilyNone,
		"transfer", info.Transfer != gpu.QueueFamilyNone)

	switch {
	case req.Graphics && info.Graphics == gpu.QueueFamilyNone:
		return info, support, errors.New("no graphics queue family")
	case req.Present && info.Present == gpu.QueueFamilyNone:
		return info, support, errors.New("no present queue family")
	case req.Compute && info.Compute == gpu.QueueFamilyNone:
		return info, support, errors.New("no compute queue family")
	case req.Transfer && info.Transfer == gpu.QueueFamilyNone:
		return info, support, errors.New("no transfer queue family")
	}
	logging.Logger().Log(context.Background(), logging.LevelTrace, "device meets queue requirements",
		"graphics", info.Graphics, "present", info.Present,
		"compute", info.Compute, "transfer", info.Transfer)

	support, err := drv.SwapchainSupport(pd, surface)
	if err != nil {
		return info, support, errors.Wrap(err, "query swapchain support")
	}
	if len(support.Formats) < 1 || len(support.PresentModes) < 1 {
		return info, support, errors.New("required swapchain support not present")
	}

	if len(req.Extensions) > 0 {
		available, err := drv.DeviceExtensions(pd)
		if err != nil {
			return info, support, errors.Wrap(err, "enumerate device extensions")
		}
		for _, name := range req.Extensions {
			if !slices.Contains(available, name) {
				return info, support, errors.Errorf("required extension not found: %q", name)
			}
		}
	}

	if req.SamplerAnisotropy && !features.SamplerAnisotropy {
		return info, support, errors.New("device does not support samplerAnisotropy")
	}
	return info, support, nil
}

func logDeviceProperties(props gpu.PhysicalDeviceProperties) {
	log := logging.Logger()
	log.Info("selected device", "name", props.Name, "type", props.Type.String())
	log.Info("GPU driver version", "version", props.DriverVersion.String())
	log.Info("Vulkan API version", "version", props.APIVersion.String())
	for _, heap := range props.MemoryHeaps {
		gib := float64(heap.Size) / 1024 / 1024 / 1024
		if heap.DeviceLocal {
			log.Info("local GPU memory", "GiB", fmt.Sprintf("%.2f", gib))
		} else {
			log.Info("shared system memory", "GiB", fmt.Sprintf("%.2f", gib))
		}
	}
}

// queueRequests builds one request per distinct family among graphics,
// present and transfer. The graphics family asks for two queues when it
// has them.
func queueRequests(families QueueFamilyInfo, available []gpu.QueueFamily) []gpu.QueueRequest {
	var reqs []gpu.QueueRequest
	for _, idx := range []int{families.Graphics, families.Present, families.Transfer} {
		if idx == gpu.QueueFamilyNone || slices.ContainsFunc(reqs, func(r gpu.QueueRequest) bool { return r.Family == uint32(idx) }) {
			continue
		}
		count := uint32(1)
		if idx == families.Graphics {
			count = 2
			if idx < len(available) && available[idx].Count > 0 {
				count = min(count, available[idx].Count)
			}
		}
		reqs = append(reqs, gpu.QueueRequest{Family: uint32(idx), Count: count})
	}
	return reqs
}

// CreateLogicalDevice creates the logical device, fetches its queues and
// the graphics command pool, and detects the depth format.
func (d *Device) CreateLogicalDevice(drv gpu.Driver, req DeviceRequirements) error {
	log := logging.Logger()
	log.Info("creating logical device")

	depth, ok := DetectDepthFormat(drv, d.Physical)
	if !ok {
		return ErrNoDepthFormat
	}
	d.DepthFormat = depth

	info := gpu.DeviceInfo{
		Queues:     queueRequests(d.Families, drv.QueueFamilies(d.Physical)),
		Extensions: slices.Clone(req.Extensions),
		Features:   gpu.Features{SamplerAnisotropy: req.SamplerAnisotropy},
	}
	logical, err := drv.CreateDevice(d.Physical, info)
	if err != nil {
		return errors.Wrap(err, "create device")
	}
	d.Logical = logical
	log.Info("logical device created")

	d.GraphicsQueue = drv.DeviceQueue(logical, uint32(d.Families.Graphics), 0)
	d.PresentQueue = drv.DeviceQueue(logical, uint32(d.Families.Present), 0)
	if d.Families.Transfer != gpu.QueueFamilyNone {
		d.TransferQueue = drv.DeviceQueue(logical, uint32(d.Families.Transfer), 0)
	}
	log.Info("queues obtained")

	pool, err := drv.CreateCommandPool(logical, uint32(d.Families.Graphics))
	if err != nil {
		return errors.Wrap(err, "create graphics command pool")
	}
	d.GraphicsCommandPool = pool
	log.Info("graphics command pool created")
	return nil
}

// Destroy releases the command pool and the logical device and forgets
// the queues.
func (d *Device) Destroy(drv gpu.Driver) {
	log := logging.Logger()
	d.GraphicsQueue, d.PresentQueue, d.TransferQueue = 0, 0, 0

	if d.GraphicsCommandPool != 0 {
		log.Info("destroying command pools")
		drv.DestroyCommandPool(d.Logical, d.GraphicsCommandPool)
		d.GraphicsCommandPool = 0
	}
	if d.Logical != 0 {
		log.Info("destroying logical device")
		drv.DestroyDevice(d.Logical)
		d.Logical = 0
	}

	log.Info("releasing physical device resources")
	d.Physical = 0
	d.SwapchainSupport = gpu.SwapchainSupport{}
	d.Families = QueueFamilyInfo{
		Graphics: gpu.QueueFamilyNone,
		Present:  gpu.QueueFamilyNone,
		Compute:  gpu.QueueFamilyNone,
		Transfer: gpu.QueueFamilyNone,
	}
}

var depthCandidates = []gpu.Format{
	gpu.FormatD32Sfloat,
	gpu.FormatD32SfloatS8Uint,
	gpu.FormatD24UnormS8Uint,
}

// DetectDepthFormat picks the first depth format usable as an attachment.
func DetectDepthFormat(drv gpu.Driver, pd gpu.PhysicalDevice) (gpu.Format, bool) {
	for _, f := range depthCandidates {
		if drv.SupportsDepthFormat(pd, f) {
			return f, true
		}
	}
	return gpu.FormatUndefined, false
}
