package vkbind

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/dieselrt/renderer/gpu"
)

func (d *Driver) CreateDevice(pd gpu.PhysicalDevice, info gpu.DeviceInfo) (gpu.Device, error) {
	p := d.physical.get(uint64(pd))

	queueInfos := make([]vk.DeviceQueueCreateInfo, 0, len(info.Queues))
	for _, q := range info.Queues {
		priorities := make([]float32, q.Count)
		for i := range priorities {
			priorities[i] = 1.0
		}
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: q.Family,
			QueueCount:       q.Count,
			PQueuePriorities: priorities,
		})
	}

	var features vk.PhysicalDeviceFeatures
	if info.Features.SamplerAnisotropy {
		features.SamplerAnisotropy = vk.True
	}

	var device vk.Device
	ret := vk.CreateDevice(p, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: safeStrings(info.Extensions),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{features},
	}, nil, &device)
	if err := check(ret, "vkCreateDevice"); err != nil {
		return 0, err
	}
	return gpu.Device(d.devices.put(deviceEntry{device: device, gpu: p})), nil
}

func (d *Driver) DestroyDevice(device gpu.Device) {
	entry, ok := d.devices.take(uint64(device))
	if !ok {
		return
	}
	// Queues die with the device.
	clear(d.queues.items)
	vk.DestroyDevice(entry.device, nil)
}

func (d *Driver) DeviceQueue(device gpu.Device, family, index uint32) gpu.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(d.device(device), family, index, &queue)
	return gpu.Queue(d.queues.intern(queue))
}

func (d *Driver) DeviceWaitIdle(device gpu.Device) error {
	return check(vk.DeviceWaitIdle(d.device(device)), "vkDeviceWaitIdle")
}
