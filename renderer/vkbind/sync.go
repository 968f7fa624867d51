package vkbind

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/dieselrt/renderer/gpu"
)

func (d *Driver) CreateSemaphore(device gpu.Device) (gpu.Semaphore, error) {
	var sem vk.Semaphore
	ret := vk.CreateSemaphore(d.device(device), &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}, nil, &sem)
	if err := check(ret, "vkCreateSemaphore"); err != nil {
		return 0, err
	}
	return gpu.Semaphore(d.semaphores.put(sem)), nil
}

func (d *Driver) DestroySemaphore(device gpu.Device, semaphore gpu.Semaphore) {
	if sem, ok := d.semaphores.take(uint64(semaphore)); ok {
		vk.DestroySemaphore(d.device(device), sem, nil)
	}
}

func (d *Driver) CreateFence(device gpu.Device, signaled bool) (gpu.Fence, error) {
	info := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	if signaled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	if err := check(vk.CreateFence(d.device(device), &info, nil, &fence), "vkCreateFence"); err != nil {
		return 0, err
	}
	return gpu.Fence(d.fences.put(fence)), nil
}

func (d *Driver) DestroyFence(device gpu.Device, fence gpu.Fence) {
	if f, ok := d.fences.take(uint64(fence)); ok {
		vk.DestroyFence(d.device(device), f, nil)
	}
}

func (d *Driver) WaitForFence(device gpu.Device, fence gpu.Fence, timeout uint64) error {
	fences := []vk.Fence{d.fences.get(uint64(fence))}
	return check(vk.WaitForFences(d.device(device), 1, fences, vk.True, timeout), "vkWaitForFences")
}

func (d *Driver) ResetFence(device gpu.Device, fence gpu.Fence) error {
	fences := []vk.Fence{d.fences.get(uint64(fence))}
	return check(vk.ResetFences(d.device(device), 1, fences), "vkResetFences")
}
