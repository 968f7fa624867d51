package vkbind

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/dieselrt/renderer/gpu"
)

func (d *Driver) CreateCommandPool(device gpu.Device, family uint32) (gpu.CommandPool, error) {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(d.device(device), &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: family,
	}, nil, &pool)
	if err := check(ret, "vkCreateCommandPool"); err != nil {
		return 0, err
	}
	return gpu.CommandPool(d.pools.put(pool)), nil
}

func (d *Driver) DestroyCommandPool(device gpu.Device, pool gpu.CommandPool) {
	if p, ok := d.pools.take(uint64(pool)); ok {
		vk.DestroyCommandPool(d.device(device), p, nil)
	}
}

func (d *Driver) AllocateCommandBuffers(device gpu.Device, pool gpu.CommandPool, count uint32) ([]gpu.CommandBuffer, error) {
	bufs := make([]vk.CommandBuffer, count)
	ret := vk.AllocateCommandBuffers(d.device(device), &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.pools.get(uint64(pool)),
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	}, bufs)
	if err := check(ret, "vkAllocateCommandBuffers"); err != nil {
		return nil, err
	}
	out := make([]gpu.CommandBuffer, count)
	for i, cb := range bufs {
		out[i] = gpu.CommandBuffer(d.commandBuffers.put(cb))
	}
	return out, nil
}

func (d *Driver) FreeCommandBuffers(device gpu.Device, pool gpu.CommandPool, buffers []gpu.CommandBuffer) {
	bufs := make([]vk.CommandBuffer, 0, len(buffers))
	for _, h := range buffers {
		if cb, ok := d.commandBuffers.take(uint64(h)); ok {
			bufs = append(bufs, cb)
		}
	}
	if len(bufs) == 0 {
		return
	}
	vk.FreeCommandBuffers(d.device(device), d.pools.get(uint64(pool)), uint32(len(bufs)), bufs)
}

func (d *Driver) ResetCommandBuffer(cb gpu.CommandBuffer) error {
	return check(vk.ResetCommandBuffer(d.commandBuffers.get(uint64(cb)), 0), "vkResetCommandBuffer")
}

func (d *Driver) BeginCommandBuffer(cb gpu.CommandBuffer) error {
	ret := vk.BeginCommandBuffer(d.commandBuffers.get(uint64(cb)), &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	return check(ret, "vkBeginCommandBuffer")
}

func (d *Driver) EndCommandBuffer(cb gpu.CommandBuffer) error {
	return check(vk.EndCommandBuffer(d.commandBuffers.get(uint64(cb))), "vkEndCommandBuffer")
}

func rectOf(r gpu.Rect) vk.Rect2D {
	return vk.Rect2D{
		Offset: vk.Offset2D{X: r.X, Y: r.Y},
		Extent: vk.Extent2D{Width: r.Width, Height: r.Height},
	}
}

func (d *Driver) CmdBeginRenderPass(cb gpu.CommandBuffer, pass gpu.RenderPass, framebuffer gpu.Framebuffer, area gpu.Rect, values gpu.ClearValues) {
	clearValues := []vk.ClearValue{
		vk.NewClearValue(values.Color[:]),
		vk.NewClearDepthStencil(values.Depth, values.Stencil),
	}
	vk.CmdBeginRenderPass(d.commandBuffers.get(uint64(cb)), &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      d.passes.get(uint64(pass)),
		Framebuffer:     d.framebuffers.get(uint64(framebuffer)),
		RenderArea:      rectOf(area),
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}, vk.SubpassContentsInline)
}

func (d *Driver) CmdEndRenderPass(cb gpu.CommandBuffer) {
	vk.CmdEndRenderPass(d.commandBuffers.get(uint64(cb)))
}

func (d *Driver) CmdSetViewport(cb gpu.CommandBuffer, v gpu.Viewport) {
	vk.CmdSetViewport(d.commandBuffers.get(uint64(cb)), 0, 1, []vk.Viewport{{
		X:        v.X,
		Y:        v.Y,
		Width:    v.Width,
		Height:   v.Height,
		MinDepth: v.MinDepth,
		MaxDepth: v.MaxDepth,
	}})
}

func (d *Driver) CmdSetScissor(cb gpu.CommandBuffer, scissor gpu.Rect) {
	vk.CmdSetScissor(d.commandBuffers.get(uint64(cb)), 0, 1, []vk.Rect2D{rectOf(scissor)})
}

// QueueSubmit waits on submit.Wait at colour attachment output.
func (d *Driver) QueueSubmit(queue gpu.Queue, submit gpu.SubmitInfo, fence gpu.Fence) error {
	info := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{d.commandBuffers.get(uint64(submit.CommandBuffer))},
	}
	if submit.Wait != 0 {
		info.WaitSemaphoreCount = 1
		info.PWaitSemaphores = []vk.Semaphore{d.semaphores.get(uint64(submit.Wait))}
		info.PWaitDstStageMask = []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		}
	}
	if submit.Signal != 0 {
		info.SignalSemaphoreCount = 1
		info.PSignalSemaphores = []vk.Semaphore{d.semaphores.get(uint64(submit.Signal))}
	}
	ret := vk.QueueSubmit(d.queues.get(uint64(queue)), 1, []vk.SubmitInfo{info}, d.fences.get(uint64(fence)))
	return check(ret, "vkQueueSubmit")
}
