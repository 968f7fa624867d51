package vulkan

import (
	"github.com/pkg/errors"

	"github.com/andewx/dieselrt/renderer/gpu"
)

// RenderPass is the main colour + depth pass drawn into every swapchain
// image.
type RenderPass struct {
	Handle gpu.RenderPass
	Area   gpu.Rect
	Clear  gpu.ClearValues
}

// DefaultClear is a dark blue colour with the depth buffer cleared to 1.
var DefaultClear = gpu.ClearValues{
	Color: [4]float32{0, 0, 0.2, 1},
	Depth: 1,
}

func CreateRenderPass(drv gpu.Driver, dev *Device, colorFormat gpu.Format, area gpu.Rect, clear gpu.ClearValues) (*RenderPass, error) {
	handle, err := drv.CreateRenderPass(dev.Logical, gpu.RenderPassInfo{
		ColorFormat: colorFormat,
		DepthFormat: dev.DepthFormat,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create render pass")
	}
	return &RenderPass{Handle: handle, Area: area, Clear: clear}, nil
}

func (rp *RenderPass) Begin(drv gpu.Driver, cb *CommandBuffer, framebuffer gpu.Framebuffer) error {
	if cb.State != CommandBufferRecording {
		return errors.Wrapf(ErrCommandBufferState, "begin render pass in state %s", cb.State)
	}
	drv.CmdBeginRenderPass(cb.Handle, rp.Handle, framebuffer, rp.Area, rp.Clear)
	cb.State = CommandBufferInRenderPass
	return nil
}

func (rp *RenderPass) End(drv gpu.Driver, cb *CommandBuffer) error {
	if cb.State != CommandBufferInRenderPass {
		return errors.Wrapf(ErrCommandBufferState, "end render pass in state %s", cb.State)
	}
	drv.CmdEndRenderPass(cb.Handle)
	cb.State = CommandBufferRecording
	return nil
}

func (rp *RenderPass) Destroy(drv gpu.Driver, dev *Device) {
	if rp.Handle != 0 {
		drv.DestroyRenderPass(dev.Logical, rp.Handle)
		rp.Handle = 0
	}
}
