package vulkan

import (
	"github.com/pkg/errors"

	"github.com/andewx/dieselrt/renderer/gpu"
)

// createFramebuffers makes one framebuffer per swapchain image, each
// binding the image view and the shared depth view.
func createFramebuffers(drv gpu.Driver, dev *Device, sc *Swapchain, pass *RenderPass) ([]gpu.Framebuffer, error) {
	framebuffers := make([]gpu.Framebuffer, 0, len(sc.Views))
	for i, view := range sc.Views {
		attachments := []gpu.ImageView{view, sc.Depth.View}
		fb, err := drv.CreateFramebuffer(dev.Logical, pass.Handle, attachments, sc.Extent)
		if err != nil {
			destroyFramebuffers(drv, dev, framebuffers)
			return nil, errors.Wrapf(err, "create framebuffer %d", i)
		}
		framebuffers = append(framebuffers, fb)
	}
	return framebuffers, nil
}

func destroyFramebuffers(drv gpu.Driver, dev *Device, framebuffers []gpu.Framebuffer) {
	for _, fb := range framebuffers {
		drv.DestroyFramebuffer(dev.Logical, fb)
	}
}
