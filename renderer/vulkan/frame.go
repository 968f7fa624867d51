package vulkan

import (
	"github.com/pkg/errors"

	"github.com/andewx/dieselrt/logging"
	"github.com/andewx/dieselrt/renderer"
	"github.com/andewx/dieselrt/renderer/gpu"
)

// BeginFrame waits for the frame slot, acquires a swapchain image and
// begins recording into it. A stale swapchain, a timeout or a zero sized
// window skip the frame without error.
func (b *Backend) BeginFrame(deltaTime float64) (renderer.FrameStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return renderer.FrameSkipped, ErrNotInitialized
	}
	if b.frameActive {
		return renderer.FrameSkipped, errors.New("vulkan: begin frame while a frame is being recorded")
	}

	if b.recreateNeeded || b.sizeGeneration != b.lastGeneration {
		recreated, err := b.recreateSwapchain()
		if err != nil {
			return renderer.FrameSkipped, err
		}
		if !recreated {
			return renderer.FrameSkipped, nil
		}
	}

	drv, dev, sc := b.drv, b.device, b.swapchain
	f := int(b.frameNumber % uint64(sc.MaxFramesInFlight))

	if err := b.inFlight[f].Wait(drv, dev, b.opts.FenceTimeout); err != nil {
		if errors.Cause(err) == gpu.ErrTimeout {
			b.markOutOfDate("in-flight fence wait", err)
			return renderer.FrameSkipped, nil
		}
		return renderer.FrameSkipped, errors.Wrap(err, "in-flight fence wait")
	}

	img, err := drv.AcquireNextImage(dev.Logical, sc.Handle, b.opts.FenceTimeout, b.imageAvailable[f])
	if err != nil {
		if gpu.IsStale(err) || errors.Cause(err) == gpu.ErrTimeout {
			b.markOutOfDate("acquire next image", err)
			return renderer.FrameSkipped, nil
		}
		return renderer.FrameSkipped, errors.Wrap(err, "acquire next image")
	}

	// Another slot may still be rendering into this image.
	if prev := b.imagesInFlight[img]; prev != nil {
		if err := prev.Wait(drv, dev, b.opts.FenceTimeout); err != nil {
			if errors.Cause(err) == gpu.ErrTimeout {
				// imageAvailable[f] is now signaled with nobody to wait
				// on it, so the semaphores are rebuilt with the swapchain.
				b.rebuildSync = true
				b.markOutOfDate("image fence wait", err)
				return renderer.FrameSkipped, nil
			}
			return renderer.FrameSkipped, errors.Wrap(err, "image fence wait")
		}
	}
	b.imagesInFlight[img] = b.inFlight[f]

	cb := b.commandBuffers[img]
	if err := cb.Reset(drv); err != nil {
		return renderer.FrameSkipped, err
	}
	if err := cb.Begin(drv); err != nil {
		return renderer.FrameSkipped, err
	}

	// The Y flip lives in the projection, see rcmath.VulkanProjection.
	drv.CmdSetViewport(cb.Handle, gpu.Viewport{
		Width:    float32(sc.Extent.Width),
		Height:   float32(sc.Extent.Height),
		MaxDepth: 1,
	})
	drv.CmdSetScissor(cb.Handle, gpu.Rect{Width: sc.Extent.Width, Height: sc.Extent.Height})

	b.mainPass.Area = b.renderArea()
	if err := b.mainPass.Begin(drv, cb, b.framebuffers[img]); err != nil {
		return renderer.FrameSkipped, err
	}

	b.imageIndex = img
	b.currentFrame = f
	b.frameActive = true
	return renderer.FrameSubmitted, nil
}

// EndFrame submits the recorded commands and presents the image. A stale
// present marks the swapchain for recreation; the frame still counts.
func (b *Backend) EndFrame(deltaTime float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return ErrNotInitialized
	}
	if !b.frameActive {
		return ErrNoActiveFrame
	}
	b.frameActive = false

	drv, dev, sc := b.drv, b.device, b.swapchain
	f, img := b.currentFrame, b.imageIndex
	cb := b.commandBuffers[img]

	if err := b.mainPass.End(drv, cb); err != nil {
		return err
	}
	if err := cb.End(drv); err != nil {
		return err
	}

	fence := b.inFlight[f]
	if err := fence.Reset(drv, dev); err != nil {
		return err
	}
	submit := gpu.SubmitInfo{
		CommandBuffer: cb.Handle,
		Wait:          b.imageAvailable[f],
		Signal:        b.queueComplete[f],
	}
	if err := drv.QueueSubmit(dev.GraphicsQueue, submit, fence.Handle); err != nil {
		return errors.Wrap(err, "queue submit")
	}
	if err := cb.UpdateSubmitted(); err != nil {
		return err
	}

	err := drv.QueuePresent(dev.PresentQueue, sc.Handle, img, b.queueComplete[f])
	switch {
	case err == nil:
		if sc.State == SwapchainCreated {
			sc.State = SwapchainPresenting
		}
	case gpu.IsStale(err):
		b.markOutOfDate("present", err)
	default:
		return errors.Wrap(err, "queue present")
	}

	b.frameNumber++
	return nil
}

func (b *Backend) markOutOfDate(where string, err error) {
	logging.Logger().Debug("swapchain needs recreation", "where", where, "reason", err)
	b.swapchain.State = SwapchainOutOfDate
	b.recreateNeeded = true
}

// recreateSwapchain rebuilds everything that depends on the swapchain
// images. It reports false when the window has no area to render into.
func (b *Backend) recreateSwapchain() (bool, error) {
	log := logging.Logger()
	if b.width == 0 || b.height == 0 {
		log.Debug("swapchain recreation skipped for zero sized framebuffer")
		return false, nil
	}

	drv, dev := b.drv, b.device
	if err := drv.DeviceWaitIdle(dev.Logical); err != nil {
		return false, errors.Wrap(err, "device wait idle")
	}

	freeCommandBuffers(drv, dev, b.commandBuffers)
	b.commandBuffers = nil
	destroyFramebuffers(drv, dev, b.framebuffers)
	b.framebuffers = nil

	oldFrames := b.swapchain.MaxFramesInFlight
	if err := b.swapchain.Recreate(drv, dev, b.surface, b.width, b.height); err != nil {
		return false, errors.Wrap(err, "recreate swapchain")
	}
	b.mainPass.Area = b.renderArea()

	var err error
	b.framebuffers, err = createFramebuffers(drv, dev, b.swapchain, b.mainPass)
	if err != nil {
		return false, err
	}
	b.commandBuffers, err = allocateCommandBuffers(drv, dev, len(b.swapchain.Images))
	if err != nil {
		return false, err
	}

	if b.rebuildSync || oldFrames != b.swapchain.MaxFramesInFlight {
		b.destroySync()
		if err := b.createSync(); err != nil {
			return false, err
		}
	}
	b.imagesInFlight = make([]*Fence, len(b.swapchain.Images))

	b.lastGeneration = b.sizeGeneration
	b.recreateNeeded = false
	b.rebuildSync = false
	log.Info("swapchain recreated",
		"width", b.swapchain.Extent.Width,
		"height", b.swapchain.Extent.Height,
		"generation", b.swapchain.Generation)
	return true, nil
}
