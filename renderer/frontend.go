package renderer

import (
	"github.com/pkg/errors"
	lin "github.com/xlab/linmath"

	"github.com/andewx/dieselrt/logging"
	"github.com/andewx/dieselrt/rcmath"
)

const (
	fieldOfView = 45.0
	nearClip    = 0.1
	farClip     = 1000.0
)

// Frontend drives a Backend through one frame per DrawFrame call and keeps
// the projection in step with the framebuffer.
type Frontend struct {
	backend     Backend
	projection  lin.Mat4x4
	width       uint32
	height      uint32
	initialized bool
}

// NewFrontend wraps backend. Initialize must run before DrawFrame.
func NewFrontend(backend Backend) *Frontend {
	return &Frontend{backend: backend, projection: rcmath.Mat4Identity()}
}

func (f *Frontend) Initialize(appName string, width, height uint32) error {
	if f.backend == nil {
		return errors.Wrap(ErrNotInitialized, "no backend")
	}
	if err := f.backend.Initialize(appName, width, height); err != nil {
		logging.Logger().Error("renderer backend failed to initialize", "err", err)
		return errors.Wrap(err, "initialize renderer backend")
	}
	f.initialized = true
	f.updateProjection(width, height)
	return nil
}

func (f *Frontend) Shutdown() {
	if f.backend != nil && f.initialized {
		f.backend.Shutdown()
	}
	f.initialized = false
}

// OnResized forwards a new framebuffer size to the backend.
func (f *Frontend) OnResized(width, height uint16) {
	if f.backend == nil || !f.initialized {
		logging.Logger().Warn("renderer backend does not exist to accept resize", "width", width, "height", height)
		return
	}
	f.updateProjection(uint32(width), uint32(height))
	f.backend.OnResized(width, height)
}

func (f *Frontend) updateProjection(width, height uint32) {
	f.width, f.height = width, height
	if width == 0 || height == 0 {
		return
	}
	aspect := float32(width) / float32(height)
	f.projection = rcmath.VulkanProjection(rcmath.Perspective(fieldOfView, aspect, nearClip, farClip))
}

// DrawFrame renders one frame. A frame the backend skips counts as
// success; anything else the backend reports is fatal.
func (f *Frontend) DrawFrame(packet *RenderPacket) error {
	if !f.initialized {
		return ErrNotInitialized
	}
	status, err := f.backend.BeginFrame(packet.DeltaTime)
	if err != nil {
		return errors.Wrap(err, "begin frame")
	}
	if status == FrameSkipped {
		return nil
	}
	if err := f.backend.EndFrame(packet.DeltaTime); err != nil {
		logging.Logger().Error("end frame failed, shutting down", "err", err)
		return errors.Wrap(err, "end frame")
	}
	return nil
}

// Projection is the clip-space projection for the current framebuffer.
func (f *Frontend) Projection() lin.Mat4x4 { return f.projection }

func (f *Frontend) Backend() Backend { return f.backend }
