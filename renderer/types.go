// Package renderer is the front end of the rendering system. It hides which
// backend is in use behind a small frame lifecycle: begin a frame, record,
// end it.
package renderer

import (
	"time"

	"github.com/pkg/errors"
)

var (
	ErrBackendNotAvailable = errors.New("renderer: backend not available")
	ErrNotInitialized      = errors.New("renderer: not initialized")
)

// FrameStatus is what BeginFrame decided about the current frame.
type FrameStatus int

const (
	// FrameSubmitted means recording has begun and EndFrame must follow.
	FrameSubmitted FrameStatus = iota
	// FrameSkipped means the backend is recovering, from a resize for
	// instance, and no EndFrame is expected.
	FrameSkipped
)

func (s FrameStatus) String() string {
	switch s {
	case FrameSubmitted:
		return "submitted"
	case FrameSkipped:
		return "skipped"
	}
	return "unknown"
}

// Backend is implemented by every rendering API.
type Backend interface {
	Initialize(appName string, width, height uint32) error
	Shutdown()
	// OnResized records the new framebuffer size. No GPU work happens
	// until the next BeginFrame.
	OnResized(width, height uint16)
	BeginFrame(deltaTime float64) (FrameStatus, error)
	EndFrame(deltaTime float64) error
}

// RenderPacket carries everything needed to draw one frame.
type RenderPacket struct {
	DeltaTime float64
}

// Options configure a backend at creation.
type Options struct {
	Validation  bool
	DiscreteGPU bool
	ClearColor  [4]float32
	// FrameTime is how long the null backend pretends a frame takes.
	FrameTime time.Duration
}

func DefaultOptions() Options {
	return Options{
		DiscreteGPU: true,
		ClearColor:  [4]float32{0, 0, 0.2, 1},
		FrameTime:   time.Second / 60,
	}
}
