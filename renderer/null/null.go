// Package null provides a renderer backend that draws nothing. Frames take
// a configurable amount of time so the application loop behaves as it
// would on a GPU.
package null

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/andewx/dieselrt/logging"
	"github.com/andewx/dieselrt/platform"
	"github.com/andewx/dieselrt/renderer"
)

func init() {
	renderer.Register(renderer.BackendNull, func(p platform.Platform, opts renderer.Options) (renderer.Backend, error) {
		return New(p, opts.FrameTime), nil
	})
}

// Sleeper is the part of platform.Platform the backend uses to fake GPU
// time.
type Sleeper interface {
	Sleep(d time.Duration)
}

type Backend struct {
	mu sync.Mutex

	sleeper   Sleeper
	frameTime time.Duration

	width, height uint32
	pendingResize bool
	frameActive   bool
	frameNumber   uint64
	resizes       int
	initialized   bool
}

var _ renderer.Backend = (*Backend)(nil)

// New returns a backend whose frames take frameTime. A nil sleeper makes
// frames free.
func New(sleeper Sleeper, frameTime time.Duration) *Backend {
	return &Backend{sleeper: sleeper, frameTime: frameTime}
}

// Initialize records the framebuffer size. It fails if called twice.
func (b *Backend) Initialize(appName string, width, height uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return errors.New("null: backend already initialized")
	}
	b.width, b.height = width, height
	b.initialized = true
	logging.Logger().Info("null renderer initialized", "app", appName, "width", width, "height", height)
	return nil
}

// Shutdown drops any active frame. The backend can be initialized again.
func (b *Backend) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initialized = false
	b.frameActive = false
}

// OnResized stores the size; the next BeginFrame counts the resize.
func (b *Backend) OnResized(width, height uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.width, b.height = uint32(width), uint32(height)
	b.pendingResize = true
}

// BeginFrame skips frames while the framebuffer has no area.
func (b *Backend) BeginFrame(deltaTime float64) (renderer.FrameStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return renderer.FrameSkipped, renderer.ErrNotInitialized
	}
	if b.frameActive {
		return renderer.FrameSkipped, errors.New("null: begin frame while a frame is active")
	}
	if b.width == 0 || b.height == 0 {
		return renderer.FrameSkipped, nil
	}
	if b.pendingResize {
		b.pendingResize = false
		b.resizes++
		logging.Logger().Debug("null renderer resized", "width", b.width, "height", b.height)
	}
	b.frameActive = true
	return renderer.FrameSubmitted, nil
}

func (b *Backend) EndFrame(deltaTime float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.frameActive {
		return errors.New("null: end frame without begin frame")
	}
	b.frameActive = false
	if b.sleeper != nil && b.frameTime > 0 {
		b.sleeper.Sleep(b.frameTime)
	}
	b.frameNumber++
	return nil
}

// FrameNumber counts completed frames.
func (b *Backend) FrameNumber() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frameNumber
}

// Resizes counts resizes applied at the start of a frame.
func (b *Backend) Resizes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resizes
}
