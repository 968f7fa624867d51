// Package platform describes what the runtime needs from the host window
// system.
package platform

import (
	"sync/atomic"
	"time"
)

// Platform is the window and message pump the application drives.
type Platform interface {
	// PumpMessages processes pending window messages. It returns false once
	// the window asked to close or the platform failed.
	PumpMessages() bool
	// AbsoluteTime is monotonic time in seconds.
	AbsoluteTime() float64
	Sleep(d time.Duration)
	FramebufferSize() (width, height uint32)
	Shutdown()
}

// WindowConfig positions and sizes the main window.
type WindowConfig struct {
	Title  string
	X, Y   int
	Width  uint32
	Height uint32
}

// Headless is a Platform without a window, used with the null renderer.
type Headless struct {
	start         time.Time
	width, height uint32
	closed        atomic.Bool
}

func NewHeadless(cfg WindowConfig) *Headless {
	return &Headless{start: time.Now(), width: cfg.Width, height: cfg.Height}
}

func (h *Headless) PumpMessages() bool { return !h.closed.Load() }

func (h *Headless) AbsoluteTime() float64 { return time.Since(h.start).Seconds() }

func (h *Headless) Sleep(d time.Duration) { time.Sleep(d) }

func (h *Headless) FramebufferSize() (uint32, uint32) { return h.width, h.height }

// Close makes the next PumpMessages report false.
func (h *Headless) Close() { h.closed.Store(true) }

func (h *Headless) Shutdown() { h.Close() }
