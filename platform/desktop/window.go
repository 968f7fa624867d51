// Package desktop implements platform.Platform with a GLFW window that has
// no client API, ready for a Vulkan surface.
package desktop

import (
	"runtime"
	"time"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"

	"github.com/andewx/dieselrt/event"
	"github.com/andewx/dieselrt/input"
	"github.com/andewx/dieselrt/logging"
	"github.com/andewx/dieselrt/platform"
)

func init() {
	// GLFW event handling must run on the main thread.
	runtime.LockOSThread()
}

// Window owns the GLFW window and forwards its callbacks to the input
// system and the event bus.
type Window struct {
	window *glfw.Window
	bus    *event.Bus
	input  *input.System
}

var _ platform.Platform = (*Window)(nil)

// New initializes GLFW and opens the main window.
func New(cfg platform.WindowConfig, bus *event.Bus, in *input.System) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "initialize glfw")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, errors.New("glfw: vulkan loader not found")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(int(cfg.Width), int(cfg.Height), cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "create window")
	}
	win.SetPos(cfg.X, cfg.Y)

	w := &Window{window: win, bus: bus, input: in}
	w.configureCallbacks()

	logging.Logger().Info("platform window created", "title", cfg.Title, "width", cfg.Width, "height", cfg.Height)
	return w, nil
}

func (w *Window) configureCallbacks() {
	w.window.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Repeat {
			return
		}
		k, ok := keyOf(key)
		if !ok {
			return
		}
		w.input.ProcessKey(k, action == glfw.Press)
	})

	w.window.SetMouseButtonCallback(func(_ *glfw.Window, btn glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		var b input.Button
		switch btn {
		case glfw.MouseButtonLeft:
			b = input.ButtonLeft
		case glfw.MouseButtonRight:
			b = input.ButtonRight
		case glfw.MouseButtonMiddle:
			b = input.ButtonMiddle
		default:
			return
		}
		w.input.ProcessButton(b, action == glfw.Press)
	})

	w.window.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.input.ProcessMouseMove(int16(x), int16(y))
	})

	w.window.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		z := int8(0)
		switch {
		case yoff > 0:
			z = 1
		case yoff < 0:
			z = -1
		}
		w.input.ProcessMouseWheel(z)
	})

	w.window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.bus.Fire(event.Resized, w, event.ResizeContext(uint16(width), uint16(height)))
	})

	w.window.SetCloseCallback(func(_ *glfw.Window) {
		w.bus.Fire(event.ApplicationQuit, w, event.Context{})
	})
}

func (w *Window) PumpMessages() bool {
	glfw.PollEvents()
	return !w.window.ShouldClose()
}

func (w *Window) AbsoluteTime() float64 {
	return glfw.GetTime()
}

func (w *Window) Sleep(d time.Duration) {
	time.Sleep(d)
}

func (w *Window) FramebufferSize() (uint32, uint32) {
	width, height := w.window.GetFramebufferSize()
	return uint32(width), uint32(height)
}

func (w *Window) Shutdown() {
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	glfw.Terminate()
}

// RequiredInstanceExtensions lists the instance extensions GLFW needs to
// present to this window.
func (w *Window) RequiredInstanceExtensions() []string {
	return w.window.GetRequiredInstanceExtensions()
}

// CreateWindowSurface creates a VkSurfaceKHR for instance and returns it as
// a raw handle.
func (w *Window) CreateWindowSurface(instance interface{}, allocator unsafe.Pointer) (uintptr, error) {
	return w.window.CreateWindowSurface(instance, allocator)
}

// InstanceProcAddr is vkGetInstanceProcAddr as loaded by GLFW.
func (w *Window) InstanceProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}
