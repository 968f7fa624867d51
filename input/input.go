// Package input keeps keyboard and mouse state for the current and the
// previous frame and turns platform callbacks into bus events.
package input

import (
	"github.com/andewx/dieselrt/event"
	"github.com/andewx/dieselrt/logging"
)

type keyboardState struct {
	keys [MaxKeys]bool
}

type mouseState struct {
	x, y    int16
	buttons [MaxButtons]bool
}

// System is owned by the application and fed by the platform layer.
type System struct {
	bus *event.Bus

	keyboardCurrent  keyboardState
	keyboardPrevious keyboardState
	mouseCurrent     mouseState
	mousePrevious    mouseState
}

func New(bus *event.Bus) *System {
	logging.Logger().Info("input subsystem initialized")
	return &System{bus: bus}
}

// Shutdown detaches the system from its bus.
func (s *System) Shutdown() {
	s.bus = nil
}

// Update rolls the current state into the previous state. Call once per
// frame after the frame's work is done.
func (s *System) Update(deltaTime float64) {
	s.keyboardPrevious = s.keyboardCurrent
	s.mousePrevious = s.mouseCurrent
}

func (s *System) fire(code event.Code, ctx event.Context) {
	if s.bus != nil {
		s.bus.Fire(code, nil, ctx)
	}
}

// ProcessKey records a key transition. Repeated reports of the same state
// fire nothing.
func (s *System) ProcessKey(key Key, pressed bool) {
	if key >= MaxKeys || s.keyboardCurrent.keys[key] == pressed {
		return
	}
	s.keyboardCurrent.keys[key] = pressed

	code := event.KeyReleased
	if pressed {
		code = event.KeyPressed
	}
	s.fire(code, event.KeyContext(uint16(key)))
}

func (s *System) ProcessButton(button Button, pressed bool) {
	if button >= MaxButtons || s.mouseCurrent.buttons[button] == pressed {
		return
	}
	s.mouseCurrent.buttons[button] = pressed

	code := event.ButtonReleased
	if pressed {
		code = event.ButtonPressed
	}
	s.fire(code, event.KeyContext(uint16(button)))
}

func (s *System) ProcessMouseMove(x, y int16) {
	if s.mouseCurrent.x == x && s.mouseCurrent.y == y {
		return
	}
	s.mouseCurrent.x = x
	s.mouseCurrent.y = y
	s.fire(event.MouseMoved, event.MouseContext(x, y))
}

// ProcessMouseWheel fires the scroll delta. Nothing is stored.
func (s *System) ProcessMouseWheel(z int8) {
	s.fire(event.MouseWheel, event.WheelContext(z))
}

func (s *System) IsKeyDown(key Key) bool  { return key < MaxKeys && s.keyboardCurrent.keys[key] }
func (s *System) IsKeyUp(key Key) bool    { return key < MaxKeys && !s.keyboardCurrent.keys[key] }
func (s *System) WasKeyDown(key Key) bool { return key < MaxKeys && s.keyboardPrevious.keys[key] }
func (s *System) WasKeyUp(key Key) bool   { return key < MaxKeys && !s.keyboardPrevious.keys[key] }

func (s *System) IsButtonDown(b Button) bool  { return b < MaxButtons && s.mouseCurrent.buttons[b] }
func (s *System) IsButtonUp(b Button) bool    { return b < MaxButtons && !s.mouseCurrent.buttons[b] }
func (s *System) WasButtonDown(b Button) bool { return b < MaxButtons && s.mousePrevious.buttons[b] }
func (s *System) WasButtonUp(b Button) bool   { return b < MaxButtons && !s.mousePrevious.buttons[b] }

func (s *System) MousePosition() (x, y int16) {
	return s.mouseCurrent.x, s.mouseCurrent.y
}

func (s *System) PreviousMousePosition() (x, y int16) {
	return s.mousePrevious.x, s.mousePrevious.y
}
