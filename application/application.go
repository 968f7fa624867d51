// Package application owns the main loop. It brings up the event bus,
// input, platform window and renderer, then drives a Game once per tick
// until a quit event, a closed window or a fatal error.
package application

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/andewx/dieselrt/clock"
	"github.com/andewx/dieselrt/event"
	"github.com/andewx/dieselrt/input"
	"github.com/andewx/dieselrt/logging"
	"github.com/andewx/dieselrt/memory"
	"github.com/andewx/dieselrt/platform"
	"github.com/andewx/dieselrt/renderer"
)

type State int

const (
	StateCreated State = iota
	StateRunning
	StateSuspended
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateRunning:
		return "Running"
	case StateSuspended:
		return "Suspended"
	case StateShuttingDown:
		return "ShuttingDown"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// PlatformFactory opens the host window. The platform feeds window events
// into bus and input.
type PlatformFactory func(cfg platform.WindowConfig, bus *event.Bus, in *input.System) (platform.Platform, error)

// suspendedPoll is how long a suspended loop sleeps between pumps.
const suspendedPoll = 10 * time.Millisecond

type Application struct {
	cfg  Config
	game Game

	bus      *event.Bus
	input    *input.System
	platform platform.Platform
	frontend *renderer.Frontend
	clock    *clock.Clock
	arena    *memory.LinearAllocator
	stats    clock.FrameStats

	state         State
	quit          bool
	width, height uint32
	lastTime      float64
}

// New brings up every subsystem and initializes game. On failure whatever
// was already created is shut down and an *Error is returned.
func New(cfg Config, game Game, newPlatform PlatformFactory) (*Application, error) {
	if cfg.TargetFPS <= 0 {
		cfg.TargetFPS = DefaultConfig().TargetFPS
	}
	if cfg.FrameArenaBytes == 0 {
		cfg.FrameArenaBytes = DefaultConfig().FrameArenaBytes
	}

	a := &Application{cfg: cfg, game: game}
	log := logging.Logger()

	a.arena = memory.NewLinearAllocator(cfg.FrameArenaBytes, nil)
	a.bus = event.NewBus()
	a.input = input.New(a.bus)

	p, err := newPlatform(platform.WindowConfig{
		Title:  cfg.Name,
		X:      cfg.X,
		Y:      cfg.Y,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, a.bus, a.input)
	if err != nil {
		a.teardown()
		return nil, &Error{Stage: StagePlatform, Err: err}
	}
	a.platform = p
	a.clock = clock.New(p)

	a.bus.Register(event.ApplicationQuit, a, a.onEvent)
	a.bus.Register(event.KeyPressed, a, a.onKey)
	a.bus.Register(event.KeyReleased, a, a.onKey)
	a.bus.Register(event.Resized, a, a.onResized)

	name := cfg.Backend
	if name == "" {
		name = renderer.Default()
	}
	backend, err := renderer.Create(name, p, cfg.Renderer)
	if err != nil {
		a.teardown()
		return nil, &Error{Stage: StageRenderer, Err: err}
	}

	w, h := p.FramebufferSize()
	if w == 0 || h == 0 {
		w, h = cfg.Width, cfg.Height
	}
	frontend := renderer.NewFrontend(backend)
	if err := frontend.Initialize(cfg.Name, w, h); err != nil {
		a.teardown()
		return nil, &Error{Stage: StageRenderer, Err: err}
	}
	a.frontend = frontend
	a.width, a.height = w, h

	if err := game.Initialize(a); err != nil {
		a.teardown()
		return nil, &Error{Stage: StageGameInit, Err: err}
	}
	// The renderer already has this size; only the game needs telling.
	game.OnResize(w, h)

	log.Info("application created", "name", cfg.Name, "backend", name, "width", w, "height", h)
	log.Debug(memory.UsageString())
	return a, nil
}

// Run drives the loop until quit and tears everything down before
// returning. A non-nil error is an *Error naming the failing stage.
func (a *Application) Run() error {
	if a.state != StateCreated {
		return &Error{Stage: StageRun, Err: errors.Errorf("run in state %v", a.state)}
	}
	log := logging.Logger()

	a.state = StateRunning
	a.clock.Start()
	a.clock.Update()
	a.lastTime = a.clock.Elapsed()
	target := time.Second / time.Duration(a.cfg.TargetFPS)

	var runErr error
	for !a.quit {
		if !a.platform.PumpMessages() {
			log.Info("platform asked to close")
			break
		}
		if a.quit {
			break
		}
		if a.state == StateSuspended {
			a.platform.Sleep(suspendedPoll)
			continue
		}
		if runErr = a.tick(target); runErr != nil {
			break
		}
	}

	a.state = StateShuttingDown
	if runErr != nil {
		log.Error("application stopped", "err", runErr)
	}
	a.teardown()
	return runErr
}

func (a *Application) tick(target time.Duration) error {
	a.clock.Update()
	now := a.clock.Elapsed()
	delta := now - a.lastTime

	if err := a.game.Update(delta); err != nil {
		return &Error{Stage: StageUpdate, Err: err}
	}
	if err := a.game.Render(delta); err != nil {
		return &Error{Stage: StageRender, Err: err}
	}
	if err := a.frontend.DrawFrame(&renderer.RenderPacket{DeltaTime: delta}); err != nil {
		return &Error{Stage: StageDrawFrame, Err: err}
	}

	a.clock.Update()
	frameTime := time.Duration((a.clock.Elapsed() - now) * float64(time.Second))
	a.stats.Add(frameTime)
	if a.cfg.LimitFrames && frameTime < target {
		a.platform.Sleep(target - frameTime)
	}

	a.input.Update(delta)
	a.arena.FreeAll()
	a.lastTime = now
	return nil
}

// teardown releases subsystems in reverse order of creation. It runs for
// a finished loop and for a failed New alike.
func (a *Application) teardown() {
	a.bus.Unregister(event.ApplicationQuit, a, a.onEvent)
	a.bus.Unregister(event.KeyPressed, a, a.onKey)
	a.bus.Unregister(event.KeyReleased, a, a.onKey)
	a.bus.Unregister(event.Resized, a, a.onResized)
	a.bus.Shutdown()
	a.input.Shutdown()
	if a.frontend != nil {
		a.frontend.Shutdown()
		a.frontend = nil
	}
	if a.platform != nil {
		a.platform.Shutdown()
		a.platform = nil
	}
	if a.clock != nil {
		a.clock.Stop()
	}
	a.arena.Destroy()
	logging.Logger().Info("application shut down", "frames", a.stats.FrameCount, "fps", a.stats.FPS())
}

func (a *Application) onEvent(code event.Code, _, _ any, _ event.Context) bool {
	if code == event.ApplicationQuit {
		logging.Logger().Info("application quit requested")
		a.quit = true
		return true
	}
	return false
}

func (a *Application) onKey(code event.Code, _, _ any, ctx event.Context) bool {
	key := input.Key(ctx.U16(0))
	if code == event.KeyPressed && key == input.KeyEscape {
		a.bus.Fire(event.ApplicationQuit, a, event.Context{})
		return true
	}
	logging.Logger().Debug("key event", "code", code, "key", key)
	return false
}

func (a *Application) onResized(_ event.Code, _, _ any, ctx event.Context) bool {
	w, h := uint32(ctx.U16(0)), uint32(ctx.U16(1))
	if w == a.width && h == a.height {
		return false
	}
	a.width, a.height = w, h
	log := logging.Logger()
	log.Debug("window resized", "width", w, "height", h)

	if w == 0 || h == 0 {
		if a.state != StateSuspended {
			log.Info("window minimized, suspending")
			a.state = StateSuspended
		}
		return false
	}
	if a.state == StateSuspended {
		log.Info("window restored, resuming")
		a.state = StateRunning
	}
	a.game.OnResize(w, h)
	if a.frontend != nil {
		a.frontend.OnResized(uint16(w), uint16(h))
	}
	return false
}

func (a *Application) State() State                            { return a.state }
func (a *Application) Config() Config                          { return a.cfg }
func (a *Application) Bus() *event.Bus                         { return a.bus }
func (a *Application) Input() *input.System                    { return a.input }
func (a *Application) Platform() platform.Platform             { return a.platform }
func (a *Application) Renderer() *renderer.Frontend            { return a.frontend }
func (a *Application) FrameAllocator() *memory.LinearAllocator { return a.arena }
func (a *Application) Stats() clock.FrameStats                 { return a.stats }

// Size is the last framebuffer size the application saw.
func (a *Application) Size() (width, height uint32) { return a.width, a.height }
