package application

import (
	"slices"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/andewx/dieselrt/config"
	"github.com/andewx/dieselrt/event"
	"github.com/andewx/dieselrt/input"
	"github.com/andewx/dieselrt/platform"
	"github.com/andewx/dieselrt/renderer"
)

// scriptedPlatform runs script[n] during the n-th pump and closes after
// maxTicks pumps. Time advances by step on every query.
type scriptedPlatform struct {
	bus   *event.Bus
	input *input.System
	log   *[]string

	ticks    int
	maxTicks int
	script   map[int]func(p *scriptedPlatform)

	now, step     float64
	width, height uint32
	sleeps        []time.Duration
}

func (p *scriptedPlatform) PumpMessages() bool {
	p.ticks++
	if p.ticks > p.maxTicks {
		return false
	}
	if f := p.script[p.ticks]; f != nil {
		f(p)
	}
	return true
}

func (p *scriptedPlatform) AbsoluteTime() float64 {
	p.now += p.step
	return p.now
}

func (p *scriptedPlatform) Sleep(d time.Duration) { p.sleeps = append(p.sleeps, d) }

func (p *scriptedPlatform) FramebufferSize() (uint32, uint32) { return p.width, p.height }

func (p *scriptedPlatform) Shutdown() { *p.log = append(*p.log, "platform.Shutdown") }

type countingBackend struct {
	log     *[]string
	begins  int
	ends    int
	resized [][2]uint16
}

func (b *countingBackend) Initialize(appName string, width, height uint32) error {
	*b.log = append(*b.log, "backend.Initialize")
	return nil
}

func (b *countingBackend) Shutdown() { *b.log = append(*b.log, "backend.Shutdown") }

func (b *countingBackend) OnResized(width, height uint16) {
	b.resized = append(b.resized, [2]uint16{width, height})
}

func (b *countingBackend) BeginFrame(float64) (renderer.FrameStatus, error) {
	b.begins++
	return renderer.FrameSubmitted, nil
}

func (b *countingBackend) EndFrame(float64) error {
	b.ends++
	return nil
}

type testGame struct {
	app      *Application
	initErr  error
	failErr  error
	failAt   int
	failStep Stage
	alloc    uint64

	updates, renders int
	resizes          [][2]uint32
}

func (g *testGame) Initialize(app *Application) error {
	g.app = app
	return g.initErr
}

func (g *testGame) Update(float64) error {
	g.updates++
	if g.failStep == StageUpdate && g.updates == g.failAt {
		return g.failErr
	}
	return nil
}

func (g *testGame) Render(float64) error {
	g.renders++
	if g.failStep == StageRender && g.renders == g.failAt {
		return g.failErr
	}
	if g.alloc > 0 {
		if _, err := g.app.FrameAllocator().Allocate(g.alloc); err != nil {
			return err
		}
	}
	return nil
}

func (g *testGame) OnResize(width, height uint32) {
	g.resizes = append(g.resizes, [2]uint32{width, height})
}

type fixture struct {
	log      []string
	platform *scriptedPlatform
	backend  *countingBackend
	game     *testGame
}

const testBackend = "apptest"

func newFixture(t *testing.T, maxTicks int) *fixture {
	f := &fixture{game: &testGame{}}
	f.platform = &scriptedPlatform{
		log:      &f.log,
		maxTicks: maxTicks,
		script:   make(map[int]func(*scriptedPlatform)),
		step:     0.001,
		width:    1280,
		height:   720,
	}
	f.backend = &countingBackend{log: &f.log}
	renderer.Register(testBackend, func(platform.Platform, renderer.Options) (renderer.Backend, error) {
		return f.backend, nil
	})
	t.Cleanup(func() { renderer.Unregister(testBackend) })
	return f
}

func (f *fixture) factory(_ platform.WindowConfig, bus *event.Bus, in *input.System) (platform.Platform, error) {
	f.platform.bus, f.platform.input = bus, in
	return f.platform, nil
}

func (f *fixture) newApp(t *testing.T, cfg Config) *Application {
	t.Helper()
	cfg.Backend = testBackend
	app, err := New(cfg, f.game, f.factory)
	if err != nil {
		t.Fatalf("New:\nhave %v\nwant nil", err)
	}
	return app
}

func TestRunDrivesFrames(t *testing.T) {
	f := newFixture(t, 3)
	app := f.newApp(t, DefaultConfig())
	if app.State() != StateCreated {
		t.Fatalf("State before Run\nhave %v\nwant %v", app.State(), StateCreated)
	}
	if err := app.Run(); err != nil {
		t.Fatalf("Run:\nhave %v\nwant nil", err)
	}

	if f.backend.begins != 3 || f.backend.ends != 3 {
		t.Fatalf("frames\nhave %d begin, %d end\nwant 3, 3", f.backend.begins, f.backend.ends)
	}
	if f.game.updates != 3 || f.game.renders != 3 {
		t.Fatalf("game calls\nhave %d update, %d render\nwant 3, 3", f.game.updates, f.game.renders)
	}
	if have := app.Stats().FrameCount; have != 3 {
		t.Fatalf("FrameCount\nhave %d\nwant 3", have)
	}
	if want := [][2]uint32{{1280, 720}}; !slices.Equal(f.game.resizes, want) {
		t.Fatalf("initial resize\nhave %v\nwant %v", f.game.resizes, want)
	}
	want := []string{"backend.Initialize", "backend.Shutdown", "platform.Shutdown"}
	if !slices.Equal(f.log, want) {
		t.Fatalf("lifecycle\nhave %v\nwant %v", f.log, want)
	}
	if app.State() != StateShuttingDown {
		t.Fatalf("State after Run\nhave %v\nwant %v", app.State(), StateShuttingDown)
	}
	if app.Bus().Fire(event.ApplicationQuit, nil, event.Context{}) {
		t.Fatal("bus still delivers events after shutdown")
	}
	if err := app.Run(); err == nil {
		t.Fatal("second Run succeeded")
	}
}

func TestQuit(t *testing.T) {
	for _, x := range [...]struct {
		name string
		quit func(p *scriptedPlatform)
	}{
		{"escape", func(p *scriptedPlatform) { p.input.ProcessKey(input.KeyEscape, true) }},
		{"quit event", func(p *scriptedPlatform) { p.bus.Fire(event.ApplicationQuit, p, event.Context{}) }},
	} {
		f := newFixture(t, 10)
		f.platform.script[2] = x.quit
		app := f.newApp(t, DefaultConfig())
		if err := app.Run(); err != nil {
			t.Fatalf("%s: Run:\nhave %v\nwant nil", x.name, err)
		}
		if f.backend.begins != 1 {
			t.Fatalf("%s: frames\nhave %d\nwant 1", x.name, f.backend.begins)
		}
		if f.platform.ticks != 2 {
			t.Fatalf("%s: pumps\nhave %d\nwant 2", x.name, f.platform.ticks)
		}
	}
}

func TestOtherKeysDoNotQuit(t *testing.T) {
	f := newFixture(t, 3)
	f.platform.script[1] = func(p *scriptedPlatform) {
		p.input.ProcessKey(input.KeyA, true)
		p.input.ProcessKey(input.KeyEscape, false)
	}
	app := f.newApp(t, DefaultConfig())
	if err := app.Run(); err != nil {
		t.Fatalf("Run:\nhave %v\nwant nil", err)
	}
	if f.backend.begins != 3 {
		t.Fatalf("frames\nhave %d\nwant 3", f.backend.begins)
	}
}

func TestSuspendOnZeroSize(t *testing.T) {
	f := newFixture(t, 5)
	var states []State
	var app *Application
	f.platform.script[2] = func(p *scriptedPlatform) {
		p.bus.Fire(event.Resized, p, event.ResizeContext(0, 0))
		states = append(states, app.State())
	}
	f.platform.script[4] = func(p *scriptedPlatform) {
		p.bus.Fire(event.Resized, p, event.ResizeContext(800, 600))
		states = append(states, app.State())
	}
	app = f.newApp(t, DefaultConfig())
	if err := app.Run(); err != nil {
		t.Fatalf("Run:\nhave %v\nwant nil", err)
	}

	// Ticks 2 and 3 are suspended.
	if f.backend.begins != 3 || f.game.updates != 3 {
		t.Fatalf("frames\nhave %d begin, %d update\nwant 3, 3", f.backend.begins, f.game.updates)
	}
	if want := []State{StateSuspended, StateRunning}; !slices.Equal(states, want) {
		t.Fatalf("states\nhave %v\nwant %v", states, want)
	}
	if want := [][2]uint16{{800, 600}}; !slices.Equal(f.backend.resized, want) {
		t.Fatalf("backend resizes\nhave %v\nwant %v", f.backend.resized, want)
	}
	if want := [][2]uint32{{1280, 720}, {800, 600}}; !slices.Equal(f.game.resizes, want) {
		t.Fatalf("game resizes\nhave %v\nwant %v", f.game.resizes, want)
	}
	if len(f.platform.sleeps) != 2 {
		t.Fatalf("suspended sleeps\nhave %v\nwant 2 entries", f.platform.sleeps)
	}
	if w, h := app.Size(); w != 800 || h != 600 {
		t.Fatalf("Size\nhave %dx%d\nwant 800x600", w, h)
	}
}

func TestSameSizeResizeIgnored(t *testing.T) {
	f := newFixture(t, 2)
	f.platform.script[1] = func(p *scriptedPlatform) {
		p.bus.Fire(event.Resized, p, event.ResizeContext(1280, 720))
	}
	app := f.newApp(t, DefaultConfig())
	if err := app.Run(); err != nil {
		t.Fatalf("Run:\nhave %v\nwant nil", err)
	}
	if len(f.backend.resized) != 0 || len(f.game.resizes) != 1 {
		t.Fatalf("resizes\nhave backend %v, game %v\nwant none past the initial one", f.backend.resized, f.game.resizes)
	}
}

func TestGameErrorStopsLoop(t *testing.T) {
	failure := errors.New("game failed")
	for _, stage := range [...]Stage{StageUpdate, StageRender} {
		f := newFixture(t, 10)
		f.game.failErr = failure
		f.game.failAt = 2
		f.game.failStep = stage
		app := f.newApp(t, DefaultConfig())

		err := app.Run()
		var appErr *Error
		if !errors.As(err, &appErr) || appErr.Stage != stage {
			t.Fatalf("%s: Run\nhave %v\nwant *Error at %s", stage, err, stage)
		}
		if errors.Cause(err) != failure {
			t.Fatalf("%s: cause\nhave %v\nwant %v", stage, errors.Cause(err), failure)
		}
		if f.backend.begins != 1 {
			t.Fatalf("%s: frames\nhave %d\nwant 1", stage, f.backend.begins)
		}
		want := []string{"backend.Initialize", "backend.Shutdown", "platform.Shutdown"}
		if !slices.Equal(f.log, want) {
			t.Fatalf("%s: lifecycle\nhave %v\nwant %v", stage, f.log, want)
		}
	}
}

func TestNewFailures(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		f := newFixture(t, 1)
		cfg := DefaultConfig()
		cfg.Backend = "no-such-backend"
		_, err := New(cfg, f.game, f.factory)
		var appErr *Error
		if !errors.As(err, &appErr) || appErr.Stage != StageRenderer {
			t.Fatalf("New\nhave %v\nwant *Error at %s", err, StageRenderer)
		}
		if errors.Cause(err) != renderer.ErrBackendNotAvailable {
			t.Fatalf("cause\nhave %v\nwant %v", errors.Cause(err), renderer.ErrBackendNotAvailable)
		}
		if want := []string{"platform.Shutdown"}; !slices.Equal(f.log, want) {
			t.Fatalf("teardown\nhave %v\nwant %v", f.log, want)
		}
	})

	t.Run("platform", func(t *testing.T) {
		f := newFixture(t, 1)
		failure := errors.New("no display")
		_, err := New(DefaultConfig(), f.game,
			func(platform.WindowConfig, *event.Bus, *input.System) (platform.Platform, error) {
				return nil, failure
			})
		var appErr *Error
		if !errors.As(err, &appErr) || appErr.Stage != StagePlatform || errors.Cause(err) != failure {
			t.Fatalf("New\nhave %v\nwant *Error at %s caused by %v", err, StagePlatform, failure)
		}
	})

	t.Run("game initialize", func(t *testing.T) {
		f := newFixture(t, 1)
		f.game.initErr = errors.New("assets missing")
		cfg := DefaultConfig()
		cfg.Backend = testBackend
		_, err := New(cfg, f.game, f.factory)
		var appErr *Error
		if !errors.As(err, &appErr) || appErr.Stage != StageGameInit {
			t.Fatalf("New\nhave %v\nwant *Error at %s", err, StageGameInit)
		}
		want := []string{"backend.Initialize", "backend.Shutdown", "platform.Shutdown"}
		if !slices.Equal(f.log, want) {
			t.Fatalf("teardown\nhave %v\nwant %v", f.log, want)
		}
	})
}

func TestLimitFrames(t *testing.T) {
	for _, limit := range [...]bool{false, true} {
		f := newFixture(t, 3)
		cfg := DefaultConfig()
		cfg.LimitFrames = limit
		app := f.newApp(t, cfg)
		if err := app.Run(); err != nil {
			t.Fatalf("limit=%t: Run:\nhave %v\nwant nil", limit, err)
		}
		if !limit {
			if len(f.platform.sleeps) != 0 {
				t.Fatalf("limit=false: sleeps\nhave %v\nwant none", f.platform.sleeps)
			}
			continue
		}
		if len(f.platform.sleeps) != 3 {
			t.Fatalf("limit=true: sleeps\nhave %v\nwant 3 entries", f.platform.sleeps)
		}
		target := time.Second / 60
		for _, d := range f.platform.sleeps {
			if d <= 0 || d >= target {
				t.Fatalf("limit=true: sleep\nhave %v\nwant in (0, %v)", d, target)
			}
		}
	}
}

func TestFrameAllocatorResetsEachFrame(t *testing.T) {
	f := newFixture(t, 4)
	f.game.alloc = 64
	cfg := DefaultConfig()
	cfg.FrameArenaBytes = 100
	app := f.newApp(t, cfg)
	if err := app.Run(); err != nil {
		t.Fatalf("Run:\nhave %v\nwant nil", err)
	}
	if f.game.renders != 4 {
		t.Fatalf("renders\nhave %d\nwant 4", f.game.renders)
	}
}

func TestConfigFromUsage(t *testing.T) {
	if have, want := ConfigFromUsage(nil), DefaultConfig(); have != want {
		t.Fatalf("nil usage\nhave %+v\nwant %+v", have, want)
	}

	u := config.NewUsage("testbed")
	u.SetString(config.AppName, "demo")
	u.SetInt(config.WindowWidth, 640)
	u.SetInt(config.WindowHeight, -1)
	u.SetString(config.RendererBackend, renderer.BackendNull)
	u.SetBool(config.RendererValidate, true)
	u.SetBool(config.FrameLimit, true)
	u.SetInt(config.FrameTargetFPS, 30)

	cfg := ConfigFromUsage(u)
	def := DefaultConfig()
	if cfg.Name != "demo" || cfg.Width != 640 || cfg.Height != def.Height {
		t.Fatalf("window\nhave %q %dx%d\nwant %q 640x%d", cfg.Name, cfg.Width, cfg.Height, "demo", def.Height)
	}
	if cfg.Backend != renderer.BackendNull || !cfg.Renderer.Validation || !cfg.Renderer.DiscreteGPU {
		t.Fatalf("renderer\nhave %q %+v\nwant %q with validation", cfg.Backend, cfg.Renderer, renderer.BackendNull)
	}
	if !cfg.LimitFrames || cfg.TargetFPS != 30 || cfg.FrameArenaBytes != def.FrameArenaBytes {
		t.Fatalf("frame\nhave limit=%t fps=%d arena=%d\nwant true, 30, %d", cfg.LimitFrames, cfg.TargetFPS, cfg.FrameArenaBytes, def.FrameArenaBytes)
	}
}
