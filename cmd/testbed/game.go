package main

import (
	"github.com/andewx/dieselrt/application"
	"github.com/andewx/dieselrt/event"
	"github.com/andewx/dieselrt/logging"
)

// testbed renders nothing but the clear colour. It reports the frame rate
// every couple of seconds and can stop itself after maxFrames.
type testbed struct {
	app       *application.Application
	maxFrames int

	frames    int
	sinceLog  float64
	scratchSz uint64
}

const statsInterval = 2.0

func (g *testbed) Initialize(app *application.Application) error {
	g.app = app
	g.scratchSz = 256
	logging.Logger().Info("testbed initialized", "max_frames", g.maxFrames)
	return nil
}

func (g *testbed) Update(deltaTime float64) error {
	g.frames++
	g.sinceLog += deltaTime
	if g.sinceLog >= statsInterval {
		g.sinceLog = 0
		stats := g.app.Stats()
		logging.Logger().Info("frame stats", "fps", stats.FPS(), "avg", stats.AverageDuration, "max", stats.MaxDuration)
	}
	if g.maxFrames > 0 && g.frames >= g.maxFrames {
		g.app.Bus().Fire(event.ApplicationQuit, g, event.Context{})
	}
	return nil
}

// Render only touches per-frame scratch memory; the backend clears.
func (g *testbed) Render(float64) error {
	buf, err := g.app.FrameAllocator().Allocate(g.scratchSz)
	if err != nil {
		return err
	}
	buf[0] = byte(g.frames)
	return nil
}

func (g *testbed) OnResize(width, height uint32) {
	logging.Logger().Debug("testbed resized", "width", width, "height", height)
}
