package application

import (
	"github.com/andewx/dieselrt/config"
	"github.com/andewx/dieselrt/renderer"
)

// Config sizes the window and picks the renderer.
type Config struct {
	Name   string
	X, Y   int
	Width  uint32
	Height uint32

	// Backend names a registered renderer backend. Empty selects
	// renderer.Default().
	Backend  string
	Renderer renderer.Options

	TargetFPS   int
	LimitFrames bool
	// FrameArenaBytes sizes the allocator reset at the end of every frame.
	FrameArenaBytes uint64
}

func DefaultConfig() Config {
	return Config{
		Name:            "dieselrt testbed",
		X:               100,
		Y:               100,
		Width:           1280,
		Height:          720,
		Renderer:        renderer.DefaultOptions(),
		TargetFPS:       60,
		FrameArenaBytes: 1 << 20,
	}
}

// ConfigFromUsage reads a Config from a property bag. Missing properties
// keep their defaults.
func ConfigFromUsage(u *config.Usage) Config {
	cfg := DefaultConfig()
	if u == nil {
		return cfg
	}
	cfg.Name = u.String(config.AppName, cfg.Name)
	cfg.X = u.Int(config.WindowX, cfg.X)
	cfg.Y = u.Int(config.WindowY, cfg.Y)
	if w := u.Int(config.WindowWidth, int(cfg.Width)); w > 0 {
		cfg.Width = uint32(w)
	}
	if h := u.Int(config.WindowHeight, int(cfg.Height)); h > 0 {
		cfg.Height = uint32(h)
	}
	cfg.Backend = u.String(config.RendererBackend, cfg.Backend)
	cfg.Renderer.Validation = u.Bool(config.RendererValidate, cfg.Renderer.Validation)
	cfg.Renderer.DiscreteGPU = u.Bool(config.RendererDiscrete, cfg.Renderer.DiscreteGPU)
	cfg.LimitFrames = u.Bool(config.FrameLimit, cfg.LimitFrames)
	if fps := u.Int(config.FrameTargetFPS, cfg.TargetFPS); fps > 0 {
		cfg.TargetFPS = fps
	}
	if n := u.Int(config.FrameArenaBytes, int(cfg.FrameArenaBytes)); n > 0 {
		cfg.FrameArenaBytes = uint64(n)
	}
	return cfg
}
