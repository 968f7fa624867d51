// Command testbed opens a window and runs the frame loop with an empty
// game, clearing the screen every frame.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/pkg/profile"

	"github.com/andewx/dieselrt/application"
	"github.com/andewx/dieselrt/config"
	"github.com/andewx/dieselrt/event"
	"github.com/andewx/dieselrt/input"
	"github.com/andewx/dieselrt/logging"
	"github.com/andewx/dieselrt/platform"
	"github.com/andewx/dieselrt/platform/desktop"
	"github.com/andewx/dieselrt/renderer"

	_ "github.com/andewx/dieselrt/renderer/null"
	_ "github.com/andewx/dieselrt/renderer/vkbind"
)

var (
	configPath  = flag.String("config", "", "JSON property file")
	backendName = flag.String("backend", "", "renderer backend, one of vulkan or null")
	width       = flag.Int("width", 0, "window width")
	height      = flag.Int("height", 0, "window height")
	validation  = flag.Bool("validation", false, "enable the Vulkan validation layer")
	discrete    = flag.Bool("discrete", true, "require a discrete GPU")
	logLevel    = flag.String("log-level", "info", "trace, debug, info, warn, error or fatal")
	logFile     = flag.String("log-file", "", "also write the log to this file")
	profileMode = flag.String("profile", "", "write a cpu, mem or trace profile")
	limitFrames = flag.Bool("limit-frames", false, "sleep to hold the target frame rate")
	headless    = flag.Bool("headless", false, "run without a window")
	frames      = flag.Int("frames", 0, "quit after this many frames, 0 runs until closed")
)

const (
	exitCreate = 1
	exitRun    = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	usage, err := loadUsage()
	if err != nil {
		fmt.Fprintln(os.Stderr, "testbed:", err)
		return exitCreate
	}
	applyFlags(usage)

	level, err := logging.ParseLevel(usage.String(config.LogLevel, "info"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "testbed:", err)
		return exitCreate
	}
	logger, closer, err := logging.New(logging.Options{
		Level:     level,
		File:      usage.String(config.LogFile, ""),
		AddSource: level <= slog.LevelDebug,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "testbed:", err)
		return exitCreate
	}
	defer closer.Close()
	logging.SetLogger(logger)
	slog.SetDefault(logger)

	if stop := startProfile(*profileMode); stop != nil {
		defer stop()
	}

	cfg := application.ConfigFromUsage(usage)
	if *headless && cfg.Backend == "" {
		cfg.Backend = renderer.BackendNull
	}

	app, err := application.New(cfg, &testbed{maxFrames: *frames}, platformFactory(*headless))
	if err != nil {
		fatal(logger, err)
		return exitCreate
	}
	if err := app.Run(); err != nil {
		fatal(logger, err)
		return exitRun
	}
	return 0
}

func loadUsage() (*config.Usage, error) {
	if *configPath == "" {
		return config.NewUsage("testbed"), nil
	}
	return config.Load(*configPath)
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(u *config.Usage) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			u.SetString(config.RendererBackend, *backendName)
		case "width":
			u.SetInt(config.WindowWidth, *width)
		case "height":
			u.SetInt(config.WindowHeight, *height)
		case "validation":
			u.SetBool(config.RendererValidate, *validation)
		case "discrete":
			u.SetBool(config.RendererDiscrete, *discrete)
		case "log-level":
			u.SetString(config.LogLevel, *logLevel)
		case "log-file":
			u.SetString(config.LogFile, *logFile)
		case "limit-frames":
			u.SetBool(config.FrameLimit, *limitFrames)
		}
	})
}

func startProfile(mode string) func() {
	var opt func(*profile.Profile)
	switch mode {
	case "":
		return nil
	case "cpu":
		opt = profile.CPUProfile
	case "mem":
		opt = profile.MemProfile
	case "trace":
		opt = profile.TraceProfile
	default:
		logging.Logger().Warn("unknown profile mode, profiling disabled", "mode", mode)
		return nil
	}
	return profile.Start(opt, profile.ProfilePath("."), profile.NoShutdownHook).Stop
}

func platformFactory(headless bool) application.PlatformFactory {
	if !headless {
		return func(cfg platform.WindowConfig, bus *event.Bus, in *input.System) (platform.Platform, error) {
			w, err := desktop.New(cfg, bus, in)
			if err != nil {
				return nil, err
			}
			return w, nil
		}
	}
	return func(cfg platform.WindowConfig, _ *event.Bus, _ *input.System) (platform.Platform, error) {
		return newInterruptible(platform.NewHeadless(cfg)), nil
	}
}

// interruptible closes a headless platform on Ctrl-C. The signal watch
// ends with Shutdown.
type interruptible struct {
	*platform.Headless
	stop context.CancelFunc
	done chan struct{}
}

func newInterruptible(h *platform.Headless) *interruptible {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	p := &interruptible{Headless: h, stop: stop, done: make(chan struct{})}
	go func() {
		defer close(p.done)
		<-ctx.Done()
		h.Close()
	}()
	return p
}

func (p *interruptible) Shutdown() {
	p.stop()
	<-p.done
	p.Headless.Shutdown()
}

func fatal(logger *slog.Logger, err error) {
	var appErr *application.Error
	if errors.As(err, &appErr) {
		logger.Log(context.Background(), logging.LevelFatal, "testbed failed", "stage", appErr.Stage, "err", appErr.Err)
		return
	}
	logger.Log(context.Background(), logging.LevelFatal, "testbed failed", "err", err)
}
