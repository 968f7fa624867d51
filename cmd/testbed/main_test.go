package main

import (
	"os"
	"testing"
	"time"

	"github.com/andewx/dieselrt/application"
	"github.com/andewx/dieselrt/config"
	"github.com/andewx/dieselrt/platform"
	"github.com/andewx/dieselrt/renderer"
)

func TestHeadlessRun(t *testing.T) {
	cfg := application.DefaultConfig()
	cfg.Backend = renderer.BackendNull
	cfg.Width, cfg.Height = 320, 240

	game := &testbed{maxFrames: 3}
	app, err := application.New(cfg, game, platformFactory(true))
	if err != nil {
		t.Fatalf("New:\nhave %v\nwant nil", err)
	}
	if err := app.Run(); err != nil {
		t.Fatalf("Run:\nhave %v\nwant nil", err)
	}
	if game.frames != 3 {
		t.Fatalf("frames\nhave %d\nwant 3", game.frames)
	}
	if have := app.Stats().FrameCount; have != 3 {
		t.Fatalf("FrameCount\nhave %d\nwant 3", have)
	}
}

func TestInterruptibleShutdownEndsWatch(t *testing.T) {
	p := newInterruptible(platform.NewHeadless(platform.WindowConfig{Width: 1, Height: 1}))
	if !p.PumpMessages() {
		t.Fatal("PumpMessages before Shutdown\nhave false\nwant true")
	}
	p.Shutdown()
	select {
	case <-p.done:
	default:
		t.Fatal("signal watch still running after Shutdown")
	}
	if p.PumpMessages() {
		t.Fatal("PumpMessages after Shutdown\nhave true\nwant false")
	}
}

func TestInterruptClosesHeadless(t *testing.T) {
	p := newInterruptible(platform.NewHeadless(platform.WindowConfig{Width: 1, Height: 1}))
	defer p.Shutdown()

	self, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("FindProcess:\nhave %v\nwant nil", err)
	}
	if err := self.Signal(os.Interrupt); err != nil {
		t.Skipf("cannot signal self: %v", err)
	}
	select {
	case <-p.done:
	case <-time.After(5 * time.Second):
		t.Fatal("interrupt did not close the platform")
	}
	if p.PumpMessages() {
		t.Fatal("PumpMessages after interrupt\nhave true\nwant false")
	}
}

func TestStartProfileUnknownMode(t *testing.T) {
	if stop := startProfile("heap-of-bytes"); stop != nil {
		stop()
		t.Fatal("unknown profile mode started a profile")
	}
	if stop := startProfile(""); stop != nil {
		stop()
		t.Fatal("empty profile mode started a profile")
	}
}

func TestLoadUsageDefault(t *testing.T) {
	u, err := loadUsage()
	if err != nil {
		t.Fatalf("loadUsage:\nhave %v\nwant nil", err)
	}
	if have := u.String(config.AppName, "fallback"); have != "fallback" {
		t.Fatalf("empty usage\nhave %q\nwant %q", have, "fallback")
	}
}
