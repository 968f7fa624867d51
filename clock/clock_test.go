package clock

import (
	"testing"
	"time"
)

type fakeTime float64

func (f *fakeTime) AbsoluteTime() float64 { return float64(*f) }

func TestClock(t *testing.T) {
	now := fakeTime(10)
	c := New(&now)

	c.Update()
	if c.Elapsed() != 0 {
		t.Fatalf("Update before Start\nhave %v\nwant 0", c.Elapsed())
	}

	c.Start()
	now = 12.5
	c.Update()
	if c.Elapsed() != 2.5 {
		t.Fatalf("Elapsed\nhave %v\nwant 2.5", c.Elapsed())
	}

	c.Stop()
	now = 20
	c.Update()
	if c.Elapsed() != 2.5 {
		t.Fatalf("Elapsed after Stop\nhave %v\nwant 2.5", c.Elapsed())
	}
	if c.Running() {
		t.Fatal("Running after Stop")
	}
}

func TestFrameStats(t *testing.T) {
	var s FrameStats
	for i := 0; i < 10; i++ {
		s.Add(16 * time.Millisecond)
	}
	s.Add(40 * time.Millisecond)

	if s.FrameCount != 11 {
		t.Fatalf("FrameCount\nhave %d\nwant 11", s.FrameCount)
	}
	if s.MaxDuration != 40*time.Millisecond {
		t.Fatalf("MaxDuration\nhave %v\nwant 40ms", s.MaxDuration)
	}
	if fps := s.FPS(); fps < 20 || fps > 70 {
		t.Fatalf("FPS out of range: %v", fps)
	}

	var empty FrameStats
	if empty.FPS() != 0 {
		t.Fatalf("FPS of empty stats\nhave %v\nwant 0", empty.FPS())
	}
}
