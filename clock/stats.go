package clock

import "time"

// FrameStats keeps a moving average of frame durations.
type FrameStats struct {
	FrameCount      uint64
	AverageDuration time.Duration
	MaxDuration     time.Duration
	Last            time.Duration
}

func (s *FrameStats) Add(d time.Duration) {
	const window = 64

	s.Last = d
	s.MaxDuration = max(s.MaxDuration, d)

	if s.FrameCount < window/2 {
		s.AverageDuration = d
	} else {
		s.AverageDuration = ((window-1)*s.AverageDuration + d) / window
	}
	s.FrameCount++
}

func (s *FrameStats) FPS() float64 {
	if s.AverageDuration <= 0 {
		return 0
	}
	return 1.0 / s.AverageDuration.Seconds()
}
