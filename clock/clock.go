// Package clock tracks elapsed time against a platform time source.
package clock

// TimeSource reports absolute monotonic time in seconds.
type TimeSource interface {
	AbsoluteTime() float64
}

// Clock measures time since Start. Elapsed only moves when Update is called.
type Clock struct {
	source    TimeSource
	startTime float64
	elapsed   float64
	running   bool
}

func New(source TimeSource) *Clock {
	return &Clock{source: source}
}

// Start resets elapsed and begins measuring from now.
func (c *Clock) Start() {
	c.startTime = c.source.AbsoluteTime()
	c.elapsed = 0
	c.running = true
}

// Update refreshes Elapsed. It has no effect on a stopped clock.
func (c *Clock) Update() {
	if c.running {
		c.elapsed = c.source.AbsoluteTime() - c.startTime
	}
}

// Stop freezes Elapsed at its last updated value.
func (c *Clock) Stop() {
	c.running = false
	c.startTime = 0
}

func (c *Clock) Elapsed() float64 { return c.elapsed }
func (c *Clock) Running() bool    { return c.running }
