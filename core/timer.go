package core

// Delayer is the busy-wait primitive used between step pulses.
// Firmware targets spin on a hardware timer; tests and the host
// simulator use VirtualClock.
type Delayer interface {
	DelayMicroseconds(us uint32)
}

// Clock is a Delayer that can also report elapsed time in microseconds
type Clock interface {
	Delayer
	NowMicros() uint64
}

// VirtualClock advances logically instead of waiting
type VirtualClock struct {
	now    uint64
	delays uint64
}

// NewVirtualClock returns a clock starting at zero
func NewVirtualClock() *VirtualClock {
	return &VirtualClock{}
}

// DelayMicroseconds advances the clock by us without blocking
func (c *VirtualClock) DelayMicroseconds(us uint32) {
	c.now += uint64(us)
	c.delays++
}

// NowMicros returns the logical time
func (c *VirtualClock) NowMicros() uint64 {
	return c.now
}

// Delays returns how many delays were requested
func (c *VirtualClock) Delays() uint64 {
	return c.delays
}

// Reset rewinds the clock to zero
func (c *VirtualClock) Reset() {
	c.now = 0
	c.delays = 0
}
