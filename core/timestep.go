package core

import "time"

// FixedTimestep converts variable frame times into a whole number of fixed
// steps, carrying the remainder to the next frame.
type FixedTimestep struct {
	step     time.Duration
	maxSteps int
	lag      time.Duration
	dropped  uint64
}

// NewFixedTimestep returns an accumulator that runs at most maxSteps per
// Advance. A maxSteps below 1 removes the cap.
func NewFixedTimestep(step time.Duration, maxSteps int) *FixedTimestep {
	if step <= 0 {
		panic("fixed timestep must be positive")
	}
	return &FixedTimestep{step: step, maxSteps: maxSteps}
}

// Advance adds delta to the lag and returns how many steps to run. When the
// cap is hit the excess whole steps are dropped and reported; the fractional
// remainder is kept.
func (f *FixedTimestep) Advance(delta time.Duration) (steps, dropped int) {
	if delta > 0 {
		f.lag += delta
	}
	for f.lag >= f.step && (f.maxSteps < 1 || steps < f.maxSteps) {
		f.lag -= f.step
		steps++
	}
	if f.lag >= f.step {
		dropped = int(f.lag / f.step)
		f.lag -= time.Duration(dropped) * f.step
		f.dropped += uint64(dropped)
	}
	return steps, dropped
}

// Step returns the fixed increment.
func (f *FixedTimestep) Step() time.Duration {
	return f.step
}

// Lag returns the time accumulated but not yet simulated.
func (f *FixedTimestep) Lag() time.Duration {
	return f.lag
}

// Alpha returns the lag as a fraction of a step.
func (f *FixedTimestep) Alpha() float32 {
	return float32(f.lag) / float32(f.step)
}

// Dropped returns the total number of steps dropped by the cap.
func (f *FixedTimestep) Dropped() uint64 {
	return f.dropped
}

// Reset clears the accumulated lag.
func (f *FixedTimestep) Reset() {
	f.lag = 0
}
