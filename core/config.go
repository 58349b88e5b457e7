package core

import (
	"log"
	"os"
	"time"

	"github.com/plus3/brickworks/physics"
)

// Config controls a World.
type Config struct {
	// FixedStep is the simulated time per physics step. It overrides
	// Physics.Timestep.
	FixedStep time.Duration
	// MaxCatchUpSteps caps the steps run in one frame.
	MaxCatchUpSteps int
	// PoseTolerance is how far a Transform may drift from its body before
	// the body is moved to match.
	PoseTolerance float32
	// ScaleTolerance is how far a Transform's scale may drift from the
	// collider's before the shape is rebuilt.
	ScaleTolerance float32
	Physics        physics.Config
	Logger         *log.Logger
}

// DefaultConfig returns a 60Hz world with a catch-up cap of 5 steps.
func DefaultConfig() Config {
	return Config{
		FixedStep:       time.Second / 60,
		MaxCatchUpSteps: 5,
		PoseTolerance:   1e-5,
		ScaleTolerance:  1e-5,
		Physics:         physics.DefaultConfig(),
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.FixedStep <= 0 {
		c.FixedStep = def.FixedStep
	}
	if c.PoseTolerance <= 0 {
		c.PoseTolerance = def.PoseTolerance
	}
	if c.ScaleTolerance <= 0 {
		c.ScaleTolerance = def.ScaleTolerance
	}
	if c.Logger == nil {
		c.Logger = log.New(os.Stderr, "core: ", log.LstdFlags|log.Lmsgprefix)
	}
	if c.Physics.Logger == nil {
		c.Physics.Logger = c.Logger
	}
	c.Physics.Timestep = c.FixedStep
	return c
}
