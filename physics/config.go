package physics

import (
	"log"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// Config controls the simulation.
type Config struct {
	// Gravity is applied to dynamic bodies. Only X and Y are simulated.
	Gravity mgl32.Vec3
	// Timestep is the increment advanced by each Step.
	Timestep time.Duration
	// Iterations is the solver iteration count per step.
	Iterations int
	Logger     *log.Logger
}

// DefaultConfig returns a 60Hz configuration with earth gravity.
func DefaultConfig() Config {
	return Config{
		Gravity:    mgl32.Vec3{0, -9.81, 0},
		Timestep:   time.Second / 60,
		Iterations: 10,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Timestep <= 0 {
		c.Timestep = def.Timestep
	}
	if c.Iterations <= 0 {
		c.Iterations = def.Iterations
	}
	if c.Logger == nil {
		c.Logger = log.New(os.Stderr, "physics: ", log.LstdFlags|log.Lmsgprefix)
	}
	return c
}
