package breakout

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/brickworks/core"
	"github.com/plus3/brickworks/ecs"
	"github.com/plus3/brickworks/physics"
)

// PaddleSystem moves the paddle from keyboard input and keeps it between
// the side walls. Space asks the ball to launch.
type PaddleSystem struct {
	ecs.BaseSystem
	Context *core.GameContext
	// Width of the arena, used to clamp the paddle.
	Width float32

	Paddles ecs.Query[struct {
		*Paddle
		*core.Input
		*core.Transform
		*physics.Velocity
		*physics.Collisions
	}]
	Control ecs.Singleton[Control]
}

func (s *PaddleSystem) Name() string { return "paddle" }

func (s *PaddleSystem) Update(*ecs.UpdateFrame) error {
	active := s.Context.State() == core.StateActive

	for p := range s.Paddles.Values() {
		for _, c := range p.Collisions.Events {
			switch c.OtherTag() {
			case ElementLeftWall:
				p.Paddle.AgainstLeft = physics.IsStarted(c)
			case ElementRightWall:
				p.Paddle.AgainstRight = physics.IsStarted(c)
			}
		}

		var vx float32
		if active {
			held := p.Input.Held
			if (held.Has(core.KeyLeft) || held.Has(core.KeyA)) && !p.Paddle.AgainstLeft {
				vx -= p.Paddle.Speed
			}
			if (held.Has(core.KeyRight) || held.Has(core.KeyD)) && !p.Paddle.AgainstRight {
				vx += p.Paddle.Speed
			}
		}
		p.Velocity.Linear = mgl32.Vec3{vx, 0, 0}

		p.Transform.Position[0] = mgl32.Clamp(p.Transform.Position.X(), p.Paddle.HalfWidth, s.Width-p.Paddle.HalfWidth)
	}
	return nil
}

// EarlyUpdate reads the launch key once per frame, so a press is not lost
// on frames that run no physics step.
func (s *PaddleSystem) EarlyUpdate(*ecs.UpdateFrame) error {
	control := s.Control.Get()
	if control == nil || s.Context.State() != core.StateActive {
		return nil
	}
	for p := range s.Paddles.Values() {
		if p.Input.Pressed.Has(core.KeySpace) {
			control.Launch = true
		}
	}
	return nil
}
