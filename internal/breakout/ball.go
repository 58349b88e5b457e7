package breakout

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/brickworks/core"
	"github.com/plus3/brickworks/ecs"
	"github.com/plus3/brickworks/physics"
)

// BallSystem bounces the ball off walls, bricks and the paddle, breaks
// bricks, and ends the round when the ball falls through the bottom.
type BallSystem struct {
	ecs.BaseSystem
	Context *core.GameContext
	Config  Config

	Balls ecs.Query[struct {
		*Bouncing
		*core.Transform
		*physics.Velocity
		*physics.Collisions
		*physics.Triggers
	}]
	Paddles ecs.Query[struct {
		*Paddle
		*core.Transform
		*physics.Velocity
	}]
	Control ecs.Singleton[Control]
}

func (s *BallSystem) Name() string { return "ball" }

type paddleState struct {
	position mgl32.Vec2
	velocity mgl32.Vec3
	found    bool
}

func (s *BallSystem) paddle() paddleState {
	for p := range s.Paddles.Values() {
		return paddleState{
			position: p.Transform.Translation2D(),
			velocity: p.Velocity.Linear,
			found:    true,
		}
	}
	return paddleState{}
}

func (s *BallSystem) Update(frame *ecs.UpdateFrame) error {
	if s.Context.State() != core.StateActive {
		return nil
	}

	paddle := s.paddle()
	launch := false
	if control := s.Control.Get(); control != nil && control.Launch {
		launch = true
		control.Launch = false
	}

	broken := make(map[ecs.Entity]struct{})
	for ball := range s.Balls.Values() {
		if s.fellOut(ball.Triggers) {
			s.Context.SetState(core.StateLose)
			ball.Velocity.Linear = mgl32.Vec3{}
			return nil
		}

		b := ball.Bouncing
		if launch && b.Status == BounceStuck {
			b.Status = BounceNormal
			b.CurrentVelocity = b.InitialVelocity
		}

		if b.Status == BounceStuck {
			if paddle.found {
				rest := paddle.position.Add(s.Config.BallRest())
				ball.Transform.SetPose2D(rest, 0)
				ball.Velocity.Linear = paddle.velocity
			}
			continue
		}

		b.CurrentVelocity = bounce(b, ball.Collisions.Events, broken)
		ball.Velocity.Linear = b.CurrentVelocity.Vec3(0)
	}

	for entity := range broken {
		frame.Commands.Despawn(entity)
	}
	return nil
}

func (s *BallSystem) fellOut(triggers *physics.Triggers) bool {
	for _, c := range triggers.Events {
		if _, ok := c.(physics.StartedTrigger); ok && c.OtherTag() == ElementBottomWall {
			return true
		}
	}
	return false
}

// bounce applies every contact that started this step and returns the new
// velocity. Breakable bricks that were hit are added to broken.
func bounce(b *Bouncing, events []physics.Collision, broken map[ecs.Entity]struct{}) mgl32.Vec2 {
	v := b.CurrentVelocity
	for _, c := range events {
		started, ok := c.(physics.Started)
		if !ok {
			continue
		}
		switch started.Tag {
		case ElementLeftWall:
			v[0] = abs32(v.X())
		case ElementRightWall:
			v[0] = -abs32(v.X())
		case ElementTopWall:
			v[1] = -abs32(v.Y())
		case ElementPlayer:
			if p, ok := started.Contact.Deepest(); ok {
				v = Deflect(v, b.InitialVelocity, p.LocalOther.X(), b.MaxDistance)
			}
		case ElementBlock, ElementSolidBlock:
			v = reflectAway(v, started.Contact)
			if started.Tag == ElementBlock {
				broken[started.Entity] = struct{}{}
			}
		}
	}
	return v
}
