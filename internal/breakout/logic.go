package breakout

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/brickworks/core"
	"github.com/plus3/brickworks/ecs"
	"github.com/plus3/brickworks/level"
	"github.com/plus3/brickworks/physics"
)

var ErrNoLevels = errors.New("breakout needs at least one level")

// GameLogic loads levels, declares the round won once every breakable brick
// is gone, and restarts the round from the menu, win or lose states.
type GameLogic struct {
	ecs.BaseSystem
	Context *core.GameContext
	Config  Config
	Levels  []*level.Level
	// Current indexes Levels. Winning a round advances it.
	Current int

	Bricks  ecs.Query[struct{ *Brick }]
	Inputs  ecs.Query[struct{ *core.Input }]
	Balls   ecs.Query[struct {
		*Bouncing
		*core.Transform
		*physics.Velocity
	}]
	Paddles ecs.Query[struct {
		*Paddle
		*core.Transform
		*physics.Velocity
	}]
	Control ecs.Singleton[Control]
}

func (g *GameLogic) Name() string { return "game_logic" }

func (g *GameLogic) Start(frame *ecs.UpdateFrame) error {
	if len(g.Levels) == 0 {
		return ErrNoLevels
	}
	g.loadLevel(frame.Commands)
	return nil
}

func (g *GameLogic) loadLevel(commands *ecs.Commands) {
	for _, entity := range g.Bricks.Entities() {
		commands.Despawn(entity)
	}
	spawnBricks(commands, g.Levels[g.Current], g.Config.Bricks)
}

func (g *GameLogic) restartRequested() bool {
	for item := range g.Inputs.Values() {
		if item.Input.Pressed.Has(core.KeyEnter) || item.Input.Pressed.Has(core.KeyR) {
			return true
		}
	}
	return false
}

// Restart reloads the current level and puts the paddle and ball back in
// their starting places.
func (g *GameLogic) Restart(commands *ecs.Commands) {
	if len(g.Levels) > 0 {
		g.loadLevel(commands)
	}

	center := mgl32.Vec2{g.Config.Width / 2, g.Config.PaddleY}
	for p := range g.Paddles.Values() {
		p.Transform.SetPose2D(center, 0)
		p.Velocity.Linear = mgl32.Vec3{}
		p.Paddle.AgainstLeft, p.Paddle.AgainstRight = false, false
	}
	for b := range g.Balls.Values() {
		b.Transform.SetPose2D(center.Add(g.Config.BallRest()), 0)
		b.Velocity.Linear = mgl32.Vec3{}
		b.Bouncing.Status = BounceStuck
		b.Bouncing.CurrentVelocity = b.Bouncing.InitialVelocity
	}
	if control := g.Control.Get(); control != nil {
		control.Launch = false
	}
	g.Context.SetState(core.StateActive)
}

// LateUpdate checks for a cleared level. Outside play it freezes the actors
// until Enter or R restarts the round; a won round moves on to the next level.
func (g *GameLogic) LateUpdate(frame *ecs.UpdateFrame) error {
	state := g.Context.State()
	if state == core.StateActive && g.Remaining() == 0 {
		g.Context.SetState(core.StateWin)
		state = core.StateWin
	}
	if state == core.StateActive {
		return nil
	}

	if g.restartRequested() {
		if state == core.StateWin && len(g.Levels) > 0 {
			g.Current = (g.Current + 1) % len(g.Levels)
		}
		g.Restart(frame.Commands)
		return nil
	}

	for b := range g.Balls.Values() {
		b.Velocity.Linear = mgl32.Vec3{}
	}
	for p := range g.Paddles.Values() {
		p.Velocity.Linear = mgl32.Vec3{}
	}
	return nil
}

// Remaining counts the breakable bricks left.
func (g *GameLogic) Remaining() int {
	n := 0
	for item := range g.Bricks.Values() {
		if item.Brick.Kind.Breakable() {
			n++
		}
	}
	return n
}

// Setup spawns the arena and returns the gameplay systems in the order they
// have to run.
func Setup(world *core.World, ctx *core.GameContext, config Config, levels ...*level.Level) (Arena, []ecs.System) {
	ecs.NewSingleton[Control](world.Storage())
	arena := SpawnArena(world, config)

	systems := []ecs.System{
		&PaddleSystem{Context: ctx, Width: config.Width},
		&BallSystem{Context: ctx, Config: config},
		&GameLogic{Context: ctx, Config: config, Levels: levels},
	}
	return arena, systems
}
