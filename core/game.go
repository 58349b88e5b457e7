package core

import (
	"context"
	"time"

	"github.com/plus3/brickworks/ecs"
)

// Renderer receives the world once per frame.
type Renderer interface {
	Present(world *World, frame FrameResult) error
}

// Clock reports the time elapsed since the previous call.
type Clock interface {
	Delta() time.Duration
}

// WallClock measures real elapsed time.
type WallClock struct {
	last time.Time
}

func NewWallClock() *WallClock {
	return &WallClock{last: time.Now()}
}

func (c *WallClock) Delta() time.Duration {
	now := time.Now()
	delta := now.Sub(c.last)
	c.last = now
	return delta
}

// FixedClock always reports the same delta.
type FixedClock time.Duration

func (c FixedClock) Delta() time.Duration {
	return time.Duration(c)
}

// Game drives a World until its GameContext ends.
type Game struct {
	world    *World
	context  *GameContext
	renderer Renderer
	started  bool
}

// NewGame wires the input and quit systems ahead of any gameplay system and
// spawns the entity that carries the keyboard state.
func NewGame(world *World, gameContext *GameContext, renderer Renderer, input InputSource) *Game {
	if input != nil {
		world.AddSystem(&InputSystem{Source: input})
	}
	world.AddSystem(&QuitSystem{Context: gameContext})
	world.Spawn(Input{}, QuitControl{Key: KeyEscape})

	return &Game{world: world, context: gameContext, renderer: renderer}
}

func (g *Game) World() *World {
	return g.world
}

func (g *Game) Context() *GameContext {
	return g.context
}

// AddSystems registers gameplay systems after the built-in ones.
func (g *Game) AddSystems(systems ...ecs.System) {
	for _, system := range systems {
		g.world.AddSystem(system)
	}
}

// Tick runs one frame and hands it to the renderer. It reports whether the
// game has ended.
func (g *Game) Tick(delta time.Duration) (FrameResult, bool) {
	if g.context.Ended() {
		return FrameResult{}, true
	}
	frame := g.world.Frame(delta)
	if g.renderer != nil {
		if err := g.renderer.Present(g.world, frame); err != nil {
			g.world.Logger().Printf("render: %v", err)
		}
	}
	return frame, g.context.Ended()
}

// Run ticks the game with deltas from clock until the context ends or ctx is
// cancelled.
func (g *Game) Run(ctx context.Context, clock Clock) error {
	for !g.context.Ended() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		g.Tick(clock.Delta())
	}
	return nil
}
