package breakout

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/brickworks/core"
	"github.com/plus3/brickworks/ecs"
	"github.com/plus3/brickworks/level"
	"github.com/plus3/brickworks/physics"
)

// Config sizes the arena and its actors.
type Config struct {
	Width  float32
	Height float32

	BallRadius   float32
	BallVelocity mgl32.Vec2

	PaddleWidth  float32
	PaddleHeight float32
	PaddleSpeed  float32
	// PaddleY is the height of the paddle's center.
	PaddleY float32

	// WallThickness is the half thickness of the walls around the arena.
	WallThickness float32
	Bricks        level.Area
}

func DefaultConfig() Config {
	const width, height = 800, 600
	return Config{
		Width:         width,
		Height:        height,
		BallRadius:    10,
		BallVelocity:  mgl32.Vec2{150, 350},
		PaddleWidth:   100,
		PaddleHeight:  20,
		PaddleSpeed:   500,
		PaddleY:       30,
		WallThickness: 10,
		Bricks:        level.Area{Left: 0, Top: height - 60, Width: width, Height: 200},
	}
}

// BallRest is where a stuck ball sits relative to the paddle's center.
func (c Config) BallRest() mgl32.Vec2 {
	return mgl32.Vec2{0, c.PaddleHeight/2 + c.BallRadius + 1}
}

var (
	paddleColor = color.RGBA{230, 230, 240, 255}
	ballColor   = color.RGBA{255, 210, 80, 255}
)

const (
	layerBricks = iota
	layerActors
)

// Arena names the entities SpawnArena created.
type Arena struct {
	Ball   ecs.Entity
	Paddle ecs.Entity
	Walls  [4]ecs.Entity
}

// SpawnArena adds the walls, the paddle and a ball stuck to it.
func SpawnArena(world *core.World, config Config) Arena {
	var arena Arena
	w, h, t := config.Width, config.Height, config.WallThickness

	arena.Walls[0] = spawnWall(world, mgl32.Vec2{w / 2, -t}, mgl32.Vec2{w/2 + 2*t, t}, true, ElementBottomWall)
	arena.Walls[1] = spawnWall(world, mgl32.Vec2{w / 2, h + t}, mgl32.Vec2{w/2 + 2*t, t}, false, ElementTopWall)
	arena.Walls[2] = spawnWall(world, mgl32.Vec2{-t, h / 2}, mgl32.Vec2{t, h/2 + 2*t}, false, ElementLeftWall)
	arena.Walls[3] = spawnWall(world, mgl32.Vec2{w + t, h / 2}, mgl32.Vec2{t, h/2 + 2*t}, false, ElementRightWall)

	arena.Paddle = spawnPaddle(world, config)
	arena.Ball = spawnBall(world, config)
	return arena
}

func spawnWall(world *core.World, center, half mgl32.Vec2, sensor bool, element Element) ecs.Entity {
	return world.Spawn(
		core.NewTransform(center.X(), center.Y(), 0),
		physics.NewColliderBuilder(physics.Cuboid(half.X(), half.Y())).
			UserData(element).
			ActiveEvents(physics.ActiveEventsCollisionEvents).
			Sensor(sensor).
			Build(),
	)
}

func actorCollider(shape physics.Shape, element Element) physics.ColliderDescriptor {
	return physics.NewColliderBuilder(shape).
		UserData(element).
		ActiveEvents(physics.ActiveEventsCollisionEvents).
		ActiveCollisionTypes(physics.KinematicKinematic | physics.KinematicFixed).
		Friction(0).
		Build()
}

func spawnPaddle(world *core.World, config Config) ecs.Entity {
	half := mgl32.Vec2{config.PaddleWidth / 2, config.PaddleHeight / 2}
	return world.Spawn(
		core.NewTransform(config.Width/2, config.PaddleY, 0),
		core.Input{},
		Paddle{Speed: config.PaddleSpeed, HalfWidth: half.X()},
		physics.Velocity{},
		actorCollider(physics.Cuboid(half.X(), half.Y()), ElementPlayer),
		physics.KinematicVelocityBasedBody().Build(),
		Sprite{Shape: SpriteRect, HalfExtents: half, Color: paddleColor, Texture: "paddle.png", Layer: layerActors},
	)
}

func spawnBall(world *core.World, config Config) ecs.Entity {
	rest := mgl32.Vec2{config.Width / 2, config.PaddleY}.Add(config.BallRest())
	return world.Spawn(
		core.NewTransform(rest.X(), rest.Y(), 0),
		Bouncing{
			InitialVelocity: config.BallVelocity,
			CurrentVelocity: config.BallVelocity,
			MaxDistance:     config.PaddleWidth / 2,
			Status:          BounceStuck,
		},
		physics.Velocity{},
		actorCollider(physics.Ball(config.BallRadius), ElementBall),
		physics.KinematicVelocityBasedBody().Build(),
		Sprite{
			Shape:       SpriteCircle,
			HalfExtents: mgl32.Vec2{config.BallRadius, config.BallRadius},
			Color:       ballColor,
			Texture:     "ball.png",
			Layer:       layerActors,
		},
	)
}

// BrickSpawner is implemented by both *core.World and *ecs.Commands.
type BrickSpawner interface {
	Spawn(components ...any)
}

type worldSpawner struct{ world *core.World }

func (s worldSpawner) Spawn(components ...any) { s.world.Spawn(components...) }

// SpawnLevel adds a brick entity for every visible cell of l.
func SpawnLevel(world *core.World, l *level.Level, area level.Area) int {
	return spawnBricks(worldSpawner{world}, l, area)
}

func spawnBricks(spawner BrickSpawner, l *level.Level, area level.Area) int {
	n := 0
	for cell := range l.Layout(area) {
		element := ElementBlock
		if !cell.Brick.Breakable() {
			element = ElementSolidBlock
		}
		spawner.Spawn(
			core.NewTransform(cell.Center.X(), cell.Center.Y(), 0),
			Brick{Kind: cell.Brick, X: cell.X, Y: cell.Y},
			physics.NewColliderBuilder(physics.Cuboid(cell.HalfExtents.X(), cell.HalfExtents.Y())).
				UserData(element).
				ActiveEvents(physics.ActiveEventsCollisionEvents).
				Build(),
			Sprite{
				Shape:       SpriteRect,
				HalfExtents: cell.HalfExtents,
				Color:       cell.Brick.Color(),
				Texture:     brickTexture(cell.Brick),
				Layer:       layerBricks,
			},
		)
		n++
	}
	return n
}

func brickTexture(b level.Brick) string {
	if b == level.Solid {
		return "block_solid.png"
	}
	return "block.png"
}
