package breakout

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/brickworks/level"
	"github.com/plus3/brickworks/physics"
)

// Element tags every collider in the arena.
type Element = physics.UserData

const (
	ElementNone Element = iota
	ElementBall
	ElementPlayer
	ElementBlock
	ElementSolidBlock
	ElementLeftWall
	ElementRightWall
	ElementTopWall
	ElementBottomWall
)

// ElementName returns a readable name for a collider tag.
func ElementName(e Element) string {
	switch e {
	case ElementBall:
		return "ball"
	case ElementPlayer:
		return "player"
	case ElementBlock:
		return "block"
	case ElementSolidBlock:
		return "solid_block"
	case ElementLeftWall:
		return "left_wall"
	case ElementRightWall:
		return "right_wall"
	case ElementTopWall:
		return "top_wall"
	case ElementBottomWall:
		return "bottom_wall"
	default:
		return "none"
	}
}

// Paddle is the player-controlled bat.
//
//ecs:component
type Paddle struct {
	// Speed in units per second.
	Speed     float32
	HalfWidth float32
	// Set while the paddle touches the matching wall.
	AgainstLeft  bool
	AgainstRight bool
}

// BounceStatus tells whether the ball flies or rides the paddle.
type BounceStatus int

const (
	BounceNormal BounceStatus = iota
	BounceStuck
)

// Bouncing drives the ball.
//
//ecs:component
type Bouncing struct {
	InitialVelocity mgl32.Vec2
	CurrentVelocity mgl32.Vec2
	// MaxDistance is the paddle offset that gives the widest deflection.
	MaxDistance float32
	Status      BounceStatus
}

// Brick marks a level brick.
//
//ecs:component
type Brick struct {
	Kind level.Brick
	X, Y int
}

// SpriteShape selects how a sprite is drawn.
type SpriteShape int

const (
	SpriteRect SpriteShape = iota
	SpriteCircle
)

// Sprite is what the renderer draws at an entity's transform.
//
//ecs:component
type Sprite struct {
	Shape       SpriteShape
	HalfExtents mgl32.Vec2
	Color       color.RGBA
	// Texture is an optional image path, tinted with Color.
	Texture string
	Layer   int
}

// Control carries requests between the paddle and the ball.
type Control struct {
	Launch bool
}
