package breakout

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/brickworks/physics"
)

// Deflect returns the ball velocity after it hits the paddle. offset is the
// contact's distance from the paddle center; hits further out send the ball
// off at a wider angle. The speed is preserved and the ball always leaves
// upwards.
func Deflect(current, initial mgl32.Vec2, offset, maxDistance float32) mgl32.Vec2 {
	speed := current.Len()
	if speed == 0 || maxDistance == 0 {
		return current
	}
	multiplier := offset / maxDistance * 2
	out := mgl32.Vec2{initial.X() * multiplier, abs32(current.Y())}
	if out.Len() == 0 {
		return current
	}
	return out.Normalize().Mul(speed)
}

// Side is the face of an obstacle the ball struck.
type Side int

const (
	SideNone Side = iota
	SideHorizontal
	SideVertical
)

// HitSide classifies a contact by its normal: a mostly horizontal normal
// means the ball struck a left or right face.
func HitSide(contact physics.ContactManifold) Side {
	n := contact.Normal
	switch {
	case n.X() == 0 && n.Y() == 0:
		return SideNone
	case abs32(n.X()) > abs32(n.Y()):
		return SideHorizontal
	default:
		return SideVertical
	}
}

// reflectAway turns the velocity away from an obstacle along the contact
// normal's dominant axis. Repeated contacts on the same face do not flip the
// ball back into the obstacle.
func reflectAway(v mgl32.Vec2, contact physics.ContactManifold) mgl32.Vec2 {
	n := contact.Normal
	switch HitSide(contact) {
	case SideHorizontal:
		v[0] = -sign(n.X()) * abs32(v.X())
	case SideVertical:
		v[1] = -sign(n.Y()) * abs32(v.Y())
	}
	return v
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v float32) float32 {
	if v < 0 {
		return -1
	}
	return 1
}
