package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform places an entity in the world. The physics engine is planar:
// only X, Y and the rotation about Z are synchronised with it.
//
//ecs:component
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// NewTransform returns an unrotated, unit-scale transform at the given position.
func NewTransform(x, y, z float32) Transform {
	return Transform{
		Position: mgl32.Vec3{x, y, z},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// WithScale returns a copy of t with the given scale.
func (t Transform) WithScale(x, y, z float32) Transform {
	t.Scale = mgl32.Vec3{x, y, z}
	return t
}

// Translation2D returns the planar part of the position.
func (t Transform) Translation2D() mgl32.Vec2 {
	return t.Position.Vec2()
}

// Angle returns the rotation about the Z axis in radians.
func (t Transform) Angle() float32 {
	q := t.Rotation
	if q.W == 0 && q.V == (mgl32.Vec3{}) {
		return 0
	}
	x, y, z := q.V.X(), q.V.Y(), q.V.Z()
	sin := 2 * (q.W*z + x*y)
	cos := 1 - 2*(y*y+z*z)
	return float32(math.Atan2(float64(sin), float64(cos)))
}

// SetPose2D replaces the planar position and the rotation, keeping Z.
func (t *Transform) SetPose2D(translation mgl32.Vec2, angle float32) {
	t.Position[0] = translation.X()
	t.Position[1] = translation.Y()
	t.Rotation = mgl32.QuatRotate(angle, mgl32.Vec3{0, 0, 1})
}
