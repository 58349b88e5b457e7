package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Subdivisions used when a ball is approximated by a polygon.
const ballSubdivisions = 64

var (
	// ErrUnsupportedShape is returned for shapes the solver or the scaler cannot handle.
	ErrUnsupportedShape = errors.New("unsupported shape")
	// ErrDegenerateScale is returned when scaling would collapse a shape.
	ErrDegenerateScale = errors.New("scaled shape is degenerate")
)

// ShapeKind identifies the geometry of a Shape.
type ShapeKind int

const (
	ShapeBall ShapeKind = iota
	ShapeCuboid
	ShapeConvex
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBall:
		return "ball"
	case ShapeCuboid:
		return "cuboid"
	case ShapeConvex:
		return "convex"
	default:
		return fmt.Sprintf("shape(%d)", int(k))
	}
}

// Shape is the planar geometry of a collider, expressed in the collider's
// local frame.
type Shape struct {
	Kind        ShapeKind
	Radius      float32
	HalfExtents mgl32.Vec2
	// Points of a convex polygon in counter-clockwise order.
	Points []mgl32.Vec2
}

// Ball returns a circle of the given radius.
func Ball(radius float32) Shape {
	return Shape{Kind: ShapeBall, Radius: radius}
}

// Cuboid returns a box with the given half extents.
func Cuboid(hx, hy float32) Shape {
	return Shape{Kind: ShapeCuboid, HalfExtents: mgl32.Vec2{hx, hy}}
}

// ConvexPolygon returns a polygon through points. Clockwise input is reversed.
func ConvexPolygon(points []mgl32.Vec2) Shape {
	pts := make([]mgl32.Vec2, len(points))
	copy(pts, points)
	if signedArea(pts) < 0 {
		reverse(pts)
	}
	return Shape{Kind: ShapeConvex, Points: pts}
}

// Validate reports whether the solver can build the shape.
func (s Shape) Validate() error {
	switch s.Kind {
	case ShapeBall:
		if !(s.Radius > 0) {
			return fmt.Errorf("%w: ball radius %v", ErrUnsupportedShape, s.Radius)
		}
	case ShapeCuboid:
		if !(s.HalfExtents.X() > 0) || !(s.HalfExtents.Y() > 0) {
			return fmt.Errorf("%w: cuboid half extents %v", ErrUnsupportedShape, s.HalfExtents)
		}
	case ShapeConvex:
		if len(s.Points) < 3 {
			return fmt.Errorf("%w: polygon needs at least 3 points, got %d", ErrUnsupportedShape, len(s.Points))
		}
		if math.Abs(float64(signedArea(s.Points))) < 1e-9 {
			return fmt.Errorf("%w: polygon has no area", ErrUnsupportedShape)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedShape, s.Kind)
	}
	return nil
}

// vertices returns the outline of a cuboid or polygon, counter-clockwise.
func (s Shape) vertices() []mgl32.Vec2 {
	switch s.Kind {
	case ShapeCuboid:
		hx, hy := s.HalfExtents.X(), s.HalfExtents.Y()
		return []mgl32.Vec2{{-hx, -hy}, {hx, -hy}, {hx, hy}, {-hx, hy}}
	case ShapeConvex:
		return s.Points
	}
	return nil
}

// ScaleError describes a failed ScaleShape call.
type ScaleError struct {
	Kind  ShapeKind
	Scale mgl32.Vec3
	Err   error
}

func (e *ScaleError) Error() string {
	return fmt.Sprintf("scale %s by %v: %v", e.Kind, e.Scale, e.Err)
}

func (e *ScaleError) Unwrap() error {
	return e.Err
}

// ScaleShape returns base scaled by the X and Y components of scale.
// A ball under non-uniform scale becomes a polygon approximation. Scaling
// always starts from the unscaled shape so repeated calls do not compound.
func ScaleShape(base Shape, scale mgl32.Vec3) (Shape, error) {
	sx, sy := scale.X(), scale.Y()
	if isDegenerate(sx) || isDegenerate(sy) {
		return Shape{}, &ScaleError{Kind: base.Kind, Scale: scale, Err: ErrDegenerateScale}
	}
	ax, ay := abs32(sx), abs32(sy)

	switch base.Kind {
	case ShapeBall:
		if mgl32.FloatEqualThreshold(ax, ay, 1e-6) {
			return Ball(base.Radius * ax), nil
		}
		points := make([]mgl32.Vec2, ballSubdivisions)
		for i := range points {
			theta := 2 * math.Pi * float64(i) / ballSubdivisions
			points[i] = mgl32.Vec2{
				base.Radius * ax * float32(math.Cos(theta)),
				base.Radius * ay * float32(math.Sin(theta)),
			}
		}
		return Shape{Kind: ShapeConvex, Points: points}, nil

	case ShapeCuboid:
		return Cuboid(base.HalfExtents.X()*ax, base.HalfExtents.Y()*ay), nil

	case ShapeConvex:
		if len(base.Points) < 3 {
			return Shape{}, &ScaleError{Kind: base.Kind, Scale: scale, Err: ErrUnsupportedShape}
		}
		points := make([]mgl32.Vec2, len(base.Points))
		for i, p := range base.Points {
			points[i] = mgl32.Vec2{p.X() * sx, p.Y() * sy}
		}
		// mirroring flips the winding
		if sx*sy < 0 {
			reverse(points)
		}
		return Shape{Kind: ShapeConvex, Points: points}, nil
	}

	return Shape{}, &ScaleError{Kind: base.Kind, Scale: scale, Err: ErrUnsupportedShape}
}

func isDegenerate(v float32) bool {
	f := float64(v)
	return math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) < 1e-6
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func signedArea(points []mgl32.Vec2) float32 {
	var area float32
	for i := range points {
		j := (i + 1) % len(points)
		area += points[i].X()*points[j].Y() - points[j].X()*points[i].Y()
	}
	return area / 2
}

func reverse(points []mgl32.Vec2) {
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
}
