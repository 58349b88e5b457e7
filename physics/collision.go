package physics

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/brickworks/ecs"
)

// Collision is one per-entity contact record. It is one of Started,
// StartedTrigger or Stopped, each naming the other entity involved.
type Collision interface {
	Other() ecs.Entity
	OtherTag() UserData
	isCollision()
}

// Started reports a new solid contact together with its geometry.
type Started struct {
	Entity  ecs.Entity
	Tag     UserData
	Contact ContactManifold
}

// StartedTrigger reports a new contact without geometry: a sensor overlap, or
// a solid contact whose manifold was unavailable.
type StartedTrigger struct {
	Entity ecs.Entity
	Tag    UserData
}

// Stopped reports the end of a contact.
type Stopped struct {
	Entity ecs.Entity
	Tag    UserData
}

func (c Started) Other() ecs.Entity         { return c.Entity }
func (c Started) OtherTag() UserData        { return c.Tag }
func (Started) isCollision()                {}
func (c StartedTrigger) Other() ecs.Entity  { return c.Entity }
func (c StartedTrigger) OtherTag() UserData { return c.Tag }
func (StartedTrigger) isCollision()         {}
func (c Stopped) Other() ecs.Entity         { return c.Entity }
func (c Stopped) OtherTag() UserData        { return c.Tag }
func (Stopped) isCollision()                {}

// IsStarted reports whether c begins a contact.
func IsStarted(c Collision) bool {
	switch c.(type) {
	case Started, StartedTrigger:
		return true
	}
	return false
}

// Collisions holds the solid contact records produced for an entity during
// the current step.
//
//ecs:component
type Collisions struct {
	Events []Collision
}

// Triggers holds the sensor contact records produced for an entity during
// the current step.
//
//ecs:component
type Triggers struct {
	Events []Collision
}

// Velocity is the linear velocity gameplay wants for a kinematic body.
//
//ecs:component
type Velocity struct {
	Linear mgl32.Vec3
}

// ContactPoint is one point of a contact manifold. Self lies on the record
// owner's collider and Other on the other collider.
type ContactPoint struct {
	Self       mgl32.Vec2
	Other      mgl32.Vec2
	LocalSelf  mgl32.Vec2
	LocalOther mgl32.Vec2
	// Penetration depth; positive when the shapes overlap.
	Depth float32
}

// ContactManifold is the geometry of a solid contact. Normal points from the
// record owner towards the other entity.
type ContactManifold struct {
	Normal mgl32.Vec2
	Points []ContactPoint
}

// Deepest returns the point with the greatest penetration.
func (m ContactManifold) Deepest() (ContactPoint, bool) {
	if len(m.Points) == 0 {
		return ContactPoint{}, false
	}
	deepest := m.Points[0]
	for _, p := range m.Points[1:] {
		if p.Depth > deepest.Depth {
			deepest = p
		}
	}
	return deepest, true
}

// Flipped returns the manifold as seen from the other participant.
func (m ContactManifold) Flipped() ContactManifold {
	flipped := ContactManifold{
		Normal: m.Normal.Mul(-1),
		Points: make([]ContactPoint, len(m.Points)),
	}
	for i, p := range m.Points {
		flipped.Points[i] = ContactPoint{
			Self:       p.Other,
			Other:      p.Self,
			LocalSelf:  p.LocalOther,
			LocalOther: p.LocalSelf,
			Depth:      p.Depth,
		}
	}
	return flipped
}
