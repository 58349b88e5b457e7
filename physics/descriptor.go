package physics

import (
	"github.com/go-gl/mathgl/mgl32"
)

// UserData is an opaque tag attached to a collider. Gameplay code uses it to
// classify what an entity collided with.
type UserData uint64

// BodyType selects how a rigid body is simulated.
type BodyType int

const (
	Dynamic BodyType = iota
	Fixed
	KinematicVelocityBased
	KinematicPositionBased
)

func (t BodyType) String() string {
	switch t {
	case Dynamic:
		return "dynamic"
	case Fixed:
		return "fixed"
	case KinematicVelocityBased:
		return "kinematic_velocity"
	case KinematicPositionBased:
		return "kinematic_position"
	default:
		return "unknown"
	}
}

// IsKinematic reports whether gameplay drives the body directly.
func (t BodyType) IsKinematic() bool {
	return t == KinematicVelocityBased || t == KinematicPositionBased
}

// ActiveEvents selects which events a collider reports.
type ActiveEvents uint32

const (
	ActiveEventsNone            ActiveEvents = 0
	ActiveEventsCollisionEvents ActiveEvents = 1 << 0
)

// ActiveCollisionTypes selects which pairs of body types generate contacts.
// A pair is tested against the union of both colliders' flags.
type ActiveCollisionTypes uint16

const (
	DynamicDynamic ActiveCollisionTypes = 1 << iota
	DynamicKinematic
	DynamicFixed
	KinematicKinematic
	KinematicFixed
	FixedFixed

	DefaultActiveCollisionTypes = DynamicDynamic | DynamicKinematic | DynamicFixed
	AllActiveCollisionTypes     = DynamicDynamic | DynamicKinematic | DynamicFixed |
		KinematicKinematic | KinematicFixed | FixedFixed
)

type bodyClass int

const (
	classDynamic bodyClass = iota
	classKinematic
	classFixed
)

func classOf(t BodyType) bodyClass {
	switch {
	case t == Dynamic:
		return classDynamic
	case t.IsKinematic():
		return classKinematic
	default:
		return classFixed
	}
}

// Allows reports whether a pair of bodies of the given types is enabled.
func (t ActiveCollisionTypes) Allows(a, b BodyType) bool {
	ca, cb := classOf(a), classOf(b)
	if ca > cb {
		ca, cb = cb, ca
	}

	var required ActiveCollisionTypes
	switch {
	case ca == classDynamic && cb == classDynamic:
		required = DynamicDynamic
	case ca == classDynamic && cb == classKinematic:
		required = DynamicKinematic
	case ca == classDynamic && cb == classFixed:
		required = DynamicFixed
	case ca == classKinematic && cb == classKinematic:
		required = KinematicKinematic
	case ca == classKinematic && cb == classFixed:
		required = KinematicFixed
	default:
		required = FixedFixed
	}
	return t&required != 0
}

// Group is a bitmask of collision layers.
type Group uint32

const (
	GroupNone Group = 0
	GroupAll  Group = 0xFFFFFFFF
)

// InteractionGroups filters which colliders may touch. Two colliders interact
// when each one's memberships intersect the other's filter.
type InteractionGroups struct {
	Memberships Group
	Filter      Group
}

// DefaultInteractionGroups interacts with everything.
func DefaultInteractionGroups() InteractionGroups {
	return InteractionGroups{Memberships: GroupAll, Filter: GroupAll}
}

// Test reports whether the two groups interact.
func (g InteractionGroups) Test(other InteractionGroups) bool {
	return g.Memberships&other.Filter != 0 && other.Memberships&g.Filter != 0
}

// ColliderDescriptor is the raw collider an entity carries until the world
// hands it to the Engine.
//
//ecs:component
type ColliderDescriptor struct {
	Shape Shape
	// Offset from the parent body, or the world position of a standalone collider.
	Translation          mgl32.Vec2
	Rotation             float32
	Sensor               bool
	Friction             float32
	Restitution          float32
	Groups               InteractionGroups
	ActiveEvents         ActiveEvents
	ActiveCollisionTypes ActiveCollisionTypes
	UserData             UserData
}

// RigidBodyDescriptor is the raw rigid body an entity carries until the world
// hands it to the Engine.
//
//ecs:component
type RigidBodyDescriptor struct {
	Kind           BodyType
	Translation    mgl32.Vec2
	Rotation       float32
	LinearVelocity mgl32.Vec2
	Mass           float32
}

// ColliderBuilder assembles a ColliderDescriptor.
type ColliderBuilder struct {
	desc ColliderDescriptor
}

// NewColliderBuilder starts a collider with the given shape and default settings.
func NewColliderBuilder(shape Shape) *ColliderBuilder {
	return &ColliderBuilder{desc: ColliderDescriptor{
		Shape:                shape,
		Friction:             0.5,
		Groups:               DefaultInteractionGroups(),
		ActiveCollisionTypes: DefaultActiveCollisionTypes,
	}}
}

func (b *ColliderBuilder) UserData(data UserData) *ColliderBuilder {
	b.desc.UserData = data
	return b
}

func (b *ColliderBuilder) Sensor(sensor bool) *ColliderBuilder {
	b.desc.Sensor = sensor
	return b
}

func (b *ColliderBuilder) ActiveEvents(events ActiveEvents) *ColliderBuilder {
	b.desc.ActiveEvents = events
	return b
}

func (b *ColliderBuilder) ActiveCollisionTypes(types ActiveCollisionTypes) *ColliderBuilder {
	b.desc.ActiveCollisionTypes = types
	return b
}

func (b *ColliderBuilder) CollisionGroups(groups InteractionGroups) *ColliderBuilder {
	b.desc.Groups = groups
	return b
}

func (b *ColliderBuilder) Translation(x, y float32) *ColliderBuilder {
	b.desc.Translation = mgl32.Vec2{x, y}
	return b
}

func (b *ColliderBuilder) Rotation(angle float32) *ColliderBuilder {
	b.desc.Rotation = angle
	return b
}

func (b *ColliderBuilder) Friction(friction float32) *ColliderBuilder {
	b.desc.Friction = friction
	return b
}

func (b *ColliderBuilder) Restitution(restitution float32) *ColliderBuilder {
	b.desc.Restitution = restitution
	return b
}

// Build returns the finished descriptor.
func (b *ColliderBuilder) Build() ColliderDescriptor {
	desc := b.desc
	if desc.Shape.Kind == ShapeConvex {
		desc.Shape.Points = append([]mgl32.Vec2(nil), desc.Shape.Points...)
	}
	return desc
}

// RigidBodyBuilder assembles a RigidBodyDescriptor.
type RigidBodyBuilder struct {
	desc RigidBodyDescriptor
}

// NewRigidBodyBuilder starts a body of the given type with unit mass.
func NewRigidBodyBuilder(kind BodyType) *RigidBodyBuilder {
	return &RigidBodyBuilder{desc: RigidBodyDescriptor{Kind: kind, Mass: 1}}
}

func KinematicVelocityBasedBody() *RigidBodyBuilder {
	return NewRigidBodyBuilder(KinematicVelocityBased)
}

func KinematicPositionBasedBody() *RigidBodyBuilder {
	return NewRigidBodyBuilder(KinematicPositionBased)
}

func DynamicBody() *RigidBodyBuilder {
	return NewRigidBodyBuilder(Dynamic)
}

func FixedBody() *RigidBodyBuilder {
	return NewRigidBodyBuilder(Fixed)
}

func (b *RigidBodyBuilder) Translation(x, y float32) *RigidBodyBuilder {
	b.desc.Translation = mgl32.Vec2{x, y}
	return b
}

func (b *RigidBodyBuilder) Rotation(angle float32) *RigidBodyBuilder {
	b.desc.Rotation = angle
	return b
}

func (b *RigidBodyBuilder) LinearVelocity(x, y float32) *RigidBodyBuilder {
	b.desc.LinearVelocity = mgl32.Vec2{x, y}
	return b
}

func (b *RigidBodyBuilder) Mass(mass float32) *RigidBodyBuilder {
	b.desc.Mass = mass
	return b
}

func (b *RigidBodyBuilder) Build() RigidBodyDescriptor {
	return b.desc
}
