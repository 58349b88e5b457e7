package physics

import (
	"iter"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/brickworks/ecs"
)

// ColliderView is a read-only snapshot of a collider.
type ColliderView struct {
	Handle ColliderHandle
	// Translation and Rotation are the collider's world pose.
	Translation mgl32.Vec2
	Rotation    float32
	Scale       mgl32.Vec3
	Sensor      bool
	Standalone  bool
	Parent      RigidBodyHandle
	Shape       Shape
	UserData    UserData
}

// RigidBodyView is a read-only snapshot of a rigid body.
type RigidBodyView struct {
	Handle         RigidBodyHandle
	Kind           BodyType
	Translation    mgl32.Vec2
	Rotation       float32
	LinearVelocity mgl32.Vec2
	Mass           float32
	Colliders      []ColliderHandle
}

func (e *Engine) colliderView(handle ColliderHandle, entry *colliderEntry) ColliderView {
	pos := fromVector(entry.body.Position())
	angle := float32(entry.body.Angle())
	if !entry.standalone {
		pos = pos.Add(mgl32.Rotate2D(angle).Mul2x1(entry.desc.Translation))
		angle += entry.desc.Rotation
	}
	scale, _ := e.scales.Get(handle)
	return ColliderView{
		Handle:      handle,
		Translation: pos,
		Rotation:    angle,
		Scale:       scale,
		Sensor:      entry.desc.Sensor,
		Standalone:  entry.standalone,
		Parent:      entry.parent,
		Shape:       entry.current,
		UserData:    entry.desc.UserData,
	}
}

func (e *Engine) bodyView(handle RigidBodyHandle, entry *bodyEntry) RigidBodyView {
	return RigidBodyView{
		Handle:         handle,
		Kind:           entry.kind,
		Translation:    fromVector(entry.body.Position()),
		Rotation:       float32(entry.body.Angle()),
		LinearVelocity: fromVector(entry.body.Velocity()),
		Mass:           entry.mass,
		Colliders:      append([]ColliderHandle(nil), entry.colliders...),
	}
}

// Collider returns a snapshot of one collider.
func (e *Engine) Collider(handle ColliderHandle) (ColliderView, bool) {
	entry, ok := e.colliders.get(uint64(handle))
	if !ok {
		return ColliderView{}, false
	}
	return e.colliderView(handle, entry), true
}

// RigidBody returns a snapshot of one rigid body.
func (e *Engine) RigidBody(handle RigidBodyHandle) (RigidBodyView, bool) {
	entry, ok := e.bodies.get(uint64(handle))
	if !ok {
		return RigidBodyView{}, false
	}
	return e.bodyView(handle, entry), true
}

// IterColliders yields a snapshot of every collider with its owner.
func (e *Engine) IterColliders() iter.Seq2[ecs.Entity, ColliderView] {
	return func(yield func(ecs.Entity, ColliderView) bool) {
		for h, entry := range e.colliders.all() {
			if !yield(entry.owner, e.colliderView(ColliderHandle(h), entry)) {
				return
			}
		}
	}
}

// IterRigidBodies yields a snapshot of every rigid body with its owner.
func (e *Engine) IterRigidBodies() iter.Seq2[ecs.Entity, RigidBodyView] {
	return func(yield func(ecs.Entity, RigidBodyView) bool) {
		for h, entry := range e.bodies.all() {
			if !yield(entry.owner, e.bodyView(RigidBodyHandle(h), entry)) {
				return
			}
		}
	}
}

// Collider is a mutable handle to a collider, valid during IterMutColliders.
type Collider struct {
	engine *Engine
	handle ColliderHandle
	entry  *colliderEntry
}

func (c *Collider) Handle() ColliderHandle {
	return c.handle
}

func (c *Collider) Standalone() bool {
	return c.entry.standalone
}

// View returns a snapshot of the collider.
func (c *Collider) View() ColliderView {
	return c.engine.colliderView(c.handle, c.entry)
}

// SetPose moves a standalone collider. Colliders attached to a rigid body
// follow their body and are left untouched; SetPose reports false for them.
func (c *Collider) SetPose(translation mgl32.Vec2, rotation float32) bool {
	if !c.entry.standalone {
		return false
	}
	c.entry.body.SetPosition(toVector(translation))
	c.entry.body.SetAngle(float64(rotation))
	c.engine.reinsert(c.entry.body)
	return true
}

// RigidBody is a mutable handle to a rigid body, valid during IterMutRigidBodies.
type RigidBody struct {
	engine *Engine
	handle RigidBodyHandle
	entry  *bodyEntry
}

func (b *RigidBody) Handle() RigidBodyHandle {
	return b.handle
}

func (b *RigidBody) Kind() BodyType {
	return b.entry.kind
}

func (b *RigidBody) View() RigidBodyView {
	return b.engine.bodyView(b.handle, b.entry)
}

func (b *RigidBody) Translation() mgl32.Vec2 {
	return fromVector(b.entry.body.Position())
}

func (b *RigidBody) Rotation() float32 {
	return float32(b.entry.body.Angle())
}

func (b *RigidBody) LinearVelocity() mgl32.Vec2 {
	return fromVector(b.entry.body.Velocity())
}

// SetPose teleports the body.
func (b *RigidBody) SetPose(translation mgl32.Vec2, rotation float32) {
	b.entry.body.SetPosition(toVector(translation))
	b.entry.body.SetAngle(float64(rotation))
	if b.entry.kind == Fixed {
		b.engine.reinsert(b.entry.body)
	}
}

// SetLinearVelocity sets the body's velocity. Fixed bodies ignore it.
func (b *RigidBody) SetLinearVelocity(velocity mgl32.Vec2) {
	if b.entry.kind == Fixed {
		return
	}
	b.entry.body.SetVelocityVector(toVector(velocity))
}

// IterMutColliders yields a mutable handle to every collider. Colliders
// cannot be added or removed until iteration ends.
func (e *Engine) IterMutColliders() iter.Seq2[ecs.Entity, *Collider] {
	return func(yield func(ecs.Entity, *Collider) bool) {
		e.iterating++
		defer func() { e.iterating-- }()

		for h, entry := range e.colliders.all() {
			if !yield(entry.owner, &Collider{engine: e, handle: ColliderHandle(h), entry: entry}) {
				return
			}
		}
	}
}

// IterMutRigidBodies yields a mutable handle to every rigid body. Bodies
// cannot be added or removed until iteration ends.
func (e *Engine) IterMutRigidBodies() iter.Seq2[ecs.Entity, *RigidBody] {
	return func(yield func(ecs.Entity, *RigidBody) bool) {
		e.iterating++
		defer func() { e.iterating-- }()

		for h, entry := range e.bodies.all() {
			if !yield(entry.owner, &RigidBody{engine: e, handle: RigidBodyHandle(h), entry: entry}) {
				return
			}
		}
	}
}
