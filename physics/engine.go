package physics

import (
	"cmp"
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jakecoffman/cp"
	"github.com/kamstrup/intmap"
	"github.com/plus3/brickworks/ecs"
)

// ColliderHandle identifies a collider owned by an Engine.
type ColliderHandle uint64

// RigidBodyHandle identifies a rigid body owned by an Engine.
type RigidBodyHandle uint64

func (h ColliderHandle) String() string {
	return fmt.Sprintf("collider(%d:%d)", uint32(h), uint32(h>>32))
}

func (h RigidBodyHandle) String() string {
	return fmt.Sprintf("body(%d:%d)", uint32(h), uint32(h>>32))
}

var (
	// ErrUnknownHandle is returned when a handle does not name a live object.
	ErrUnknownHandle = errors.New("unknown handle")
	// ErrEngineLocked is returned when handles are added while a mutable iteration is running.
	ErrEngineLocked = errors.New("engine is iterating")
	// ErrDuplicateBody is returned when an entity already owns a rigid body.
	ErrDuplicateBody = errors.New("entity already has a rigid body")
)

// every collider shares one collision type so a single handler sees all pairs
const colliderCollisionType cp.CollisionType = 1

type colliderEntry struct {
	owner ecs.Entity
	// desc keeps the unscaled shape; current is what the solver holds
	desc       ColliderDescriptor
	current    Shape
	shape      *cp.Shape
	body       *cp.Body
	parent     RigidBodyHandle
	standalone bool
}

type bodyEntry struct {
	owner     ecs.Entity
	kind      BodyType
	mass      float32
	body      *cp.Body
	colliders []ColliderHandle
}

type pairKey struct {
	a, b ColliderHandle
}

func newPairKey(h1, h2 ColliderHandle) pairKey {
	if h1 > h2 {
		h1, h2 = h2, h1
	}
	return pairKey{a: h1, b: h2}
}

func (k pairKey) has(h ColliderHandle) bool {
	return k.a == h || k.b == h
}

func comparePairs(x, y pairKey) int {
	if c := cmp.Compare(x.a, y.a); c != 0 {
		return c
	}
	return cmp.Compare(x.b, y.b)
}

type pairState struct {
	sensor bool
}

// EngineStats summarises the contents of an Engine.
type EngineStats struct {
	Colliders   int
	RigidBodies int
	ActivePairs int
	Steps       uint64
}

// Engine owns the rigid-body simulation and maps solver objects back to the
// entities that own them.
type Engine struct {
	config Config
	logger *log.Logger
	space  *cp.Space
	events *EventQueue

	colliders arena[colliderEntry]
	bodies    arena[bodyEntry]

	colliderOwners *intmap.Map[ColliderHandle, ecs.Entity]
	bodyOwners     *intmap.Map[RigidBodyHandle, ecs.Entity]
	entityBodies   *intmap.Map[ecs.Entity, RigidBodyHandle]
	scales         *intmap.Map[ColliderHandle, mgl32.Vec3]

	active    map[pairKey]pairState
	manifolds map[pairKey]ContactManifold
	// pairs that separated only because a shape was rebuilt
	swapped map[pairKey]struct{}

	swapping  bool
	removing  bool
	iterating int
	steps     uint64
}

// NewEngine creates an empty simulation.
func NewEngine(config Config) *Engine {
	config = config.withDefaults()

	e := &Engine{
		config:         config,
		logger:         config.Logger,
		space:          cp.NewSpace(),
		events:         NewEventQueue(64),
		colliderOwners: intmap.New[ColliderHandle, ecs.Entity](64),
		bodyOwners:     intmap.New[RigidBodyHandle, ecs.Entity](64),
		entityBodies:   intmap.New[ecs.Entity, RigidBodyHandle](64),
		scales:         intmap.New[ColliderHandle, mgl32.Vec3](64),
		active:         make(map[pairKey]pairState),
		manifolds:      make(map[pairKey]ContactManifold),
		swapped:        make(map[pairKey]struct{}),
	}

	e.space.SetGravity(cp.Vector{X: float64(config.Gravity.X()), Y: float64(config.Gravity.Y())})
	e.space.Iterations = uint(config.Iterations)

	handler := e.space.NewCollisionHandler(colliderCollisionType, colliderCollisionType)
	handler.BeginFunc = e.begin
	handler.PreSolveFunc = e.preSolve
	handler.SeparateFunc = e.separate

	return e
}

// Config returns the configuration the engine was created with.
func (e *Engine) Config() Config {
	return e.config
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *log.Logger {
	return e.logger
}

// Events returns the queue raw contact events are pushed to.
func (e *Engine) Events() *EventQueue {
	return e.events
}

// AddRigidBody creates a rigid body owned by entity.
func (e *Engine) AddRigidBody(entity ecs.Entity, desc RigidBodyDescriptor) (RigidBodyHandle, error) {
	if e.iterating > 0 {
		return 0, ErrEngineLocked
	}
	if existing, ok := e.entityBodies.Get(entity); ok {
		return 0, fmt.Errorf("%w: %v owns %v", ErrDuplicateBody, entity, existing)
	}

	mass := desc.Mass
	if !(mass > 0) {
		mass = 1
	}

	var body *cp.Body
	switch desc.Kind {
	case Dynamic:
		// no colliders yet, so rotation stays locked until one is attached
		body = cp.NewBody(float64(mass), cp.INFINITY)
	case KinematicVelocityBased, KinematicPositionBased:
		body = cp.NewKinematicBody()
	case Fixed:
		body = cp.NewStaticBody()
	default:
		return 0, fmt.Errorf("unknown body type %d", desc.Kind)
	}

	body.SetPosition(toVector(desc.Translation))
	body.SetAngle(float64(desc.Rotation))
	if desc.Kind != Fixed {
		body.SetVelocityVector(toVector(desc.LinearVelocity))
	}
	e.space.AddBody(body)

	handle := RigidBodyHandle(e.bodies.insert(bodyEntry{
		owner: entity,
		kind:  desc.Kind,
		mass:  mass,
		body:  body,
	}))
	body.UserData = handle

	e.bodyOwners.Put(handle, entity)
	e.entityBodies.Put(entity, handle)
	return handle, nil
}

// AddCollider creates a collider owned by entity. It is attached to the
// entity's rigid body when there is one, otherwise it gets a private static
// body placed at the descriptor's translation.
func (e *Engine) AddCollider(entity ecs.Entity, desc ColliderDescriptor) (ColliderHandle, error) {
	if e.iterating > 0 {
		return 0, ErrEngineLocked
	}
	if err := desc.Shape.Validate(); err != nil {
		return 0, err
	}

	entry := colliderEntry{
		owner:   entity,
		desc:    desc,
		current: desc.Shape,
	}

	parentHandle, attached := e.entityBodies.Get(entity)
	var parent *bodyEntry
	if attached {
		parent, attached = e.bodies.get(uint64(parentHandle))
	}

	if attached {
		entry.body = parent.body
		entry.parent = parentHandle
	} else {
		body := cp.NewStaticBody()
		body.SetPosition(toVector(desc.Translation))
		body.SetAngle(float64(desc.Rotation))
		e.space.AddBody(body)
		entry.body = body
		entry.standalone = true
	}

	handle := ColliderHandle(e.colliders.insert(entry))
	stored, _ := e.colliders.get(uint64(handle))
	stored.shape = e.buildShape(handle, stored, stored.current)
	e.space.AddShape(stored.shape)

	e.colliderOwners.Put(handle, entity)
	e.scales.Put(handle, mgl32.Vec3{1, 1, 1})

	if attached {
		parent.colliders = append(parent.colliders, handle)
		e.refreshMoment(parent)
	}
	return handle, nil
}

// AddColliderAndRigidBody creates a rigid body and attaches a collider to it.
func (e *Engine) AddColliderAndRigidBody(entity ecs.Entity, collider ColliderDescriptor, body RigidBodyDescriptor) (ColliderHandle, RigidBodyHandle, error) {
	if err := collider.Shape.Validate(); err != nil {
		return 0, 0, err
	}
	bodyHandle, err := e.AddRigidBody(entity, body)
	if err != nil {
		return 0, 0, err
	}
	colliderHandle, err := e.AddCollider(entity, collider)
	if err != nil {
		e.RemoveRigidBody(bodyHandle)
		return 0, 0, err
	}
	return colliderHandle, bodyHandle, nil
}

// RemoveCollider detaches a collider from the solver and forgets it. Active
// contacts involving it end with a removed Stopped event.
func (e *Engine) RemoveCollider(handle ColliderHandle) bool {
	if e.iterating > 0 {
		return false
	}
	entry, ok := e.colliders.get(uint64(handle))
	if !ok {
		return false
	}

	e.detachShape(handle, entry.shape)

	if entry.standalone {
		e.space.RemoveBody(entry.body)
	} else if parent, ok := e.bodies.get(uint64(entry.parent)); ok {
		parent.colliders = slices.DeleteFunc(parent.colliders, func(h ColliderHandle) bool {
			return h == handle
		})
		e.refreshMoment(parent)
	}

	e.colliders.remove(uint64(handle))
	e.colliderOwners.Del(handle)
	e.scales.Del(handle)
	return true
}

// RemoveRigidBody removes a body together with every collider attached to it.
func (e *Engine) RemoveRigidBody(handle RigidBodyHandle) bool {
	if e.iterating > 0 {
		return false
	}
	entry, ok := e.bodies.get(uint64(handle))
	if !ok {
		return false
	}

	for _, collider := range slices.Clone(entry.colliders) {
		e.RemoveCollider(collider)
	}

	entry, _ = e.bodies.get(uint64(handle))
	e.space.RemoveBody(entry.body)
	owner := entry.owner

	e.bodies.remove(uint64(handle))
	e.bodyOwners.Del(handle)
	if current, ok := e.entityBodies.Get(owner); ok && current == handle {
		e.entityBodies.Del(owner)
	}
	return true
}

func (e *Engine) detachShape(handle ColliderHandle, shape *cp.Shape) {
	e.removing = true
	e.space.RemoveShape(shape)
	e.removing = false

	// the solver only reports pairs it still tracks
	var stale []pairKey
	for key := range e.active {
		if key.has(handle) {
			stale = append(stale, key)
		}
	}
	slices.SortFunc(stale, comparePairs)
	for _, key := range stale {
		e.stop(key, EventFlagRemoved)
	}

	for key := range e.manifolds {
		if key.has(handle) {
			delete(e.manifolds, key)
		}
	}
	for key := range e.swapped {
		if key.has(handle) {
			delete(e.swapped, key)
		}
	}
}

// Step advances the simulation by one Timestep.
func (e *Engine) Step() {
	e.space.Step(e.config.Timestep.Seconds())
	e.confirmSwaps()
	e.steps++
}

// confirmSwaps ends pairs that separated during a shape rebuild and did not
// touch again during the following step.
func (e *Engine) confirmSwaps() {
	if len(e.swapped) == 0 {
		return
	}
	keys := make([]pairKey, 0, len(e.swapped))
	for key := range e.swapped {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, comparePairs)
	for _, key := range keys {
		delete(e.swapped, key)
		delete(e.manifolds, key)
		if _, ok := e.active[key]; ok {
			e.stop(key, 0)
		}
	}
}

func (e *Engine) stop(key pairKey, flags EventFlags) {
	state, ok := e.active[key]
	if !ok {
		return
	}
	delete(e.active, key)
	delete(e.swapped, key)
	if state.sensor {
		flags |= EventFlagSensor
	}
	e.events.Push(RawEvent{Kind: EventStopped, Collider1: key.a, Collider2: key.b, Flags: flags})
}

func (e *Engine) arbiterHandles(arb *cp.Arbiter) (ColliderHandle, ColliderHandle, bool) {
	sa, sb := arb.Shapes()
	ha, okA := sa.UserData.(ColliderHandle)
	hb, okB := sb.UserData.(ColliderHandle)
	return ha, hb, okA && okB
}

func (e *Engine) begin(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
	ha, hb, ok := e.arbiterHandles(arb)
	if !ok {
		return false
	}
	ca, okA := e.colliders.get(uint64(ha))
	cb, okB := e.colliders.get(uint64(hb))
	if !okA || !okB {
		return false
	}

	allowed := ca.desc.ActiveCollisionTypes | cb.desc.ActiveCollisionTypes
	if !allowed.Allows(e.bodyType(ca), e.bodyType(cb)) {
		return false
	}

	key := newPairKey(ha, hb)
	sensor := ca.desc.Sensor || cb.desc.Sensor
	if !sensor {
		e.manifolds[key] = e.manifold(arb, ha, hb)
	}

	if _, ok := e.swapped[key]; ok {
		delete(e.swapped, key)
		return true
	}
	if _, ok := e.active[key]; ok {
		return true
	}
	if (ca.desc.ActiveEvents|cb.desc.ActiveEvents)&ActiveEventsCollisionEvents == 0 {
		return true
	}

	e.active[key] = pairState{sensor: sensor}
	var flags EventFlags
	if sensor {
		flags |= EventFlagSensor
	}
	e.events.Push(RawEvent{Kind: EventStarted, Collider1: key.a, Collider2: key.b, Flags: flags})
	return true
}

func (e *Engine) preSolve(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
	ha, hb, ok := e.arbiterHandles(arb)
	if !ok {
		return true
	}
	ca, okA := e.colliders.get(uint64(ha))
	cb, okB := e.colliders.get(uint64(hb))
	if okA && okB && !ca.desc.Sensor && !cb.desc.Sensor {
		e.manifolds[newPairKey(ha, hb)] = e.manifold(arb, ha, hb)
	}
	return true
}

func (e *Engine) separate(arb *cp.Arbiter, _ *cp.Space, _ interface{}) {
	ha, hb, ok := e.arbiterHandles(arb)
	if !ok {
		return
	}
	key := newPairKey(ha, hb)

	if e.swapping {
		if _, ok := e.active[key]; ok {
			e.swapped[key] = struct{}{}
		} else {
			delete(e.manifolds, key)
		}
		return
	}

	delete(e.manifolds, key)
	var flags EventFlags
	if e.removing {
		flags |= EventFlagRemoved
	}
	e.stop(key, flags)
}

// manifold converts the arbiter's contact set with the lower handle as Self.
func (e *Engine) manifold(arb *cp.Arbiter, ha, hb ColliderHandle) ContactManifold {
	set := arb.ContactPointSet()
	ca, _ := e.colliders.get(uint64(ha))
	cb, _ := e.colliders.get(uint64(hb))

	m := ContactManifold{
		Normal: fromVector(set.Normal),
		Points: make([]ContactPoint, 0, set.Count),
	}
	for i := 0; i < set.Count; i++ {
		p := set.Points[i]
		m.Points = append(m.Points, ContactPoint{
			Self:       fromVector(p.PointA),
			Other:      fromVector(p.PointB),
			LocalSelf:  toLocal(ca, p.PointA),
			LocalOther: toLocal(cb, p.PointB),
			Depth:      float32(-p.Distance),
		})
	}
	if ha > hb {
		return m.Flipped()
	}
	return m
}

// toLocal maps a world point into the collider's own frame.
func toLocal(entry *colliderEntry, point cp.Vector) mgl32.Vec2 {
	rel := fromVector(point.Sub(entry.body.Position()))
	local := mgl32.Rotate2D(float32(-entry.body.Angle())).Mul2x1(rel)
	if !entry.standalone {
		local = local.Sub(entry.desc.Translation)
	}
	return local
}

// ContactPair returns the contact geometry between two colliders with h1 as
// Self. Sensor pairs and pairs not in contact have none.
func (e *Engine) ContactPair(h1, h2 ColliderHandle) (ContactManifold, bool) {
	key := newPairKey(h1, h2)
	m, ok := e.manifolds[key]
	if !ok || len(m.Points) == 0 || e.IsSensor(h1) || e.IsSensor(h2) {
		return ContactManifold{}, false
	}
	if h1 != key.a {
		return m.Flipped(), true
	}
	return ContactManifold{Normal: m.Normal, Points: slices.Clone(m.Points)}, true
}

func (e *Engine) bodyType(entry *colliderEntry) BodyType {
	if entry.standalone {
		return Fixed
	}
	if parent, ok := e.bodies.get(uint64(entry.parent)); ok {
		return parent.kind
	}
	return Fixed
}

func (e *Engine) buildShape(handle ColliderHandle, entry *colliderEntry, shape Shape) *cp.Shape {
	var offset mgl32.Vec2
	var rotation float32
	if !entry.standalone {
		offset = entry.desc.Translation
		rotation = entry.desc.Rotation
	}

	var s *cp.Shape
	if shape.Kind == ShapeBall {
		s = cp.NewCircle(entry.body, float64(shape.Radius), toVector(offset))
	} else {
		verts := placeVertices(shape.vertices(), offset, rotation)
		s = cp.NewPolyShapeRaw(entry.body, len(verts), verts, 0)
	}

	desc := entry.desc
	s.SetSensor(desc.Sensor)
	s.SetFriction(float64(desc.Friction))
	s.SetElasticity(float64(desc.Restitution))
	s.SetCollisionType(colliderCollisionType)
	s.SetFilter(cp.NewShapeFilter(0, uint(desc.Groups.Memberships), uint(desc.Groups.Filter)))
	s.UserData = handle
	return s
}

func placeVertices(points []mgl32.Vec2, offset mgl32.Vec2, rotation float32) []cp.Vector {
	rot := mgl32.Rotate2D(rotation)
	verts := make([]cp.Vector, len(points))
	for i, p := range points {
		verts[i] = toVector(rot.Mul2x1(p).Add(offset))
	}
	return verts
}

// refreshMoment recomputes a dynamic body's inertia from its colliders,
// splitting the mass evenly between them.
func (e *Engine) refreshMoment(entry *bodyEntry) {
	if entry.kind != Dynamic {
		return
	}
	if len(entry.colliders) == 0 {
		entry.body.SetMoment(cp.INFINITY)
		return
	}

	share := float64(entry.mass) / float64(len(entry.colliders))
	var moment float64
	for _, handle := range entry.colliders {
		collider, ok := e.colliders.get(uint64(handle))
		if !ok {
			continue
		}
		offset := collider.desc.Translation
		if collider.current.Kind == ShapeBall {
			moment += cp.MomentForCircle(share, 0, float64(collider.current.Radius), toVector(offset))
		} else {
			verts := placeVertices(collider.current.vertices(), offset, collider.desc.Rotation)
			moment += cp.MomentForPoly(share, len(verts), verts, cp.Vector{}, 0)
		}
	}
	if moment > 0 {
		entry.body.SetMoment(moment)
	}
}

// ScaleUpdate replaces a collider's shape with one already scaled by ScaleShape.
type ScaleUpdate struct {
	Collider ColliderHandle
	Shape    Shape
	Scale    mgl32.Vec3
}

// SetScales swaps in rescaled shapes and records the new scales. Contacts
// that survive the swap do not produce Stopped or Started events.
func (e *Engine) SetScales(updates []ScaleUpdate) error {
	var errs []error
	for _, update := range updates {
		entry, ok := e.colliders.get(uint64(update.Collider))
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %v", ErrUnknownHandle, update.Collider))
			continue
		}
		if err := update.Shape.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%v: %w", update.Collider, err))
			continue
		}

		e.swapping = true
		e.space.RemoveShape(entry.shape)
		e.swapping = false

		entry.current = update.Shape
		entry.shape = e.buildShape(update.Collider, entry, update.Shape)
		e.space.AddShape(entry.shape)
		e.scales.Put(update.Collider, update.Scale)

		if !entry.standalone {
			if parent, ok := e.bodies.get(uint64(entry.parent)); ok {
				e.refreshMoment(parent)
			}
		}
	}
	return errors.Join(errs...)
}

// reinsert re-adds a static body's shapes so the broadphase indexes them at
// the body's current pose. Surviving contacts are treated like a scale swap.
func (e *Engine) reinsert(body *cp.Body) {
	var shapes []*cp.Shape
	body.EachShape(func(shape *cp.Shape) {
		shapes = append(shapes, shape)
	})

	e.swapping = true
	for _, shape := range shapes {
		e.space.RemoveShape(shape)
	}
	e.swapping = false

	for _, shape := range shapes {
		e.space.AddShape(shape)
	}
}

// EntityFromCollider returns the entity that owns a collider.
func (e *Engine) EntityFromCollider(handle ColliderHandle) (ecs.Entity, bool) {
	return e.colliderOwners.Get(handle)
}

// EntityFromRigidBody returns the entity that owns a rigid body.
func (e *Engine) EntityFromRigidBody(handle RigidBodyHandle) (ecs.Entity, bool) {
	return e.bodyOwners.Get(handle)
}

// RigidBodyOf returns the rigid body owned by entity.
func (e *Engine) RigidBodyOf(entity ecs.Entity) (RigidBodyHandle, bool) {
	return e.entityBodies.Get(entity)
}

// UserData returns the tag of a collider.
func (e *Engine) UserData(handle ColliderHandle) (UserData, bool) {
	entry, ok := e.colliders.get(uint64(handle))
	if !ok {
		return 0, false
	}
	return entry.desc.UserData, true
}

// IsSensor reports whether a live collider is a sensor.
func (e *Engine) IsSensor(handle ColliderHandle) bool {
	entry, ok := e.colliders.get(uint64(handle))
	return ok && entry.desc.Sensor
}

// Scale returns the scale last applied to a collider.
func (e *Engine) Scale(handle ColliderHandle) (mgl32.Vec3, bool) {
	return e.scales.Get(handle)
}

// BaseShape returns the unscaled shape a collider was created with.
func (e *Engine) BaseShape(handle ColliderHandle) (Shape, bool) {
	entry, ok := e.colliders.get(uint64(handle))
	if !ok {
		return Shape{}, false
	}
	return entry.desc.Shape, true
}

// ColliderCount returns the number of live colliders.
func (e *Engine) ColliderCount() int {
	return e.colliders.len()
}

// RigidBodyCount returns the number of live rigid bodies.
func (e *Engine) RigidBodyCount() int {
	return e.bodies.len()
}

// Stats returns a snapshot of the engine's counters.
func (e *Engine) Stats() EngineStats {
	return EngineStats{
		Colliders:   e.colliders.len(),
		RigidBodies: e.bodies.len(),
		ActivePairs: len(e.active),
		Steps:       e.steps,
	}
}

func toVector(v mgl32.Vec2) cp.Vector {
	return cp.Vector{X: float64(v.X()), Y: float64(v.Y())}
}

func fromVector(v cp.Vector) mgl32.Vec2 {
	return mgl32.Vec2{float32(v.X), float32(v.Y)}
}
