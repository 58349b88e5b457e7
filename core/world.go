package core

import (
	"log"
	"math"
	"reflect"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/brickworks/ecs"
	"github.com/plus3/brickworks/physics"
)

// FrameResult describes one call to World.Frame. The renderer uses it to
// interpolate between simulated states.
type FrameResult struct {
	Steps   int
	Dropped int
	// Lag is the simulated time still owed after this frame.
	Lag time.Duration
	// Interpolation is the frame delta measured in fixed steps.
	Interpolation float32
}

// FrameStats are cumulative counters over the life of a World.
type FrameStats struct {
	Frames           uint64
	Steps            uint64
	DroppedSteps     uint64
	Ingested         uint64
	OrphansRemoved   uint64
	EventsReceived   uint64
	EventsDiscarded  uint64
	RecordsPublished uint64
	ScaleFailures    uint64
}

type colliderSource struct {
	ID        ecs.Entity
	Collider  *physics.ColliderDescriptor
	Body      *physics.RigidBodyDescriptor `ecs:"optional"`
	Transform *Transform                   `ecs:"optional"`
}

type bodySource struct {
	ID        ecs.Entity
	Body      *physics.RigidBodyDescriptor
	Collider  *physics.ColliderDescriptor `ecs:"optional"`
	Transform *Transform                  `ecs:"optional"`
}

// pendingIngest holds copies; ingesting one entity moves others in storage
type pendingIngest struct {
	entity       ecs.Entity
	collider     physics.ColliderDescriptor
	body         physics.RigidBodyDescriptor
	transform    Transform
	hasCollider  bool
	hasBody      bool
	hasTransform bool
}

func newPendingIngest(entity ecs.Entity, collider *physics.ColliderDescriptor, body *physics.RigidBodyDescriptor, transform *Transform) pendingIngest {
	p := pendingIngest{entity: entity}
	if collider != nil {
		p.collider, p.hasCollider = *collider, true
	}
	if body != nil {
		p.body, p.hasBody = *body, true
	}
	if transform != nil {
		p.transform, p.hasTransform = *transform, true
	}
	return p
}

// World owns the entity storage, the physics engine and the systems, and
// advances them together one frame at a time.
type World struct {
	config     Config
	logger     *log.Logger
	storage    *ecs.Storage
	scheduler  *ecs.Scheduler
	engine     *physics.Engine
	translator *physics.Translator
	timestep   *FixedTimestep
	stats      FrameStats

	colliderSources *ecs.View[colliderSource]
	bodySources     *ecs.View[bodySource]
	collisionLists  *ecs.View[struct{ *physics.Collisions }]
	triggerLists    *ecs.View[struct{ *physics.Triggers }]
}

// NewWorld creates a world over a storage built from registry. The core and
// physics components are registered on it.
func NewWorld(config Config, registry *ecs.ComponentRegistry) *World {
	config = config.withDefaults()
	RegisterComponents(registry)
	physics.RegisterComponents(registry)

	storage := ecs.NewStorage(registry)
	engine := physics.NewEngine(config.Physics)

	return &World{
		config:          config,
		logger:          config.Logger,
		storage:         storage,
		scheduler:       ecs.NewScheduler(storage, config.Logger),
		engine:          engine,
		translator:      physics.NewTranslator(engine, storage, config.Logger),
		timestep:        NewFixedTimestep(config.FixedStep, config.MaxCatchUpSteps),
		colliderSources: ecs.NewView[colliderSource](storage),
		bodySources:     ecs.NewView[bodySource](storage),
		collisionLists:  ecs.NewView[struct{ *physics.Collisions }](storage),
		triggerLists:    ecs.NewView[struct{ *physics.Triggers }](storage),
	}
}

func (w *World) Storage() *ecs.Storage {
	return w.storage
}

func (w *World) Engine() *physics.Engine {
	return w.engine
}

func (w *World) Scheduler() *ecs.Scheduler {
	return w.scheduler
}

func (w *World) Config() Config {
	return w.config
}

func (w *World) Logger() *log.Logger {
	return w.logger
}

// Stats returns the cumulative frame counters.
func (w *World) Stats() FrameStats {
	return w.stats
}

// Lag returns the simulated time owed to the next frame.
func (w *World) Lag() time.Duration {
	return w.timestep.Lag()
}

// AddSystem registers a system. It starts at the beginning of the next frame.
func (w *World) AddSystem(system ecs.System) {
	w.scheduler.Register(system)
}

// Spawn creates an entity. Physics descriptors are picked up on the next frame.
func (w *World) Spawn(components ...any) ecs.Entity {
	return w.storage.Spawn(components...)
}

// Frame advances the world by delta: early update, as many fixed physics
// steps as the accumulated lag allows, then late update.
func (w *World) Frame(delta time.Duration) FrameResult {
	w.stats.Frames++

	_ = w.scheduler.Start()
	w.reconcile()
	_ = w.scheduler.RunPhase(ecs.PhaseEarlyUpdate, delta)

	steps, dropped := w.timestep.Advance(delta)
	for i := 0; i < steps; i++ {
		w.step()
	}
	if dropped > 0 {
		w.stats.DroppedSteps += uint64(dropped)
		w.logger.Printf("dropped %d physics steps, catch-up capped at %d", dropped, w.config.MaxCatchUpSteps)
	}

	_ = w.scheduler.RunPhase(ecs.PhaseLateUpdate, delta)
	w.pushPoses()
	w.pushScales()

	return FrameResult{
		Steps:         steps,
		Dropped:       dropped,
		Lag:           w.timestep.Lag(),
		Interpolation: float32(delta) / float32(w.config.FixedStep),
	}
}

func (w *World) step() {
	w.removeOrphans()
	w.resetCollisionLists()

	w.engine.Step()
	w.stats.Steps++

	translated := w.translator.Translate()
	w.stats.EventsReceived += uint64(translated.Received)
	w.stats.EventsDiscarded += uint64(translated.Discarded)
	w.stats.RecordsPublished += uint64(translated.Published)

	w.pullPoses()
	_ = w.scheduler.RunPhase(ecs.PhaseUpdate, w.config.FixedStep)
}

// reconcile drops physics objects whose entity is gone and hands new
// descriptors to the engine.
func (w *World) reconcile() {
	w.removeOrphans()

	var pending []pendingIngest
	for _, src := range w.colliderSources.Iter() {
		pending = append(pending, newPendingIngest(src.ID, src.Collider, src.Body, src.Transform))
	}
	for _, src := range w.bodySources.Iter() {
		if src.Collider != nil {
			continue
		}
		pending = append(pending, newPendingIngest(src.ID, nil, src.Body, src.Transform))
	}

	for _, p := range pending {
		w.ingest(p)
	}
}

func (w *World) ingest(p pendingIngest) {
	body, collider := p.body, p.collider
	if p.hasTransform {
		// the entity's transform wins over the descriptor's initial pose
		body.Translation = p.transform.Translation2D()
		body.Rotation = p.transform.Angle()
		if !p.hasBody {
			collider.Translation = body.Translation
			collider.Rotation = body.Rotation
		}
	}

	var err error
	switch {
	case p.hasCollider && p.hasBody:
		_, _, err = w.engine.AddColliderAndRigidBody(p.entity, collider, body)
	case p.hasBody:
		_, err = w.engine.AddRigidBody(p.entity, body)
	default:
		_, err = w.engine.AddCollider(p.entity, collider)
	}
	if err != nil {
		w.logger.Printf("ingest %v: %v", p.entity, err)
	} else {
		w.stats.Ingested++
	}

	if p.hasCollider {
		_ = w.storage.Remove(p.entity, reflect.TypeFor[physics.ColliderDescriptor]())
	}
	if p.hasBody {
		_ = w.storage.Remove(p.entity, reflect.TypeFor[physics.RigidBodyDescriptor]())
	}
	if err != nil || !p.hasCollider {
		return
	}

	if !w.storage.HasComponent(p.entity, reflect.TypeFor[physics.Collisions]()) {
		_ = w.storage.Insert(p.entity, physics.Collisions{})
	}
	if !w.storage.HasComponent(p.entity, reflect.TypeFor[physics.Triggers]()) {
		_ = w.storage.Insert(p.entity, physics.Triggers{})
	}
}

func (w *World) removeOrphans() {
	var bodies []physics.RigidBodyHandle
	for entity, body := range w.engine.IterRigidBodies() {
		if !w.storage.Contains(entity) {
			bodies = append(bodies, body.Handle)
		}
	}
	var colliders []physics.ColliderHandle
	for entity, collider := range w.engine.IterColliders() {
		if !w.storage.Contains(entity) && collider.Standalone {
			colliders = append(colliders, collider.Handle)
		}
	}

	for _, h := range bodies {
		if w.engine.RemoveRigidBody(h) {
			w.stats.OrphansRemoved++
		}
	}
	for _, h := range colliders {
		if w.engine.RemoveCollider(h) {
			w.stats.OrphansRemoved++
		}
	}
}

func (w *World) resetCollisionLists() {
	for item := range w.collisionLists.Values() {
		item.Collisions.Events = nil
	}
	for item := range w.triggerLists.Values() {
		item.Triggers.Events = nil
	}
}

// pullPoses copies simulated poses into transforms.
func (w *World) pullPoses() {
	for entity, body := range w.engine.IterRigidBodies() {
		if t := ecs.ReadComponent[Transform](w.storage, entity); t != nil {
			t.SetPose2D(body.Translation, body.Rotation)
		}
	}
	for entity, collider := range w.engine.IterColliders() {
		if !collider.Standalone {
			continue
		}
		if t := ecs.ReadComponent[Transform](w.storage, entity); t != nil {
			t.SetPose2D(collider.Translation, collider.Rotation)
		}
	}
}

// pushPoses hands gameplay changes to transforms and velocities back to the
// engine.
func (w *World) pushPoses() {
	tolerance := w.config.PoseTolerance

	for entity, body := range w.engine.IterMutRigidBodies() {
		if body.Kind().IsKinematic() {
			if v := ecs.ReadComponent[physics.Velocity](w.storage, entity); v != nil {
				body.SetLinearVelocity(v.Linear.Vec2())
			}
		}
		t := ecs.ReadComponent[Transform](w.storage, entity)
		if t == nil {
			continue
		}
		if posesDiffer(body.Translation(), body.Rotation(), t, tolerance) {
			body.SetPose(t.Translation2D(), t.Angle())
		}
	}

	for entity, collider := range w.engine.IterMutColliders() {
		if !collider.Standalone() {
			continue
		}
		t := ecs.ReadComponent[Transform](w.storage, entity)
		if t == nil {
			continue
		}
		view := collider.View()
		if posesDiffer(view.Translation, view.Rotation, t, tolerance) {
			collider.SetPose(t.Translation2D(), t.Angle())
		}
	}
}

// pushScales rebuilds collider shapes whose transform scale changed. A
// failed rebuild keeps the old shape and is retried next frame.
func (w *World) pushScales() {
	var updates []physics.ScaleUpdate
	for entity, collider := range w.engine.IterColliders() {
		t := ecs.ReadComponent[Transform](w.storage, entity)
		if t == nil || vecsEqual(collider.Scale, t.Scale, w.config.ScaleTolerance) {
			continue
		}
		base, ok := w.engine.BaseShape(collider.Handle)
		if !ok {
			continue
		}
		shape, err := physics.ScaleShape(base, t.Scale)
		if err != nil {
			w.stats.ScaleFailures++
			w.logger.Printf("scale %v of %v: %v", collider.Handle, entity, err)
			continue
		}
		updates = append(updates, physics.ScaleUpdate{Collider: collider.Handle, Shape: shape, Scale: t.Scale})
	}

	if len(updates) == 0 {
		return
	}
	if err := w.engine.SetScales(updates); err != nil {
		w.logger.Printf("set scales: %v", err)
	}
}

func posesDiffer(translation mgl32.Vec2, angle float32, t *Transform, tolerance float32) bool {
	if !translation.ApproxEqualThreshold(t.Translation2D(), tolerance) {
		return true
	}
	return angleDelta(angle, t.Angle()) > tolerance
}

// angleDelta returns the absolute difference between two angles, wrapped to [0, pi].
func angleDelta(a, b float32) float32 {
	d := math.Mod(float64(a-b), 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return float32(d)
}

func vecsEqual(a, b mgl32.Vec3, tolerance float32) bool {
	return a.ApproxEqualThreshold(b, tolerance)
}
