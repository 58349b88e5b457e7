package physics_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/brickworks/ecs"
	"github.com/plus3/brickworks/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineHandleSymmetry(t *testing.T) {
	storage := newStorage()
	engine := newEngine()

	entity := storage.Spawn(marker{})
	collider, body, err := engine.AddColliderAndRigidBody(entity,
		physics.NewColliderBuilder(physics.Ball(1)).UserData(tagBall).Build(),
		physics.DynamicBody().Translation(1, 2).Build(),
	)
	require.NoError(t, err)

	owner, ok := engine.EntityFromCollider(collider)
	require.True(t, ok)
	assert.Equal(t, entity, owner)

	owner, ok = engine.EntityFromRigidBody(body)
	require.True(t, ok)
	assert.Equal(t, entity, owner)

	found, ok := engine.RigidBodyOf(entity)
	require.True(t, ok)
	assert.Equal(t, body, found)

	scale, ok := engine.Scale(collider)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, scale)

	tag, ok := engine.UserData(collider)
	require.True(t, ok)
	assert.Equal(t, tagBall, tag)

	view, ok := engine.Collider(collider)
	require.True(t, ok)
	assert.Equal(t, body, view.Parent)
	assert.False(t, view.Standalone)
	assert.Equal(t, mgl32.Vec2{1, 2}, view.Translation)

	require.True(t, engine.RemoveRigidBody(body))

	_, ok = engine.EntityFromCollider(collider)
	assert.False(t, ok)
	_, ok = engine.EntityFromRigidBody(body)
	assert.False(t, ok)
	_, ok = engine.RigidBodyOf(entity)
	assert.False(t, ok)
	_, ok = engine.Scale(collider)
	assert.False(t, ok)
	_, ok = engine.UserData(collider)
	assert.False(t, ok)
	assert.Equal(t, 0, engine.ColliderCount())
	assert.Equal(t, 0, engine.RigidBodyCount())

	assert.False(t, engine.RemoveRigidBody(body))
	assert.False(t, engine.RemoveCollider(collider))

	// reused slots hand out fresh handles
	again, err := engine.AddCollider(entity, physics.NewColliderBuilder(physics.Ball(1)).Build())
	require.NoError(t, err)
	assert.NotEqual(t, collider, again)
	_, ok = engine.EntityFromCollider(collider)
	assert.False(t, ok)
}

func TestEngineEveryHandleHasOneOwner(t *testing.T) {
	storage := newStorage()
	engine := newEngine()

	entities := make([]ecs.Entity, 10)
	handles := make(map[physics.ColliderHandle]ecs.Entity)
	for i := range entities {
		entities[i] = storage.Spawn(marker{})
		h, err := engine.AddCollider(entities[i], physics.NewColliderBuilder(physics.Cuboid(1, 1)).
			Translation(float32(i)*10, 0).Build())
		require.NoError(t, err)
		handles[h] = entities[i]
	}

	seen := 0
	for entity, view := range engine.IterColliders() {
		assert.Equal(t, handles[view.Handle], entity)
		assert.True(t, view.Standalone)
		seen++
	}
	assert.Equal(t, len(entities), seen)
}

func TestEngineRejectsInvalidShapesAndDuplicateBodies(t *testing.T) {
	storage := newStorage()
	engine := newEngine()
	entity := storage.Spawn(marker{})

	_, err := engine.AddCollider(entity, physics.NewColliderBuilder(physics.Ball(0)).Build())
	assert.ErrorIs(t, err, physics.ErrUnsupportedShape)

	_, err = engine.AddRigidBody(entity, physics.FixedBody().Build())
	require.NoError(t, err)
	_, err = engine.AddRigidBody(entity, physics.FixedBody().Build())
	assert.ErrorIs(t, err, physics.ErrDuplicateBody)

	_, _, err = engine.AddColliderAndRigidBody(storage.Spawn(marker{}),
		physics.NewColliderBuilder(physics.Cuboid(0, 1)).Build(),
		physics.DynamicBody().Build())
	assert.ErrorIs(t, err, physics.ErrUnsupportedShape)
	assert.Equal(t, 1, engine.RigidBodyCount())
}

func TestEngineKinematicHitsStaticWall(t *testing.T) {
	a := newArena(t, 10, false)

	stepUntil(t, a.engine, 30)
	events := a.engine.Events().Drain()
	require.Len(t, events, 1)
	assert.Equal(t, physics.EventStarted, events[0].Kind)
	assert.False(t, events[0].Sensor())
	assert.ElementsMatch(t,
		[]physics.ColliderHandle{a.ballC, a.wallC},
		[]physics.ColliderHandle{events[0].Collider1, events[0].Collider2})

	contact, ok := a.engine.ContactPair(a.ballC, a.wallC)
	require.True(t, ok)
	require.NotEmpty(t, contact.Points)
	assert.Less(t, contact.Normal.X(), float32(0))

	mirrored, ok := a.engine.ContactPair(a.wallC, a.ballC)
	require.True(t, ok)
	assert.Greater(t, mirrored.Normal.X(), float32(0))
	assert.Equal(t, contact.Points[0].Self, mirrored.Points[0].Other)

	// the ball passes through and the pair ends once
	stepUntil(t, a.engine, 60)
	events = a.engine.Events().Drain()
	require.Len(t, events, 1)
	assert.Equal(t, physics.EventStopped, events[0].Kind)
	assert.False(t, events[0].Removed())

	_, ok = a.engine.ContactPair(a.ballC, a.wallC)
	assert.False(t, ok)
}

func TestEngineSensorPairHasNoContact(t *testing.T) {
	a := newArena(t, 10, true)

	stepUntil(t, a.engine, 30)
	events := a.engine.Events().Drain()
	require.Len(t, events, 1)
	assert.True(t, events[0].Sensor())

	_, ok := a.engine.ContactPair(a.ballC, a.wallC)
	assert.False(t, ok)
	assert.True(t, a.engine.IsSensor(a.wallC))
	assert.False(t, a.engine.IsSensor(a.ballC))
}

func TestEngineEventsNeedActiveEvents(t *testing.T) {
	storage := newStorage()
	engine := newEngine()

	_, _, err := engine.AddColliderAndRigidBody(storage.Spawn(marker{}),
		physics.NewColliderBuilder(physics.Ball(0.5)).
			ActiveCollisionTypes(physics.AllActiveCollisionTypes).
			Build(),
		physics.KinematicVelocityBasedBody().LinearVelocity(-10, 0).Build(),
	)
	require.NoError(t, err)
	_, err = engine.AddCollider(storage.Spawn(marker{}),
		physics.NewColliderBuilder(physics.Cuboid(0.5, 5)).Translation(-2, 0).Build())
	require.NoError(t, err)

	for i := 0; i < 60; i++ {
		engine.Step()
	}
	assert.Equal(t, 0, engine.Events().Len())
}

func TestEngineCollisionTypesGateKinematicPairs(t *testing.T) {
	storage := newStorage()
	engine := newEngine()

	// default types leave kinematic-fixed pairs out
	_, _, err := engine.AddColliderAndRigidBody(storage.Spawn(marker{}),
		physics.NewColliderBuilder(physics.Ball(0.5)).
			ActiveEvents(physics.ActiveEventsCollisionEvents).
			Build(),
		physics.KinematicVelocityBasedBody().LinearVelocity(-10, 0).Build(),
	)
	require.NoError(t, err)
	_, err = engine.AddCollider(storage.Spawn(marker{}),
		physics.NewColliderBuilder(physics.Cuboid(0.5, 5)).Translation(-2, 0).Build())
	require.NoError(t, err)

	for i := 0; i < 60; i++ {
		engine.Step()
	}
	assert.Equal(t, 0, engine.Events().Len())
	assert.Equal(t, 0, engine.Stats().ActivePairs)
}

func TestEngineRemoveColliderStopsActivePairs(t *testing.T) {
	a := newArena(t, 10, false)

	stepUntil(t, a.engine, 30)
	a.engine.Events().Drain()

	require.True(t, a.engine.RemoveRigidBody(a.ballRB))
	events := a.engine.Events().Drain()
	require.Len(t, events, 1)
	assert.Equal(t, physics.EventStopped, events[0].Kind)
	assert.True(t, events[0].Removed())
	assert.Equal(t, 0, a.engine.Stats().ActivePairs)
}

func TestEngineSetScalesKeepsTouchingPairs(t *testing.T) {
	a := newArena(t, 0, false)

	// park the ball inside the wall
	for _, body := range a.engine.IterMutRigidBodies() {
		body.SetPose(mgl32.Vec2{-1.5, 0}, 0)
	}
	stepUntil(t, a.engine, 5)
	require.Len(t, a.engine.Events().Drain(), 1)

	scaled, err := physics.ScaleShape(physics.Ball(0.5), mgl32.Vec3{2, 2, 1})
	require.NoError(t, err)
	require.NoError(t, a.engine.SetScales([]physics.ScaleUpdate{{Collider: a.ballC, Shape: scaled, Scale: mgl32.Vec3{2, 2, 1}}}))

	for i := 0; i < 5; i++ {
		a.engine.Step()
	}
	assert.Equal(t, 0, a.engine.Events().Len())

	scale, ok := a.engine.Scale(a.ballC)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{2, 2, 1}, scale)
	view, _ := a.engine.Collider(a.ballC)
	assert.InDelta(t, 1.0, view.Shape.Radius, 1e-6)
	base, _ := a.engine.BaseShape(a.ballC)
	assert.InDelta(t, 0.5, base.Radius, 1e-6)

	_, ok = a.engine.ContactPair(a.ballC, a.wallC)
	assert.True(t, ok)
}

func TestEngineSetScalesEndsPairsThatNoLongerTouch(t *testing.T) {
	a := newArena(t, 0, false)

	for _, body := range a.engine.IterMutRigidBodies() {
		body.SetPose(mgl32.Vec2{-1.2, 0}, 0)
	}
	stepUntil(t, a.engine, 5)
	require.Len(t, a.engine.Events().Drain(), 1)

	shrunk, err := physics.ScaleShape(physics.Ball(0.5), mgl32.Vec3{0.1, 0.1, 1})
	require.NoError(t, err)
	require.NoError(t, a.engine.SetScales([]physics.ScaleUpdate{{Collider: a.ballC, Shape: shrunk, Scale: mgl32.Vec3{0.1, 0.1, 1}}}))

	a.engine.Step()
	events := a.engine.Events().Drain()
	require.Len(t, events, 1)
	assert.Equal(t, physics.EventStopped, events[0].Kind)
}

func TestEngineSetScalesUnknownHandle(t *testing.T) {
	engine := newEngine()
	err := engine.SetScales([]physics.ScaleUpdate{{Collider: 12345, Shape: physics.Ball(1)}})
	assert.ErrorIs(t, err, physics.ErrUnknownHandle)
}

func TestEngineMovedColliderTouchesAtNewPose(t *testing.T) {
	a := newArena(t, 0, false)

	for i := 0; i < 5; i++ {
		a.engine.Step()
	}
	require.Equal(t, 0, a.engine.Events().Len())

	moveWall := func(x float32) {
		for entity, collider := range a.engine.IterMutColliders() {
			if entity == a.wall {
				require.True(t, collider.SetPose(mgl32.Vec2{x, 0}, 0))
			}
		}
	}

	moveWall(0)
	a.engine.Step()
	events := a.engine.Events().Drain()
	require.Len(t, events, 1)
	assert.Equal(t, physics.EventStarted, events[0].Kind)
	_, ok := a.engine.ContactPair(a.ballC, a.wallC)
	assert.True(t, ok)

	// still overlapping, so the pair carries on
	moveWall(0.2)
	a.engine.Step()
	assert.Equal(t, 0, a.engine.Events().Len())
	assert.Equal(t, 1, a.engine.Stats().ActivePairs)

	moveWall(-5)
	a.engine.Step()
	events = a.engine.Events().Drain()
	require.Len(t, events, 1)
	assert.Equal(t, physics.EventStopped, events[0].Kind)
	assert.False(t, events[0].Removed())
	assert.Equal(t, 0, a.engine.Stats().ActivePairs)
}

func TestEngineMovedFixedBodyTouchesAtNewPose(t *testing.T) {
	a := newArena(t, 0, false)

	post := a.storage.Spawn(marker{})
	postC, _, err := a.engine.AddColliderAndRigidBody(post,
		physics.NewColliderBuilder(physics.Cuboid(0.5, 0.5)).UserData(tagFloor).Build(),
		physics.FixedBody().Translation(10, 0).Build())
	require.NoError(t, err)

	a.engine.Step()
	require.Equal(t, 0, a.engine.Events().Len())

	for _, body := range a.engine.IterMutRigidBodies() {
		if body.Kind() == physics.Fixed {
			body.SetPose(mgl32.Vec2{0.5, 0}, 0)
		}
	}
	a.engine.Step()
	events := a.engine.Events().Drain()
	require.Len(t, events, 1)
	assert.Equal(t, physics.EventStarted, events[0].Kind)
	assert.ElementsMatch(t,
		[]physics.ColliderHandle{a.ballC, postC},
		[]physics.ColliderHandle{events[0].Collider1, events[0].Collider2})

	view, ok := a.engine.Collider(postC)
	require.True(t, ok)
	assert.InDelta(t, 0.5, view.Translation.X(), 1e-6)
}

func TestEngineMutableIteration(t *testing.T) {
	storage := newStorage()
	engine := newEngine()

	standalone := storage.Spawn(marker{})
	_, err := engine.AddCollider(standalone, physics.NewColliderBuilder(physics.Cuboid(1, 1)).Translation(5, 5).Build())
	require.NoError(t, err)

	mover := storage.Spawn(marker{})
	_, _, err = engine.AddColliderAndRigidBody(mover,
		physics.NewColliderBuilder(physics.Ball(1)).Translation(0.5, 0).Build(),
		physics.KinematicVelocityBasedBody().Build())
	require.NoError(t, err)

	for entity, collider := range engine.IterMutColliders() {
		moved := collider.SetPose(mgl32.Vec2{-3, 4}, 0)
		assert.Equal(t, entity == standalone, moved)

		_, err := engine.AddCollider(entity, physics.NewColliderBuilder(physics.Ball(1)).Build())
		assert.ErrorIs(t, err, physics.ErrEngineLocked)
	}

	for _, body := range engine.IterMutRigidBodies() {
		body.SetLinearVelocity(mgl32.Vec2{60, 0})
	}
	engine.Step()

	for entity, view := range engine.IterColliders() {
		if entity == standalone {
			assert.Equal(t, mgl32.Vec2{-3, 4}, view.Translation)
		} else {
			// one step at 60 units per second plus the collider offset
			assert.InDelta(t, 1.5, view.Translation.X(), 1e-4)
		}
	}
	for _, view := range engine.IterRigidBodies() {
		assert.Equal(t, physics.KinematicVelocityBased, view.Kind)
		assert.InDelta(t, 60, view.LinearVelocity.X(), 1e-4)
	}
}

func TestActiveCollisionTypesAllows(t *testing.T) {
	tests := []struct {
		types physics.ActiveCollisionTypes
		a, b  physics.BodyType
		want  bool
	}{
		{physics.DefaultActiveCollisionTypes, physics.Dynamic, physics.Fixed, true},
		{physics.DefaultActiveCollisionTypes, physics.KinematicVelocityBased, physics.Fixed, false},
		{physics.KinematicFixed, physics.Fixed, physics.KinematicPositionBased, true},
		{physics.KinematicKinematic, physics.KinematicVelocityBased, physics.KinematicPositionBased, true},
		{physics.DynamicKinematic, physics.KinematicVelocityBased, physics.Dynamic, true},
		{physics.DynamicDynamic, physics.Fixed, physics.Fixed, false},
		{physics.FixedFixed, physics.Fixed, physics.Fixed, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.types.Allows(tt.a, tt.b), "%v/%v", tt.a, tt.b)
	}
}

func TestInteractionGroups(t *testing.T) {
	ball := physics.InteractionGroups{Memberships: 1, Filter: 2}
	wall := physics.InteractionGroups{Memberships: 2, Filter: 1}
	ghost := physics.InteractionGroups{Memberships: 4, Filter: physics.GroupAll}

	assert.True(t, ball.Test(wall))
	assert.False(t, ball.Test(ghost))
	assert.True(t, physics.DefaultInteractionGroups().Test(ghost))
}
