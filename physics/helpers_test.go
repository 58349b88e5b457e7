package physics_test

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/brickworks/ecs"
	"github.com/plus3/brickworks/physics"
	"github.com/stretchr/testify/require"
)

const (
	tagBall physics.UserData = iota + 1
	tagWall
	tagFloor
)

type marker struct{}

func newStorage() *ecs.Storage {
	registry := ecs.NewComponentRegistry()
	physics.RegisterComponents(registry)
	ecs.RegisterComponent[marker](registry)
	return ecs.NewStorage(registry)
}

func newEngine() *physics.Engine {
	config := physics.DefaultConfig()
	config.Gravity = mgl32.Vec3{}
	config.Timestep = time.Second / 60
	config.Logger = log.New(io.Discard, "", 0)
	return physics.NewEngine(config)
}

// arena places a ball moving left at speed towards a wall whose right face
// sits at x = -1.5.
type arena struct {
	storage *ecs.Storage
	engine  *physics.Engine
	ball    ecs.Entity
	wall    ecs.Entity
	ballC   physics.ColliderHandle
	ballRB  physics.RigidBodyHandle
	wallC   physics.ColliderHandle
}

func newArena(t *testing.T, speed float32, sensorWall bool) *arena {
	t.Helper()
	a := &arena{storage: newStorage(), engine: newEngine()}
	a.ball = a.storage.Spawn(marker{})
	a.wall = a.storage.Spawn(marker{})

	var err error
	a.ballC, a.ballRB, err = a.engine.AddColliderAndRigidBody(a.ball,
		physics.NewColliderBuilder(physics.Ball(0.5)).
			UserData(tagBall).
			ActiveEvents(physics.ActiveEventsCollisionEvents).
			ActiveCollisionTypes(physics.AllActiveCollisionTypes).
			Build(),
		physics.KinematicVelocityBasedBody().LinearVelocity(-speed, 0).Build(),
	)
	require.NoError(t, err)

	a.wallC, err = a.engine.AddCollider(a.wall,
		physics.NewColliderBuilder(physics.Cuboid(0.5, 5)).
			UserData(tagWall).
			Sensor(sensorWall).
			Translation(-2, 0).
			Build(),
	)
	require.NoError(t, err)
	return a
}

// stepUntil steps until the engine has queued an event, up to limit steps.
func stepUntil(t *testing.T, engine *physics.Engine, limit int) int {
	t.Helper()
	for i := 1; i <= limit; i++ {
		engine.Step()
		if engine.Events().Len() > 0 {
			return i
		}
	}
	t.Fatalf("no event after %d steps", limit)
	return 0
}
