package ecs_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/plus3/brickworks/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type movement struct {
	*Position
	*Velocity
}

func TestView(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[movement](storage)

	id := storage.Spawn(Position{X: 1, Y: 2}, Velocity{DX: 3, DY: 4})
	storage.Spawn(Position{X: 5})

	result := view.Get(id)
	require.NotNil(t, result)
	assert.Equal(t, float32(1), result.Position.X)
	assert.Equal(t, float32(3), result.Velocity.DX)

	result.Position.X = 10
	assert.Equal(t, float32(10), ecs.ReadComponent[Position](storage, id).X)
}

func TestViewMissingComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[movement](storage)

	id := storage.Spawn(Position{X: 1})
	assert.Nil(t, view.Get(id))

	var out movement
	assert.False(t, view.Fill(id, &out))
}

func TestViewDespawnedEntity(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[movement](storage)

	id := storage.Spawn(Position{}, Velocity{})
	require.NoError(t, storage.Despawn(id))

	assert.Nil(t, view.Get(id))
	assert.Nil(t, view.Get(0))
}

func TestViewEntityField(t *testing.T) {
	type withID struct {
		ID ecs.Entity
		*Position
	}

	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[withID](storage)

	first := storage.Spawn(Position{X: 1})
	second := storage.Spawn(Position{X: 2}, Velocity{})
	ids := map[ecs.Entity]float32{first: 1, second: 2}

	seen := 0
	for entity, item := range view.Iter() {
		assert.Equal(t, entity, item.ID)
		assert.Equal(t, ids[entity], item.Position.X)
		seen++
	}
	assert.Equal(t, 2, seen)

	for id := range ids {
		assert.Equal(t, id, view.Get(id).ID)
	}
}

func TestViewIterMultipleArchetypes(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[movement](storage)

	storage.Spawn(Position{X: 1}, Velocity{DX: 1})
	storage.Spawn(Position{X: 2}, Velocity{DX: 1}, Name{Value: "two"})
	storage.Spawn(Position{X: 3}, Velocity{DX: 1}, Health{})
	storage.Spawn(Position{X: 4})

	sum := float32(0)
	for item := range view.Values() {
		item.Position.X += item.Velocity.DX
		sum += item.Position.X
	}
	assert.Equal(t, float32(2+3+4), sum)
	assert.Equal(t, 3, view.Count())
}

func TestViewIterSkipsDespawned(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[struct{ *Position }](storage)

	ids := make([]ecs.Entity, 6)
	for i := range ids {
		ids[i] = storage.Spawn(Position{X: float32(i)})
	}
	require.NoError(t, storage.Despawn(ids[1]))
	require.NoError(t, storage.Despawn(ids[4]))

	var got []float32
	for _, item := range view.Iter() {
		got = append(got, item.Position.X)
	}
	assert.ElementsMatch(t, []float32{0, 2, 3, 5}, got)
}

func TestViewIterEarlyBreak(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[struct{ *Position }](storage)

	for i := 0; i < 10; i++ {
		storage.Spawn(Position{X: float32(i)})
	}

	count := 0
	for range view.Iter() {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
	assert.False(t, storage.Iterating())
}

func TestViewOverlappingIteration(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	positions := ecs.NewView[struct{ *Position }](storage)
	velocities := ecs.NewView[struct{ *Velocity }](storage)

	storage.Spawn(Position{}, Velocity{})

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		for range positions.Iter() {
			for range velocities.Iter() {
			}
		}
	}()

	err, ok := recovered.(error)
	require.True(t, ok)
	assert.True(t, errors.Is(err, ecs.ErrOverlappingQuery))
	assert.False(t, storage.Iterating())

	// sequential iteration is fine
	assert.Equal(t, 1, positions.Count())
	assert.Equal(t, 1, velocities.Count())
}

func TestViewOptionalComponent(t *testing.T) {
	type optionalView struct {
		*Position
		Velocity *Velocity `ecs:"optional"`
	}

	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[optionalView](storage)

	moving := storage.Spawn(Position{X: 1}, Velocity{DX: 2})
	still := storage.Spawn(Position{X: 3})
	storage.Spawn(Velocity{DX: 9})

	assert.Equal(t, 2, view.Count())

	require.NotNil(t, view.Get(moving).Velocity)
	assert.Equal(t, float32(2), view.Get(moving).Velocity.DX)
	assert.Nil(t, view.Get(still).Velocity)
	assert.NotNil(t, view.Get(still).Position)
}

func TestViewInvalidDefinitions(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	assert.Panics(t, func() { ecs.NewView[int](storage) })
	assert.Panics(t, func() {
		ecs.NewView[struct{ Position Position }](storage)
	})
	assert.Panics(t, func() {
		ecs.NewView[struct {
			Position *Position `ecs:"required"`
		}](storage)
	})
	assert.Panics(t, func() {
		ecs.NewView[struct {
			A ecs.Entity
			B ecs.Entity
		}](storage)
	})
}

func TestViewSpawn(t *testing.T) {
	type spawnView struct {
		*Position
		Name *Name `ecs:"optional"`
	}

	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[spawnView](storage)

	named := view.Spawn(spawnView{Position: &Position{X: 1}, Name: &Name{Value: "a"}})
	plain := view.Spawn(spawnView{Position: &Position{X: 2}})

	assert.Equal(t, "a", ecs.ReadComponent[Name](storage, named).Value)
	assert.False(t, storage.HasComponent(plain, reflect.TypeFor[Name]()))
	assert.Equal(t, float32(2), view.Get(plain).Position.X)

	assert.Panics(t, func() { view.Spawn(spawnView{}) })
}

func TestViewSpawnCopiesData(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[struct{ *Position }](storage)

	source := &Position{X: 1}
	id := view.Spawn(struct{ *Position }{source})
	source.X = 50

	assert.Equal(t, float32(1), ecs.ReadComponent[Position](storage, id).X)
}
