package ecs_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/plus3/brickworks/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityEncoding(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	first := storage.Spawn(Position{X: 1})
	second := storage.Spawn(Position{X: 2})

	assert.NotEqual(t, ecs.Entity(0), first)
	assert.Equal(t, uint32(0), first.Index())
	assert.Equal(t, uint32(1), second.Index())
	assert.Equal(t, uint32(1), first.Generation())
	assert.Equal(t, "0v1", first.String())
}

func TestSpawnEntity(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(&Position{X: 1.0, Y: 2.0}, &Velocity{DX: 0.5, DY: 0.5}, Score(32))
	assert.True(t, storage.Contains(id))
	assert.Equal(t, 1, storage.Len())

	assert.Panics(t, func() { storage.Spawn() })
}

func TestGetComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(&Position{X: 3.0, Y: 4.0}, Name{Value: "Test Entity"})

	pos := storage.GetComponent(id, reflect.TypeFor[Position]()).(*Position)
	assert.Equal(t, float32(3.0), pos.X)
	assert.Equal(t, float32(4.0), pos.Y)

	name := ecs.ReadComponent[Name](storage, id)
	require.NotNil(t, name)
	assert.Equal(t, "Test Entity", name.Value)

	assert.Nil(t, storage.GetComponent(id, reflect.TypeFor[Velocity]()))
	assert.Nil(t, ecs.ReadComponent[Velocity](storage, id))
}

func TestDespawnEntity(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(&Position{X: 1.0, Y: 1.0}, &Health{Current: 100, Max: 100})
	require.NoError(t, storage.Despawn(id))

	assert.False(t, storage.Contains(id))
	assert.Nil(t, storage.GetComponent(id, reflect.TypeFor[Position]()))
	assert.ErrorIs(t, storage.Despawn(id), ecs.ErrEntityNotFound)
	assert.Equal(t, 0, storage.Len())
}

func TestDespawnedSlotReuse(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	stale := storage.Spawn(Position{X: 1})
	require.NoError(t, storage.Despawn(stale))

	fresh := storage.Spawn(Position{X: 2})
	assert.Equal(t, stale.Index(), fresh.Index())
	assert.NotEqual(t, stale.Generation(), fresh.Generation())

	assert.False(t, storage.Contains(stale))
	assert.True(t, storage.Contains(fresh))
	assert.Nil(t, ecs.ReadComponent[Position](storage, stale))
	assert.Equal(t, float32(2), ecs.ReadComponent[Position](storage, fresh).X)
}

func TestUnknownEntity(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	for _, id := range []ecs.Entity{0, 1, ecs.Entity(1<<32 | 7)} {
		t.Run(fmt.Sprint(uint64(id)), func(t *testing.T) {
			assert.False(t, storage.Contains(id))
			assert.False(t, storage.HasComponent(id, reflect.TypeFor[Position]()))
			assert.ErrorIs(t, storage.Insert(id, Position{}), ecs.ErrEntityNotFound)
			assert.ErrorIs(t, storage.Remove(id, reflect.TypeFor[Position]()), ecs.ErrEntityNotFound)
		})
	}
}

func TestMultipleEntitiesSameArchetype(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id1 := storage.Spawn(&Position{X: 1.0}, &Velocity{DX: 0.1})
	id2 := storage.Spawn(&Position{X: 2.0}, &Velocity{DX: 0.2})
	id3 := storage.Spawn(&Velocity{DX: 0.3}, &Position{X: 3.0})

	assert.Same(t, storage.ArchetypeOf(id1), storage.ArchetypeOf(id2))
	assert.Same(t, storage.ArchetypeOf(id1), storage.ArchetypeOf(id3))
	assert.Equal(t, 3, storage.ArchetypeOf(id1).Len())
	assert.Len(t, storage.GetArchetypes(), 1)

	for i, id := range []ecs.Entity{id1, id2, id3} {
		assert.Equal(t, float32(i+1), ecs.ReadComponent[Position](storage, id).X)
	}
}

func TestComponentMutation(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{X: 1}, Score(10))

	ecs.ReadComponent[Position](storage, id).X = 42
	*ecs.ReadComponent[Score](storage, id) += 5

	assert.Equal(t, float32(42), ecs.ReadComponent[Position](storage, id).X)
	assert.Equal(t, Score(15), *ecs.ReadComponent[Score](storage, id))
}

func TestComponentAddressStable(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{X: 1})
	ptr := ecs.ReadComponent[Position](storage, id)

	for i := 0; i < 500; i++ {
		storage.Spawn(Position{X: float32(i)})
	}

	assert.Same(t, ptr, ecs.ReadComponent[Position](storage, id))
}

func TestInsertComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{X: 1, Y: 2})

	t.Run("adds a new type and keeps the id", func(t *testing.T) {
		require.NoError(t, storage.Insert(id, Velocity{DX: 3}))
		assert.True(t, storage.Contains(id))
		assert.Equal(t, float32(1), ecs.ReadComponent[Position](storage, id).X)
		assert.Equal(t, float32(3), ecs.ReadComponent[Velocity](storage, id).DX)
		assert.Equal(t, 0, storage.GetArchetype(Position{}).Len())
	})

	t.Run("overwrites an existing type in place", func(t *testing.T) {
		before := storage.ArchetypeOf(id)
		require.NoError(t, storage.Insert(id, &Velocity{DX: 9}))
		assert.Same(t, before, storage.ArchetypeOf(id))
		assert.Equal(t, float32(9), ecs.ReadComponent[Velocity](storage, id).DX)
	})
}

func TestRemoveComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{X: 1}, Velocity{DX: 2})

	require.NoError(t, storage.Remove(id, reflect.TypeFor[Velocity]()))
	assert.False(t, storage.HasComponent(id, reflect.TypeFor[Velocity]()))
	assert.True(t, storage.HasComponent(id, reflect.TypeFor[Position]()))

	err := storage.Remove(id, reflect.TypeFor[Velocity]())
	assert.ErrorIs(t, err, ecs.ErrComponentNotFound)
}

func TestRemoveLastComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{X: 1})
	require.NoError(t, storage.Remove(id, reflect.TypeFor[Position]()))

	assert.True(t, storage.Contains(id))
	assert.Empty(t, storage.ArchetypeOf(id).Types())

	require.NoError(t, storage.Insert(id, Name{Value: "back"}))
	assert.Equal(t, "back", ecs.ReadComponent[Name](storage, id).Value)
}

func TestPrimitiveComponents(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Score(7), Tag("player"), int32(3), "label", 1.5)

	assert.Equal(t, Score(7), *ecs.ReadComponent[Score](storage, id))
	assert.Equal(t, Tag("player"), *ecs.ReadComponent[Tag](storage, id))
	assert.Equal(t, int32(3), *ecs.ReadComponent[int32](storage, id))
	assert.Equal(t, "label", *ecs.ReadComponent[string](storage, id))
	assert.Equal(t, 1.5, *ecs.ReadComponent[float64](storage, id))
}

func TestPointerAndSliceFields(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	target := &Position{X: 5}
	id := storage.Spawn(Link{Next: target}, Inventory{Items: []string{"key"}})

	assert.Same(t, target, ecs.ReadComponent[Link](storage, id).Next)
	assert.Equal(t, []string{"key"}, ecs.ReadComponent[Inventory](storage, id).Items)
}

func TestUnsupportedComponentKinds(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	assert.Panics(t, func() { storage.Spawn(map[string]int{}) })
	assert.Panics(t, func() { storage.Spawn(func() {}) })
}

func TestUnregisteredComponentPanics(t *testing.T) {
	type unregistered struct{}
	storage := ecs.NewStorage(newTestRegistry())

	assert.Panics(t, func() { storage.Spawn(unregistered{}) })
}

func TestGetArchetypesSorted(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	storage.Spawn(Position{})
	storage.Spawn(Velocity{})
	storage.Spawn(Position{}, Velocity{})
	storage.Spawn(Name{})

	archetypes := storage.GetArchetypes()
	require.Len(t, archetypes, 4)
	for i := 1; i < len(archetypes); i++ {
		assert.Less(t, archetypes[i-1].ID(), archetypes[i].ID())
	}

	assert.NotNil(t, storage.GetArchetype(Velocity{}, Position{}))
	assert.NotNil(t, storage.GetArchetypeByTypes([]reflect.Type{reflect.TypeFor[Velocity](), reflect.TypeFor[Position]()}))
	assert.Nil(t, storage.GetArchetype(Health{}))
}

func TestStructuralChangesDuringIteration(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[struct{ *Position }](storage)

	id := storage.Spawn(Position{X: 1})
	other := storage.Spawn(Position{X: 2}, Velocity{})

	for range view.Iter() {
		assert.True(t, storage.Iterating())
		assert.ErrorIs(t, storage.Despawn(other), ecs.ErrStorageLocked)
		assert.ErrorIs(t, storage.Insert(id, Health{}), ecs.ErrStorageLocked)
		assert.ErrorIs(t, storage.Remove(other, reflect.TypeFor[Velocity]()), ecs.ErrStorageLocked)
		assert.ErrorIs(t, storage.Compact(), ecs.ErrStorageLocked)
		assert.Panics(t, func() { storage.Spawn(Position{}) })

		// replacing a component the entity already has is not structural
		assert.NoError(t, storage.Insert(other, Velocity{DX: 1}))
	}

	assert.False(t, storage.Iterating())
	assert.NoError(t, storage.Despawn(other))
}

func TestCompact(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	ids := make([]ecs.Entity, 10)
	for i := range ids {
		ids[i] = storage.Spawn(Position{X: float32(i)})
	}
	for i := 0; i < len(ids); i += 2 {
		require.NoError(t, storage.Despawn(ids[i]))
	}

	require.NoError(t, storage.Compact())

	for i, id := range ids {
		if i%2 == 0 {
			assert.False(t, storage.Contains(id))
			continue
		}
		require.True(t, storage.Contains(id))
		assert.Equal(t, float32(i), ecs.ReadComponent[Position](storage, id).X)
	}

	fresh := storage.Spawn(Position{X: 99})
	assert.Equal(t, float32(99), ecs.ReadComponent[Position](storage, fresh).X)
	assert.Equal(t, 6, storage.GetArchetype(Position{}).Len())
}

func TestCompactEmptyArchetype(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(Position{})
	require.NoError(t, storage.Despawn(id))
	require.NoError(t, storage.Compact())

	assert.Equal(t, 0, storage.GetArchetype(Position{}).Len())
}

func TestLargeNumberOfEntities(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	ids := make([]ecs.Entity, 1000)
	for i := range ids {
		ids[i] = storage.Spawn(Position{X: float32(i)}, Score(i))
	}

	for i, id := range ids {
		assert.Equal(t, Score(i), *ecs.ReadComponent[Score](storage, id))
	}
}
