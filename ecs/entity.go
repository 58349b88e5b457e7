package ecs

import "fmt"

// Entity is a stable identifier for a set of components.
// The lower 32 bits hold the slot index, the upper 32 bits the slot generation.
// An Entity stays valid across component insertion and removal and becomes
// stale as soon as it is despawned. The zero value never refers to a live entity.
type Entity uint64

func newEntity(index uint32, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(index))
}

// Index extracts the slot index from the entity
func (e Entity) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// Generation extracts the slot generation from the entity
func (e Entity) Generation() uint32 {
	return uint32(e >> 32)
}

func (e Entity) String() string {
	return fmt.Sprintf("%dv%d", e.Index(), e.Generation())
}

// entityRecord locates a live entity inside its archetype.
type entityRecord struct {
	generation uint32
	alive      bool
	archetype  *Archetype
	row        int
}
