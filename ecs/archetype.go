package ecs

import (
	"iter"
	"reflect"
	"slices"
)

type byTypeName []reflect.Type

func (a byTypeName) Len() int           { return len(a) }
func (a byTypeName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byTypeName) Less(i, j int) bool { return a[i].String() < a[j].String() }

// Archetype represents a unique combination of component types.
// Rows are stable until the archetype is compacted; freed rows are reused.
type Archetype struct {
	id        uint32
	types     []reflect.Type
	typeIndex map[reflect.Type]int
	storages  []iComponentStorage
	rows      []Entity
	freeRows  []int
	live      int
}

// NewArchetype creates a new archetype with the given ID and sorted component types
func NewArchetype(id uint32, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{
		id:        id,
		types:     types,
		typeIndex: make(map[reflect.Type]int, len(types)),
		storages:  make([]iComponentStorage, len(types)),
	}

	// Initialize storage for each component type
	for idx, typ := range types {
		factory := registry.getFactory(typ)
		if factory == nil {
			panic("component type " + typ.String() + " not registered")
		}
		a.storages[idx] = factory()
		a.typeIndex[typ] = idx
	}

	return a
}

// spawn stores the components for entity in a free row and returns that row
func (a *Archetype) spawn(entity Entity, components []any) int {
	var row int
	if n := len(a.freeRows); n > 0 {
		row = a.freeRows[n-1]
		a.freeRows = a.freeRows[:n-1]
		a.rows[row] = entity
	} else {
		row = len(a.rows)
		a.rows = append(a.rows, entity)
	}

	for _, comp := range components {
		compType := reflect.TypeOf(comp)
		if compType.Kind() == reflect.Ptr {
			compType = compType.Elem()
		}
		if idx, ok := a.typeIndex[compType]; ok {
			a.storages[idx].Set(row, comp)
		}
	}

	a.live++
	return row
}

// delete clears every component in the row and frees it for reuse
func (a *Archetype) delete(row int) {
	if row < 0 || row >= len(a.rows) || a.rows[row] == 0 {
		return
	}
	for _, storage := range a.storages {
		storage.Delete(row)
	}
	a.rows[row] = 0
	a.freeRows = append(a.freeRows, row)
	a.live--
}

// GetComponent returns a pointer to the component of the given type stored in row
func (a *Archetype) GetComponent(row int, compType reflect.Type) any {
	idx, ok := a.typeIndex[compType]
	if !ok {
		return nil
	}
	return a.storages[idx].Get(row)
}

func (a *Archetype) setComponent(row int, component any, compType reflect.Type) bool {
	idx, ok := a.typeIndex[compType]
	if !ok {
		return false
	}
	return a.storages[idx].Set(row, component)
}

// HasComponent checks if this archetype has the given component type
func (a *Archetype) HasComponent(compType reflect.Type) bool {
	_, ok := a.typeIndex[compType]
	return ok
}

// ID returns the archetype's unique identifier
func (a *Archetype) ID() uint32 {
	return a.id
}

// Types returns the sorted component types for this archetype
func (a *Archetype) Types() []reflect.Type {
	return slices.Clone(a.types)
}

// Len returns the number of live entities in the archetype
func (a *Archetype) Len() int {
	return a.live
}

// compact moves live rows to the front and reports every relocation
func (a *Archetype) compact(moved func(entity Entity, row int)) {
	writePos := 0
	for readPos, entity := range a.rows {
		if entity == 0 {
			continue
		}
		if readPos != writePos {
			for _, storage := range a.storages {
				storage.Move(readPos, writePos)
			}
			a.rows[writePos] = entity
			a.rows[readPos] = 0
			moved(entity, writePos)
		}
		writePos++
	}

	a.rows = a.rows[:writePos]
	a.freeRows = a.freeRows[:0]
	for _, storage := range a.storages {
		storage.Truncate(writePos)
	}
}

// Iter returns an iterator over the live entities of this archetype
func (a *Archetype) Iter() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, entity := range a.rows {
			if entity == 0 {
				continue
			}
			if !yield(entity) {
				return
			}
		}
	}
}

// iterRows yields each live row with its entity
func (a *Archetype) iterRows() iter.Seq2[int, Entity] {
	return func(yield func(int, Entity) bool) {
		for row, entity := range a.rows {
			if entity == 0 {
				continue
			}
			if !yield(row, entity) {
				return
			}
		}
	}
}
