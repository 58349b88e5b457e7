package ecs

import (
	"fmt"
	"reflect"
	"sort"
	"unsafe"
)

// Storage is the main ECS storage interface
type Storage struct {
	archetypes  map[uint32]*Archetype
	registry    *ComponentRegistry
	entities    []entityRecord
	freeSlots   []uint32
	singletons  map[reflect.Type]*singletonEntry
	activeQuery string
}

// NewStorage creates a new ECS storage system with the given component registry
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		archetypes: make(map[uint32]*Archetype),
		registry:   registry,
		singletons: make(map[reflect.Type]*singletonEntry),
	}
}

// Registry returns the component registry backing this storage
func (s *Storage) Registry() *ComponentRegistry {
	return s.registry
}

// GetArchetype returns an archetype storage (if one exists)
func (s *Storage) GetArchetype(components ...any) *Archetype {
	types := extractComponentTypes(components)
	archetypeId := hashTypesToUint32(types)
	return s.archetypes[archetypeId]
}

// GetArchetypeByTypes returns an archetype storage (if one exists) based on reflect.Type
func (s *Storage) GetArchetypeByTypes(types []reflect.Type) *Archetype {
	sorted := make([]reflect.Type, len(types))
	copy(sorted, types)
	sort.Sort(byTypeName(sorted))
	archetypeId := hashTypesToUint32(sorted)
	return s.archetypes[archetypeId]
}

// GetArchetypeById returns the archetype with the given id, or nil
func (s *Storage) GetArchetypeById(id uint32) *Archetype {
	return s.archetypes[id]
}

// GetArchetypes returns every archetype ordered by id
func (s *Storage) GetArchetypes() []*Archetype {
	archetypes := make([]*Archetype, 0, len(s.archetypes))
	for _, archetype := range s.archetypes {
		archetypes = append(archetypes, archetype)
	}
	sort.Slice(archetypes, func(i, j int) bool {
		return archetypes[i].id < archetypes[j].id
	})
	return archetypes
}

// ArchetypeOf returns the archetype currently holding the entity
func (s *Storage) ArchetypeOf(entity Entity) *Archetype {
	record := s.record(entity)
	if record == nil {
		return nil
	}
	return record.archetype
}

// Spawn creates a new entity with the provided components
func (s *Storage) Spawn(components ...any) Entity {
	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}
	if s.activeQuery != "" {
		panic(fmt.Errorf("%w: spawn during %s", ErrStorageLocked, s.activeQuery))
	}

	types := extractComponentTypes(components)
	return s.spawnIn(s.archetypeFor(types), components)
}

func (s *Storage) archetypeFor(types []reflect.Type) *Archetype {
	archetypeId := hashTypesToUint32(types)
	archetype, exists := s.archetypes[archetypeId]
	if !exists {
		archetype = NewArchetype(archetypeId, types, s.registry)
		s.archetypes[archetypeId] = archetype
	}
	return archetype
}

func (s *Storage) spawnIn(archetype *Archetype, components []any) Entity {
	entity := s.allocEntity()
	record := &s.entities[entity.Index()]
	record.archetype = archetype
	record.row = archetype.spawn(entity, components)
	return entity
}

func (s *Storage) allocEntity() Entity {
	if n := len(s.freeSlots); n > 0 {
		index := s.freeSlots[n-1]
		s.freeSlots = s.freeSlots[:n-1]
		record := &s.entities[index]
		record.alive = true
		return newEntity(index, record.generation)
	}

	index := uint32(len(s.entities))
	s.entities = append(s.entities, entityRecord{generation: 1, alive: true})
	return newEntity(index, 1)
}

func (s *Storage) record(entity Entity) *entityRecord {
	index := entity.Index()
	if int(index) >= len(s.entities) {
		return nil
	}
	record := &s.entities[index]
	if !record.alive || record.generation != entity.Generation() {
		return nil
	}
	return record
}

// Contains reports whether the entity is alive
func (s *Storage) Contains(entity Entity) bool {
	return s.record(entity) != nil
}

// Len returns the number of live entities
func (s *Storage) Len() int {
	return len(s.entities) - len(s.freeSlots)
}

// Despawn removes the entity and all of its components.
// The identifier is invalidated immediately.
func (s *Storage) Despawn(entity Entity) error {
	if s.activeQuery != "" {
		return fmt.Errorf("%w: despawn %s during %s", ErrStorageLocked, entity, s.activeQuery)
	}

	record := s.record(entity)
	if record == nil {
		return fmt.Errorf("%w: %s", ErrEntityNotFound, entity)
	}

	record.archetype.delete(record.row)
	record.archetype = nil
	record.row = -1
	record.alive = false
	record.generation++
	if record.generation == 0 {
		record.generation = 1
	}
	s.freeSlots = append(s.freeSlots, entity.Index())
	return nil
}

// Insert adds or replaces a component on the entity.
// Replacing an existing component type is not a structural change and is
// allowed while a query iterates.
func (s *Storage) Insert(entity Entity, component any) error {
	record := s.record(entity)
	if record == nil {
		return fmt.Errorf("%w: %s", ErrEntityNotFound, entity)
	}

	compType := componentType(component)
	if record.archetype.HasComponent(compType) {
		record.archetype.setComponent(record.row, component, compType)
		return nil
	}

	if s.activeQuery != "" {
		return fmt.Errorf("%w: insert %s into %s during %s", ErrStorageLocked, compType, entity, s.activeQuery)
	}

	oldArchetype := record.archetype
	newTypes := make([]reflect.Type, 0, len(oldArchetype.types)+1)
	newTypes = append(newTypes, oldArchetype.types...)
	newTypes = append(newTypes, compType)
	sort.Sort(byTypeName(newTypes))

	components := make([]any, 0, len(newTypes))
	for _, typ := range oldArchetype.types {
		components = append(components, oldArchetype.GetComponent(record.row, typ))
	}
	components = append(components, component)

	s.move(entity, record, s.archetypeFor(newTypes), components)
	return nil
}

// Remove detaches the component type from the entity.
// An entity left without components stays alive.
func (s *Storage) Remove(entity Entity, compType reflect.Type) error {
	if s.activeQuery != "" {
		return fmt.Errorf("%w: remove %s from %s during %s", ErrStorageLocked, compType, entity, s.activeQuery)
	}

	record := s.record(entity)
	if record == nil {
		return fmt.Errorf("%w: %s", ErrEntityNotFound, entity)
	}

	oldArchetype := record.archetype
	if !oldArchetype.HasComponent(compType) {
		return fmt.Errorf("%w: %s on %s", ErrComponentNotFound, compType, entity)
	}

	newTypes := make([]reflect.Type, 0, len(oldArchetype.types)-1)
	components := make([]any, 0, len(oldArchetype.types)-1)
	for _, typ := range oldArchetype.types {
		if typ != compType {
			newTypes = append(newTypes, typ)
			components = append(components, oldArchetype.GetComponent(record.row, typ))
		}
	}

	s.move(entity, record, s.archetypeFor(newTypes), components)
	return nil
}

func (s *Storage) move(entity Entity, record *entityRecord, to *Archetype, components []any) {
	from := record.archetype
	row := to.spawn(entity, components)
	from.delete(record.row)
	record.archetype = to
	record.row = row
}

// GetComponent returns the component for the given entity and component type
func (s *Storage) GetComponent(entity Entity, compType reflect.Type) any {
	record := s.record(entity)
	if record == nil {
		return nil
	}
	return record.archetype.GetComponent(record.row, compType)
}

// HasComponent checks if an entity has a specific component type
func (s *Storage) HasComponent(entity Entity, compType reflect.Type) bool {
	record := s.record(entity)
	if record == nil {
		return false
	}
	return record.archetype.HasComponent(compType)
}

// Compact removes holes left by despawned entities in every archetype.
// Component pointers obtained earlier are invalidated.
func (s *Storage) Compact() error {
	if s.activeQuery != "" {
		return fmt.Errorf("%w: compact during %s", ErrStorageLocked, s.activeQuery)
	}
	for _, archetype := range s.archetypes {
		archetype.compact(func(entity Entity, row int) {
			s.entities[entity.Index()].row = row
		})
	}
	return nil
}

// beginIteration marks the storage as borrowed by an iterator.
// The returned function releases the borrow.
func (s *Storage) beginIteration(name string) func() {
	if s.activeQuery != "" {
		panic(fmt.Errorf("%w: %s started while %s is iterating", ErrOverlappingQuery, name, s.activeQuery))
	}
	s.activeQuery = name
	return func() {
		s.activeQuery = ""
	}
}

// Iterating reports whether a query currently borrows the storage
func (s *Storage) Iterating() bool {
	return s.activeQuery != ""
}

func componentType(component any) reflect.Type {
	compType := reflect.TypeOf(component)
	if compType.Kind() == reflect.Ptr {
		compType = compType.Elem()
	}
	return compType
}

// extractComponentTypes extracts and sorts component types from a slice of components
func extractComponentTypes(components []any) []reflect.Type {
	types := make([]reflect.Type, 0, len(components))
	for _, comp := range components {
		compType := componentType(comp)

		// Components can be structs or primitives (int, string, etc.)
		// But not pointers, maps, channels, or functions (those aren't value types)
		if compType.Kind() == reflect.Ptr || compType.Kind() == reflect.Map ||
			compType.Kind() == reflect.Chan || compType.Kind() == reflect.Func {
			panic("components cannot be pointers, maps, channels, or functions")
		}

		types = append(types, compType)
	}
	sort.Sort(byTypeName(types))
	return types
}

// hashTypesToUint32 generates a uint32 hash for a sorted slice of types
func hashTypesToUint32(types []reflect.Type) uint32 {
	var h uint32 = 2166136261     // FNV-1a 32-bit offset basis
	const prime uint32 = 16777619 // FNV-1a 32-bit prime

	for _, t := range types {
		// Use the type's pointer as a unique identifier
		ptr := dataPointer(t)
		val := uint32(uintptr(ptr))

		// Mix in all 4 bytes if on 64-bit system
		if unsafe.Sizeof(uintptr(0)) == 8 {
			val ^= uint32(uintptr(ptr) >> 32)
		}

		h ^= val
		h *= prime
	}

	return h
}

type ComponentReader interface {
	GetComponent(Entity, reflect.Type) any
}

// ReadComponent returns the entity's component of type T, or nil when the
// entity is gone or lacks the component.
func ReadComponent[T any](reader ComponentReader, entity Entity) *T {
	component, _ := reader.GetComponent(entity, reflect.TypeFor[T]()).(*T)
	return component
}
