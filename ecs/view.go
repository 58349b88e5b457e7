package ecs

import (
	"iter"
	"reflect"
	"sort"
	"unsafe"
)

var entityType = reflect.TypeFor[Entity]()

// dataPointer returns the data word of an interface value. Component
// storages hold pointers, so this is the component's address.
func dataPointer(v any) unsafe.Pointer {
	return (*[2]unsafe.Pointer)(unsafe.Pointer(&v))[1]
}

// View represents a query for entities with a specific combination of components
// The type T should be a struct with embedded pointer fields for each component type
// Named fields can be marked as optional using the `ecs:"optional"` struct tag
// A field of type Entity receives the identifier of the matched entity
type View[T any] struct {
	storage      *Storage
	name         string
	types        []reflect.Type
	optional     []bool
	fieldOffset  []uintptr
	entityOffset int
}

// NewView creates a new view for the given struct type
// The struct T should have embedded or named fields that are pointers to component types
// Embedded fields are always required
// Named fields can be marked as optional using the `ecs:"optional"` struct tag
func NewView[T any](storage *Storage) *View[T] {
	structType := reflect.TypeFor[T]()

	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	v := &View[T]{
		storage:      storage,
		name:         structType.String(),
		types:        make([]reflect.Type, 0, structType.NumField()),
		optional:     make([]bool, 0, structType.NumField()),
		fieldOffset:  make([]uintptr, 0, structType.NumField()),
		entityOffset: -1,
	}

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldType := field.Type

		if fieldType == entityType {
			if v.entityOffset >= 0 {
				panic("View struct may only have one Entity field")
			}
			v.entityOffset = int(field.Offset)
			continue
		}

		if fieldType.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types")
		}

		// Embedded fields (field.Anonymous) are always required
		isOptional := false
		if !field.Anonymous {
			switch tag := field.Tag.Get("ecs"); tag {
			case "":
			case "optional":
				isOptional = true
			default:
				panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
			}
		}

		v.types = append(v.types, fieldType.Elem())
		v.fieldOffset = append(v.fieldOffset, field.Offset)
		v.optional = append(v.optional, isOptional)
	}

	return v
}

// Fill populates the provided struct pointer with component data for the given entity
// Returns false if the entity is not alive or is missing any required components
// Optional components are set to nil if not present
func (v *View[T]) Fill(entity Entity, ptr *T) bool {
	record := v.storage.record(entity)
	if record == nil {
		return false
	}
	archetype := record.archetype
	return v.populateResult(unsafe.Pointer(ptr), archetype, record.row, v.buildStorageIndices(archetype), entity)
}

// Get returns a populated view struct for the given entity, or nil if the entity
// doesn't have all the required components
func (v *View[T]) Get(entity Entity) *T {
	var result T
	if !v.Fill(entity, &result) {
		return nil
	}
	return &result
}

// matchesArchetype checks if an archetype contains all the required component types for this view
// Optional components are not checked - they may or may not be present
func (v *View[T]) matchesArchetype(archetype *Archetype) bool {
	for i, requiredType := range v.types {
		if v.optional[i] {
			continue
		}
		if !archetype.HasComponent(requiredType) {
			return false
		}
	}
	return true
}

func (v *View[T]) buildStorageIndices(archetype *Archetype) []int {
	storageIndices := make([]int, len(v.types))
	for i, componentType := range v.types {
		storageIndices[i] = -1
		if idx, ok := archetype.typeIndex[componentType]; ok {
			storageIndices[i] = idx
		}
	}
	return storageIndices
}

func (v *View[T]) populateResult(resultPtr unsafe.Pointer, archetype *Archetype, row int, storageIndices []int, entity Entity) bool {
	for i, storageIdx := range storageIndices {
		fieldPtr := unsafe.Pointer(uintptr(resultPtr) + v.fieldOffset[i])

		var component any
		if storageIdx >= 0 {
			component = archetype.storages[storageIdx].Get(row)
		}
		if component == nil {
			if v.optional[i] {
				*(*unsafe.Pointer)(fieldPtr) = nil
				continue
			}
			return false
		}

		componentPtr := dataPointer(component)
		*(*unsafe.Pointer)(fieldPtr) = componentPtr
	}

	if v.entityOffset >= 0 {
		*(*Entity)(unsafe.Pointer(uintptr(resultPtr) + uintptr(v.entityOffset))) = entity
	}
	return true
}

// iterArchetypes yields matching rows of the given archetypes while holding
// the storage's iteration lock
func (v *View[T]) iterArchetypes(archetypes func() []*Archetype) iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		release := v.storage.beginIteration(v.name)
		defer release()

		var result T
		resultPtr := unsafe.Pointer(&result)

		for _, archetype := range archetypes() {
			storageIndices := v.buildStorageIndices(archetype)
			for row, entity := range archetype.iterRows() {
				if !v.populateResult(resultPtr, archetype, row, storageIndices, entity) {
					continue
				}
				if !yield(entity, result) {
					return
				}
			}
		}
	}
}

func (v *View[T]) matchingArchetypes() []*Archetype {
	matching := make([]*Archetype, 0)
	for _, archetype := range v.storage.GetArchetypes() {
		if v.matchesArchetype(archetype) {
			matching = append(matching, archetype)
		}
	}
	return matching
}

// Iter returns an iterator over all entities that have all the required components for this view
// The iterator yields (Entity, T) pairs where T is the populated view struct
// Optional components are set to nil if not present
// Only one iteration may be active per storage; structural changes are
// refused until the loop ends.
func (v *View[T]) Iter() iter.Seq2[Entity, T] {
	return v.iterArchetypes(v.matchingArchetypes)
}

// Values returns an iterator over just the view structs (without entity IDs)
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Count returns the number of entities matching the view
func (v *View[T]) Count() int {
	n := 0
	for range v.Iter() {
		n++
	}
	return n
}

// Spawn creates a new entity with components extracted from the view struct
func (v *View[T]) Spawn(data T) Entity {
	structPtr := unsafe.Pointer(&data)

	components := make([]any, 0, len(v.types))
	for i := 0; i < len(v.types); i++ {
		fieldPtr := unsafe.Pointer(uintptr(structPtr) + v.fieldOffset[i])
		componentPtr := *(*unsafe.Pointer)(fieldPtr)

		if componentPtr == nil {
			if !v.optional[i] {
				panic("required component is nil in View.Spawn")
			}
			continue
		}

		component := reflect.NewAt(v.types[i], componentPtr).Elem().Interface()
		components = append(components, component)
	}

	return v.storage.Spawn(components...)
}

// sortedByID orders archetypes for deterministic iteration
func sortedByID(archetypes []*Archetype) {
	sort.Slice(archetypes, func(i, j int) bool {
		return archetypes[i].id < archetypes[j].id
	})
}
