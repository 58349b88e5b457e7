package ecs

import (
	"iter"
)

// Query wraps a View with a cache of matching archetypes.
// The cache is rebuilt whenever the storage gains an archetype; iteration
// always reads live component data.
type Query[T any] struct {
	view               *View[T]
	storage            *Storage
	cachedArchetypes   []*Archetype
	lastArchetypeCount int
}

// NewQuery creates a new Query with archetype-level caching.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init initializes or re-initializes the Query with a storage.
// Called by the Scheduler during system registration.
func (q *Query[T]) Init(storage *Storage) {
	q.view = NewView[T](storage)
	q.storage = storage
	q.cachedArchetypes = nil
	q.lastArchetypeCount = -1
}

func (q *Query[T]) archetypes() []*Archetype {
	currentCount := len(q.storage.archetypes)
	if currentCount != q.lastArchetypeCount || q.cachedArchetypes == nil {
		q.cachedArchetypes = q.cachedArchetypes[:0]
		for _, archetype := range q.storage.archetypes {
			if q.view.matchesArchetype(archetype) {
				q.cachedArchetypes = append(q.cachedArchetypes, archetype)
			}
		}
		sortedByID(q.cachedArchetypes)
		q.lastArchetypeCount = currentCount
	}
	return q.cachedArchetypes
}

// Iter returns an iterator over entities and their component data.
func (q *Query[T]) Iter() iter.Seq2[Entity, T] {
	return q.view.iterArchetypes(q.archetypes)
}

// Values returns an iterator over component data only.
func (q *Query[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range q.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Get returns the populated view for a single entity, or nil.
func (q *Query[T]) Get(entity Entity) *T {
	return q.view.Get(entity)
}

// Count returns the number of matching entities.
func (q *Query[T]) Count() int {
	n := 0
	for range q.Iter() {
		n++
	}
	return n
}

// Entities collects the matching entities into a slice.
// Useful when the caller needs to make structural changes afterwards.
func (q *Query[T]) Entities() []Entity {
	entities := make([]Entity, 0)
	for entity := range q.Iter() {
		entities = append(entities, entity)
	}
	return entities
}
