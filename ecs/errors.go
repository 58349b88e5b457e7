package ecs

import "errors"

var (
	// ErrEntityNotFound is returned when an entity has been despawned or never existed.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrComponentNotFound is returned when removing a component the entity does not have.
	ErrComponentNotFound = errors.New("component not found")
	// ErrStorageLocked is returned for structural changes attempted while a query iterates.
	ErrStorageLocked = errors.New("storage is locked by an active query")
	// ErrOverlappingQuery is raised when a second iteration starts before the first one ends.
	ErrOverlappingQuery = errors.New("overlapping query iteration")
	// ErrSystemPanic wraps a panic recovered from a system phase.
	ErrSystemPanic = errors.New("system panicked")
)
