package ecs

import (
	"errors"
	"reflect"
)

// Commands provides a buffer for deferred ECS operations that are applied after a phase.
// This prevents structural changes to the ECS storage during system execution.
type Commands struct {
	spawns   []spawnCommand
	despawns []Entity
	inserts  []insertCommand
	removes  []removeCommand
	defers   []func()
}

// NewCommands returns an empty command buffer
func NewCommands() *Commands {
	return &Commands{}
}

type spawnCommand struct {
	components []any
}

type insertCommand struct {
	entity    Entity
	component any
}

type removeCommand struct {
	entity   Entity
	compType reflect.Type
}

// Defer queues a function to run after every other command has been applied.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Spawn queues an entity spawn operation with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// Despawn queues an entity removal.
func (c *Commands) Despawn(entity Entity) {
	c.despawns = append(c.despawns, entity)
}

// Insert queues adding or replacing a component.
func (c *Commands) Insert(entity Entity, component any) {
	c.inserts = append(c.inserts, insertCommand{
		entity:    entity,
		component: component,
	})
}

// Remove queues a component removal operation.
func (c *Commands) Remove(entity Entity, compType reflect.Type) {
	c.removes = append(c.removes, removeCommand{
		entity:   entity,
		compType: compType,
	})
}

// Len returns the number of queued operations
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.despawns) + len(c.inserts) + len(c.removes) + len(c.defers)
}

// Flush applies all queued commands to the provided storage and resets the buffer.
// Despawns run first; changes queued for an entity despawned in the same flush are skipped.
// Every failure is collected and returned joined.
func (c *Commands) Flush(storage *Storage) error {
	var errs []error
	despawned := make(map[Entity]bool, len(c.despawns))

	for _, entity := range c.despawns {
		if despawned[entity] {
			continue
		}
		if err := storage.Despawn(entity); err != nil {
			errs = append(errs, err)
		}
		despawned[entity] = true
	}

	for _, cmd := range c.removes {
		if despawned[cmd.entity] {
			continue
		}
		if err := storage.Remove(cmd.entity, cmd.compType); err != nil {
			errs = append(errs, err)
		}
	}

	for _, cmd := range c.inserts {
		if despawned[cmd.entity] {
			continue
		}
		if err := storage.Insert(cmd.entity, cmd.component); err != nil {
			errs = append(errs, err)
		}
	}

	for _, cmd := range c.spawns {
		storage.Spawn(cmd.components...)
	}

	defers := c.defers
	c.spawns = c.spawns[:0]
	c.despawns = c.despawns[:0]
	c.inserts = c.inserts[:0]
	c.removes = c.removes[:0]
	c.defers = nil

	for _, fn := range defers {
		fn()
	}

	return errors.Join(errs...)
}
