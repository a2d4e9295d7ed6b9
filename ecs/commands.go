package ecs

import "reflect"

// Commands buffers structural changes made by a system while the Schedule is running.
// Each system gets its own buffer; the Schedule flushes them in registration order at
// the end of every stage, on the orchestrating goroutine.
type Commands struct {
	spawns  [][]any
	deletes []EntityId
	adds    []addComponentCommand
	removes []removeComponentCommand
	defers  []func()
}

func newCommands() *Commands {
	return &Commands{}
}

type addComponentCommand struct {
	entity    EntityId
	component any
}

type removeComponentCommand struct {
	entity   EntityId
	compType reflect.Type
}

// Defer queues fn to run during the flush, after every structural change of the
// buffer has been applied. UI code that must run on the orchestrating goroutine uses
// this.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Spawn queues an entity spawn.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, components)
}

// Delete queues an entity deletion.
func (c *Commands) Delete(entity EntityId) {
	c.deletes = append(c.deletes, entity)
}

// AddComponent queues adding (or replacing) a component.
func (c *Commands) AddComponent(entity EntityId, component any) {
	c.adds = append(c.adds, addComponentCommand{entity: entity, component: component})
}

// RemoveComponent queues removing a component.
func (c *Commands) RemoveComponent(entity EntityId, compType reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{entity: entity, compType: compType})
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.deletes) + len(c.adds) + len(c.removes) + len(c.defers)
}

// Flush applies the buffer to storage in the order deletes, removes, adds, spawns,
// defers, then resets it. Operations on an entity deleted in the same flush are
// dropped; adds and removes follow the entity across archetype moves.
func (c *Commands) Flush(storage *Storage) {
	deleted := make(map[EntityId]bool, len(c.deletes))
	moved := make(map[EntityId]EntityId)
	current := func(id EntityId) EntityId {
		if to, ok := moved[id]; ok {
			return to
		}
		return id
	}

	for _, id := range c.deletes {
		storage.Delete(id)
		deleted[id] = true
	}

	for _, cmd := range c.removes {
		if deleted[cmd.entity] {
			continue
		}
		moved[cmd.entity] = storage.RemoveComponent(current(cmd.entity), cmd.compType)
	}

	for _, cmd := range c.adds {
		if deleted[cmd.entity] {
			continue
		}
		from := current(cmd.entity)
		if from == 0 {
			continue
		}
		moved[cmd.entity] = storage.AddComponent(from, cmd.component)
	}

	for _, components := range c.spawns {
		storage.Spawn(components...)
	}

	for _, fn := range c.defers {
		fn()
	}

	c.reset()
}

func (c *Commands) reset() {
	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
}
