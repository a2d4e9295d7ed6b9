package ecs

import (
	"iter"
	"reflect"
)

// ComponentRegistry maps component types to their column factories.
// Every Storage owns exactly one registry, so independent simulations never share
// component layouts.
type ComponentRegistry struct {
	factories map[reflect.Type]func() iComponentStorage
}

// NewComponentRegistry creates an empty component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() iComponentStorage),
	}
}

// RegisterComponent registers T with the registry. A component type must be
// registered before any entity carrying it is spawned.
func RegisterComponent[T any](r *ComponentRegistry) {
	r.factories[reflect.TypeFor[T]()] = func() iComponentStorage {
		return &blockStorage[T]{}
	}
}

// Registered reports whether t has been registered.
func (r *ComponentRegistry) Registered(t reflect.Type) bool {
	_, ok := r.factories[t]
	return ok
}

func (r *ComponentRegistry) getFactory(t reflect.Type) func() iComponentStorage {
	return r.factories[t]
}

const blockSize = 64

// blockStorage keeps components of type T in fixed-size blocks. Slots are reused
// through a free list, so indices stay stable until an entity is deleted.
type blockStorage[T any] struct {
	blocks    []*[blockSize]T
	filled    []*[blockSize]bool
	freeSlots []int
	nextIndex int
	count     int
}

func (cs *blockStorage[T]) Append(item any) int {
	var value T
	switch v := item.(type) {
	case *T:
		value = *v
	case T:
		value = v
	default:
		return -1
	}

	var index int
	if n := len(cs.freeSlots); n > 0 {
		index = cs.freeSlots[n-1]
		cs.freeSlots = cs.freeSlots[:n-1]
	} else {
		index = cs.nextIndex
		cs.nextIndex++
		if index/blockSize >= len(cs.blocks) {
			cs.blocks = append(cs.blocks, new([blockSize]T))
			cs.filled = append(cs.filled, new([blockSize]bool))
		}
	}

	block, slot := index/blockSize, index%blockSize
	cs.blocks[block][slot] = value
	cs.filled[block][slot] = true
	cs.count++
	return index
}

// Get returns a pointer to the component at index, or nil for an empty slot.
// Blocks are heap allocated individually, so the pointer stays valid while
// other entities are appended.
func (cs *blockStorage[T]) Get(index int) any {
	if !cs.Has(index) {
		return nil
	}
	return &cs.blocks[index/blockSize][index%blockSize]
}

func (cs *blockStorage[T]) Delete(index int) {
	if !cs.Has(index) {
		return
	}
	block, slot := index/blockSize, index%blockSize
	var zero T
	cs.blocks[block][slot] = zero
	cs.filled[block][slot] = false
	cs.freeSlots = append(cs.freeSlots, index)
	cs.count--
}

func (cs *blockStorage[T]) Has(index int) bool {
	if index < 0 {
		return false
	}
	block := index / blockSize
	if block >= len(cs.filled) {
		return false
	}
	return cs.filled[block][index%blockSize]
}

func (cs *blockStorage[T]) Len() int {
	return cs.count
}

func (cs *blockStorage[T]) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < cs.nextIndex; i++ {
			if !cs.filled[i/blockSize][i%blockSize] {
				continue
			}
			if !yield(i) {
				return
			}
		}
	}
}
