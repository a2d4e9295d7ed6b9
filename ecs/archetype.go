package ecs

import (
	"reflect"
	"slices"
	"weak"

	"github.com/kamstrup/intmap"
)

type byTypeName []reflect.Type

func (a byTypeName) Len() int           { return len(a) }
func (a byTypeName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byTypeName) Less(i, j int) bool { return a[i].String() < a[j].String() }

// Archetype stores every entity that has exactly one particular set of component types.
// Columns advance in lockstep: slot i of every column belongs to the same entity.
type Archetype struct {
	id       uint32
	types    []reflect.Type
	storages []iComponentStorage
	refs     *intmap.Map[EntityId, weak.Pointer[EntityRef]]

	// generations holds the current generation of every slot ever allocated.
	generations []uint8
}

// NewArchetype creates an archetype for the given sorted component types.
// It panics if any type was not registered with the registry.
func NewArchetype(id uint32, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{
		id:       id,
		types:    types,
		storages: make([]iComponentStorage, len(types)),
		refs:     intmap.New[EntityId, weak.Pointer[EntityRef]](64),
	}

	for idx, typ := range types {
		factory := registry.getFactory(typ)
		if factory == nil {
			panic("component type " + typ.String() + " not registered")
		}
		a.storages[idx] = factory()
	}

	return a
}

// Spawn stores one entity built from components, reusing a freed slot when there is
// one, and returns its id.
func (a *Archetype) Spawn(components []any) EntityId {
	slot := -1
	for _, comp := range components {
		idx := a.column(componentType(comp))
		if idx < 0 {
			continue
		}
		slot = a.storages[idx].Append(comp)
	}
	if slot < 0 {
		panic("archetype spawn without any of its components")
	}
	if slot >= MaxArchetypeEntities {
		panic("archetype is full")
	}

	for len(a.generations) <= slot {
		a.generations = append(a.generations, 0)
	}
	return a.idOf(slot)
}

func (a *Archetype) idOf(slot int) EntityId {
	return newEntityId(a.id, uint32(slot), a.generations[slot])
}

// GetComponent returns a pointer to the component of compType for id, or nil when id
// is not live in this archetype.
func (a *Archetype) GetComponent(id EntityId, compType reflect.Type) any {
	idx := a.column(compType)
	if idx < 0 || !a.Contains(id) {
		return nil
	}
	return a.storages[idx].Get(int(id.Index()))
}

// Delete frees the entity's slot, bumps its generation and invalidates any EntityRef
// pointing at it. Stale ids are ignored.
func (a *Archetype) Delete(id EntityId) {
	if !a.Contains(id) {
		return
	}

	if ptr, ok := a.refs.Get(id); ok {
		if ref := ptr.Value(); ref != nil {
			ref.Id = 0
			ref.Archetype = nil
		}
		a.refs.Del(id)
	}

	slot := int(id.Index())
	for _, storage := range a.storages {
		storage.Delete(slot)
	}
	a.generations[slot]++
}

// Contains reports whether id is a live entity of this archetype.
func (a *Archetype) Contains(id EntityId) bool {
	if id.ArchetypeId() != a.id || len(a.storages) == 0 {
		return false
	}
	slot := int(id.Index())
	return slot < len(a.generations) &&
		a.generations[slot] == id.Generation() &&
		a.storages[0].Has(slot)
}

// HasComponent reports whether the archetype stores compType.
func (a *Archetype) HasComponent(compType reflect.Type) bool {
	return slices.Contains(a.types, compType)
}

// ID returns the archetype hash.
func (a *Archetype) ID() uint32 {
	return a.id
}

// Types returns the sorted component types of the archetype.
func (a *Archetype) Types() []reflect.Type {
	return a.types
}

// Len returns the number of live entities.
func (a *Archetype) Len() int {
	if len(a.storages) == 0 {
		return 0
	}
	return a.storages[0].Len()
}

// Iter yields the id of every live entity.
func (a *Archetype) Iter() func(yield func(EntityId) bool) {
	return func(yield func(EntityId) bool) {
		if len(a.storages) == 0 {
			return
		}
		for index := range a.storages[0].Iter() {
			if !yield(a.idOf(index)) {
				return
			}
		}
	}
}

func (a *Archetype) column(compType reflect.Type) int {
	for i, typ := range a.types {
		if typ == compType {
			return i
		}
	}
	return -1
}
