package ecs

import (
	"reflect"
	"sort"
	"unsafe"
	"weak"
)

// Storage is the simulation store: archetype tables for entities plus a table of
// singleton resources. It is not safe for concurrent structural modification; the
// Schedule defers spawns, deletes and component moves through Commands so systems
// running in parallel only ever read the tables.
type Storage struct {
	archetypes map[uint32]*Archetype
	registry   *ComponentRegistry
	singletons map[reflect.Type]*singletonEntry
	order      []reflect.Type
}

type singletonEntry struct {
	typ     reflect.Type
	value   reflect.Value
	dataPtr unsafe.Pointer
}

// NewStorage creates an empty store backed by registry.
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		archetypes: make(map[uint32]*Archetype),
		registry:   registry,
		singletons: make(map[reflect.Type]*singletonEntry),
	}
}

// Registry returns the component registry the store was created with.
func (s *Storage) Registry() *ComponentRegistry {
	return s.registry
}

// CreateEntityRef returns a stable reference to id. The same ref is returned while it
// is still alive; it follows the entity across AddComponent/RemoveComponent moves.
func (s *Storage) CreateEntityRef(id EntityId) *EntityRef {
	archetype := s.archetypes[id.ArchetypeId()]
	if archetype == nil || !archetype.Contains(id) {
		return nil
	}

	if ptr, ok := archetype.refs.Get(id); ok {
		if ref := ptr.Value(); ref != nil {
			return ref
		}
		archetype.refs.Del(id)
	}

	ref := &EntityRef{Id: id, Archetype: archetype}
	archetype.refs.Put(id, weak.Make(ref))
	return ref
}

// ResolveEntityRef returns the current id of ref, or false once the entity is gone.
func (s *Storage) ResolveEntityRef(ref *EntityRef) (EntityId, bool) {
	if ref == nil || ref.Id == 0 {
		return 0, false
	}
	return ref.Id, true
}

// GetArchetype returns the archetype holding exactly the given components, if any.
func (s *Storage) GetArchetype(components ...any) *Archetype {
	return s.archetypes[hashTypesToUint32(extractComponentTypes(components))]
}

// GetArchetypeByTypes is GetArchetype keyed by reflect.Type.
func (s *Storage) GetArchetypeByTypes(types []reflect.Type) *Archetype {
	sorted := append([]reflect.Type(nil), types...)
	sort.Sort(byTypeName(sorted))
	return s.archetypes[hashTypesToUint32(sorted)]
}

// Spawn creates an entity from components. Components may be passed by value or by
// pointer; the store keeps its own copy.
func (s *Storage) Spawn(components ...any) EntityId {
	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}

	types := extractComponentTypes(components)
	archetype := s.archetypeFor(types)
	return archetype.Spawn(components)
}

// Delete destroys the entity. Deleting an unknown or already deleted id is a no-op.
func (s *Storage) Delete(id EntityId) {
	if archetype, ok := s.archetypes[id.ArchetypeId()]; ok {
		archetype.Delete(id)
	}
}

// Exists reports whether id refers to a live entity.
func (s *Storage) Exists(id EntityId) bool {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	return ok && archetype.Contains(id)
}

// AddComponent moves the entity to the archetype that also has component and returns
// its new id.
func (s *Storage) AddComponent(id EntityId, component any) EntityId {
	old := s.archetypes[id.ArchetypeId()]
	if old == nil || !old.Contains(id) {
		return 0
	}

	compType := componentType(component)
	types := make([]reflect.Type, 0, len(old.types)+1)
	for _, typ := range old.types {
		if typ != compType {
			types = append(types, typ)
		}
	}
	types = append(types, compType)
	sort.Sort(byTypeName(types))

	components := make([]any, 0, len(types))
	for _, typ := range types {
		if typ == compType {
			components = append(components, component)
			continue
		}
		components = append(components, old.GetComponent(id, typ))
	}

	return s.move(id, old, types, components)
}

// RemoveComponent moves the entity to the archetype without compType and returns its
// new id. Removing the last component deletes the entity and returns 0.
func (s *Storage) RemoveComponent(id EntityId, compType reflect.Type) EntityId {
	old := s.archetypes[id.ArchetypeId()]
	if old == nil || !old.Contains(id) {
		return 0
	}

	types := make([]reflect.Type, 0, len(old.types))
	components := make([]any, 0, len(old.types))
	for _, typ := range old.types {
		if typ == compType {
			continue
		}
		types = append(types, typ)
		components = append(components, old.GetComponent(id, typ))
	}

	if len(types) == 0 {
		old.Delete(id)
		return 0
	}
	return s.move(id, old, types, components)
}

func (s *Storage) move(id EntityId, old *Archetype, types []reflect.Type, components []any) EntityId {
	target := s.archetypeFor(types)
	newId := target.Spawn(components)

	ptr, hasRef := old.refs.Get(id)
	if hasRef {
		old.refs.Del(id)
		if ref := ptr.Value(); ref != nil {
			ref.Id = newId
			ref.Archetype = target
			target.refs.Put(newId, ptr)
		}
	}

	old.Delete(id)
	return newId
}

func (s *Storage) archetypeFor(types []reflect.Type) *Archetype {
	id := hashTypesToUint32(types)
	archetype, ok := s.archetypes[id]
	if !ok {
		archetype = NewArchetype(id, types, s.registry)
		s.archetypes[id] = archetype
	}
	return archetype
}

// GetComponent returns a pointer to the component of compType on id, or nil.
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) any {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok {
		return nil
	}
	return archetype.GetComponent(id, compType)
}

// HasComponent reports whether the entity's archetype has compType.
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	return ok && archetype.HasComponent(compType)
}

// AddSingleton stores value as the resource of its type, replacing any previous value
// in place so existing Singleton accessors keep pointing at it.
func (s *Storage) AddSingleton(value any) {
	typ := reflect.TypeOf(value)
	if entry, ok := s.singletons[typ]; ok {
		entry.value.Set(reflect.ValueOf(value))
		return
	}

	ptr := reflect.New(typ)
	ptr.Elem().Set(reflect.ValueOf(value))
	s.singletons[typ] = &singletonEntry{
		typ:     typ,
		value:   ptr.Elem(),
		dataPtr: ptr.UnsafePointer(),
	}
	s.order = append(s.order, typ)
}

// ReadSingleton points *out (a **T) at the stored resource of type T.
func (s *Storage) ReadSingleton(out any) bool {
	dst := reflect.ValueOf(out)
	if dst.Kind() != reflect.Ptr || dst.Elem().Kind() != reflect.Ptr {
		panic("ReadSingleton expects a pointer to a pointer")
	}

	entry := s.singletons[dst.Elem().Type().Elem()]
	if entry == nil {
		return false
	}
	dst.Elem().Set(reflect.NewAt(entry.typ, entry.dataPtr))
	return true
}

// RemoveSingleton drops the resource of type t. Accessors created earlier keep the
// old value alive but no longer observe updates.
func (s *Storage) RemoveSingleton(t reflect.Type) {
	if _, ok := s.singletons[t]; !ok {
		return
	}
	delete(s.singletons, t)
	for i, typ := range s.order {
		if typ == t {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Storage) getSingletonEntry(t reflect.Type) *singletonEntry {
	return s.singletons[t]
}

func componentType(component any) reflect.Type {
	t := reflect.TypeOf(component)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// extractComponentTypes returns the sorted component types of components.
func extractComponentTypes(components []any) []reflect.Type {
	types := make([]reflect.Type, 0, len(components))
	for _, comp := range components {
		t := componentType(comp)
		switch t.Kind() {
		case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
			panic("components cannot be pointers, maps, channels, or functions")
		}
		types = append(types, t)
	}
	sort.Sort(byTypeName(types))
	return types
}

func typeId(t reflect.Type) uintptr {
	return uintptr(dataPointer(t))
}

// hashTypesToUint32 is FNV-1a over the runtime type pointers of a sorted type list.
func hashTypesToUint32(types []reflect.Type) uint32 {
	var h uint32 = 2166136261
	const prime uint32 = 16777619

	for _, t := range types {
		id := uint64(typeId(t))
		h ^= uint32(id) ^ uint32(id>>32)
		h *= prime
	}

	return h
}

// ComponentReader is implemented by anything that can look up a component by entity.
type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent is a typed GetComponent. It returns nil when the entity lacks T.
func ReadComponent[T any](reader ComponentReader, entityId EntityId) *T {
	c, _ := reader.GetComponent(entityId, reflect.TypeFor[T]()).(*T)
	return c
}
