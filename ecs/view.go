package ecs

import (
	"iter"
	"reflect"
	"strings"
	"unsafe"
)

// View matches entities against a struct of component pointers.
//
// Every field of T must be a pointer to a component type. Fields accept an `ecs` tag
// holding a comma separated list of:
//
//	optional  the component may be missing; the field is nil then (named fields only)
//	read      the component is only read; systems declaring it may share a batch
//
// Untagged fields are required and written.
type View[T any] struct {
	storage     *Storage
	types       []reflect.Type
	optional    []bool
	readOnly    []bool
	fieldOffset []uintptr
}

type viewField struct {
	typ      reflect.Type
	offset   uintptr
	optional bool
	readOnly bool
}

// parseViewFields validates the struct shape of a view type. It only needs the type,
// so the Schedule can inspect queries before they are bound to a store.
func parseViewFields(structType reflect.Type) []viewField {
	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	fields := make([]viewField, 0, structType.NumField())
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.Type.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types")
		}

		vf := viewField{typ: field.Type.Elem(), offset: field.Offset}
		if tag, ok := field.Tag.Lookup("ecs"); ok {
			for _, opt := range strings.Split(tag, ",") {
				switch opt {
				case "optional":
					if field.Anonymous {
						panic("embedded View fields cannot be optional")
					}
					vf.optional = true
				case "read":
					vf.readOnly = true
				default:
					panic("invalid ecs tag value: \"" + opt + "\" (expected \"optional\" or \"read\")")
				}
			}
		}
		fields = append(fields, vf)
	}
	return fields
}

// NewView creates a view over storage.
func NewView[T any](storage *Storage) *View[T] {
	fields := parseViewFields(reflect.TypeFor[T]())

	v := &View[T]{storage: storage}
	for _, f := range fields {
		v.types = append(v.types, f.typ)
		v.optional = append(v.optional, f.optional)
		v.readOnly = append(v.readOnly, f.readOnly)
		v.fieldOffset = append(v.fieldOffset, f.offset)
	}
	return v
}

// Fill points the fields of ptr at the components of id. It returns false when a
// required component is missing.
func (v *View[T]) Fill(id EntityId, ptr *T) bool {
	archetype, ok := v.storage.archetypes[id.ArchetypeId()]
	if !ok || !archetype.Contains(id) {
		return false
	}

	return v.populateResult(unsafe.Pointer(ptr), archetype, int(id.Index()), v.buildStorageIndices(archetype))
}

// Get returns the view struct for id, or nil.
func (v *View[T]) Get(id EntityId) *T {
	var result T
	if !v.Fill(id, &result) {
		return nil
	}
	return &result
}

// GetRef is Get for an EntityRef.
func (v *View[T]) GetRef(ref *EntityRef) *T {
	id, ok := v.storage.ResolveEntityRef(ref)
	if !ok {
		return nil
	}
	return v.Get(id)
}

func (v *View[T]) matchesArchetype(archetype *Archetype) bool {
	for i, typ := range v.types {
		if !v.optional[i] && !archetype.HasComponent(typ) {
			return false
		}
	}
	return true
}

func (v *View[T]) buildStorageIndices(archetype *Archetype) []int {
	indices := make([]int, len(v.types))
	for i, typ := range v.types {
		indices[i] = archetype.column(typ)
	}
	return indices
}

func (v *View[T]) populateResult(resultPtr unsafe.Pointer, archetype *Archetype, entityIndex int, storageIndices []int) bool {
	for i, storageIdx := range storageIndices {
		fieldPtr := unsafe.Pointer(uintptr(resultPtr) + v.fieldOffset[i])

		var component any
		if storageIdx >= 0 {
			component = archetype.storages[storageIdx].Get(entityIndex)
		}

		if component == nil {
			if !v.optional[i] {
				return false
			}
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}

		*(*unsafe.Pointer)(fieldPtr) = dataPointer(component)
	}
	return true
}

func (v *View[T]) iterArchetype(archetype *Archetype) iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		if len(archetype.storages) == 0 {
			return
		}

		storageIndices := v.buildStorageIndices(archetype)
		var result T
		resultPtr := unsafe.Pointer(&result)

		for entityIndex := range archetype.storages[0].Iter() {
			if !v.populateResult(resultPtr, archetype, entityIndex, storageIndices) {
				continue
			}
			if !yield(archetype.idOf(entityIndex), result) {
				return
			}
		}
	}
}

// Iter yields every matching entity together with its populated view struct.
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		for _, archetype := range v.storage.archetypes {
			if !v.matchesArchetype(archetype) {
				continue
			}
			for id, item := range v.iterArchetype(archetype) {
				if !yield(id, item) {
					return
				}
			}
		}
	}
}

// Values is Iter without the entity ids.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}
