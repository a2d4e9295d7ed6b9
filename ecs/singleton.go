package ecs

import (
	"reflect"
	"unsafe"
)

// Singleton gives typed access to a resource: one value of T that belongs to the store
// rather than to an entity (configuration, frame timing, the open UI frame).
// As a System field it counts as write access unless tagged `ecs:"read"`.
type Singleton[T any] struct {
	storage      *Storage
	componentPtr unsafe.Pointer
}

// NewSingleton returns an accessor for T, creating the resource from initializer (or
// the zero value) when the store does not have one yet.
func NewSingleton[T any](storage *Storage, initializer ...T) *Singleton[T] {
	if storage.getSingletonEntry(reflect.TypeFor[T]()) == nil {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		storage.AddSingleton(value)
	}

	s := &Singleton[T]{}
	s.Init(storage)
	return s
}

// Init binds the accessor to storage. Called by the Schedule at build time.
func (s *Singleton[T]) Init(storage *Storage) {
	s.storage = storage
	s.componentPtr = nil
	s.updateCache()
}

func (s *Singleton[T]) declareAccess(a *Access, readOnly bool) {
	if readOnly {
		Reads[T](a)
		return
	}
	Writes[T](a)
}

func (s *Singleton[T]) prepare() {
	if s.componentPtr == nil {
		s.updateCache()
	}
}

// Get returns the resource, or nil if it was never added.
func (s *Singleton[T]) Get() *T {
	if s.componentPtr == nil {
		s.updateCache()
	}
	return (*T)(s.componentPtr)
}

// Exists reports whether the resource has been added to the store.
func (s *Singleton[T]) Exists() bool {
	return s.Get() != nil
}

func (s *Singleton[T]) updateCache() {
	if s.storage == nil {
		return
	}
	if entry := s.storage.getSingletonEntry(reflect.TypeFor[T]()); entry != nil {
		s.componentPtr = entry.dataPtr
	}
}
