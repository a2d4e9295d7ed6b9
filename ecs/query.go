package ecs

import (
	"iter"
	"reflect"
)

// Query is a View with per-stage caching, meant to be embedded as a field of a System.
// The Schedule binds it to the store at build time and rebuilds the cache on the
// orchestrating goroutine before each stage, so systems running in parallel only read
// the cache.
type Query[T any] struct {
	view               *View[T]
	storage            *Storage
	cachedArchetypes   []*Archetype
	lastArchetypeCount int

	cachedEntities   []EntityId
	cachedComponents []T
	cacheValid       bool
}

// NewQuery creates a bound Query outside of a Schedule.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init binds the Query to storage and drops any cache.
func (q *Query[T]) Init(storage *Storage) {
	q.view = NewView[T](storage)
	q.storage = storage
	q.lastArchetypeCount = -1
	q.cachedArchetypes = nil
	q.cacheValid = false
}

func (q *Query[T]) declareAccess(a *Access, readOnly bool) {
	for _, field := range parseViewFields(reflect.TypeFor[T]()) {
		if readOnly || field.readOnly {
			a.Read(field.typ)
		} else {
			a.Write(field.typ)
		}
	}
}

func (q *Query[T]) prepare() {
	q.Execute()
}

// Execute rebuilds the entity and component cache.
func (q *Query[T]) Execute() {
	if q.storage == nil {
		panic("Query.Execute() called on an unbound Query")
	}

	if len(q.storage.archetypes) != q.lastArchetypeCount {
		q.cachedArchetypes = q.cachedArchetypes[:0]
		for _, archetype := range q.storage.archetypes {
			if q.view.matchesArchetype(archetype) {
				q.cachedArchetypes = append(q.cachedArchetypes, archetype)
			}
		}
		q.lastArchetypeCount = len(q.storage.archetypes)
	}

	q.cachedEntities = q.cachedEntities[:0]
	q.cachedComponents = q.cachedComponents[:0]
	for _, archetype := range q.cachedArchetypes {
		for id, item := range q.view.iterArchetype(archetype) {
			q.cachedEntities = append(q.cachedEntities, id)
			q.cachedComponents = append(q.cachedComponents, item)
		}
	}

	q.cacheValid = true
}

// Len returns the number of cached matches.
func (q *Query[T]) Len() int {
	return len(q.cachedEntities)
}

// Iter yields the cached entity ids and view structs.
// Panics if Execute() has not been called.
func (q *Query[T]) Iter() iter.Seq2[EntityId, T] {
	if !q.cacheValid {
		panic("Query.Iter() called before Query.Execute()")
	}

	return func(yield func(EntityId, T) bool) {
		for i := range q.cachedEntities {
			if !yield(q.cachedEntities[i], q.cachedComponents[i]) {
				return
			}
		}
	}
}

// Values yields the cached view structs.
// Panics if Execute() has not been called.
func (q *Query[T]) Values() iter.Seq[T] {
	if !q.cacheValid {
		panic("Query.Values() called before Query.Execute()")
	}

	return func(yield func(T) bool) {
		for i := range q.cachedComponents {
			if !yield(q.cachedComponents[i]) {
				return
			}
		}
	}
}
