package ecs

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// ErrScheduleConflict is matched by every *ScheduleConflictError.
var ErrScheduleConflict = errors.New("ecs: schedule conflict")

// AccessMode is how a system touches a component or resource type.
type AccessMode uint8

const (
	AccessNone AccessMode = iota
	AccessRead
	AccessWrite
)

func (m AccessMode) String() string {
	switch m {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	default:
		return "none"
	}
}

// Access is the set of component and resource types a system reads or writes. An
// exclusive access conflicts with every other system of its stage.
type Access struct {
	modes     map[reflect.Type]AccessMode
	exclusive bool
}

// NewAccess returns an empty access set.
func NewAccess() *Access {
	return &Access{modes: make(map[reflect.Type]AccessMode)}
}

// Read records read access to t. It never downgrades a recorded write.
func (a *Access) Read(t reflect.Type) {
	if a.modes[t] < AccessRead {
		a.modes[t] = AccessRead
	}
}

// Write records write access to t.
func (a *Access) Write(t reflect.Type) {
	a.modes[t] = AccessWrite
}

// Reads records read access to T.
func Reads[T any](a *Access) {
	a.Read(reflect.TypeFor[T]())
}

// Writes records write access to T.
func Writes[T any](a *Access) {
	a.Write(reflect.TypeFor[T]())
}

// Exclusive marks the system as touching anything in the store. It gets a batch of
// its own, ordered after every earlier system of the stage and before every later one.
func (a *Access) Exclusive() {
	a.exclusive = true
}

// IsExclusive reports whether Exclusive was called, or the system declared nothing.
func (a *Access) IsExclusive() bool {
	return a.exclusive
}

// Mode returns the recorded access to t.
func (a *Access) Mode(t reflect.Type) AccessMode {
	return a.modes[t]
}

// Types returns the recorded types sorted by name.
func (a *Access) Types() []reflect.Type {
	types := make([]reflect.Type, 0, len(a.modes))
	for t := range a.modes {
		types = append(types, t)
	}
	sort.Sort(byTypeName(types))
	return types
}

// overlaps reports whether a and b cannot run concurrently: they share a type and at
// least one of them writes it.
func (a *Access) overlaps(b *Access) bool {
	if a.exclusive || b.exclusive {
		return true
	}
	for t, mode := range a.modes {
		other := b.modes[t]
		if other == AccessNone {
			continue
		}
		if mode == AccessWrite || other == AccessWrite {
			return true
		}
	}
	return false
}

// sharedWrite returns the first type (by name) both a and b write.
func (a *Access) sharedWrite(b *Access) (reflect.Type, bool) {
	for _, t := range a.Types() {
		if a.modes[t] == AccessWrite && b.modes[t] == AccessWrite {
			return t, true
		}
	}
	return nil, false
}

// AccessDeclarer is implemented by systems that touch the store without Query or
// Singleton fields, for example through frame.Storage. A system that declares nothing
// at all is scheduled as exclusive.
type AccessDeclarer interface {
	DeclareAccess(a *Access)
}

// accessor is implemented by the field types the Schedule knows how to bind.
type accessor interface {
	Init(storage *Storage)
	declareAccess(a *Access, readOnly bool)
	prepare()
}

// ScheduleConflictError reports two systems of one stage writing the same type.
type ScheduleConflictError struct {
	Stage     int
	First     string
	Second    string
	Component reflect.Type
}

func (e *ScheduleConflictError) Error() string {
	return fmt.Sprintf("ecs: systems %s and %s both write %s in stage %d", e.First, e.Second, e.Component, e.Stage)
}

func (e *ScheduleConflictError) Is(target error) bool {
	return target == ErrScheduleConflict
}

var accessorType = reflect.TypeFor[accessor]()

// systemFields visits every bindable field of a system struct together with whether
// the field is tagged `ecs:"read"`. Query and Singleton fields the schedule cannot
// bind, because they are unexported, held by pointer or part of a system passed by
// value, panic.
func systemFields(system System, visit func(field accessor, readOnly bool)) {
	value := reflect.ValueOf(system)
	if value.Kind() == reflect.Ptr {
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return
	}

	typ := value.Type()
	for i := 0; i < value.NumField(); i++ {
		sf := typ.Field(i)
		if sf.Type.Kind() == reflect.Ptr && sf.Type.Implements(accessorType) {
			panic("system field " + typ.Name() + "." + sf.Name + " must not be a pointer: declare it as " + sf.Type.Elem().String())
		}
		if sf.Type.Kind() != reflect.Struct || !reflect.PointerTo(sf.Type).Implements(accessorType) {
			continue
		}
		if !sf.IsExported() {
			panic("system field " + typ.Name() + "." + sf.Name + " must be exported to be bound")
		}
		if !value.Field(i).CanSet() {
			panic("system " + typ.Name() + " must be added by pointer to bind field " + sf.Name)
		}

		acc := value.Field(i).Addr().Interface().(accessor)

		readOnly := false
		if tag, ok := sf.Tag.Lookup("ecs"); ok {
			if tag != "read" {
				panic("invalid ecs tag on system field " + sf.Name + ": \"" + tag + "\"")
			}
			readOnly = true
		}
		visit(acc, readOnly)
	}
}

// systemAccess collects the declared access of a system. A system without any
// declaration may reach the store through frame.Storage, so it is exclusive.
func systemAccess(system System) *Access {
	access := NewAccess()
	systemFields(system, func(field accessor, readOnly bool) {
		field.declareAccess(access, readOnly)
	})
	if declarer, ok := system.(AccessDeclarer); ok {
		declarer.DeclareAccess(access)
	}
	if len(access.modes) == 0 {
		access.exclusive = true
	}
	return access
}

func systemName(system System) string {
	t := reflect.TypeOf(system)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}
