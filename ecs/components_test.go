package ecs_test

import (
	"reflect"

	"github.com/plus3/framehost/ecs"
)

type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Health struct {
	Current int
	Max     int
}

type Name struct {
	Value string
}

type Counter struct {
	Value int
}

type Score int32

type Gravity struct {
	G float32
}

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterComponent[Name](registry)
	ecs.RegisterComponent[Counter](registry)
	ecs.RegisterComponent[Score](registry)
	ecs.RegisterComponent[int32](registry)
	ecs.RegisterComponent[string](registry)
	ecs.RegisterComponent[float64](registry)
	return registry
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}
