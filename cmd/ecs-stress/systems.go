package main

import "github.com/plus3/framehost/ecs"

type vecComponent[T any] interface {
	*T
	vec() *vec4
}

// mixSystem blends the read component into the written one.
type mixSystem[A, B any, PA vecComponent[A], PB vecComponent[B]] struct {
	Entities ecs.Query[struct {
		Dst *A
		Src *B `ecs:"read"`
	}]
}

func (s *mixSystem[A, B, PA, PB]) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Entities.Values() {
		dst, src := PA(item.Dst).vec(), PB(item.Src).vec()
		for i := range dst {
			dst[i] = dst[i]*0.5 + src[i]*0.5 + frame.DeltaTime
		}
	}
}

// RegisterAllSystems adds n systems, starting a new stage every componentCount
// systems so that no two systems of a stage write the same component.
func RegisterAllSystems(builder *ecs.ScheduleBuilder, n int) {
	for i := range n {
		if i > 0 && i%componentCount == 0 {
			builder.Barrier()
		}
		builder.AddSystem(systemFactories[i%componentCount]())
	}
}
