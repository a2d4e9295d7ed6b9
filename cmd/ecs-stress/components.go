package main

import (
	"math/rand"

	"github.com/plus3/framehost/ecs"
)

type vec4 = [4]float64

// SpawnRandomEntity spawns an entity with n distinct random components.
func SpawnRandomEntity(storage *ecs.Storage, n int) ecs.EntityId {
	n = min(max(n, 1), componentCount)
	components := make([]any, 0, n)
	for _, i := range rand.Perm(componentCount)[:n] {
		components = append(components, componentFactories[i](rand.Float64()))
	}
	return storage.Spawn(components...)
}
