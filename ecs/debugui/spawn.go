package debugui

import "github.com/plus3/framehost/ecs"

func SpawnDebugUI(storage *ecs.Storage) {
	storage.Spawn(NewPerformanceStatsComponent(120))
}

func RegisterDebugUIComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
	ecs.RegisterComponent[PerformanceStatsComponent](registry)
}
