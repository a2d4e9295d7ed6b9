package ecs

import "sort"

// StorageStats is a snapshot of the store's shape.
type StorageStats struct {
	ArchetypeCount     int
	TotalEntityCount   int
	SingletonCount     int
	ArchetypeBreakdown []ArchetypeStats
	SingletonTypes     []string
}

// ArchetypeStats describes one archetype.
type ArchetypeStats struct {
	ID             uint32
	ComponentTypes []string
	EntityCount    int
}

// CollectStats walks the store and returns a snapshot. Empty archetypes are skipped.
func (s *Storage) CollectStats() StorageStats {
	stats := StorageStats{
		SingletonCount: len(s.order),
		SingletonTypes: make([]string, 0, len(s.order)),
	}

	for _, archetype := range s.archetypes {
		count := archetype.Len()
		if count == 0 {
			continue
		}

		names := make([]string, len(archetype.types))
		for i, typ := range archetype.types {
			names[i] = typ.String()
		}

		stats.ArchetypeBreakdown = append(stats.ArchetypeBreakdown, ArchetypeStats{
			ID:             archetype.id,
			ComponentTypes: names,
			EntityCount:    count,
		})
		stats.TotalEntityCount += count
	}
	stats.ArchetypeCount = len(stats.ArchetypeBreakdown)

	sort.Slice(stats.ArchetypeBreakdown, func(i, j int) bool {
		return stats.ArchetypeBreakdown[i].ID < stats.ArchetypeBreakdown[j].ID
	})

	for _, typ := range s.order {
		stats.SingletonTypes = append(stats.SingletonTypes, typ.String())
	}

	return stats
}
