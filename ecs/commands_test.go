package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/framehost/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsFlush(t *testing.T) {
	t.Run("spawn and delete", func(t *testing.T) {
		storage := ecs.NewStorage(newTestRegistry())
		victim := storage.Spawn(Position{X: 1})

		cmds := &ecs.Commands{}
		cmds.Spawn(Position{X: 2}, Velocity{DX: 1})
		cmds.Delete(victim)
		assert.Equal(t, 2, cmds.Len())

		cmds.Flush(storage)
		assert.Zero(t, cmds.Len())
		assert.False(t, storage.Exists(victim))
		assert.Equal(t, 1, storage.CollectStats().TotalEntityCount)
	})

	t.Run("operations on deleted entities are dropped", func(t *testing.T) {
		storage := ecs.NewStorage(newTestRegistry())
		id := storage.Spawn(Position{X: 1})

		cmds := &ecs.Commands{}
		cmds.AddComponent(id, Velocity{DX: 1})
		cmds.Delete(id)
		cmds.Flush(storage)

		assert.Equal(t, 0, storage.CollectStats().TotalEntityCount)
	})

	t.Run("remove then add follows the moved entity", func(t *testing.T) {
		storage := ecs.NewStorage(newTestRegistry())
		id := storage.Spawn(Position{X: 1}, Velocity{DX: 1})
		ref := storage.CreateEntityRef(id)

		cmds := &ecs.Commands{}
		cmds.RemoveComponent(id, reflect.TypeOf(Velocity{}))
		cmds.AddComponent(id, Health{Current: 10})
		cmds.Flush(storage)

		current, ok := storage.ResolveEntityRef(ref)
		require.True(t, ok)
		assert.Nil(t, ecs.ReadComponent[Velocity](storage, current))
		assert.Equal(t, 10, ecs.ReadComponent[Health](storage, current).Current)
		assert.Equal(t, float32(1), ecs.ReadComponent[Position](storage, current).X)
	})

	t.Run("defers run after structural changes", func(t *testing.T) {
		storage := ecs.NewStorage(newTestRegistry())

		cmds := &ecs.Commands{}
		seen := -1
		cmds.Defer(func() { seen = storage.CollectStats().TotalEntityCount })
		cmds.Spawn(Name{Value: "a"})
		cmds.Flush(storage)

		assert.Equal(t, 1, seen)
	})
}
