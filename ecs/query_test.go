package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/framehost/ecs"
	"github.com/stretchr/testify/assert"
)

func TestQuery(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	storage.Spawn(Position{X: 1, Y: 2}, Velocity{DX: 0.5, DY: 0.5})
	storage.Spawn(Position{X: 3, Y: 4}, Velocity{DX: 1.0, DY: 1.0})
	storage.Spawn(Position{X: 5, Y: 6}, Velocity{DX: 1.5, DY: 1.5}, Health{Current: 100, Max: 100})
	storage.Spawn(Position{X: 7, Y: 8})

	t.Run("execute builds cache", func(t *testing.T) {
		query := ecs.NewQuery[struct {
			*Position
			*Velocity
		}](storage)
		query.Execute()

		count := 0
		for range query.Iter() {
			count++
		}
		assert.Equal(t, 3, count)
		assert.Equal(t, 3, query.Len())
	})

	t.Run("panics without execute", func(t *testing.T) {
		query := ecs.NewQuery[struct{ *Position }](storage)
		assert.Panics(t, func() {
			for range query.Iter() {
			}
		})
	})

	t.Run("optional components", func(t *testing.T) {
		query := ecs.NewQuery[struct {
			*Position
			Health *Health `ecs:"optional"`
		}](storage)
		query.Execute()

		withHealth := 0
		total := 0
		for item := range query.Values() {
			total++
			if item.Health != nil {
				withHealth++
			}
		}
		assert.Equal(t, 4, total)
		assert.Equal(t, 1, withHealth)
	})

	t.Run("mutation through cache", func(t *testing.T) {
		query := ecs.NewQuery[struct{ *Velocity }](storage)
		query.Execute()
		for item := range query.Values() {
			item.Velocity.DX = 9
		}

		view := ecs.NewView[struct{ *Velocity }](storage)
		for item := range view.Values() {
			assert.Equal(t, float32(9), item.Velocity.DX)
		}
	})

	t.Run("sees spawns after re-execute", func(t *testing.T) {
		query := ecs.NewQuery[struct{ *Name }](storage)
		query.Execute()
		assert.Equal(t, 0, query.Len())

		storage.Spawn(Name{Value: "late"})
		query.Execute()
		assert.Equal(t, 1, query.Len())
	})
}

func TestViewTags(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	assert.Panics(t, func() {
		ecs.NewView[struct {
			Position *Position `ecs:"sometimes"`
		}](storage)
	})

	assert.Panics(t, func() {
		ecs.NewView[struct{ Position }](storage)
	}, "non-pointer field")

	assert.NotPanics(t, func() {
		ecs.NewView[struct {
			*Position `ecs:"read"`
			Health    *Health `ecs:"read,optional"`
		}](storage)
	})
}

func TestViewGet(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Position{X: 1}, Health{Current: 5})
	other := storage.Spawn(Position{X: 2})

	view := ecs.NewView[struct {
		*Position
		*Health
	}](storage)

	item := view.Get(id)
	if assert.NotNil(t, item) {
		assert.Equal(t, 5, item.Health.Current)
	}
	assert.Nil(t, view.Get(other))

	ref := storage.CreateEntityRef(id)
	storage.Delete(id)
	assert.Nil(t, view.GetRef(ref))
	assert.Nil(t, view.Get(id))
	assert.False(t, storage.HasComponent(other, reflect.TypeOf(Health{})))
}
