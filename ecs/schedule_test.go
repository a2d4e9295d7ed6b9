package ecs_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/plus3/framehost/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type CounterSystem struct {
	Entities ecs.Query[struct{ *Counter }]
}

func (s *CounterSystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Entities.Values() {
		item.Counter.Value++
	}
}

type MovementSystem struct {
	Entities ecs.Query[struct {
		*Position
		*Velocity `ecs:"read"`
	}]
	ExecuteCount int
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	for item := range s.Entities.Values() {
		item.Position.X += item.Velocity.DX * float32(frame.DeltaTime)
		item.Position.Y += item.Velocity.DY * float32(frame.DeltaTime)
	}
}

type SteeringSystem struct {
	Entities ecs.Query[struct{ *Velocity }]
}

func (s *SteeringSystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Entities.Values() {
		item.Velocity.DX *= 2
	}
}

type HealthReportSystem struct {
	Entities    ecs.Query[struct{ *Health }] `ecs:"read"`
	TotalHealth int
}

func (s *HealthReportSystem) Execute(frame *ecs.UpdateFrame) {
	s.TotalHealth = 0
	for item := range s.Entities.Values() {
		s.TotalHealth += item.Health.Current
	}
}

type GravitySystem struct {
	Gravity ecs.Singleton[Gravity] `ecs:"read"`
	Seen    float32
}

func (s *GravitySystem) Execute(frame *ecs.UpdateFrame) {
	s.Seen = s.Gravity.Get().G
}

type countingSystem struct {
	calls *atomic.Int64
	mine  atomic.Int64
}

func (s *countingSystem) Execute(frame *ecs.UpdateFrame) {
	s.calls.Add(1)
	s.mine.Add(1)
}

type spawnSystem struct{}

func (s *spawnSystem) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.Spawn(Name{Value: "spawned"})
}

type nameCountSystem struct {
	Names ecs.Query[struct{ *Name }] `ecs:"read"`
	Seen  int
}

func (s *nameCountSystem) Execute(frame *ecs.UpdateFrame) {
	s.Seen = s.Names.Len()
}

type panickingSystem struct{}

func (panickingSystem) Execute(frame *ecs.UpdateFrame) {
	panic("boom")
}

func TestScheduleExecutesEverySystemOnce(t *testing.T) {
	for _, n := range []int{0, 1, 10} {
		t.Run("", func(t *testing.T) {
			var calls atomic.Int64
			builder := ecs.NewScheduleBuilder()
			systems := make([]*countingSystem, n)
			for i := range systems {
				systems[i] = &countingSystem{calls: &calls}
				builder.AddSystem(systems[i])
			}

			schedule, err := builder.Build(ecs.NewStorage(newTestRegistry()))
			require.NoError(t, err)
			assert.Equal(t, n, schedule.Len())

			for round := 1; round <= 3; round++ {
				require.NoError(t, schedule.Once(1.0/60))
				assert.Equal(t, int64(n*round), calls.Load())
				for _, sys := range systems {
					assert.Equal(t, int64(round), sys.mine.Load())
				}
			}
		})
	}
}

func TestScheduleCounterScenario(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Counter{Value: 0})

	builder := ecs.NewScheduleBuilder()
	builder.AddSystem(&CounterSystem{})
	schedule, err := builder.Build(storage)
	require.NoError(t, err)

	for range 5 {
		require.NoError(t, schedule.Once(0))
	}
	assert.Equal(t, 5, ecs.ReadComponent[Counter](storage, id).Value)
}

func TestScheduleWriteConflict(t *testing.T) {
	builder := ecs.NewScheduleBuilder()
	builder.AddSystem(&CounterSystem{})
	builder.AddSystem(&MovementSystem{})
	builder.AddSystem(&CounterSystem{})

	schedule, err := builder.Build(ecs.NewStorage(newTestRegistry()))
	assert.Nil(t, schedule)
	require.ErrorIs(t, err, ecs.ErrScheduleConflict)

	var conflict *ecs.ScheduleConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "CounterSystem", conflict.First)
	assert.Equal(t, "CounterSystem", conflict.Second)
	assert.Equal(t, "ecs_test.Counter", conflict.Component.String())
}

func TestScheduleBarrierAllowsWriteReuse(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Counter{})

	builder := ecs.NewScheduleBuilder()
	builder.AddSystem(&CounterSystem{})
	builder.Barrier()
	builder.Barrier()
	builder.AddSystem(&CounterSystem{})

	schedule, err := builder.Build(storage)
	require.NoError(t, err)
	require.Len(t, schedule.Plan(), 2)

	require.NoError(t, schedule.Once(0))
	assert.Equal(t, 2, ecs.ReadComponent[Counter](storage, id).Value)
}

func TestScheduleSerialisesReadAfterWrite(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.Spawn(Position{}, Velocity{DX: 1, DY: 1})
	storage.Spawn(Health{Current: 30})

	builder := ecs.NewScheduleBuilder()
	builder.AddSystem(&SteeringSystem{})
	builder.AddSystem(&MovementSystem{})
	builder.AddSystem(&HealthReportSystem{})

	schedule, err := builder.Build(storage)
	require.NoError(t, err)

	plan := schedule.Plan()
	require.Len(t, plan, 1)
	assert.Equal(t, [][]string{
		{"SteeringSystem", "HealthReportSystem"},
		{"MovementSystem"},
	}, plan[0].Batches)

	require.NoError(t, schedule.Once(1))
	view := ecs.NewView[struct{ *Position }](storage)
	for item := range view.Values() {
		assert.Equal(t, float32(2), item.Position.X, "movement ran after steering doubled DX")
	}
}

func TestScheduleAccessDeclarations(t *testing.T) {
	builder := ecs.NewScheduleBuilder()
	builder.AddSystem(&MovementSystem{})
	builder.AddSystem(&GravitySystem{})

	schedule, err := builder.Build(ecs.NewStorage(newTestRegistry()))
	require.NoError(t, err)

	movement := schedule.Access(0)
	assert.Equal(t, ecs.AccessWrite, movement.Mode(typeOf[Position]()))
	assert.Equal(t, ecs.AccessRead, movement.Mode(typeOf[Velocity]()))
	assert.Equal(t, ecs.AccessNone, movement.Mode(typeOf[Health]()))
	assert.Equal(t, ecs.AccessRead, schedule.Access(1).Mode(typeOf[Gravity]()))
}

func TestScheduleSingletonBinding(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	builder := ecs.NewScheduleBuilder()
	gravity := &GravitySystem{}
	builder.AddSystem(gravity)
	schedule, err := builder.Build(storage)
	require.NoError(t, err)

	ecs.NewSingleton[Gravity](storage, Gravity{G: 9.8})
	require.NoError(t, schedule.Once(0))
	assert.Equal(t, float32(9.8), gravity.Seen)
}

func TestScheduleCommandsVisibleAfterBarrier(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	builder := ecs.NewScheduleBuilder()
	builder.AddSystem(&spawnSystem{})
	counter := &nameCountSystem{}
	builder.AddSystem(counter)
	builder.Barrier()
	after := &nameCountSystem{}
	builder.AddSystem(after)

	schedule, err := builder.Build(storage)
	require.NoError(t, err)

	require.NoError(t, schedule.Once(0))
	assert.Equal(t, 0, counter.Seen, "same stage does not see pending spawns")
	assert.Equal(t, 1, after.Seen)

	require.NoError(t, schedule.Once(0))
	assert.Equal(t, 1, counter.Seen)
	assert.Equal(t, 2, after.Seen)
}

func TestScheduleSystemPanic(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	builder := ecs.NewScheduleBuilder()
	builder.AddSystem(&spawnSystem{})
	builder.AddSystem(panickingSystem{})
	schedule, err := builder.Build(storage)
	require.NoError(t, err)

	err = schedule.Once(0)
	var panicErr *ecs.SystemPanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "panickingSystem", panicErr.System)
	assert.Equal(t, "boom", panicErr.Value)
	assert.Zero(t, storage.CollectStats().TotalEntityCount, "commands of the failed stage are discarded")
}

func TestScheduleBuilderSingleUse(t *testing.T) {
	builder := ecs.NewScheduleBuilder()
	builder.AddSystem(&CounterSystem{})

	_, err := builder.Build(ecs.NewStorage(newTestRegistry()))
	require.NoError(t, err)

	_, err = builder.Build(ecs.NewStorage(newTestRegistry()))
	assert.True(t, errors.Is(err, ecs.ErrAlreadyBuilt))
	assert.Panics(t, func() { builder.AddSystem(&CounterSystem{}) })
	assert.Panics(t, func() { builder.Barrier() })
}

func TestScheduleParallelWorkers(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	for i := range 500 {
		storage.Spawn(Position{X: float32(i)}, Velocity{DX: 1}, Counter{}, Health{Current: 1})
	}

	builder := ecs.NewScheduleBuilder()
	builder.SetWorkers(4)
	builder.AddSystem(&CounterSystem{})
	builder.AddSystem(&MovementSystem{})
	report := &HealthReportSystem{}
	builder.AddSystem(report)

	schedule, err := builder.Build(storage)
	require.NoError(t, err)
	require.Len(t, schedule.Plan()[0].Batches, 1, "no shared writes: one batch")

	for range 10 {
		require.NoError(t, schedule.Once(1))
	}

	view := ecs.NewView[struct {
		*Counter
		*Position
	}](storage)
	for item := range view.Values() {
		assert.Equal(t, 10, item.Counter.Value)
	}
	assert.Equal(t, 500, report.TotalHealth)

	stats := schedule.GetStats()
	assert.Equal(t, 3, stats.SystemCount)
	assert.Equal(t, int64(10), stats.Sweeps)
	assert.Equal(t, int64(30), stats.TotalExecutions)
	assert.Equal(t, 4, stats.Workers)
}

func TestScheduleStats(t *testing.T) {
	builder := ecs.NewScheduleBuilder()
	builder.AddSystem(ecs.SystemFunc(func(*ecs.UpdateFrame) { time.Sleep(time.Millisecond) }))
	schedule, err := builder.Build(ecs.NewStorage(newTestRegistry()))
	require.NoError(t, err)

	stats := schedule.GetStats()
	assert.Zero(t, stats.Systems[0].MinDuration)

	for range 3 {
		require.NoError(t, schedule.Once(0.016))
	}

	sys := schedule.GetStats().Systems[0]
	assert.Equal(t, "SystemFunc", sys.Name)
	assert.Equal(t, int64(3), sys.ExecutionCount)
	assert.NotZero(t, sys.MinDuration)
	assert.LessOrEqual(t, sys.MinDuration, sys.AvgDuration)
	assert.LessOrEqual(t, sys.AvgDuration, sys.MaxDuration)
}

func TestScheduleRun(t *testing.T) {
	var calls atomic.Int64
	builder := ecs.NewScheduleBuilder()
	builder.AddSystem(&countingSystem{calls: &calls})
	schedule, err := builder.Build(ecs.NewStorage(newTestRegistry()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- schedule.Run(ctx, time.Millisecond) }()

	require.Eventually(t, func() bool { return calls.Load() > 0 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("schedule did not stop after context cancellation")
	}
}

func TestScheduleSerialisesUndeclaredSystems(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Counter{}, Position{}, Velocity{DX: 1})

	bump := func(frame *ecs.UpdateFrame) {
		ecs.ReadComponent[Counter](frame.Storage, id).Value++
	}

	builder := ecs.NewScheduleBuilder()
	builder.SetWorkers(4)
	builder.AddSystem(ecs.SystemFunc(bump))
	builder.AddSystem(ecs.SystemFunc(bump))
	builder.AddSystem(&MovementSystem{})
	schedule, err := builder.Build(storage)
	require.NoError(t, err)

	assert.Equal(t, []ecs.StagePlan{{Batches: [][]string{
		{"SystemFunc"},
		{"SystemFunc"},
		{"MovementSystem"},
	}}}, schedule.Plan())
	assert.True(t, schedule.Access(0).IsExclusive())
	assert.False(t, schedule.Access(2).IsExclusive())

	for range 50 {
		require.NoError(t, schedule.Once(0))
	}
	assert.Equal(t, 100, ecs.ReadComponent[Counter](storage, id).Value)
}

func TestScheduleDeclaredSystemFunc(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Counter{}, Health{Current: 1})

	builder := ecs.NewScheduleBuilder()
	builder.AddSystem(ecs.NewSystemFunc(func(frame *ecs.UpdateFrame) {
		ecs.ReadComponent[Counter](frame.Storage, id).Value++
	}, ecs.Writes[Counter]))
	builder.AddSystem(ecs.NewSystemFunc(func(frame *ecs.UpdateFrame) {
		ecs.ReadComponent[Health](frame.Storage, id).Current++
	}, ecs.Writes[Health]))
	schedule, err := builder.Build(storage)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"declaredFunc", "declaredFunc"}}, schedule.Plan()[0].Batches)
	require.NoError(t, schedule.Once(0))
	assert.Equal(t, 1, ecs.ReadComponent[Counter](storage, id).Value)
	assert.Equal(t, 2, ecs.ReadComponent[Health](storage, id).Current)

	conflicting := ecs.NewScheduleBuilder()
	conflicting.AddSystem(ecs.NewSystemFunc(func(*ecs.UpdateFrame) {}, ecs.Writes[Counter]))
	conflicting.AddSystem(&CounterSystem{})
	_, err = conflicting.Build(ecs.NewStorage(newTestRegistry()))
	assert.ErrorIs(t, err, ecs.ErrScheduleConflict)
}

type hiddenQuerySystem struct {
	entities ecs.Query[struct{ *Counter }]
}

func (s *hiddenQuerySystem) Execute(*ecs.UpdateFrame) {}

type pointerQuerySystem struct {
	Entities *ecs.Query[struct{ *Counter }]
}

func (s *pointerQuerySystem) Execute(*ecs.UpdateFrame) {}

type valueQuerySystem struct {
	Entities ecs.Query[struct{ *Counter }]
}

func (s valueQuerySystem) Execute(*ecs.UpdateFrame) {}

func TestScheduleRejectsUnbindableFields(t *testing.T) {
	build := func(system ecs.System) func() {
		return func() {
			builder := ecs.NewScheduleBuilder()
			builder.AddSystem(system)
			_, _ = builder.Build(ecs.NewStorage(newTestRegistry()))
		}
	}

	assert.PanicsWithValue(t, "system field hiddenQuerySystem.entities must be exported to be bound",
		build(&hiddenQuerySystem{}))
	assert.Panics(t, build(&pointerQuerySystem{}))
	assert.PanicsWithValue(t, "system valueQuerySystem must be added by pointer to bind field Entities",
		build(valueQuerySystem{}))
}
