package ecs

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrAlreadyBuilt is returned by Build on a builder that has already been consumed.
var ErrAlreadyBuilt = errors.New("ecs: schedule builder already built")

// ScheduleBuilder accumulates systems and compiles them into a Schedule.
//
// Systems are grouped into stages separated by Barrier calls. Inside a stage, two
// systems that write the same type are rejected at Build time; a system that reads a
// type an earlier system of the stage writes (or the other way round) is placed in a
// later batch. Systems in one batch run concurrently.
//
// A builder is single use: the first Build consumes it, whatever its outcome.
type ScheduleBuilder struct {
	stages  [][]System
	workers int
	built   bool
}

// NewScheduleBuilder creates a builder whose schedules use GOMAXPROCS workers.
func NewScheduleBuilder() *ScheduleBuilder {
	return &ScheduleBuilder{
		stages:  [][]System{nil},
		workers: runtime.GOMAXPROCS(0),
	}
}

// AddSystem appends system to the current stage.
func (b *ScheduleBuilder) AddSystem(system System) {
	b.mustBeOpen("AddSystem")
	if system == nil {
		panic("ecs: AddSystem called with a nil system")
	}
	last := len(b.stages) - 1
	b.stages[last] = append(b.stages[last], system)
}

// Barrier ends the current stage. Systems added afterwards see every effect of the
// systems added before, including their flushed Commands.
func (b *ScheduleBuilder) Barrier() {
	b.mustBeOpen("Barrier")
	if len(b.stages[len(b.stages)-1]) > 0 {
		b.stages = append(b.stages, nil)
	}
}

// SetWorkers bounds how many systems of a batch run at once. Values below 1 mean 1.
func (b *ScheduleBuilder) SetWorkers(n int) {
	b.workers = max(n, 1)
}

// Len returns the number of systems added so far.
func (b *ScheduleBuilder) Len() int {
	n := 0
	for _, stage := range b.stages {
		n += len(stage)
	}
	return n
}

func (b *ScheduleBuilder) mustBeOpen(op string) {
	if b.built {
		panic("ecs: " + op + " called on a consumed ScheduleBuilder")
	}
}

// Build validates the registered systems, binds their Query and Singleton fields to
// storage and returns the compiled Schedule.
func (b *ScheduleBuilder) Build(storage *Storage) (*Schedule, error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}
	b.built = true

	schedule := &Schedule{
		storage: storage,
		workers: b.workers,
	}

	for _, systems := range b.stages {
		if len(systems) == 0 {
			continue
		}
		stage, err := compileStage(len(schedule.stages), systems)
		if err != nil {
			return nil, err
		}
		schedule.stages = append(schedule.stages, stage)
	}

	for _, stage := range schedule.stages {
		for _, sys := range stage.systems {
			sys.bind(storage)
			schedule.systems = append(schedule.systems, sys)
		}
	}

	return schedule, nil
}

func compileStage(index int, systems []System) (*stage, error) {
	st := &stage{}
	batchOf := make([]int, len(systems))

	for j, system := range systems {
		sys := newScheduledSystem(system, index)

		batch := 0
		for i, earlier := range st.systems {
			if t, ok := earlier.access.sharedWrite(sys.access); ok {
				return nil, &ScheduleConflictError{
					Stage:     index,
					First:     earlier.name,
					Second:    sys.name,
					Component: t,
				}
			}
			if earlier.access.overlaps(sys.access) {
				batch = max(batch, batchOf[i]+1)
			}
		}

		batchOf[j] = batch
		sys.batch = batch
		for len(st.batches) <= batch {
			st.batches = append(st.batches, nil)
		}
		st.batches[batch] = append(st.batches[batch], sys)
		st.systems = append(st.systems, sys)
	}

	return st, nil
}

type stage struct {
	systems []*scheduledSystem
	batches [][]*scheduledSystem
}

type scheduledSystem struct {
	system System
	name   string
	stage  int
	batch  int
	access *Access
	fields []accessor
	frame  *UpdateFrame
	stats  systemStatsInternal
}

func newScheduledSystem(system System, stageIndex int) *scheduledSystem {
	return &scheduledSystem{
		system: system,
		name:   systemName(system),
		stage:  stageIndex,
		access: systemAccess(system),
		stats:  systemStatsInternal{minDuration: time.Duration(1<<63 - 1)},
	}
}

func (s *scheduledSystem) bind(storage *Storage) {
	s.frame = newUpdateFrame(0, storage)
	systemFields(s.system, func(field accessor, _ bool) {
		field.Init(storage)
		s.fields = append(s.fields, field)
	})
}

func (s *scheduledSystem) run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &SystemPanicError{System: s.name, Value: r, Stack: debug.Stack()}
		}
	}()

	start := time.Now()
	s.system.Execute(s.frame)
	s.stats.record(time.Since(start))
	return nil
}

// SystemPanicError is returned by Once when a system panics.
type SystemPanicError struct {
	System string
	Value  any
	Stack  []byte
}

func (e *SystemPanicError) Error() string {
	return fmt.Sprintf("ecs: system %s panicked: %v", e.System, e.Value)
}

// Schedule is an immutable, compiled set of systems bound to one Storage.
type Schedule struct {
	storage *Storage
	workers int
	stages  []*stage
	systems []*scheduledSystem
	sweeps  int64
}

// Storage returns the store the schedule is bound to.
func (s *Schedule) Storage() *Storage {
	return s.storage
}

// Len returns the number of systems.
func (s *Schedule) Len() int {
	return len(s.systems)
}

// Once runs every system exactly once with delta time dt and blocks until the sweep,
// including all command flushes, is complete. Batches run concurrently on up to the
// configured number of workers. A panicking system aborts the sweep; the pending
// commands of its stage are discarded.
func (s *Schedule) Once(dt float64) error {
	for _, st := range s.stages {
		for _, sys := range st.systems {
			sys.frame.DeltaTime = dt
			for _, field := range sys.fields {
				field.prepare()
			}
		}

		for _, batch := range st.batches {
			if err := s.runBatch(batch); err != nil {
				for _, sys := range st.systems {
					sys.frame.Commands.reset()
				}
				return err
			}
		}

		for _, sys := range st.systems {
			sys.frame.Commands.Flush(s.storage)
		}
	}

	s.sweeps++
	return nil
}

func (s *Schedule) runBatch(batch []*scheduledSystem) error {
	if len(batch) == 1 || s.workers == 1 {
		for _, sys := range batch {
			if err := sys.run(); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, sys := range batch {
		g.Go(sys.run)
	}
	return g.Wait()
}

// Run calls Once every interval until ctx is cancelled or a sweep fails. The delta
// passed to the systems is the wall time since the previous sweep.
func (s *Schedule) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			if err := s.Once(dt); err != nil {
				return err
			}
		}
	}
}

// StagePlan lists the system names of each batch of one stage.
type StagePlan struct {
	Batches [][]string
}

// Plan describes how systems were grouped into stages and batches.
func (s *Schedule) Plan() []StagePlan {
	plan := make([]StagePlan, len(s.stages))
	for i, st := range s.stages {
		for _, batch := range st.batches {
			names := make([]string, len(batch))
			for j, sys := range batch {
				names[j] = sys.name
			}
			plan[i].Batches = append(plan[i].Batches, names)
		}
	}
	return plan
}

// Access returns the declared access of the system at registration index i.
func (s *Schedule) Access(i int) *Access {
	return s.systems[i].access
}
