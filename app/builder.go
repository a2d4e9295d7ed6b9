package app

import (
	"github.com/pkg/errors"
	"github.com/plus3/framehost/ecs"
)

// Builder collects systems and produces an Orchestrator. Like ecs.ScheduleBuilder it
// is single use: the first Build consumes it, successful or not.
type Builder struct {
	registry *ecs.ComponentRegistry
	schedule *ecs.ScheduleBuilder
	cfg      config
	built    bool
}

// NewBuilder starts a builder for components registered in registry. A nil registry
// gets an empty one.
func NewBuilder(registry *ecs.ComponentRegistry, opts ...Option) *Builder {
	if registry == nil {
		registry = ecs.NewComponentRegistry()
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	schedule := ecs.NewScheduleBuilder()
	if cfg.workers > 0 {
		schedule.SetWorkers(cfg.workers)
	}

	return &Builder{
		registry: registry,
		schedule: schedule,
		cfg:      cfg,
	}
}

// AddSystem registers system in the current stage.
func (b *Builder) AddSystem(system ecs.System) *Builder {
	b.schedule.AddSystem(system)
	return b
}

// Barrier makes the systems added next observe every effect of the systems added so
// far.
func (b *Builder) Barrier() *Builder {
	b.schedule.Barrier()
	return b
}

// Build compiles the schedule against a fresh store. Write conflicts between systems
// of one stage fail with an error matching ecs.ErrScheduleConflict.
func (b *Builder) Build() (*Orchestrator, error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}
	b.built = true

	storage := ecs.NewStorage(b.registry)
	o := &Orchestrator{
		storage:   storage,
		cfg:       b.cfg,
		logger:    b.cfg.logger,
		lifecycle: uninitialized{},
		state:     StateUninitialized,
		flow:      ContinueWait,
		frameTime: ecs.NewSingleton[FrameTime](storage),
		ui:        ecs.NewSingleton[UI](storage),
	}

	schedule, err := b.schedule.Build(storage)
	if err != nil {
		return nil, errors.Wrap(err, "app: building schedule")
	}
	o.schedule = schedule

	o.logger.Debug("orchestrator built",
		"systems", schedule.Len(),
		"stages", len(schedule.Plan()))
	return o, nil
}
