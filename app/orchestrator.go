package app

import (
	"log/slog"

	"github.com/plus3/framehost/ecs"
)

// Orchestrator owns the simulation store, the compiled schedule and, once set up, the
// UI session. A host calls Setup once its window exists, then HandleEvent for every
// platform event from a single goroutine.
type Orchestrator struct {
	storage  *ecs.Storage
	schedule *ecs.Schedule
	cfg      config
	logger   *slog.Logger

	lifecycle lifecycle
	state     State
	flow      LoopAction

	frameTime *ecs.Singleton[FrameTime]
	ui        *ecs.Singleton[UI]
}

// Storage returns the simulation store. It must not be touched while HandleEvent is
// running.
func (o *Orchestrator) Storage() *ecs.Storage {
	return o.storage
}

func (o *Orchestrator) Schedule() *ecs.Schedule {
	return o.schedule
}

func (o *Orchestrator) State() State {
	return o.state
}

// FrameTime returns the last published timing resource.
func (o *Orchestrator) FrameTime() FrameTime {
	return *o.frameTime.Get()
}

// Setup creates the UI session. It can succeed only once.
func (o *Orchestrator) Setup(info SetupInfo) error {
	next, err := o.lifecycle.setup(o, info)
	if err != nil {
		return err
	}
	o.enter(next)
	return nil
}

// HandleEvent forwards ev to the UI bridge and reacts to it. The returned action tells
// the host how to continue its loop. Errors are fatal for the host loop.
func (o *Orchestrator) HandleEvent(ctx FrameContext, ev Event) (LoopAction, error) {
	action, next, err := o.lifecycle.handleEvent(o, ctx, ev)
	if next != nil {
		o.enter(next)
	}
	return action, err
}

// Close releases the session, if any, and terminates the orchestrator. Hosts call it
// when their loop ends without a close request.
func (o *Orchestrator) Close() {
	if o.state == StateTerminated {
		return
	}
	o.lifecycle.release(o)
	o.enter(terminated{})
}

func (o *Orchestrator) enter(next lifecycle) {
	o.lifecycle = next
	o.state = next.state()
}
