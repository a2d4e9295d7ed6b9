package app

// lifecycle holds the operations whose meaning depends on whether a session exists.
// Session state is only reachable through readySession.
type lifecycle interface {
	state() State
	setup(o *Orchestrator, info SetupInfo) (lifecycle, error)
	// handleEvent returns a non-nil lifecycle when the orchestrator changes state.
	handleEvent(o *Orchestrator, ctx FrameContext, ev Event) (LoopAction, lifecycle, error)
	release(o *Orchestrator)
}

type uninitialized struct{}

func (uninitialized) state() State { return StateUninitialized }

func (uninitialized) setup(o *Orchestrator, info SetupInfo) (lifecycle, error) {
	s, err := newSession(info, o.cfg.clock)
	if err != nil {
		o.logger.Error("setup failed", "error", err)
		return nil, err
	}
	o.logger.Info("session ready",
		"scale", info.Window.ScaleFactor(),
		"format", string(info.SurfaceFormat))
	return &readySession{session: s}, nil
}

func (uninitialized) handleEvent(*Orchestrator, FrameContext, Event) (LoopAction, lifecycle, error) {
	return ContinueWait, nil, ErrNotReady
}

func (uninitialized) release(*Orchestrator) {}

type terminated struct{}

func (terminated) state() State { return StateTerminated }

func (terminated) setup(*Orchestrator, SetupInfo) (lifecycle, error) {
	return nil, ErrTerminated
}

func (terminated) handleEvent(*Orchestrator, FrameContext, Event) (LoopAction, lifecycle, error) {
	return Exit, nil, nil
}

func (terminated) release(*Orchestrator) {}

type readySession struct {
	*session
}

func (*readySession) state() State { return StateReady }

func (*readySession) setup(*Orchestrator, SetupInfo) (lifecycle, error) {
	return nil, ErrAlreadySetup
}

func (r *readySession) handleEvent(o *Orchestrator, ctx FrameContext, ev Event) (LoopAction, lifecycle, error) {
	r.bridge.Forward(r.windowFor(ctx), ev)

	switch ev.Kind {
	case CloseRequested:
		r.release(o)
		o.logger.Info("close requested", "frames", r.frames)
		return Exit, terminated{}, nil

	case FramePacingTick:
		r.tick(o, r.windowFor(ctx))
		return o.flow, nil, nil

	case RedrawRequested:
		err := r.redraw(o, ctx)
		o.state = StateReady
		if err != nil {
			o.logger.Error("frame failed", "frame", r.frames, "error", err)
			return Exit, nil, err
		}
		o.flow = ContinuePoll
		return o.flow, nil, nil

	default:
		return o.flow, nil, nil
	}
}

func (r *readySession) release(o *Orchestrator) {
	r.session.release()
	*o.ui.Get() = UI{}
	o.logger.Debug("session released")
}
