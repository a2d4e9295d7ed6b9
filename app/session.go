package app

import (
	"time"

	"github.com/pkg/errors"
	"github.com/plus3/framehost/render"
)

const defaultFontSize = 13

// session is everything that exists only between Setup and close.
type session struct {
	ctx     UIContext
	bridge  UIBridge
	overlay OverlayRoutine
	window  Window

	clock Clock
	start time.Time
	last  time.Time
	delta time.Duration

	frames uint64
}

func newSession(info SetupInfo, clock Clock) (_ *session, err error) {
	switch {
	case info.Window == nil:
		return nil, &SetupError{Step: "validate", Err: errors.New("nil window")}
	case info.Renderer == nil:
		return nil, &SetupError{Step: "validate", Err: errors.New("nil renderer")}
	case info.Toolkit == nil:
		return nil, &SetupError{Step: "validate", Err: errors.New("nil UI toolkit")}
	}

	s := &session{clock: clock, window: info.Window}
	defer func() {
		if err != nil {
			s.release()
		}
	}()

	if s.ctx, err = info.Toolkit.NewContext(); err != nil {
		return nil, &SetupError{Step: "create UI context", Err: err}
	}
	s.ctx.DisableIniFile()

	if s.bridge, err = info.Toolkit.NewBridge(s.ctx); err != nil {
		return nil, &SetupError{Step: "create UI bridge", Err: err}
	}
	if err = s.bridge.Attach(info.Window, DPIModeDefault); err != nil {
		return nil, &SetupError{Step: "attach UI bridge", Err: err}
	}

	scale := info.Window.ScaleFactor()
	if scale <= 0 {
		scale = 1
	}
	s.ctx.SetFontGlobalScale(float32(1 / scale))
	err = s.ctx.AddDefaultFont(FontConfig{
		SizePixels:  float32(defaultFontSize * scale),
		OversampleH: 1,
		OversampleV: 1,
		PixelSnapH:  true,
	})
	if err != nil {
		return nil, &SetupError{Step: "add default font", Err: err}
	}

	if s.overlay, err = info.Toolkit.NewOverlayRoutine(info.Renderer, s.ctx, info.SurfaceFormat); err != nil {
		return nil, &SetupError{Step: "create overlay routine", Err: err}
	}

	s.start = clock.Now()
	s.last = s.start
	return s, nil
}

// windowFor returns the event's window, falling back to the one given to Setup.
func (s *session) windowFor(ctx FrameContext) Window {
	if ctx.Window != nil {
		return ctx.Window
	}
	return s.window
}

// tick is the only place frame time advances.
func (s *session) tick(o *Orchestrator, window Window) {
	now := s.clock.Now()
	s.delta = max(now.Sub(s.last), 0)
	s.last = now

	s.ctx.SetDeltaTime(float32(s.delta.Seconds()))
	ft := o.frameTime.Get()
	ft.Delta = s.delta
	ft.Elapsed = now.Sub(s.start)

	window.RequestRedraw()
}

// redraw runs one frame: UI begin, simulation, UI end, graph assembly and execution.
func (s *session) redraw(o *Orchestrator, ctx FrameContext) error {
	s.frames++
	o.state = StateUpdating
	window := s.windowFor(ctx)

	frame, err := s.bridge.BeginFrame(window)
	if err != nil {
		return &FramePrepError{Frame: s.frames, Err: err}
	}

	o.frameTime.Get().Frame = s.frames
	*o.ui.Get() = UI{Frame: frame}
	err = o.schedule.Once(s.delta.Seconds())
	*o.ui.Get() = UI{}

	s.bridge.EndFrame(frame, window)
	if err != nil {
		return errors.Wrapf(err, "app: frame %d: update", s.frames)
	}

	o.state = StateRendering
	if ctx.Surface == nil {
		return errors.WithStack(ErrNoSurface)
	}
	if ctx.Renderer == nil || ctx.Routines == nil {
		return errors.New("app: frame context without renderer or routines")
	}
	cmds, ready := ctx.Renderer.Ready()

	g := render.NewGraph()
	unlock := ctx.Routines.Lock()
	defer unlock()

	err = ctx.Renderer.AddDefaultScene(g, ready, ctx.Routines, nil, ctx.Resolution, render.SampleCountOne, o.cfg.clearColor)
	if err != nil {
		return errors.Wrapf(err, "app: frame %d: scene graph", s.frames)
	}
	surface := g.AddSurfaceTexture()
	s.overlay.AddToGraph(g, frame.Render(), surface)

	if err := ctx.Renderer.ExecuteGraph(g, ctx.Surface, cmds, ready); err != nil {
		return errors.Wrapf(err, "app: frame %d: execute graph", s.frames)
	}
	return nil
}

// release tears the UI down in reverse creation order. GPU work already submitted is
// not waited for.
func (s *session) release() {
	if s.overlay != nil {
		s.overlay.Release()
		s.overlay = nil
	}
	if s.bridge != nil {
		s.bridge.Detach()
		s.bridge = nil
	}
	if s.ctx != nil {
		s.ctx.Destroy()
		s.ctx = nil
	}
}
