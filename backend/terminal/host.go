// Package terminal runs an app.Orchestrator on a tcell screen. The scene is a grid of
// cells and the UI toolkit is a plain text overlay.
package terminal

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/plus3/framehost/app"
	"github.com/plus3/framehost/render"
)

const defaultFrameInterval = time.Second / 60

// Config tunes a Host.
type Config struct {
	// FrameInterval is the pacing tick period while the orchestrator polls.
	FrameInterval time.Duration
	Logger        *slog.Logger
	OverlayStyle  tcell.Style
}

// pacing markers posted to the event queue.
type (
	tick         struct{}
	closeRequest struct{}
)

type window struct {
	redraw bool
}

// Terminal cells have no device scale.
func (w *window) ScaleFactor() float64 { return 1 }

func (w *window) RequestRedraw() { w.redraw = true }

// Host owns a tcell screen and feeds its events to an orchestrator.
type Host struct {
	screen   tcell.Screen
	orch     *app.Orchestrator
	cfg      Config
	logger   *slog.Logger
	window   *window
	renderer *Renderer
	scene    *Scene
	routines *render.Routines

	resolution render.Resolution
	polling    atomic.Bool
}

func NewHost(screen tcell.Screen, orch *app.Orchestrator, cfg Config) *Host {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = defaultFrameInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	scene := NewScene()
	return &Host{
		screen:   screen,
		orch:     orch,
		cfg:      cfg,
		logger:   logger.With("host", "terminal"),
		window:   &window{},
		renderer: NewRenderer(),
		scene:    scene,
		routines: render.NewRoutines(scene, Tonemap{}),
	}
}

// Scene returns the routine systems submit draw calls to.
func (h *Host) Scene() *Scene {
	return h.scene
}

func (h *Host) Renderer() *Renderer {
	return h.renderer
}

// Run initialises the screen and processes events until Escape, Ctrl-C, cancellation
// of ctx or a failed frame.
func (h *Host) Run(ctx context.Context) error {
	if err := h.screen.Init(); err != nil {
		return errors.Wrap(err, "terminal host: init screen")
	}
	defer h.screen.Fini()
	defer h.orch.Close()

	w, ht := h.screen.Size()
	h.resolution = render.Resolution{Width: uint32(w), Height: uint32(ht)}

	err := h.orch.Setup(app.SetupInfo{
		Window:        h.window,
		Renderer:      h.renderer,
		Routines:      h.routines,
		SurfaceFormat: render.FormatTerminalCells,
		Toolkit:       &Toolkit{Style: h.cfg.OverlayStyle},
	})
	if err != nil {
		return err
	}

	stop := make(chan struct{})
	defer close(stop)
	go h.pace(ctx, stop)

	h.post(tick{})
	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			return nil
		}

		action, err := h.dispatch(ev)
		if err != nil {
			return err
		}
		if action == app.Exit {
			return nil
		}
	}
}

// pace posts pacing ticks while the orchestrator polls and turns ctx cancellation
// into a close request.
func (h *Host) pace(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(h.cfg.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			for h.screen.PostEvent(tcell.NewEventInterrupt(closeRequest{})) != nil {
				select {
				case <-stop:
					return
				case <-ticker.C:
				}
			}
			return
		case <-ticker.C:
			if h.polling.Load() {
				h.post(tick{})
			}
		}
	}
}

func (h *Host) post(data any) {
	if err := h.screen.PostEvent(tcell.NewEventInterrupt(data)); err != nil {
		h.logger.Debug("event dropped", "error", err)
	}
}

func (h *Host) dispatch(ev tcell.Event) (app.LoopAction, error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return h.send(nil, app.Event{Kind: app.CloseRequested, Payload: ev})
		}
		return h.wake(h.send(nil, app.Event{Kind: app.Other, Payload: ev}))

	case *tcell.EventResize:
		h.screen.Sync()
		w, ht := ev.Size()
		h.resolution = render.Resolution{Width: uint32(w), Height: uint32(ht)}
		h.window.redraw = true
		return h.wake(h.send(nil, app.Event{Kind: app.Other, Payload: ev}))

	case *tcell.EventInterrupt:
		switch ev.Data().(type) {
		case closeRequest:
			return h.send(nil, app.Event{Kind: app.CloseRequested})
		case tick:
			action, err := h.send(nil, app.Event{Kind: app.FramePacingTick})
			if err != nil || action == app.Exit || !h.window.redraw {
				return action, err
			}
			h.window.redraw = false
			return h.send(h.screen, app.Event{Kind: app.RedrawRequested})
		}
	}
	return h.send(nil, app.Event{Kind: app.Other, Payload: ev})
}

// wake schedules a tick after input when the orchestrator waits for events.
func (h *Host) wake(action app.LoopAction, err error) (app.LoopAction, error) {
	if err == nil && action == app.ContinueWait {
		h.post(tick{})
	}
	return action, err
}

func (h *Host) send(surface tcell.Screen, ev app.Event) (app.LoopAction, error) {
	ctx := app.FrameContext{
		Window:     h.window,
		Renderer:   h.renderer,
		Routines:   h.routines,
		Resolution: h.resolution,
	}
	if surface != nil {
		ctx.Surface = surface
	}

	action, err := h.orch.HandleEvent(ctx, ev)
	if err != nil {
		h.logger.Error("event failed", "kind", ev.Kind.String(), "error", err)
		return action, err
	}
	h.polling.Store(action == app.ContinuePoll)
	return action, nil
}
