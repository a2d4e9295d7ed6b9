// Package ebiten runs an app.Orchestrator inside an ebiten game loop, with Dear ImGui
// as the UI toolkit.
package ebiten

import (
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/pkg/errors"
	"github.com/plus3/framehost/app"
	"github.com/plus3/framehost/render"
)

// Config describes the window of a Host.
type Config struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
	// Exposure scales the scene before it reaches the screen.
	Exposure float32
	Logger   *slog.Logger
}

type window struct {
	redraw bool
}

func (w *window) ScaleFactor() float64 {
	if m := ebiten.Monitor(); m != nil {
		return m.DeviceScaleFactor()
	}
	return 1
}

func (w *window) RequestRedraw() {
	w.redraw = true
}

// Host implements ebiten.Game by turning ebiten callbacks into orchestrator events:
// Update sends pacing ticks and close requests, Draw sends redraws, Layout sends
// resizes.
type Host struct {
	cfg      Config
	logger   *slog.Logger
	orch     *app.Orchestrator
	window   *window
	renderer *Renderer
	scene    *Scene
	routines *render.Routines

	ready      bool
	action     app.LoopAction
	resolution render.Resolution
	err        error
}

func NewHost(orch *app.Orchestrator, cfg Config) *Host {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 1280, 720
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	scene := NewScene()
	return &Host{
		cfg:        cfg,
		logger:     logger.With("host", "ebiten"),
		orch:       orch,
		window:     &window{},
		renderer:   NewRenderer(),
		scene:      scene,
		routines:   render.NewRoutines(scene, Tonemap{Exposure: cfg.Exposure}),
		resolution: render.Resolution{Width: uint32(cfg.Width), Height: uint32(cfg.Height)},
	}
}

// Scene returns the routine systems submit draw calls to.
func (h *Host) Scene() *Scene {
	return h.scene
}

func (h *Host) Renderer() *Renderer {
	return h.renderer
}

// Run blocks until the window is closed or a frame fails.
func (h *Host) Run() error {
	ebiten.SetWindowSize(h.cfg.Width, h.cfg.Height)
	ebiten.SetWindowTitle(h.cfg.Title)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetScreenClearedEveryFrame(false)
	if h.cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	defer h.renderer.Release()
	defer h.orch.Close()

	if err := ebiten.RunGame(h); err != nil {
		return errors.Wrap(err, "ebiten host")
	}
	return nil
}

func (h *Host) Update() error {
	if h.err != nil {
		return h.err
	}

	if !h.ready {
		err := h.orch.Setup(app.SetupInfo{
			Window:        h.window,
			Renderer:      h.renderer,
			Routines:      h.routines,
			SurfaceFormat: render.FormatRGBA8UnormSrgb,
			Toolkit:       &Toolkit{Title: h.cfg.Title, Width: h.cfg.Width, Height: h.cfg.Height},
		})
		if err != nil {
			return err
		}
		h.ready = true
		h.window.redraw = true
	}

	if ebiten.IsWindowBeingClosed() {
		if _, err := h.send(nil, app.Event{Kind: app.CloseRequested}); err != nil {
			return err
		}
		return ebiten.Termination
	}

	if h.action == app.ContinueWait && !h.hasInput() {
		return nil
	}

	action, err := h.send(nil, app.Event{Kind: app.FramePacingTick})
	if err != nil {
		return err
	}
	if action == app.Exit {
		return ebiten.Termination
	}
	return nil
}

// hasInput reports whether any key or mouse button changed this tick.
func (h *Host) hasInput() bool {
	if len(inpututil.AppendJustPressedKeys(nil)) > 0 || len(inpututil.AppendJustReleasedKeys(nil)) > 0 {
		return true
	}
	for b := ebiten.MouseButton0; b <= ebiten.MouseButtonMax; b++ {
		if inpututil.IsMouseButtonJustPressed(b) || inpututil.IsMouseButtonJustReleased(b) {
			return true
		}
	}
	_, dy := ebiten.Wheel()
	return dy != 0
}

func (h *Host) Draw(screen *ebiten.Image) {
	if !h.ready || !h.window.redraw || h.err != nil {
		return
	}
	h.window.redraw = false

	if _, err := h.send(screen, app.Event{Kind: app.RedrawRequested}); err != nil {
		h.logger.Error("redraw failed", "error", err)
		h.err = err
	}
}

func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	res := render.Resolution{Width: uint32(outsideWidth), Height: uint32(outsideHeight)}
	if res != h.resolution {
		h.resolution = res
		if h.ready {
			ev := app.Event{Kind: app.Other, Payload: Resize{Width: outsideWidth, Height: outsideHeight}}
			if _, err := h.send(nil, ev); err != nil && h.err == nil {
				h.err = err
			}
		}
	}
	return outsideWidth, outsideHeight
}

func (h *Host) send(surface *ebiten.Image, ev app.Event) (app.LoopAction, error) {
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
		return action, err
	}
	h.action = action
	return action, nil
}
