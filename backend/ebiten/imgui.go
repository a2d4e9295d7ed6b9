package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/pkg/errors"
	"github.com/plus3/framehost/app"
	"github.com/plus3/framehost/render"
)

// imgui rejects frames with a zero delta.
const minDeltaTime = 1e-5

// Toolkit provides Dear ImGui through the cimgui-go ebiten backend.
type Toolkit struct {
	Title         string
	Width, Height int
}

// Resize is the payload of the event sent when ebiten lays out the screen.
type Resize struct {
	Width, Height int
}

type uiContext struct {
	backend *ebitenbackend.EbitenBackend
	io      *imgui.IO
}

func (t *Toolkit) NewContext() (app.UIContext, error) {
	backend := ebitenbackend.NewEbitenBackend()
	if backend == nil {
		return nil, errors.New("imgui: ebiten backend unavailable")
	}
	backend.CreateWindow(t.Title, t.Width, t.Height)
	return &uiContext{backend: backend, io: imgui.CurrentIO()}, nil
}

func (c *uiContext) DisableIniFile() {
	c.io.SetIniFilename("")
}

func (c *uiContext) SetFontGlobalScale(scale float32) {
	c.io.SetFontGlobalScale(scale)
}

func (c *uiContext) AddDefaultFont(cfg app.FontConfig) error {
	fc := imgui.NewFontConfig()
	fc.SetSizePixels(cfg.SizePixels)
	fc.SetOversampleH(int32(cfg.OversampleH))
	fc.SetOversampleV(int32(cfg.OversampleV))
	fc.SetPixelSnapH(cfg.PixelSnapH)
	if c.io.Fonts().AddFontDefaultV(fc) == nil {
		return errors.Errorf("imgui: adding default font at %.1fpx", cfg.SizePixels)
	}
	return nil
}

func (c *uiContext) SetDeltaTime(seconds float32) {
	c.io.SetDeltaTime(max(seconds, minDeltaTime))
}

// Destroy drops the context. The imgui context itself belongs to the backend and
// lives as long as the process.
func (c *uiContext) Destroy() {
	c.io = nil
	c.backend = nil
}

type bridge struct {
	backend *ebitenbackend.EbitenBackend
	window  app.Window
	open    *uiFrame
}

func (t *Toolkit) NewBridge(ctx app.UIContext) (app.UIBridge, error) {
	c, ok := ctx.(*uiContext)
	if !ok {
		return nil, errors.Errorf("imgui: foreign UI context %T", ctx)
	}
	return &bridge{backend: c.backend}, nil
}

// Attach binds the bridge to window. The ebiten backend scales by the device scale
// factor itself, so every mode behaves like the default one.
func (b *bridge) Attach(window app.Window, mode app.DPIMode) error {
	if window == nil {
		return errors.New("imgui: attach to nil window")
	}
	b.window = window
	return nil
}

// Forward passes layout changes on. Keyboard and mouse state is polled by the backend
// when a frame begins.
func (b *bridge) Forward(window app.Window, event app.Event) {
	if resize, ok := event.Payload.(Resize); ok {
		b.backend.Layout(resize.Width, resize.Height)
	}
}

func (b *bridge) BeginFrame(window app.Window) (app.UIFrame, error) {
	if b.backend == nil {
		return nil, errors.New("imgui: bridge is detached")
	}
	if b.open != nil {
		return nil, errors.New("imgui: frame already open")
	}
	b.backend.BeginFrame()
	b.open = &uiFrame{backend: b.backend}
	return b.open, nil
}

func (b *bridge) EndFrame(frame app.UIFrame, window app.Window) {
	if b.open == nil || frame != app.UIFrame(b.open) {
		return
	}
	b.backend.EndFrame()
	b.open.ended = true
	b.open = nil
}

func (b *bridge) Detach() {
	b.window = nil
	b.backend = nil
}

type uiFrame struct {
	backend *ebitenbackend.EbitenBackend
	ended   bool
}

// Render returns the frame itself; the backend keeps the draw lists of the last
// ended frame.
func (f *uiFrame) Render() app.DrawData {
	if !f.ended {
		return nil
	}
	return f
}

type overlay struct {
	format render.SurfaceFormat
}

func (t *Toolkit) NewOverlayRoutine(renderer render.Renderer, ctx app.UIContext, format render.SurfaceFormat) (app.OverlayRoutine, error) {
	if _, ok := renderer.(*Renderer); !ok {
		return nil, errors.Errorf("imgui: overlay needs the ebiten renderer, got %T", renderer)
	}
	if format != render.FormatRGBA8UnormSrgb {
		return nil, errors.Errorf("imgui: unsupported surface format %q", format)
	}
	return &overlay{format: format}, nil
}

func (o *overlay) AddToGraph(g *render.Graph, data app.DrawData, surface render.TextureHandle) {
	frame, ok := data.(*uiFrame)
	if !ok {
		return
	}
	targets := []render.TextureHandle{surface}
	g.AddPass("ui.overlay", targets, targets, func(ctx *render.PassContext) error {
		screen, err := imageOf(ctx, surface)
		if err != nil {
			return err
		}
		frame.backend.Draw(screen)
		return nil
	})
}

func (o *overlay) Release() {}
