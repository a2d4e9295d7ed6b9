package app_test

import (
	"errors"
	"testing"
	"time"

	"github.com/plus3/framehost/app"
	"github.com/plus3/framehost/ecs"
	"github.com/plus3/framehost/render"
	"github.com/stretchr/testify/require"
)

type Counter struct {
	Value int
}

type CounterSystem struct {
	Counters ecs.Query[struct{ *Counter }]
}

func (s *CounterSystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Counters.Values() {
		item.Counter.Value++
	}
}

type manualClock struct {
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type fakeWindow struct {
	scale   float64
	redraws int
}

func (w *fakeWindow) ScaleFactor() float64 { return w.scale }
func (w *fakeWindow) RequestRedraw()        { w.redraws++ }

type fakeContext struct {
	iniDisabled bool
	fontScale   float32
	fonts       []app.FontConfig
	deltas      []float32
	released    *[]string
}

func (c *fakeContext) DisableIniFile()              { c.iniDisabled = true }
func (c *fakeContext) SetFontGlobalScale(s float32) { c.fontScale = s }
func (c *fakeContext) SetDeltaTime(seconds float32) { c.deltas = append(c.deltas, seconds) }
func (c *fakeContext) Destroy()                     { *c.released = append(*c.released, "context") }
func (c *fakeContext) AddDefaultFont(cfg app.FontConfig) error {
	c.fonts = append(c.fonts, cfg)
	return nil
}

type fakeFrame struct {
	ended bool
}

func (f *fakeFrame) Render() app.DrawData {
	return "overlay"
}

type fakeBridge struct {
	mode      app.DPIMode
	attached  bool
	forwarded []app.Event
	windows   []app.Window
	open      *fakeFrame
	begun     int
	failBegin error
	released  *[]string
}

func (b *fakeBridge) Attach(window app.Window, mode app.DPIMode) error {
	b.attached = true
	b.mode = mode
	return nil
}

func (b *fakeBridge) Forward(window app.Window, event app.Event) {
	b.forwarded = append(b.forwarded, event)
	b.windows = append(b.windows, window)
}

func (b *fakeBridge) BeginFrame(window app.Window) (app.UIFrame, error) {
	if b.failBegin != nil {
		return nil, b.failBegin
	}
	if b.open != nil {
		return nil, errors.New("frame already open")
	}
	b.begun++
	b.windows = append(b.windows, window)
	b.open = &fakeFrame{}
	return b.open, nil
}

func (b *fakeBridge) EndFrame(frame app.UIFrame, window app.Window) {
	frame.(*fakeFrame).ended = true
	b.open = nil
}

func (b *fakeBridge) Detach() {
	*b.released = append(*b.released, "bridge")
}

type fakeOverlay struct {
	drawn    []app.DrawData
	released *[]string
}

func (o *fakeOverlay) AddToGraph(g *render.Graph, data app.DrawData, surface render.TextureHandle) {
	g.AddPass("overlay", []render.TextureHandle{surface}, []render.TextureHandle{surface}, func(*render.PassContext) error {
		o.drawn = append(o.drawn, data)
		return nil
	})
}

func (o *fakeOverlay) Release() {
	*o.released = append(*o.released, "overlay")
}

type fakeToolkit struct {
	ctx        *fakeContext
	bridge     *fakeBridge
	overlay    *fakeOverlay
	failBridge error
	format     render.SurfaceFormat
	released   []string
}

func newFakeToolkit() *fakeToolkit {
	tk := &fakeToolkit{}
	tk.ctx = &fakeContext{released: &tk.released}
	tk.bridge = &fakeBridge{released: &tk.released}
	tk.overlay = &fakeOverlay{released: &tk.released}
	return tk
}

func (tk *fakeToolkit) NewContext() (app.UIContext, error) {
	return tk.ctx, nil
}

func (tk *fakeToolkit) NewBridge(ctx app.UIContext) (app.UIBridge, error) {
	if tk.failBridge != nil {
		return nil, tk.failBridge
	}
	return tk.bridge, nil
}

func (tk *fakeToolkit) NewOverlayRoutine(r render.Renderer, ctx app.UIContext, format render.SurfaceFormat) (app.OverlayRoutine, error) {
	tk.format = format
	return tk.overlay, nil
}

type nopScene struct{}

func (nopScene) Clear(*render.PassContext, render.TextureHandle, render.Color) error { return nil }
func (nopScene) Draw(*render.PassContext, render.TextureHandle) error                { return nil }

type nopTonemap struct{}

func (nopTonemap) Apply(*render.PassContext, render.TextureHandle, render.TextureHandle) error {
	return nil
}

type nopAllocator struct{}

func (nopAllocator) Surface() any                                         { return "surface" }
func (nopAllocator) Texture(render.TextureHandle, render.TextureDesc) any { return "texture" }

type fakeRenderer struct {
	readies  int
	executed int
	passes   []string
	targets  []render.Target
	clear    render.Color
}

func (r *fakeRenderer) Ready() ([]render.CommandBuffer, render.ReadyToken) {
	r.readies++
	return nil, render.ReadyToken{Frame: uint64(r.readies)}
}

func (r *fakeRenderer) AddDefaultScene(g *render.Graph, ready render.ReadyToken, routines *render.Routines, skybox render.Skybox, res render.Resolution, samples render.SampleCount, clear render.Color) error {
	r.clear = clear
	_, err := render.BaseGraph{}.AddToGraph(g, ready, routines, skybox, res, samples, clear)
	return err
}

func (r *fakeRenderer) ExecuteGraph(g *render.Graph, target render.Target, cmds []render.CommandBuffer, ready render.ReadyToken) error {
	r.executed++
	r.targets = append(r.targets, target)
	passes, err := g.Compile()
	if err != nil {
		return err
	}
	r.passes = passes
	return g.Execute(nopAllocator{}, ready)
}

type harness struct {
	o        *app.Orchestrator
	clock    *manualClock
	window   *fakeWindow
	toolkit  *fakeToolkit
	renderer *fakeRenderer
	routines *render.Routines
}

func newHarness(t *testing.T, opts ...app.Option) (*harness, *app.Builder) {
	t.Helper()
	h := &harness{
		clock:    newManualClock(),
		window:   &fakeWindow{scale: 2},
		toolkit:  newFakeToolkit(),
		renderer: &fakeRenderer{},
		routines: render.NewRoutines(nopScene{}, nopTonemap{}),
	}

	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Counter](registry)
	return h, app.NewBuilder(registry, append([]app.Option{app.WithClock(h.clock)}, opts...)...)
}

func (h *harness) build(t *testing.T, b *app.Builder) {
	t.Helper()
	o, err := b.Build()
	require.NoError(t, err)
	h.o = o
}

func (h *harness) setup(t *testing.T) {
	t.Helper()
	require.NoError(t, h.o.Setup(h.setupInfo()))
}

func (h *harness) setupInfo() app.SetupInfo {
	return app.SetupInfo{
		Window:        h.window,
		Renderer:      h.renderer,
		Routines:      h.routines,
		SurfaceFormat: render.FormatRGBA8UnormSrgb,
		Toolkit:       h.toolkit,
	}
}

func (h *harness) frameContext() app.FrameContext {
	return app.FrameContext{
		Window:     h.window,
		Renderer:   h.renderer,
		Routines:   h.routines,
		Surface:    "screen",
		Resolution: render.Resolution{Width: 640, Height: 480},
	}
}

func (h *harness) send(kind app.EventKind) (app.LoopAction, error) {
	return h.o.HandleEvent(h.frameContext(), app.Event{Kind: kind})
}
