package terminal

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/pkg/errors"
	"github.com/plus3/framehost/app"
	"github.com/plus3/framehost/render"
)

// Toolkit is a text overlay: systems write lines into the open Frame and the overlay
// pass prints them in the top-left corner. F1 toggles it.
type Toolkit struct {
	Style tcell.Style
}

type textContext struct {
	fontScale float32
	fontSize  float32
	delta     float32
	hidden    bool
}

func (t *Toolkit) NewContext() (app.UIContext, error) {
	return &textContext{fontScale: 1}, nil
}

// Text cells have no ini file.
func (c *textContext) DisableIniFile() {}

func (c *textContext) SetFontGlobalScale(scale float32) {
	c.fontScale = scale
}

// AddDefaultFont records the size; cell size belongs to the terminal.
func (c *textContext) AddDefaultFont(cfg app.FontConfig) error {
	if cfg.SizePixels <= 0 {
		return errors.Errorf("font size %.1f", cfg.SizePixels)
	}
	c.fontSize = cfg.SizePixels
	return nil
}

func (c *textContext) SetDeltaTime(seconds float32) {
	c.delta = seconds
}

func (c *textContext) Destroy() {}

type textBridge struct {
	ctx  *textContext
	open *Frame
}

func (t *Toolkit) NewBridge(ctx app.UIContext) (app.UIBridge, error) {
	c, ok := ctx.(*textContext)
	if !ok {
		return nil, errors.Errorf("terminal ui: foreign UI context %T", ctx)
	}
	return &textBridge{ctx: c}, nil
}

func (b *textBridge) Attach(window app.Window, mode app.DPIMode) error {
	if window == nil {
		return errors.New("terminal ui: attach to nil window")
	}
	return nil
}

func (b *textBridge) Forward(window app.Window, event app.Event) {
	if key, ok := event.Payload.(*tcell.EventKey); ok && key.Key() == tcell.KeyF1 {
		b.ctx.hidden = !b.ctx.hidden
	}
}

func (b *textBridge) BeginFrame(window app.Window) (app.UIFrame, error) {
	if b.ctx == nil {
		return nil, errors.New("terminal ui: bridge is detached")
	}
	if b.open != nil {
		return nil, errors.New("terminal ui: frame already open")
	}
	b.open = &Frame{hidden: b.ctx.hidden, delta: b.ctx.delta}
	return b.open, nil
}

func (b *textBridge) EndFrame(frame app.UIFrame, window app.Window) {
	if f, ok := frame.(*Frame); ok && f == b.open {
		b.open = nil
	}
}

func (b *textBridge) Detach() {
	b.ctx = nil
	b.open = nil
}

// Frame collects overlay lines during the update phase. Systems may write to it
// concurrently.
type Frame struct {
	mu     sync.Mutex
	lines  []string
	hidden bool
	delta  float32
}

// Text appends one formatted line.
func (f *Frame) Text(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	f.mu.Lock()
	f.lines = append(f.lines, line)
	f.mu.Unlock()
}

// DeltaTime is the UI delta of the frame in seconds.
func (f *Frame) DeltaTime() float32 {
	return f.delta
}

// Render returns the lines to draw, or nil when the overlay is hidden.
func (f *Frame) Render() app.DrawData {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hidden {
		return nil
	}
	return append([]string(nil), f.lines...)
}

type textOverlay struct {
	style tcell.Style
}

func (t *Toolkit) NewOverlayRoutine(renderer render.Renderer, ctx app.UIContext, format render.SurfaceFormat) (app.OverlayRoutine, error) {
	if format != render.FormatTerminalCells {
		return nil, errors.Errorf("terminal ui: unsupported surface format %q", format)
	}
	style := t.Style
	if style == tcell.StyleDefault {
		style = tcell.StyleDefault.Reverse(true)
	}
	return &textOverlay{style: style}, nil
}

func (o *textOverlay) AddToGraph(g *render.Graph, data app.DrawData, surface render.TextureHandle) {
	lines, _ := data.([]string)
	if len(lines) == 0 {
		return
	}
	targets := []render.TextureHandle{surface}
	g.AddPass("ui.overlay", targets, targets, func(ctx *render.PassContext) error {
		c, err := canvasOf(ctx, surface)
		if err != nil {
			return err
		}
		for y, line := range lines {
			if y >= c.Height {
				break
			}
			c.Text(0, y, runewidth.Truncate(line, c.Width, "…"), o.style)
		}
		return nil
	})
}

func (o *textOverlay) Release() {}
