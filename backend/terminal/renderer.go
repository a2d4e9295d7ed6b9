package terminal

import (
	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/plus3/framehost/render"
)

// Renderer executes render graphs onto a tcell screen. The surface is a Canvas the
// size of the screen, presented after the last pass.
type Renderer struct {
	base     render.BaseGraph
	frame    uint64
	textures map[string]*Canvas
	surface  *Canvas
}

func NewRenderer() *Renderer {
	return &Renderer{
		base:     render.BaseGraph{MaxSamples: render.SampleCountOne},
		textures: make(map[string]*Canvas),
	}
}

func (r *Renderer) Ready() ([]render.CommandBuffer, render.ReadyToken) {
	r.frame++
	return nil, render.ReadyToken{Frame: r.frame}
}

func (r *Renderer) AddDefaultScene(
	g *render.Graph,
	ready render.ReadyToken,
	routines *render.Routines,
	skybox render.Skybox,
	resolution render.Resolution,
	samples render.SampleCount,
	clear render.Color,
) error {
	_, err := r.base.AddToGraph(g, ready, routines, skybox, resolution, samples, clear)
	return err
}

func (r *Renderer) ExecuteGraph(g *render.Graph, target render.Target, cmds []render.CommandBuffer, ready render.ReadyToken) error {
	screen, ok := target.(tcell.Screen)
	if !ok || screen == nil {
		return errors.Errorf("terminal renderer: target %T is not a tcell screen", target)
	}
	if ready.Frame != r.frame {
		return errors.Errorf("terminal renderer: stale ready token %d, current frame %d", ready.Frame, r.frame)
	}
	if len(cmds) > 0 {
		return errors.Errorf("terminal renderer: %d unexpected command buffers", len(cmds))
	}

	w, h := screen.Size()
	if r.surface == nil || r.surface.Width != w || r.surface.Height != h {
		r.surface = NewCanvas(w, h)
	}

	if err := g.Execute(allocator{r}, ready); err != nil {
		return err
	}
	r.surface.Present(screen)
	return nil
}

// Surface returns the canvas presented by the last frame.
func (r *Renderer) Surface() *Canvas {
	return r.surface
}

type allocator struct {
	r *Renderer
}

func (a allocator) Surface() any {
	return a.r.surface
}

func (a allocator) Texture(h render.TextureHandle, desc render.TextureDesc) any {
	w, hgt := int(desc.Resolution.Width), int(desc.Resolution.Height)
	if desc.Resolution.Empty() {
		w, hgt = a.r.surface.Width, a.r.surface.Height
	}
	if c, ok := a.r.textures[desc.Label]; ok && c.Width == w && c.Height == hgt {
		return c
	}
	c := NewCanvas(w, hgt)
	a.r.textures[desc.Label] = c
	return c
}

func canvasOf(ctx *render.PassContext, h render.TextureHandle) (*Canvas, error) {
	c, ok := ctx.Texture(h).(*Canvas)
	if !ok || c == nil {
		return nil, errors.Errorf("texture %q is not a canvas", ctx.Desc(h).Label)
	}
	return c, nil
}
