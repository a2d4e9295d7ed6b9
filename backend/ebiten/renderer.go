package ebiten

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/errors"
	"github.com/plus3/framehost/render"
)

// Command is work queued on the renderer and run before the next graph, such as
// pixel uploads.
type Command struct {
	Name string
	Run  func() error
}

func (c Command) Label() string {
	return c.Name
}

// Renderer executes render graphs onto the ebiten screen. Intermediate targets are
// kept between frames and reallocated when their size changes.
type Renderer struct {
	base     render.BaseGraph
	frame    uint64
	queued   []render.CommandBuffer
	textures map[string]*ebiten.Image
}

func NewRenderer() *Renderer {
	return &Renderer{
		base:     render.BaseGraph{MaxSamples: render.SampleCountOne},
		textures: make(map[string]*ebiten.Image),
	}
}

// Queue adds cmd to the command buffers handed out by the next Ready.
func (r *Renderer) Queue(cmd render.CommandBuffer) {
	r.queued = append(r.queued, cmd)
}

func (r *Renderer) Ready() ([]render.CommandBuffer, render.ReadyToken) {
	r.frame++
	cmds := r.queued
	r.queued = nil
	return cmds, render.ReadyToken{Frame: r.frame}
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
	screen, ok := target.(*ebiten.Image)
	if !ok || screen == nil {
		return errors.Errorf("ebiten renderer: target %T is not an ebiten image", target)
	}
	if ready.Frame != r.frame {
		return errors.Errorf("ebiten renderer: stale ready token %d, current frame %d", ready.Frame, r.frame)
	}

	for _, cmd := range cmds {
		c, ok := cmd.(Command)
		if !ok {
			return errors.Errorf("ebiten renderer: unsupported command buffer %q", cmd.Label())
		}
		if err := c.Run(); err != nil {
			return errors.Wrapf(err, "command %q", c.Name)
		}
	}

	return g.Execute(&allocator{renderer: r, screen: screen}, ready)
}

// Release frees every cached target.
func (r *Renderer) Release() {
	for label, img := range r.textures {
		img.Deallocate()
		delete(r.textures, label)
	}
}

type allocator struct {
	renderer *Renderer
	screen   *ebiten.Image
}

func (a *allocator) Surface() any {
	return a.screen
}

func (a *allocator) Texture(h render.TextureHandle, desc render.TextureDesc) any {
	w, hgt := int(desc.Resolution.Width), int(desc.Resolution.Height)
	if desc.Resolution.Empty() {
		bounds := a.screen.Bounds()
		w, hgt = bounds.Dx(), bounds.Dy()
	}

	if img, ok := a.renderer.textures[desc.Label]; ok {
		if b := img.Bounds(); b.Dx() == w && b.Dy() == hgt {
			return img
		}
		img.Deallocate()
	}

	img := ebiten.NewImage(w, hgt)
	a.renderer.textures[desc.Label] = img
	return img
}
