package render

import (
	"slices"

	"github.com/pkg/errors"
)

var (
	// ErrGraphExecuted is returned when a graph is executed a second time.
	ErrGraphExecuted = errors.New("render: graph already executed")
	// ErrUnwrittenTexture is returned when a pass reads a render target no earlier
	// pass writes.
	ErrUnwrittenTexture = errors.New("render: texture read before it is written")
	// ErrUnknownTexture is returned for handles that do not belong to the graph.
	ErrUnknownTexture = errors.New("render: unknown texture handle")
)

// TextureHandle identifies a texture of one Graph.
type TextureHandle int

// TextureDesc describes a texture of the graph.
type TextureDesc struct {
	Label      string
	Resolution Resolution
	Samples    SampleCount
	surface    bool
}

// IsSurface reports whether the texture is the frame's presentable surface.
func (d TextureDesc) IsSurface() bool {
	return d.surface
}

// PassFunc records the work of a pass.
type PassFunc func(ctx *PassContext) error

type pass struct {
	name   string
	reads  []TextureHandle
	writes []TextureHandle
	run    PassFunc
}

// Graph is the description of one frame. Graphs are built fresh every frame and can be
// executed once.
type Graph struct {
	textures []TextureDesc
	surface  TextureHandle
	passes   []*pass
	executed bool
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{surface: -1}
}

// AddSurfaceTexture returns the handle of the frame's surface. Every call returns the
// same handle.
func (g *Graph) AddSurfaceTexture() TextureHandle {
	if g.surface < 0 {
		g.surface = TextureHandle(len(g.textures))
		g.textures = append(g.textures, TextureDesc{Label: "surface", Samples: SampleCountOne, surface: true})
	}
	return g.surface
}

// AddRenderTarget declares an intermediate texture.
func (g *Graph) AddRenderTarget(desc TextureDesc) TextureHandle {
	desc.surface = false
	if desc.Samples == 0 {
		desc.Samples = SampleCountOne
	}
	g.textures = append(g.textures, desc)
	return TextureHandle(len(g.textures) - 1)
}

// AddPass appends a pass. A pass that writes a texture also observes its previous
// contents, so read-modify-write passes only list the texture under writes.
func (g *Graph) AddPass(name string, reads, writes []TextureHandle, run PassFunc) {
	g.passes = append(g.passes, &pass{
		name:   name,
		reads:  slices.Clone(reads),
		writes: slices.Clone(writes),
		run:    run,
	})
}

// Desc returns the description of h.
func (g *Graph) Desc(h TextureHandle) (TextureDesc, bool) {
	if h < 0 || int(h) >= len(g.textures) {
		return TextureDesc{}, false
	}
	return g.textures[h], true
}

// Passes returns the names of all added passes in insertion order.
func (g *Graph) Passes() []string {
	names := make([]string, len(g.passes))
	for i, p := range g.passes {
		names[i] = p.name
	}
	return names
}

// Compile returns the names of the passes that will run, in execution order.
func (g *Graph) Compile() ([]string, error) {
	passes, err := g.compile()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(passes))
	for i, p := range passes {
		names[i] = p.name
	}
	return names, nil
}

// compile culls passes whose outputs never reach the surface and validates the rest.
// Passes keep their insertion order, which is a valid order because every dependency
// points backwards.
func (g *Graph) compile() ([]*pass, error) {
	for _, p := range g.passes {
		for _, h := range slices.Concat(p.reads, p.writes) {
			if _, ok := g.Desc(h); !ok {
				return nil, errors.Wrapf(ErrUnknownTexture, "handle %d in pass %q", h, p.name)
			}
		}
	}

	live := make(map[TextureHandle]bool)
	if g.surface >= 0 {
		live[g.surface] = true
	}

	keep := make([]bool, len(g.passes))
	for i := len(g.passes) - 1; i >= 0; i-- {
		p := g.passes[i]
		if !slices.ContainsFunc(p.writes, func(h TextureHandle) bool { return live[h] }) {
			continue
		}
		keep[i] = true
		for _, h := range p.reads {
			live[h] = true
		}
	}

	written := make(map[TextureHandle]bool)
	var order []*pass
	for i, p := range g.passes {
		if !keep[i] {
			continue
		}
		for _, h := range p.reads {
			if !written[h] && !g.textures[h].surface {
				return nil, errors.Wrapf(ErrUnwrittenTexture, "%q reads %q", p.name, g.textures[h].Label)
			}
		}
		for _, h := range p.writes {
			written[h] = true
		}
		order = append(order, p)
	}
	return order, nil
}

// Allocator resolves graph textures to backend images during execution.
type Allocator interface {
	Surface() any
	Texture(h TextureHandle, desc TextureDesc) any
}

// Execute compiles the graph and runs its passes against alloc. It is meant to be
// called by a Renderer's ExecuteGraph.
func (g *Graph) Execute(alloc Allocator, ready ReadyToken) error {
	if g.executed {
		return ErrGraphExecuted
	}
	g.executed = true

	passes, err := g.compile()
	if err != nil {
		return err
	}

	ctx := &PassContext{
		Ready:    ready,
		graph:    g,
		alloc:    alloc,
		resolved: make(map[TextureHandle]any, len(g.textures)),
	}
	for _, p := range passes {
		ctx.Pass = p.name
		if err := p.run(ctx); err != nil {
			return errors.Wrapf(err, "render: pass %q", p.name)
		}
	}
	return nil
}

// PassContext is handed to each PassFunc during execution.
type PassContext struct {
	Ready ReadyToken
	Pass  string

	graph    *Graph
	alloc    Allocator
	resolved map[TextureHandle]any
}

// Texture returns the backend image for h. Images are resolved once per execution.
func (c *PassContext) Texture(h TextureHandle) any {
	if tex, ok := c.resolved[h]; ok {
		return tex
	}

	desc, ok := c.graph.Desc(h)
	if !ok {
		return nil
	}

	var tex any
	if desc.surface {
		tex = c.alloc.Surface()
	} else {
		tex = c.alloc.Texture(h, desc)
	}
	c.resolved[h] = tex
	return tex
}

// Desc returns the description of h.
func (c *PassContext) Desc(h TextureHandle) TextureDesc {
	desc, _ := c.graph.Desc(h)
	return desc
}
