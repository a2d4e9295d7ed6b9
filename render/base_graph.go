package render

import "github.com/pkg/errors"

// ErrUnsupportedSampleCount is returned when a scene target asks for more samples than
// the backend can resolve.
var ErrUnsupportedSampleCount = errors.New("render: unsupported sample count")

const (
	// HDRTarget labels the scene target. Backends may keep its image across frames.
	HDRTarget = "scene.hdr"

	PassSkybox  = "skybox"
	PassClear   = "scene.clear"
	PassOpaque  = "scene.opaque"
	PassTonemap = "tonemap"
)

// BaseGraph is the default scene sub-graph: background, opaque scene, tonemap onto the
// surface.
type BaseGraph struct {
	MaxSamples SampleCount
}

// AddToGraph adds the scene passes to g. The caller must hold the routines lock until
// the graph has executed. The returned handle is the graph's surface.
func (b BaseGraph) AddToGraph(
	g *Graph,
	ready ReadyToken,
	routines *Routines,
	skybox Skybox,
	resolution Resolution,
	samples SampleCount,
	clear Color,
) (TextureHandle, error) {
	maxSamples := b.MaxSamples
	if maxSamples == 0 {
		maxSamples = SampleCountOne
	}
	if samples != SampleCountOne && samples != SampleCountFour || samples > maxSamples {
		return -1, errors.Wrapf(ErrUnsupportedSampleCount, "%d samples", samples)
	}
	if routines == nil || routines.Scene == nil || routines.Tonemap == nil {
		return -1, errors.New("render: scene and tonemap routines are required")
	}

	scene, tonemap := routines.Scene, routines.Tonemap
	hdr := g.AddRenderTarget(TextureDesc{
		Label:      HDRTarget,
		Resolution: resolution,
		Samples:    samples,
	})
	targets := []TextureHandle{hdr}

	if skybox != nil {
		g.AddPass(PassSkybox, nil, targets, func(ctx *PassContext) error {
			return skybox.Draw(ctx, hdr)
		})
	} else {
		g.AddPass(PassClear, nil, targets, func(ctx *PassContext) error {
			return scene.Clear(ctx, hdr, clear)
		})
	}

	g.AddPass(PassOpaque, nil, targets, func(ctx *PassContext) error {
		return scene.Draw(ctx, hdr)
	})

	surface := g.AddSurfaceTexture()
	g.AddPass(PassTonemap, targets, []TextureHandle{surface}, func(ctx *PassContext) error {
		return tonemap.Apply(ctx, hdr, surface)
	})
	return surface, nil
}
