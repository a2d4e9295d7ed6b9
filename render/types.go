// Package render describes a frame as a graph of passes over textures. The graph is
// backend agnostic: backends resolve textures to their own image types and run the
// passes in the order the graph compiles to.
package render

import "fmt"

// Resolution is a render target size in pixels (or cells for text backends).
type Resolution struct {
	Width, Height uint32
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Empty reports whether either dimension is zero.
func (r Resolution) Empty() bool {
	return r.Width == 0 || r.Height == 0
}

// SampleCount is the MSAA sample count of a render target.
type SampleCount uint8

const (
	SampleCountOne  SampleCount = 1
	SampleCountFour SampleCount = 4
)

// Color is a linear RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// RGBA8 converts c to 8-bit channels, clamping out of range components.
func (c Color) RGBA8() (r, g, b, a uint8) {
	conv := func(v float32) uint8 {
		return uint8(min(max(v, 0), 1)*255 + 0.5)
	}
	return conv(c.R), conv(c.G), conv(c.B), conv(c.A)
}

// SurfaceFormat names the pixel format of the presentable surface.
type SurfaceFormat string

const (
	FormatRGBA8UnormSrgb SurfaceFormat = "rgba8unorm-srgb"
	FormatTerminalCells  SurfaceFormat = "terminal-cells"
)

// ReadyToken proves a renderer's frame resources are available. A graph executed with a
// token must be executed by the renderer that issued it, for the frame it was issued.
type ReadyToken struct {
	Frame uint64
}

// CommandBuffer is an opaque batch of backend work queued before graph execution.
type CommandBuffer interface {
	Label() string
}

// Target is the presentable surface image of a frame. Its concrete type belongs to the
// backend.
type Target any
