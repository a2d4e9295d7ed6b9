package ebiten

import (
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/errors"
	"github.com/plus3/framehost/render"
)

// Scene is the scene routine of the ebiten host. Systems submit draw calls during the
// update phase; they are replayed onto the scene target when the graph executes.
type Scene struct {
	mu    sync.Mutex
	queue []func(dst *ebiten.Image)
}

func NewScene() *Scene {
	return &Scene{}
}

// Submit queues draw for the next frame. It is safe to call from systems running in
// parallel.
func (s *Scene) Submit(draw func(dst *ebiten.Image)) {
	s.mu.Lock()
	s.queue = append(s.queue, draw)
	s.mu.Unlock()
}

func (s *Scene) Clear(ctx *render.PassContext, dst render.TextureHandle, c render.Color) error {
	img, err := imageOf(ctx, dst)
	if err != nil {
		return err
	}
	img.Fill(toRGBA(c))
	return nil
}

func (s *Scene) Draw(ctx *render.PassContext, dst render.TextureHandle) error {
	img, err := imageOf(ctx, dst)
	if err != nil {
		return err
	}

	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, draw := range queue {
		draw(img)
	}
	return nil
}

// Tonemap copies the scene target onto the surface, scaled by Exposure.
type Tonemap struct {
	Exposure float32
}

func (t Tonemap) Apply(ctx *render.PassContext, src, dst render.TextureHandle) error {
	from, err := imageOf(ctx, src)
	if err != nil {
		return err
	}
	to, err := imageOf(ctx, dst)
	if err != nil {
		return err
	}

	exposure := t.Exposure
	if exposure <= 0 {
		exposure = 1
	}
	op := &ebiten.DrawImageOptions{}
	op.ColorScale.Scale(exposure, exposure, exposure, 1)
	to.DrawImage(from, op)
	return nil
}

func imageOf(ctx *render.PassContext, h render.TextureHandle) (*ebiten.Image, error) {
	img, ok := ctx.Texture(h).(*ebiten.Image)
	if !ok || img == nil {
		return nil, errors.Errorf("texture %q is not an ebiten image", ctx.Desc(h).Label)
	}
	return img, nil
}

func toRGBA(c render.Color) color.RGBA {
	r, g, b, a := c.RGBA8()
	return color.RGBA{R: r, G: g, B: b, A: a}
}
