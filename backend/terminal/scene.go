package terminal

import (
	"sync"

	"github.com/plus3/framehost/render"
)

// Scene is the scene routine of the terminal host. Draw calls submitted during the
// update phase are replayed onto the scene canvas.
type Scene struct {
	mu    sync.Mutex
	queue []func(c *Canvas)
}

func NewScene() *Scene {
	return &Scene{}
}

// Submit queues draw for the next frame. Safe for concurrent use.
func (s *Scene) Submit(draw func(c *Canvas)) {
	s.mu.Lock()
	s.queue = append(s.queue, draw)
	s.mu.Unlock()
}

func (s *Scene) Clear(ctx *render.PassContext, dst render.TextureHandle, color render.Color) error {
	c, err := canvasOf(ctx, dst)
	if err != nil {
		return err
	}
	c.Fill(background(color))
	return nil
}

func (s *Scene) Draw(ctx *render.PassContext, dst render.TextureHandle) error {
	c, err := canvasOf(ctx, dst)
	if err != nil {
		return err
	}

	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, draw := range queue {
		draw(c)
	}
	return nil
}

// Tonemap copies the scene canvas onto the surface.
type Tonemap struct{}

func (Tonemap) Apply(ctx *render.PassContext, src, dst render.TextureHandle) error {
	from, err := canvasOf(ctx, src)
	if err != nil {
		return err
	}
	to, err := canvasOf(ctx, dst)
	if err != nil {
		return err
	}
	to.Blit(from)
	return nil
}
