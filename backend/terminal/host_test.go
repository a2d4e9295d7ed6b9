package terminal_test

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/framehost/app"
	"github.com/plus3/framehost/backend/terminal"
	"github.com/plus3/framehost/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frameCounter struct {
	UI     ecs.Singleton[app.UI] `ecs:"read"`
	frames *atomic.Int64
	scene  *terminal.Scene
}

func (c *frameCounter) Execute(frame *ecs.UpdateFrame) {
	n := c.frames.Add(1)
	if f, ok := c.UI.Get().Frame.(*terminal.Frame); ok {
		f.Text("frame %d", n)
	}
	c.scene.Submit(func(canvas *terminal.Canvas) {
		canvas.Set(5, 5, '@', tcell.StyleDefault)
	})
}

func newHost(t *testing.T) (*terminal.Host, tcell.SimulationScreen, *app.Orchestrator, *atomic.Int64) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	screen := tcell.NewSimulationScreen("UTF-8")
	screen.SetSize(40, 10)

	frames := &atomic.Int64{}
	counter := &frameCounter{frames: frames}
	b := app.NewBuilder(nil, app.WithLogger(logger))
	b.AddSystem(counter)
	o, err := b.Build()
	require.NoError(t, err)

	host := terminal.NewHost(screen, o, terminal.Config{
		FrameInterval: 2 * time.Millisecond,
		Logger:        logger,
	})
	counter.scene = host.Scene()
	return host, screen, o, frames
}

func TestHostRunsFramesUntilEscape(t *testing.T) {
	host, screen, o, frames := newHost(t)

	done := make(chan error, 1)
	go func() { done <- host.Run(context.Background()) }()

	require.Eventually(t, func() bool { return frames.Load() >= 5 }, 5*time.Second, time.Millisecond)

	var runErr error
	require.Eventually(t, func() bool {
		_ = screen.PostEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
		select {
		case runErr = <-done:
			return true
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, runErr)
	assert.Equal(t, app.StateTerminated, o.State())

	surface := host.Renderer().Surface()
	require.NotNil(t, surface)
	assert.Equal(t, 40, surface.Width)
	assert.Equal(t, 'f', surface.At(0, 0).Rune)
	assert.Equal(t, '@', surface.At(5, 5).Rune)
	assert.GreaterOrEqual(t, o.FrameTime().Frame, uint64(5))
}

func TestHostStopsOnCancel(t *testing.T) {
	host, _, o, frames := newHost(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- host.Run(ctx) }()

	require.Eventually(t, func() bool { return frames.Load() >= 1 }, 5*time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("host did not stop after cancellation")
	}
	assert.Equal(t, app.StateTerminated, o.State())
}
