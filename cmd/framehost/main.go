// Command framehost runs a small bouncing-ball simulation through the frame
// orchestrator, either in an ebiten window with a Dear ImGui overlay or in the
// terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/framehost/app"
	ebitenhost "github.com/plus3/framehost/backend/ebiten"
	"github.com/plus3/framehost/backend/terminal"
	"github.com/plus3/framehost/ecs"
	"github.com/plus3/framehost/ecs/debugui"
)

const cellPixels = 8

func main() {
	backend := flag.String("backend", "terminal", "Host to run on: terminal or ebiten.")
	title := flag.String("title", "framehost", "Window title (ebiten only).")
	width := flag.Int("width", 1280, "Window width in pixels (ebiten only).")
	height := flag.Int("height", 720, "Window height in pixels (ebiten only).")
	workers := flag.Int("workers", 0, "Maximum number of systems running in parallel; 0 uses GOMAXPROCS.")
	balls := flag.Int("balls", 24, "Number of bouncing balls.")
	logLevel := flag.String("log", "info", "Log level: debug, info, warn or error.")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		log.Fatalf("Invalid log level %q: %v", *logLevel, err)
	}

	var err error
	switch *backend {
	case "terminal":
		// The screen belongs to the UI, so logs go to stderr only when asked for.
		logger := slog.New(slog.DiscardHandler)
		if level <= slog.LevelDebug {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		}
		err = runTerminal(logger, *workers, *balls)
	case "ebiten":
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		cfg := ebitenhost.Config{Title: *title, Width: *width, Height: *height, Resizable: true, Logger: logger}
		err = runEbiten(logger, cfg, *workers, *balls)
	default:
		err = fmt.Errorf("unknown backend %q", *backend)
	}
	if err != nil {
		log.Fatalf("framehost: %v", err)
	}
}

// build registers the shared systems and returns the orchestrator with its world
// populated.
func build(logger *slog.Logger, workers, balls int, world World, draw DrawFunc, extra ...ecs.System) (*app.Orchestrator, error) {
	registry := ecs.NewComponentRegistry()
	registerComponents(registry)
	debugui.RegisterDebugUIComponents(registry)

	builder := app.NewBuilder(registry, app.WithLogger(logger), app.WithWorkers(workers))
	builder.
		AddSystem(&CounterSystem{}).
		AddSystem(&MovementSystem{}).
		AddSystem(&BounceSystem{}).
		AddSystem(&DrawSystem{draw: draw}).
		AddSystem(&StatusSystem{})
	for _, system := range extra {
		builder.AddSystem(system)
	}

	o, err := builder.Build()
	if err != nil {
		return nil, err
	}

	storage := o.Storage()
	ecs.NewSingleton(storage, world)
	storage.Spawn(Counter{})
	spawnBalls(storage, world, balls)
	return o, nil
}

func runTerminal(logger *slog.Logger, workers, balls int) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}

	var host *terminal.Host
	draw := func(pos Position, glyph Glyph) {
		fg := tcell.NewRGBColor(int32(glyph.Color[0]), int32(glyph.Color[1]), int32(glyph.Color[2]))
		host.Scene().Submit(func(c *terminal.Canvas) {
			c.Set(int(pos.X), int(pos.Y), glyph.Rune, tcell.StyleDefault.Foreground(fg))
		})
	}

	// The terminal size is known once the screen is initialised; balls are kept
	// inside a conventional 80x24 area.
	o, err := build(logger, workers, balls, World{Width: 80, Height: 24}, draw)
	if err != nil {
		return err
	}
	host = terminal.NewHost(screen, o, terminal.Config{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return host.Run(ctx)
}

func runEbiten(logger *slog.Logger, cfg ebitenhost.Config, workers, balls int) error {
	var host *ebitenhost.Host
	draw := func(pos Position, glyph Glyph) {
		c := color.RGBA{R: glyph.Color[0], G: glyph.Color[1], B: glyph.Color[2], A: 255}
		host.Scene().Submit(func(dst *ebiten.Image) {
			vector.DrawFilledCircle(dst, float32(pos.X*cellPixels), float32(pos.Y*cellPixels), cellPixels/2, c, true)
		})
	}

	stats := &debugui.PerformanceStatsSystem{}
	world := World{Width: float64(cfg.Width / cellPixels), Height: float64(cfg.Height / cellPixels)}
	o, err := build(logger, workers, balls, world, draw, &debugui.ImguiSystem{}, stats)
	if err != nil {
		return err
	}
	stats.Schedule = o.Schedule()

	storage := o.Storage()
	ecs.NewSingleton[debugui.ImguiInputState](storage)
	debugui.SpawnDebugUI(storage)
	storage.Spawn(debugui.ImguiItem{Render: func() {
		imgui.SetNextWindowPosV(imgui.NewVec2(10, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
		if imgui.BeginV("framehost", nil, imgui.WindowFlagsAlwaysAutoResize) {
			var counter *Counter
			for item := range ecs.NewView[struct{ *Counter }](storage).Values() {
				counter = item.Counter
			}
			if counter != nil {
				imgui.Text(fmt.Sprintf("Sweeps: %d", counter.Value))
			}
			imgui.Text(fmt.Sprintf("Frame: %d", o.FrameTime().Frame))
		}
		imgui.End()
	}})

	host = ebitenhost.NewHost(o, cfg)
	return host.Run()
}
