package main

import (
	"math/rand/v2"
	"time"

	"github.com/plus3/framehost/app"
	"github.com/plus3/framehost/backend/terminal"
	"github.com/plus3/framehost/ecs"
)

type Position struct {
	X, Y float64
}

type Velocity struct {
	DX, DY float64
}

type Glyph struct {
	Rune  rune
	Color [3]uint8
}

// Counter counts simulation sweeps.
type Counter struct {
	Value int
}

// World is the size of the simulated area in cells.
type World struct {
	Width, Height float64
}

func registerComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Glyph](registry)
	ecs.RegisterComponent[Counter](registry)
}

var palette = [][3]uint8{
	{255, 179, 186},
	{179, 229, 252},
	{255, 223, 186},
	{186, 255, 201},
	{217, 186, 255},
}

func spawnBalls(storage *ecs.Storage, world World, n int) {
	for i := range n {
		storage.Spawn(
			Position{X: rand.Float64() * world.Width, Y: rand.Float64() * world.Height},
			Velocity{DX: rand.Float64()*16 - 8, DY: rand.Float64()*8 - 4},
			Glyph{Rune: 'o', Color: palette[i%len(palette)]},
		)
	}
}

type CounterSystem struct {
	Counters ecs.Query[struct{ *Counter }]
}

func (s *CounterSystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Counters.Values() {
		item.Counter.Value++
	}
}

type MovementSystem struct {
	Entities ecs.Query[struct {
		*Position
		*Velocity `ecs:"read"`
	}]
	FrameTime ecs.Singleton[app.FrameTime] `ecs:"read"`
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	dt := s.FrameTime.Get().Delta.Seconds()
	for item := range s.Entities.Values() {
		item.Position.X += item.Velocity.DX * dt
		item.Position.Y += item.Velocity.DY * dt
	}
}

// BounceSystem reflects entities off the world edges.
type BounceSystem struct {
	Entities ecs.Query[struct {
		*Position `ecs:"read"`
		*Velocity
	}]
	World ecs.Singleton[World] `ecs:"read"`
}

func (s *BounceSystem) Execute(frame *ecs.UpdateFrame) {
	world := s.World.Get()
	for item := range s.Entities.Values() {
		if (item.Position.X < 0 && item.Velocity.DX < 0) || (item.Position.X >= world.Width && item.Velocity.DX > 0) {
			item.Velocity.DX = -item.Velocity.DX
		}
		if (item.Position.Y < 0 && item.Velocity.DY < 0) || (item.Position.Y >= world.Height && item.Velocity.DY > 0) {
			item.Velocity.DY = -item.Velocity.DY
		}
	}
}

// DrawFunc puts one glyph on the backend's scene.
type DrawFunc func(pos Position, glyph Glyph)

type DrawSystem struct {
	Entities ecs.Query[struct {
		*Position `ecs:"read"`
		*Glyph    `ecs:"read"`
	}] `ecs:"read"`
	draw DrawFunc
}

func (s *DrawSystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Entities.Values() {
		s.draw(*item.Position, *item.Glyph)
	}
}

// StatusSystem writes the sweep counter and frame timing into the text overlay.
type StatusSystem struct {
	Counters  ecs.Query[struct{ *Counter }] `ecs:"read"`
	FrameTime ecs.Singleton[app.FrameTime]  `ecs:"read"`
	UI        ecs.Singleton[app.UI]         `ecs:"read"`
}

func (s *StatusSystem) Execute(frame *ecs.UpdateFrame) {
	text, ok := s.UI.Get().Frame.(*terminal.Frame)
	if !ok {
		return
	}
	ft := s.FrameTime.Get()
	text.Text("frame %d  dt %5.1fms  elapsed %s", ft.Frame, ft.Delta.Seconds()*1000, ft.Elapsed.Truncate(time.Millisecond))
	for item := range s.Counters.Values() {
		text.Text("sweeps %d", item.Counter.Value)
	}
	text.Text("esc quits, F1 hides this")
}
