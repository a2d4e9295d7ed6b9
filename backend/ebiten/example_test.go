package ebiten_test

import (
	"image/color"
	"log"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/framehost/app"
	ebitenhost "github.com/plus3/framehost/backend/ebiten"
	"github.com/plus3/framehost/ecs"
	"github.com/plus3/framehost/ecs/debugui"
)

func Example() {
	registry := ecs.NewComponentRegistry()
	debugui.RegisterDebugUIComponents(registry)

	builder := app.NewBuilder(registry)
	builder.AddSystem(&debugui.ImguiSystem{})
	o, err := builder.Build()
	if err != nil {
		log.Fatal(err)
	}

	// Imgui windows are plain entities; ImguiSystem renders them while a UI frame is open.
	o.Storage().Spawn(debugui.ImguiItem{
		Render: func() {
			imgui.Begin("Debug Window")
			imgui.Text("Hello from the frame orchestrator!")
			imgui.End()
		},
	})

	host := ebitenhost.NewHost(o, ebitenhost.Config{Title: "framehost", Width: 1280, Height: 720})

	// Scene draws are queued from any goroutine and replayed by the opaque pass.
	host.Scene().Submit(func(dst *ebiten.Image) {
		dst.Fill(color.Black)
	})

	if err := host.Run(); err != nil {
		log.Fatal(err)
	}
}
