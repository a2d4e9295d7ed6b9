// Package debugui provides immediate-mode GUI integration for ECS applications using Dear ImGui.
// It manages ImGui rendering and input state through ECS components and systems.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/framehost/app"
	"github.com/plus3/framehost/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks Dear ImGui's input capture state as a singleton component.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

var captureInputState = func(state *ImguiInputState) {
	io := imgui.CurrentIO()
	state.WantCaptureMouse = io.WantCaptureMouse()
	state.WantCaptureKeyboard = io.WantCaptureKeyboard()
}

// ImguiSystem defers the render function of every ImguiItem while a UI frame is open.
// ImGui is not thread safe, so all ImGui calls, including the input state refresh,
// happen when the commands are flushed on the orchestrator goroutine.
type ImguiSystem struct {
	Items      ecs.Query[struct{ *ImguiItem }] `ecs:"read"`
	UI         ecs.Singleton[app.UI]           `ecs:"read"`
	InputState ecs.Singleton[ImguiInputState]
}

func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	if i.UI.Get() == nil || i.UI.Get().Frame == nil {
		return
	}

	if state := i.InputState.Get(); state != nil {
		frame.Commands.Defer(func() { captureInputState(state) })
	}

	for item := range i.Items.Values() {
		if item.ImguiItem.Render != nil {
			frame.Commands.Defer(item.ImguiItem.Render)
		}
	}
}
