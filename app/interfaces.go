package app

import "github.com/plus3/framehost/render"

// Window is the platform window the orchestrator drives.
type Window interface {
	// ScaleFactor is the ratio of physical to logical pixels.
	ScaleFactor() float64
	RequestRedraw()
}

// DPIMode selects how the UI bridge maps the window scale factor onto the UI.
type DPIMode uint8

const (
	DPIModeDefault DPIMode = iota
	DPIModeRounded
	DPIModeLocked
)

// FontConfig describes a font added to the UI context.
type FontConfig struct {
	SizePixels  float32
	OversampleH int
	OversampleV int
	PixelSnapH  bool
}

// UIContext is the immediate-mode UI state. It is used from the orchestrator goroutine
// only.
type UIContext interface {
	DisableIniFile()
	SetFontGlobalScale(scale float32)
	AddDefaultFont(cfg FontConfig) error
	SetDeltaTime(seconds float32)
	Destroy()
}

// UIBridge feeds platform events into the UI context and brackets UI frames.
type UIBridge interface {
	Attach(window Window, mode DPIMode) error
	Forward(window Window, event Event)
	// BeginFrame fails when the bridge is in an invalid state, for example when a
	// frame is already open.
	BeginFrame(window Window) (UIFrame, error)
	EndFrame(frame UIFrame, window Window)
	Detach()
}

// DrawData is the render-ready output of a UI frame. Its concrete type belongs to the
// toolkit.
type DrawData any

// UIFrame is an open UI frame. Render is valid once EndFrame has been called.
type UIFrame interface {
	Render() DrawData
}

// OverlayRoutine draws UI output on top of the surface.
type OverlayRoutine interface {
	AddToGraph(g *render.Graph, data DrawData, surface render.TextureHandle)
	Release()
}

// UIToolkit creates the UI side of a session.
type UIToolkit interface {
	NewContext() (UIContext, error)
	NewBridge(ctx UIContext) (UIBridge, error)
	NewOverlayRoutine(renderer render.Renderer, ctx UIContext, format render.SurfaceFormat) (OverlayRoutine, error)
}

// SetupInfo is what a host hands to Setup once its window and renderer exist.
type SetupInfo struct {
	Window        Window
	Renderer      render.Renderer
	Routines      *render.Routines
	SurfaceFormat render.SurfaceFormat
	Toolkit       UIToolkit
}

// FrameContext is what a host hands to HandleEvent with every event.
type FrameContext struct {
	Window     Window
	Renderer   render.Renderer
	Routines   *render.Routines
	Surface    render.Target
	Resolution render.Resolution
}
