package render

import "sync"

// SceneRoutine draws the 3D scene into an intermediate target.
type SceneRoutine interface {
	Clear(ctx *PassContext, dst TextureHandle, color Color) error
	Draw(ctx *PassContext, dst TextureHandle) error
}

// TonemapRoutine resolves an HDR target onto the surface.
type TonemapRoutine interface {
	Apply(ctx *PassContext, src, dst TextureHandle) error
}

// Skybox fills the background of the scene target. It replaces the clear.
type Skybox interface {
	Draw(ctx *PassContext, dst TextureHandle) error
}

// Routines is the registry of render routines shared between the host and the frame
// orchestrator. Hold the lock while building and executing a graph that uses them.
type Routines struct {
	mu      sync.Mutex
	Scene   SceneRoutine
	Tonemap TonemapRoutine
}

func NewRoutines(scene SceneRoutine, tonemap TonemapRoutine) *Routines {
	return &Routines{Scene: scene, Tonemap: tonemap}
}

// Lock acquires the registry and returns the matching unlock function.
func (r *Routines) Lock() (unlock func()) {
	r.mu.Lock()
	return r.mu.Unlock
}
