package app

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/plus3/framehost/ecs"
)

var (
	ErrSetupFailed = errors.New("app: setup failed")
	ErrFramePrep   = errors.New("app: frame preparation failed")
	// ErrAlreadyBuilt is shared with ecs so either builder's error matches.
	ErrAlreadyBuilt = ecs.ErrAlreadyBuilt
	ErrNotReady     = errors.New("app: orchestrator is not set up")
	ErrAlreadySetup = errors.New("app: orchestrator is already set up")
	ErrTerminated   = errors.New("app: orchestrator is terminated")
	ErrNoSurface    = errors.New("app: no surface to present to")
)

// SetupError reports which step of Setup failed.
type SetupError struct {
	Step string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("app: setup failed: %s: %v", e.Step, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

func (e *SetupError) Is(target error) bool {
	return target == ErrSetupFailed
}

// FramePrepError reports a UI frame that could not be opened. The bridge is assumed
// to be broken, so hosts treat it as fatal.
type FramePrepError struct {
	Frame uint64
	Err   error
}

func (e *FramePrepError) Error() string {
	return fmt.Sprintf("app: frame %d: preparing UI frame: %v", e.Frame, e.Err)
}

func (e *FramePrepError) Unwrap() error {
	return e.Err
}

func (e *FramePrepError) Is(target error) bool {
	return target == ErrFramePrep
}
