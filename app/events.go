package app

import "fmt"

// EventKind classifies a platform event.
type EventKind uint8

const (
	// Other covers every event the orchestrator only forwards to the UI bridge.
	Other EventKind = iota
	CloseRequested
	// FramePacingTick is sent once per iteration of the host's idle loop.
	FramePacingTick
	RedrawRequested
)

func (k EventKind) String() string {
	switch k {
	case CloseRequested:
		return "CloseRequested"
	case FramePacingTick:
		return "FramePacingTick"
	case RedrawRequested:
		return "RedrawRequested"
	default:
		return "Other"
	}
}

// Event is one platform event. Payload carries the host specific value (an input
// event, a resize) for the UI bridge.
type Event struct {
	Kind    EventKind
	Payload any
}

// LoopAction tells the host what to do after an event was handled.
type LoopAction uint8

const (
	// ContinueWait blocks until the platform delivers the next event.
	ContinueWait LoopAction = iota
	// ContinuePoll keeps the loop spinning without waiting for events.
	ContinuePoll
	Exit
)

func (a LoopAction) String() string {
	switch a {
	case ContinueWait:
		return "ContinueWait"
	case ContinuePoll:
		return "ContinuePoll"
	case Exit:
		return "Exit"
	default:
		return fmt.Sprintf("LoopAction(%d)", uint8(a))
	}
}

// State is the lifecycle state of an Orchestrator.
type State uint8

const (
	StateUninitialized State = iota
	StateReady
	StateUpdating
	StateRendering
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateReady:
		return "Ready"
	case StateUpdating:
		return "Updating"
	case StateRendering:
		return "Rendering"
	case StateTerminated:
		return "Terminated"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}
