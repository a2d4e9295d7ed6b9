package app

import "time"

// FrameTime is the timing resource published to systems.
type FrameTime struct {
	// Delta is the time between the last two pacing ticks.
	Delta time.Duration
	// Elapsed is the time since Setup.
	Elapsed time.Duration
	// Frame counts redraws, starting at 1 for the first frame.
	Frame uint64
}

// UI is the resource holding the UI frame open during the update phase. Frame is nil
// outside of it. Systems must not call into the UI from worker goroutines; they defer
// UI work with Commands.Defer, which runs on the orchestrator goroutine.
type UI struct {
	Frame UIFrame
}
