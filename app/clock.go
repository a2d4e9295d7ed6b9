package app

import "time"

// Clock is the source of frame timing.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the monotonic wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
