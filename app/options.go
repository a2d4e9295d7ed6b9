package app

import (
	"log/slog"

	"github.com/plus3/framehost/render"
)

type config struct {
	logger     *slog.Logger
	clock      Clock
	workers    int
	clearColor render.Color
}

func defaultConfig() config {
	return config{
		logger:     slog.Default(),
		clock:      SystemClock{},
		clearColor: render.Color{R: 0.1, G: 0.1, B: 0.12, A: 1},
	}
}

// Option configures a Builder.
type Option func(*config)

// WithLogger sets the logger for lifecycle and frame failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock replaces the frame clock.
func WithClock(clock Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithWorkers bounds the number of systems run in parallel. Zero keeps the schedule
// default of GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithClearColor sets the background of the scene pass.
func WithClearColor(color render.Color) Option {
	return func(c *config) {
		c.clearColor = color
	}
}
