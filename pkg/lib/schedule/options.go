package schedule

import (
	"log/slog"
	"time"
)

// DefaultShutdownGrace is how long terminated children get to exit before
// they are killed.
const DefaultShutdownGrace = 5 * time.Second

// Options holds configuration options for the [Scheduler].
type Options struct {
	Logger        *slog.Logger
	Hooks         []Hook
	ShutdownGrace time.Duration
}

// Option is a function that configures [Options].
type Option func(*Options)

// WithLogger sets the logger used by the [Scheduler].
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithHook registers a hook notified of rotation events. Hooks registered
// earlier are called first.
func WithHook(hook Hook) Option {
	return func(o *Options) {
		o.Hooks = append(o.Hooks, hook)
	}
}

// WithShutdownGrace sets how long the [Scheduler] waits after forwarding a
// termination request before killing whatever is left.
func WithShutdownGrace(d time.Duration) Option {
	return func(o *Options) {
		o.ShutdownGrace = d
	}
}
