package render

import "log/slog"

// Flips is the default number of interleaved scan groups.
const Flips = 24

// Option configures a Renderer.
//
// Example:
//
//	r := render.New(render.WithWorkers(runtime.NumCPU()))
type Option func(*options)

type options struct {
	flips   int
	workers int
	logger  *slog.Logger
}

func defaultOptions() options {
	return options{
		flips:   Flips,
		workers: 1,
	}
}

// WithFlips sets the number of scan groups. Values below 1 are ignored.
func WithFlips(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.flips = n
		}
	}
}

// WithWorkers sets how many goroutines share the rows of a scan group.
// The default of 1 computes everything on the calling goroutine.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.workers = n
		}
	}
}

// WithLogger makes the renderer log to l instead of the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
