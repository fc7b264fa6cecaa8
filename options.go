package gpubridge

import (
	"log/slog"
	"time"

	"github.com/gogpu/gpubridge/backend"
	"github.com/gogpu/gpubridge/translate"
)

// Option configures a Registry during creation.
//
// Example:
//
//	// Highest-priority backend that initializes
//	reg, err := gpubridge.New()
//
//	// CPU backend with Metal enum values, for tests
//	reg, err := gpubridge.New(
//	    gpubridge.WithBackendName(backend.BackendSoftware),
//	    gpubridge.WithDialect(translate.Metal),
//	)
type Option func(*options)

type options struct {
	backend       backend.Backend
	backendName   string
	dialect       translate.Dialect
	logger        *slog.Logger
	events        EventHandler
	clock         func() time.Time
	textCacheSize int
	renderWorkers int
}

func defaultOptions() options {
	return options{
		clock: time.Now,
	}
}

// WithBackend uses b instead of selecting one from the backend registry.
// New calls b.Init; Close calls b.Close.
func WithBackend(b backend.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithBackendName selects a registered backend by name, for example
// backend.BackendNative. Init failures are returned rather than falling
// through to the next backend.
func WithBackendName(name string) Option {
	return func(o *options) {
		o.backendName = name
	}
}

// WithDialect overrides the backend's dialect. Only the software backend
// honors it, since it stores bytes verbatim; GPU backends ignore the
// override and log a warning.
func WithDialect(d translate.Dialect) Option {
	return func(o *options) {
		o.dialect = d
	}
}

// WithLogger sets a logger for this registry only. Without it the registry
// logs through [Logger].
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithEventHandler receives registry events such as animation completion.
// The handler runs on the goroutine that caused the event, after the
// registry lock is released.
func WithEventHandler(h EventHandler) Option {
	return func(o *options) {
		o.events = h
	}
}

// WithClock replaces time.Now for command timestamps and Tick.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithTextCacheSize bounds the number of cached text measurements.
// 0 selects the default.
func WithTextCacheSize(n int) Option {
	return func(o *options) {
		o.textCacheSize = n
	}
}

// WithRenderWorkers sets how many goroutines rasterize canvas layers.
// 0 selects GOMAXPROCS.
func WithRenderWorkers(n int) Option {
	return func(o *options) {
		o.renderWorkers = n
	}
}
