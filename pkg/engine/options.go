package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/goliatone/go-uischema/pkg/evolution"
	"github.com/goliatone/go-uischema/pkg/validation"
)

// Option customises the engine.
type Option func(*Engine)

// WithConfig replaces the default configuration. The configuration is
// validated by New.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithLogger injects a structured logger. The engine is silent by default.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics registers the engine collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.metricsRegisterer = reg
	}
}

// WithClock overrides the time source used for metadata stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator overrides how documents without an id are named.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithListenerErrorHandler receives every isolated listener failure.
func WithListenerErrorHandler(fn func(*ListenerError)) Option {
	return func(e *Engine) {
		e.onListenerError = fn
	}
}

// WithValidator injects a pre-built validator. By default the engine builds
// one from the registry and the configured sanitiser limits.
func WithValidator(v *validation.Validator) Option {
	return func(e *Engine) {
		e.validator = v
	}
}

// WithApplier injects a pre-built evolution applier.
func WithApplier(a *evolution.Applier) Option {
	return func(e *Engine) {
		e.applier = a
	}
}
