package application

import (
	"io"
	"log/slog"

	"github.com/bnema/focus-budget-cli/internal/ports"
)

type Option func(*Orchestrator)

func WithClock(clock ports.Clock) Option {
	return func(o *Orchestrator) {
		if clock != nil {
			o.clock = clock
		}
	}
}

func WithNumericSource(source ports.NumericSource) Option {
	return func(o *Orchestrator) {
		if source != nil {
			o.source = source
		}
	}
}

func WithObserver(observer ports.Observer) Option {
	return func(o *Orchestrator) {
		if observer != nil {
			o.observers = append(o.observers, observer)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStrict overrides the configured strict mode.
func WithStrict(strict bool) Option {
	return func(o *Orchestrator) {
		o.cfg.Strict = strict
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
