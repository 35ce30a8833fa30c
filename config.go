package threadpool

import (
	"fmt"
	"log/slog"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/threadpool/metrics"
)

// FaultPolicy decides what a worker does after a job panics.
type FaultPolicy int

const (
	// FaultStopsWorker terminates the worker whose job panicked. The pool keeps
	// running with one worker less; it never replaces the lost worker.
	FaultStopsWorker FaultPolicy = iota
	// FaultRecover logs the panic and keeps the worker running.
	FaultRecover
)

func (p FaultPolicy) String() string {
	switch p {
	case FaultStopsWorker:
		return "stop-worker"
	case FaultRecover:
		return "recover"
	default:
		return fmt.Sprintf("FaultPolicy(%d)", int(p))
	}
}

// config holds Pool configuration.
type config struct {
	// Size is the number of workers. It must be positive.
	Size uint

	// Name is attached to every log line and metric of the pool.
	// Default: "threadpool".
	Name string

	// Logger receives the pool's diagnostics.
	// Default: slog.Default().
	Logger *slog.Logger

	// FaultPolicy selects the reaction to a panicking job.
	// Default: FaultStopsWorker.
	FaultPolicy FaultPolicy

	// Metrics constructs the pool's instruments.
	// Default: metrics.NoopProvider.
	Metrics metrics.Provider
}

func defaultConfig() config {
	return config{
		Name:        Namespace,
		Logger:      slog.Default(),
		FaultPolicy: FaultStopsWorker,
		Metrics:     metrics.NewNoopProvider(),
	}
}

// validateConfig checks the invariants options cannot check on their own.
func validateConfig(cfg *config) error {
	if cfg.Size == 0 {
		return errorc.With(ErrInvalidConfig, errorc.String("", "pool size must be greater than zero"))
	}
	return nil
}

// Option configures a Pool. Options return an error on invalid input.
type Option func(*config) error

// WithName sets the pool name used in logs and metric attributes.
func WithName(name string) Option {
	return func(cfg *config) error {
		if name == "" {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithName requires a non-empty name"))
		}
		cfg.Name = name
		return nil
	}
}

// WithLogger sets the structured logger for worker and teardown diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithLogger requires a non-nil logger"))
		}
		cfg.Logger = l
		return nil
	}
}

// WithFaultPolicy selects how workers react to panicking jobs.
func WithFaultPolicy(p FaultPolicy) Option {
	return func(cfg *config) error {
		switch p {
		case FaultStopsWorker, FaultRecover:
			cfg.FaultPolicy = p
			return nil
		default:
			return errorc.With(ErrInvalidConfig, errorc.String("fault policy", p.String()))
		}
	}
}

// WithMetrics records pool instruments into the given provider.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMetrics requires a non-nil provider"))
		}
		cfg.Metrics = p
		return nil
	}
}
