package dccthread

import "time"

// schedulerOptions holds configuration resolved at Init time.
type schedulerOptions struct {
	stackSize      int
	quantum        time.Duration
	logger         Logger
	metricsEnabled bool
}

const defaultStackSize = 64 * 1024

// Option configures the scheduler created by Init.
type Option interface {
	apply(*schedulerOptions) error
}

type optionFunc struct {
	fn func(*schedulerOptions) error
}

func (o *optionFunc) apply(opts *schedulerOptions) error { return o.fn(opts) }

// WithStackSize overrides the per-thread stack arena size (STACK_SIZE,
// §6). It must be positive; it is enforced as an allocation-time
// constraint only, see SPEC_FULL.md §1.
func WithStackSize(bytes int) Option {
	return &optionFunc{func(opts *schedulerOptions) error {
		if bytes <= 0 {
			return wrapFatal(ErrAlloc, "WithStackSize requires a positive size", nil)
		}
		opts.stackSize = bytes
		return nil
	}}
}

// WithQuantum overrides QUANTUM, the preemption timer's period (§4.2).
func WithQuantum(d time.Duration) Option {
	return &optionFunc{func(opts *schedulerOptions) error {
		if d <= 0 {
			return wrapFatal(ErrTimer, "WithQuantum requires a positive duration", nil)
		}
		opts.quantum = d
		return nil
	}}
}

// WithLogger installs a Logger the scheduler will report to. The
// default is a no-op logger.
func WithLogger(logger Logger) Option {
	return &optionFunc{func(opts *schedulerOptions) error {
		if logger != nil {
			opts.logger = logger
		}
		return nil
	}}
}

// WithMetrics enables atomic-counter bookkeeping retrievable via
// Metrics().
func WithMetrics(enabled bool) Option {
	return &optionFunc{func(opts *schedulerOptions) error {
		opts.metricsEnabled = enabled
		return nil
	}}
}

func resolveOptions(opts []Option) (*schedulerOptions, error) {
	cfg := &schedulerOptions{
		stackSize: defaultStackSize,
		quantum:   DefaultQuantum,
		logger:    NewNoOpLogger(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
