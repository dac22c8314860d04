package vcedit

import "log/slog"

// Option is a functional option for configuring a View.
type Option func(*viewConfig)

type viewConfig struct {
	schema *Schema
	sched  Scheduler
	logger *slog.Logger
}

func defaultViewConfig() viewConfig {
	return viewConfig{
		schema: DefaultSchema(),
		logger: discardLogger(),
	}
}

// WithSchema sets the block schema. The default is DefaultSchema().
func WithSchema(s *Schema) Option {
	return func(c *viewConfig) {
		if s != nil {
			c.schema = s
		}
	}
}

// WithScheduler sets the scheduler used for deferred tree flushes and syncs.
// The default is a new Loop, available through View.Loop.
func WithScheduler(s Scheduler) Option {
	return func(c *viewConfig) {
		c.sched = s
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *viewConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ResolveOption configures a single Resolve call.
type ResolveOption func(*resolveConfig)

type resolveConfig struct {
	render bool
}

// WithoutRender applies the deltas to the model only. The tree is assumed to
// already reflect them.
func WithoutRender() ResolveOption {
	return func(c *resolveConfig) {
		c.render = false
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
