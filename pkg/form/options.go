package form

import (
	"log/slog"
	"time"

	"github.com/goliatone/go-formcoord/pkg/rules"
)

const (
	// DefaultDetachDebounce is how long a burst of detaches is collapsed
	// before the coordinator runs a full sweep.
	DefaultDetachDebounce = 200 * time.Millisecond
	// DefaultMaxFields bounds attached fields and, with them, the queue.
	DefaultMaxFields = 1024
)

// Callbacks are the host notifications. Every callback is optional and runs
// on the coordinator's dispatch goroutine, one at a time, in the order the
// underlying state changes happened. Callbacks may call back into the
// coordinator.
type Callbacks struct {
	OnSubmit        func(values map[string]any, valid bool)
	OnValidSubmit   func(values map[string]any)
	OnInvalidSubmit func(values map[string]any)
	OnValid         func(values map[string]any)
	OnInvalid       func(values map[string]any, validating bool)
	OnValidChanged  func(valid bool, values map[string]any, validating bool)
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithRules sets the rule registry handed to attached fields through the
// Binder. Defaults to rules.NewRegistry().
func WithRules(reg *rules.Registry) Option {
	return func(c *Coordinator) {
		if reg != nil {
			c.rules = reg
		}
	}
}

// WithLogger sets the structured logger. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDetachDebounce overrides DefaultDetachDebounce.
func WithDetachDebounce(delay time.Duration) Option {
	return func(c *Coordinator) {
		if delay > 0 {
			c.detachDelay = delay
		}
	}
}

// WithMaxFields overrides DefaultMaxFields.
func WithMaxFields(limit int) Option {
	return func(c *Coordinator) {
		if limit > 0 {
			c.maxFields = limit
		}
	}
}

// WithCallbacks replaces every host callback at once.
func WithCallbacks(cb Callbacks) Option {
	return func(c *Coordinator) {
		c.callbacks = cb
	}
}

// OnSubmit registers the unconditional submit notification.
func OnSubmit(fn func(values map[string]any, valid bool)) Option {
	return func(c *Coordinator) { c.callbacks.OnSubmit = fn }
}

// OnValidSubmit registers the notification for submits of a valid form.
func OnValidSubmit(fn func(values map[string]any)) Option {
	return func(c *Coordinator) { c.callbacks.OnValidSubmit = fn }
}

// OnInvalidSubmit registers the notification for submits of an invalid form.
func OnInvalidSubmit(fn func(values map[string]any)) Option {
	return func(c *Coordinator) { c.callbacks.OnInvalidSubmit = fn }
}

// OnValid registers the notification for rounds completing valid.
func OnValid(fn func(values map[string]any)) Option {
	return func(c *Coordinator) { c.callbacks.OnValid = fn }
}

// OnInvalid registers the notification for invalid or validating states.
func OnInvalid(fn func(values map[string]any, validating bool)) Option {
	return func(c *Coordinator) { c.callbacks.OnInvalid = fn }
}

// OnValidChanged registers the combined validity notification.
func OnValidChanged(fn func(valid bool, values map[string]any, validating bool)) Option {
	return func(c *Coordinator) { c.callbacks.OnValidChanged = fn }
}
