// Package field provides Input, a ready-made form.Field whose validity comes
// from rule specs evaluated against a rules.Registry.
package field

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/goliatone/go-formcoord/pkg/form"
	"github.com/goliatone/go-formcoord/pkg/rules"
)

// ErrAlreadyBound reports a Bind on an input that is already attached.
var ErrAlreadyBound = errors.New("field: input is already bound")

// Option configures an Input.
type Option func(*config)

type config struct {
	label  string
	secret bool
	value  any
	raw    []string
	specs  []rules.Spec
	deps   []string
}

// WithValue sets the initial value restored by Reset.
func WithValue(value any) Option {
	return func(cfg *config) { cfg.value = value }
}

// WithRules adds rule specs such as `isRequired` or `minLength:8`.
func WithRules(specs ...string) Option {
	return func(cfg *config) { cfg.raw = append(cfg.raw, specs...) }
}

// WithSpecs adds already parsed rule specs.
func WithSpecs(specs ...rules.Spec) Option {
	return func(cfg *config) { cfg.specs = append(cfg.specs, specs...) }
}

// WithDependencies declares dependencies beyond those implied by rules.
func WithDependencies(names ...string) Option {
	return func(cfg *config) { cfg.deps = append(cfg.deps, names...) }
}

// WithLabel sets the human readable label.
func WithLabel(label string) Option {
	return func(cfg *config) { cfg.label = strings.TrimSpace(label) }
}

// WithSecret marks the value as sensitive so prompts mask it.
func WithSecret(secret bool) Option {
	return func(cfg *config) { cfg.secret = secret }
}

// Input is a named value validated by rule specs. It re-queues itself (and,
// through the coordinator, its dependents) whenever its value changes.
type Input struct {
	name      string
	label     string
	secret    bool
	specs     []rules.Spec
	extraDeps []string

	mu      sync.RWMutex
	binder  form.Binder
	deps    []string
	initial any
	value   any
	valid   bool
	touched bool
	failed  []string
	err     error
}

var (
	_ form.Field       = (*Input)(nil)
	_ form.Invalidator = (*Input)(nil)
)

// New builds an unbound Input. Inputs start valid until first validated.
func New(name string, options ...Option) (*Input, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, errors.New("field: name is required")
	}
	cfg := &config{}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	parsed, err := rules.ParseSpecs(cfg.raw...)
	if err != nil {
		return nil, errors.Wrapf(err, "field %q", trimmed)
	}
	label := cfg.label
	if label == "" {
		label = trimmed
	}
	return &Input{
		name:      trimmed,
		label:     label,
		secret:    cfg.secret,
		specs:     append(append([]rules.Spec(nil), cfg.specs...), parsed...),
		extraDeps: append([]string(nil), cfg.deps...),
		initial:   cfg.value,
		value:     cfg.value,
		valid:     true,
	}, nil
}

// Bind resolves dependencies against the binder's registry and attaches the
// input.
func (i *Input) Bind(b form.Binder) error {
	if b == nil {
		return errors.New("field: binder is nil")
	}
	reg := b.Rules()
	if err := reg.Check(i.specs); err != nil {
		return errors.Wrapf(err, "field %q", i.name)
	}

	i.mu.Lock()
	if i.binder != nil {
		i.mu.Unlock()
		return errors.Wrapf(ErrAlreadyBound, "field %q", i.name)
	}
	i.binder = b
	i.deps = mergeNames(reg.Dependencies(i.specs), i.extraDeps)
	i.mu.Unlock()

	if err := b.Attach(i); err != nil {
		i.mu.Lock()
		i.binder = nil
		i.deps = nil
		i.mu.Unlock()
		return err
	}
	return nil
}

// Unbind detaches the input from its binder.
func (i *Input) Unbind() {
	i.mu.Lock()
	b := i.binder
	i.binder = nil
	i.mu.Unlock()
	if b != nil {
		b.Detach(i)
	}
}

func (i *Input) Name() string             { return i.name }
func (i *Input) HasName(name string) bool { return i.name == name }
func (i *Input) Label() string            { return i.label }
func (i *Input) Secret() bool             { return i.secret }

// Specs returns the rule specs the input evaluates.
func (i *Input) Specs() []rules.Spec {
	return append([]rules.Spec(nil), i.specs...)
}

func (i *Input) Value() any {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.value
}

// SetValue stores value and queues the input for validation.
func (i *Input) SetValue(value any) {
	i.mu.Lock()
	i.value = value
	b := i.binder
	i.mu.Unlock()
	requeue(b, i)
}

func (i *Input) IsValid() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.valid
}

// Dependencies lists the fields this input re-validates after.
func (i *Input) Dependencies() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return append([]string(nil), i.deps...)
}

// Failed lists the rules that failed on the last validation.
func (i *Input) Failed() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return append([]string(nil), i.failed...)
}

// Err reports why the last validation could not run, if it could not.
func (i *Input) Err() error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.err
}

// Touched reports whether the input was touched since the last Reset.
func (i *Input) Touched() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.touched
}

// ShowError reports whether failures should be surfaced: only once touched.
func (i *Input) ShowError() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.touched && !i.valid
}

// Validate evaluates the rule specs against the current form values.
func (i *Input) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	i.mu.RLock()
	b := i.binder
	value := i.value
	i.mu.RUnlock()

	// the binder is consulted without holding the input lock
	reg := rules.NewRegistry()
	values := map[string]any{i.name: value}
	if b != nil {
		reg = b.Rules()
		values = b.Values()
	}
	failed, err := reg.Evaluate(values, value, i.specs)

	i.mu.Lock()
	defer i.mu.Unlock()
	if err != nil {
		i.valid = false
		i.failed = nil
		i.err = err
		return err
	}
	i.valid = len(failed) == 0
	i.failed = failed
	i.err = nil
	return nil
}

// Invalidate forces the input invalid after a failed validation.
func (i *Input) Invalidate(err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.valid = false
	i.err = err
}

// Reset restores the initial value and clears the touched flag. The input is
// re-queued only when the value actually changed.
func (i *Input) Reset() {
	i.mu.Lock()
	changed := !reflect.DeepEqual(i.value, i.initial)
	i.value = i.initial
	i.touched = false
	b := i.binder
	i.mu.Unlock()
	if changed {
		requeue(b, i)
	}
}

func (i *Input) Touch() {
	i.mu.Lock()
	i.touched = true
	i.mu.Unlock()
}

func requeue(b form.Binder, i *Input) {
	if b == nil {
		return
	}
	b.AddToValidationQueue(i)
	b.StartValidation()
}

func mergeNames(lists ...[]string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, name := range list {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}
