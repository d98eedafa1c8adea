// Package prompt collects field values interactively and feeds them through a
// coordinator until the form settles valid.
package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/goliatone/go-formcoord/pkg/field"
	"github.com/goliatone/go-formcoord/pkg/form"
)

// ErrTooManyAttempts reports a field that stayed invalid for every allowed
// attempt.
var ErrTooManyAttempts = errors.New("prompt: too many invalid attempts")

// Option configures a Filler.
type Option func(*Filler)

// WithMaxAttempts caps the prompts per field. Zero means unlimited.
func WithMaxAttempts(n int) Option {
	return func(f *Filler) {
		if n >= 0 {
			f.maxAttempts = n
		}
	}
}

// WithConfirmSubmit asks for confirmation before the form is submitted.
func WithConfirmSubmit(confirm bool) Option {
	return func(f *Filler) { f.confirm = confirm }
}

// Filler prompts for each input in order. A field is prompted again while it
// is invalid after the coordinator settles, and earlier fields invalidated by
// a later change are revisited before submitting.
type Filler struct {
	driver      Driver
	coord       *form.Coordinator
	maxAttempts int
	confirm     bool
}

// NewFiller builds a Filler around a mounted coordinator.
func NewFiller(driver Driver, coord *form.Coordinator, options ...Option) *Filler {
	f := &Filler{driver: driver, coord: coord}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Fill prompts for inputs and submits the form. The result is the submitted
// snapshot; submitted is false when the user declined confirmation.
func (f *Filler) Fill(ctx context.Context, inputs []*field.Input) (result form.SubmitResult, submitted bool, err error) {
	if f.driver == nil || f.coord == nil {
		return form.SubmitResult{}, false, errors.New("prompt: driver and coordinator are required")
	}
	attempts := make(map[string]int, len(inputs))
	pending := inputs
	for len(pending) > 0 {
		for _, in := range pending {
			if err := f.promptUntilValid(ctx, in, attempts); err != nil {
				return form.SubmitResult{}, false, err
			}
		}
		if err := f.coord.Wait(ctx); err != nil {
			return form.SubmitResult{}, false, err
		}
		pending = invalid(inputs)
	}

	if f.confirm {
		ok, err := f.driver.Confirm(ctx, ConfirmConfig{Message: "Submit?", Default: true})
		if err != nil {
			return form.SubmitResult{}, false, err
		}
		if !ok {
			return form.SubmitResult{}, false, nil
		}
	}
	return f.coord.Submit(), true, nil
}

func (f *Filler) promptUntilValid(ctx context.Context, in *field.Input, attempts map[string]int) error {
	for {
		if f.maxAttempts > 0 && attempts[in.Name()] >= f.maxAttempts {
			return errors.Wrapf(ErrTooManyAttempts, "field %q", in.Name())
		}
		attempts[in.Name()]++

		cfg := InputConfig{Message: in.Label(), Help: helpFor(in)}
		var (
			response string
			err      error
		)
		if in.Secret() {
			response, err = f.driver.Password(ctx, cfg)
		} else {
			if v := in.Value(); v != nil {
				cfg.Default = fmt.Sprint(v)
			}
			response, err = f.driver.Input(ctx, cfg)
		}
		if err != nil {
			return err
		}

		in.SetValue(response)
		in.Touch()
		if err := f.coord.Wait(ctx); err != nil {
			return err
		}
		if in.IsValid() {
			return nil
		}
		_ = f.driver.Info(ctx, fmt.Sprintf("Invalid %s: %s", in.Label(), reason(in)))
	}
}

func helpFor(in *field.Input) string {
	specs := in.Specs()
	if len(specs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(specs))
	for _, spec := range specs {
		parts = append(parts, spec.String())
	}
	return "rules: " + strings.Join(parts, ", ")
}

func reason(in *field.Input) string {
	if err := in.Err(); err != nil {
		return err.Error()
	}
	if failed := in.Failed(); len(failed) > 0 {
		return strings.Join(failed, ", ")
	}
	return "invalid value"
}

func invalid(inputs []*field.Input) []*field.Input {
	var out []*field.Input
	for _, in := range inputs {
		if !in.IsValid() {
			out = append(out, in)
		}
	}
	return out
}
