package formcoord

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-formcoord/pkg/definition"
	"github.com/goliatone/go-formcoord/pkg/field"
	"github.com/goliatone/go-formcoord/pkg/form"
	"github.com/goliatone/go-formcoord/pkg/openapi"
	"github.com/goliatone/go-formcoord/pkg/rules"
)

// Coordinator aliases form.Coordinator for callers importing only the root
// package.
type Coordinator = form.Coordinator

// Field is the contract a form input satisfies.
type Field = form.Field

// Binder is the coordinator surface handed to inputs.
type Binder = form.Binder

// Option customises a Coordinator.
type Option = form.Option

// Callbacks groups the host notifications.
type Callbacks = form.Callbacks

// SubmitResult is the snapshot returned by Submit.
type SubmitResult = form.SubmitResult

// Input is the rule-driven field implementation.
type Input = field.Input

// Definition is a declarative form.
type Definition = definition.Form

// RuleRegistry holds named validation rules.
type RuleRegistry = rules.Registry

// New creates a coordinator.
func New(options ...Option) *Coordinator {
	return form.New(options...)
}

// NewRules returns a registry preloaded with the built-in rules.
func NewRules() *RuleRegistry {
	return rules.NewRegistry()
}

// NewInput creates an unbound input.
func NewInput(name string, options ...field.Option) (*Input, error) {
	return field.New(name, options...)
}

// Build checks def, creates a coordinator and binds one input per field.
// The coordinator is returned unmounted.
func Build(def Definition, options ...Option) (*Coordinator, []*Input, error) {
	coord := form.New(options...)
	if err := def.Check(coord.Rules()); err != nil {
		return nil, nil, err
	}
	inputs, err := def.Build()
	if err != nil {
		return nil, nil, err
	}
	if err := definition.Bind(coord, inputs); err != nil {
		return nil, nil, err
	}
	return coord, inputs, nil
}

// LoadDefinition reads a JSON or YAML definition from disk.
func LoadDefinition(path string) (Definition, error) {
	return definition.LoadFile(path)
}

// LoadDefinitionFS reads a definition from fsys.
func LoadDefinitionFS(fsys fs.FS, name string) (Definition, error) {
	return definition.LoadFS(fsys, name)
}

// DefinitionFromOpenAPI derives a definition from an operation's request
// body.
func DefinitionFromOpenAPI(ctx context.Context, raw []byte, operationID string) (Definition, error) {
	return openapi.FormFromOpenAPI(ctx, raw, operationID, openapi.Options{})
}
