// Package definition describes forms declaratively (JSON or YAML) and turns
// them into field.Input values bound to a coordinator.
package definition

import (
	"encoding/json"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formcoord/pkg/field"
	"github.com/goliatone/go-formcoord/pkg/form"
	"github.com/goliatone/go-formcoord/pkg/rules"
)

// ErrUnknownField reports values addressed to a field the form does not
// declare.
var ErrUnknownField = errors.New("definition: unknown field")

// Form is a named list of field definitions in attachment order.
type Form struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field `json:"fields" yaml:"fields"`
}

// Field declares one input.
type Field struct {
	Name         string   `json:"name" yaml:"name"`
	Label        string   `json:"label,omitempty" yaml:"label,omitempty"`
	Value        any      `json:"value,omitempty" yaml:"value,omitempty"`
	Secret       bool     `json:"secret,omitempty" yaml:"secret,omitempty"`
	Rules        []string `json:"rules,omitempty" yaml:"rules,omitempty"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Parse decodes a JSON or YAML definition. source names the payload in
// errors.
func Parse(data []byte, source string) (Form, error) {
	if strings.TrimSpace(string(data)) == "" {
		return Form{}, errors.Newf("definition: %s is empty", source)
	}
	var out Form
	if err := json.Unmarshal(data, &out); err == nil {
		return out, nil
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return Form{}, errors.Wrapf(err, "definition: parse %s", source)
	}
	return out, nil
}

// LoadFile reads and parses the definition at path.
func LoadFile(path string) (Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Form{}, errors.Wrapf(err, "definition: read %s", path)
	}
	return Parse(data, path)
}

// LoadFS reads and parses name from fsys.
func LoadFS(fsys fs.FS, name string) (Form, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Form{}, errors.Wrapf(err, "definition: read %s", name)
	}
	return Parse(data, name)
}

// Marshal encodes the definition as YAML.
func (f Form) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(f)
	if err != nil {
		return nil, errors.Wrap(err, "definition: marshal")
	}
	return out, nil
}

// Check verifies field names are present and unique, rule specs parse and
// exist in reg, and declared dependencies name declared fields.
func (f Form) Check(reg *rules.Registry) error {
	names := make(map[string]struct{}, len(f.Fields))
	for idx, fd := range f.Fields {
		name := strings.TrimSpace(fd.Name)
		if name == "" {
			return errors.Newf("definition: field %d has no name", idx)
		}
		if _, dup := names[name]; dup {
			return errors.Wrapf(form.ErrDuplicateName, "definition: field %q", name)
		}
		names[name] = struct{}{}
	}
	for _, fd := range f.Fields {
		specs, err := rules.ParseSpecs(fd.Rules...)
		if err != nil {
			return errors.Wrapf(err, "definition: field %q", fd.Name)
		}
		if err := reg.Check(specs); err != nil {
			return errors.Wrapf(err, "definition: field %q", fd.Name)
		}
		deps := append(reg.Dependencies(specs), fd.Dependencies...)
		for _, dep := range deps {
			if _, ok := names[dep]; !ok {
				return errors.Newf("definition: field %q depends on undeclared field %q", fd.Name, dep)
			}
		}
	}
	return nil
}

// Build creates an unbound input per declared field.
func (f Form) Build() ([]*field.Input, error) {
	inputs := make([]*field.Input, 0, len(f.Fields))
	for _, fd := range f.Fields {
		in, err := field.New(fd.Name,
			field.WithLabel(fd.Label),
			field.WithValue(fd.Value),
			field.WithSecret(fd.Secret),
			field.WithRules(fd.Rules...),
			field.WithDependencies(fd.Dependencies...),
		)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// Bind attaches inputs to b in order. On failure the inputs bound so far are
// unbound again.
func Bind(b form.Binder, inputs []*field.Input) error {
	for idx, in := range inputs {
		if err := in.Bind(b); err != nil {
			for _, bound := range inputs[:idx] {
				bound.Unbind()
			}
			return err
		}
	}
	return nil
}

// ApplyValues sets values on the matching inputs in lexical name order.
func ApplyValues(inputs []*field.Input, values map[string]any) error {
	byName := make(map[string]*field.Input, len(inputs))
	for _, in := range inputs {
		byName[in.Name()] = in
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		if _, ok := byName[key]; !ok {
			return errors.Wrapf(ErrUnknownField, "%q", key)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		byName[key].SetValue(values[key])
	}
	return nil
}
