package rules

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

// Spec references a rule by name along with the arguments passed after the
// value.
type Spec struct {
	Name string
	Args []any
}

// String renders the spec back into its `name:arg` form.
func (s Spec) String() string {
	if len(s.Args) == 0 {
		return s.Name
	}
	var arg any = s.Args[0]
	if len(s.Args) > 1 {
		arg = s.Args
	}
	if str, ok := arg.(string); ok {
		return s.Name + ":" + str
	}
	raw, err := json.Marshal(arg)
	if err != nil {
		return s.Name
	}
	return s.Name + ":" + string(raw)
}

// ParseSpec parses `name` or `name:arg`. The argument is decoded as JSON when
// possible (numbers, arrays, quoted strings) and kept as a raw string
// otherwise.
func ParseSpec(raw string) (Spec, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Spec{}, errors.Wrap(ErrInvalidRuleSpec, "empty spec")
	}
	name, arg, hasArg := strings.Cut(trimmed, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return Spec{}, errors.Wrapf(ErrInvalidRuleSpec, "%q has no rule name", raw)
	}
	spec := Spec{Name: name}
	if !hasArg {
		return spec, nil
	}
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return Spec{}, errors.Wrapf(ErrInvalidRuleSpec, "%q has an empty argument", raw)
	}
	var decoded any
	if err := json.Unmarshal([]byte(arg), &decoded); err == nil {
		spec.Args = []any{decoded}
	} else {
		spec.Args = []any{arg}
	}
	return spec, nil
}

// ParseSpecs parses each entry with ParseSpec.
func ParseSpecs(raw ...string) ([]Spec, error) {
	specs := make([]Spec, 0, len(raw))
	for _, entry := range raw {
		spec, err := ParseSpec(entry)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// ParseList parses a comma separated list such as `isRequired,minLength:3`.
// Commas inside JSON arrays are preserved.
func ParseList(raw string) ([]Spec, error) {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range raw {
		switch r {
		case '[', '{':
			depth++
		case ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, raw[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, raw[start:])

	var specs []Spec
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		spec, err := ParseSpec(part)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
