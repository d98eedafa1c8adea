package rules

import (
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

var (
	// ErrUnknownRule reports a spec naming a rule the registry does not know.
	ErrUnknownRule = errors.New("rules: unknown rule")
	// ErrInvalidRuleSpec reports a malformed rule spec string.
	ErrInvalidRuleSpec = errors.New("rules: invalid rule spec")
)

// Func is a pure validation predicate. values carries the current value of
// every attached field keyed by name.
type Func func(values map[string]any, value any, args ...any) bool

// Rule couples a predicate with its registry metadata.
type Rule struct {
	Name string
	Func Func
	// CreatesDependencies marks rules whose arguments name other fields.
	CreatesDependencies bool
}

// Registry stores named rules. It is safe for concurrent use. The zero value
// is an empty registry.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

// NewRegistry constructs a registry with the built-in rules registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Add registers fn under name, replacing any previous rule with that name.
func (r *Registry) Add(name string, fn Func, createsDependencies bool) error {
	if r == nil {
		return errors.New("rules: registry is nil")
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errors.Wrap(ErrInvalidRuleSpec, "rule name is required")
	}
	if fn == nil {
		return errors.Newf("rules: rule %q has no function", trimmed)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rules == nil {
		r.rules = make(map[string]Rule)
	}
	r.rules[trimmed] = Rule{Name: trimmed, Func: fn, CreatesDependencies: createsDependencies}
	return nil
}

// Lookup returns the rule registered under name.
func (r *Registry) Lookup(name string) (Rule, bool) {
	if r == nil {
		return Rule{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[name]
	return rule, ok
}

// Names lists registered rule names in lexical order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	names := make([]string, 0, len(r.rules))
	for name := range r.rules {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Clone copies the registry so callers can extend it without touching the
// source.
func (r *Registry) Clone() *Registry {
	out := &Registry{rules: make(map[string]Rule)}
	if r == nil {
		return out
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, rule := range r.rules {
		out.rules[name] = rule
	}
	return out
}

// Check verifies every spec names a registered rule.
func (r *Registry) Check(specs []Spec) error {
	for _, spec := range specs {
		if _, ok := r.Lookup(spec.Name); !ok {
			return errors.Wrapf(ErrUnknownRule, "%q", spec.Name)
		}
	}
	return nil
}

// Dependencies collects the field names referenced by dependency-creating
// rules in specs, de-duplicated in first-seen order.
func (r *Registry) Dependencies(specs []Spec) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, spec := range specs {
		rule, ok := r.Lookup(spec.Name)
		if !ok || !rule.CreatesDependencies {
			continue
		}
		for _, name := range fieldNames(spec.Args) {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// Evaluate runs specs against value and returns the names of the rules that
// failed, in spec order.
func (r *Registry) Evaluate(values map[string]any, value any, specs []Spec) ([]string, error) {
	var failed []string
	for _, spec := range specs {
		rule, ok := r.Lookup(spec.Name)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownRule, "%q", spec.Name)
		}
		if !rule.Func(values, value, spec.Args...) {
			failed = append(failed, spec.Name)
		}
	}
	return failed, nil
}

func fieldNames(args []any) []string {
	var out []string
	for _, arg := range args {
		switch typed := arg.(type) {
		case string:
			if trimmed := strings.TrimSpace(typed); trimmed != "" {
				out = append(out, trimmed)
			}
		case []string:
			out = append(out, fieldNames(stringsToAny(typed))...)
		case []any:
			out = append(out, fieldNames(typed)...)
		}
	}
	return out
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
