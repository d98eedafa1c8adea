// Package rules holds the validation predicates fields evaluate against their
// values. Rules live in an explicit Registry handed to the form coordinator at
// construction time, so two coordinators never observe each other's custom
// rules. Each rule is a pure function of the current form values, the field
// value, and the arguments parsed from a rule spec such as `minLength:8` or
// `equalsFields:["email","email2"]`.
//
// Rules flagged as creating dependencies (equalsField, equalsFields) treat
// their arguments as field names; fields using them re-validate whenever one
// of the named fields changes.
package rules
