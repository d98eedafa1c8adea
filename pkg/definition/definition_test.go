package definition

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formcoord/pkg/form"
	"github.com/goliatone/go-formcoord/pkg/rules"
)

const signupYAML = `
name: signup
description: Create an account
fields:
  - name: email
    label: Email
    rules: [isRequired, isEmail]
  - name: password
    secret: true
    rules: ["isRequired", "minLength:8"]
  - name: confirmPassword
    secret: true
    rules: ["equalsField:password"]
`

const signupJSON = `{
  "name": "signup",
  "description": "Create an account",
  "fields": [
    {"name": "email", "label": "Email", "rules": ["isRequired", "isEmail"]},
    {"name": "password", "secret": true, "rules": ["isRequired", "minLength:8"]},
    {"name": "confirmPassword", "secret": true, "rules": ["equalsField:password"]}
  ]
}`

func TestParse_JSONAndYAMLAgree(t *testing.T) {
	fromYAML, err := Parse([]byte(signupYAML), "signup.yaml")
	if err != nil {
		t.Fatalf("Parse yaml: %v", err)
	}
	fromJSON, err := Parse([]byte(signupJSON), "signup.json")
	if err != nil {
		t.Fatalf("Parse json: %v", err)
	}
	if diff := cmp.Diff(fromJSON, fromYAML); diff != "" {
		t.Fatalf("definitions differ (-json +yaml):\n%s", diff)
	}
	if len(fromYAML.Fields) != 3 || !fromYAML.Fields[1].Secret {
		t.Fatalf("unexpected fields: %+v", fromYAML.Fields)
	}
}

func TestParse_Errors(t *testing.T) {
	if _, err := Parse([]byte("  \n"), "empty.yaml"); err == nil {
		t.Fatalf("expected empty payload error")
	}
	if _, err := Parse([]byte("fields: [unterminated"), "bad.yaml"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{"forms/signup.yaml": {Data: []byte(signupYAML)}}
	def, err := LoadFS(fsys, "forms/signup.yaml")
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	if def.Name != "signup" {
		t.Fatalf("expected name signup, got %q", def.Name)
	}
	if _, err := LoadFS(fsys, "missing.yaml"); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestMarshal_RoundTripsThroughParse(t *testing.T) {
	def, err := Parse([]byte(signupJSON), "signup.json")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := def.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	again, err := Parse(out, "marshalled.yaml")
	if err != nil {
		t.Fatalf("Parse marshalled: %v", err)
	}
	if diff := cmp.Diff(def, again); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck(t *testing.T) {
	reg := rules.NewRegistry()
	cases := []struct {
		name    string
		form    Form
		wantErr error
		wantAny bool
	}{
		{
			name: "valid",
			form: Form{Fields: []Field{{Name: "a", Rules: []string{"isRequired"}}, {Name: "b", Rules: []string{"equalsField:a"}}}},
		},
		{
			name:    "duplicate",
			form:    Form{Fields: []Field{{Name: "a"}, {Name: "a"}}},
			wantErr: form.ErrDuplicateName,
		},
		{
			name:    "unknown rule",
			form:    Form{Fields: []Field{{Name: "a", Rules: []string{"isZipCode"}}}},
			wantErr: rules.ErrUnknownRule,
		},
		{
			name:    "undeclared dependency",
			form:    Form{Fields: []Field{{Name: "b", Rules: []string{"equalsField:a"}}}},
			wantAny: true,
		},
		{
			name:    "blank name",
			form:    Form{Fields: []Field{{Name: " "}}},
			wantAny: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.form.Check(reg)
			switch {
			case tc.wantErr != nil:
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
			case tc.wantAny:
				if err == nil {
					t.Fatalf("expected an error")
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestBuildBindAndApply(t *testing.T) {
	def, err := Parse([]byte(signupYAML), "signup.yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	inputs, err := def.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	c := form.New()
	if err := Bind(c, inputs); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	c.Mount(context.Background())
	settle(t, c)
	if c.IsValid() {
		t.Fatalf("expected empty signup form to be invalid")
	}

	err = ApplyValues(inputs, map[string]any{
		"email":           "a@b.com",
		"password":        "longenough",
		"confirmPassword": "longenough",
	})
	if err != nil {
		t.Fatalf("ApplyValues: %v", err)
	}
	settle(t, c)
	if !c.IsValid() {
		t.Fatalf("expected filled signup form to be valid, values=%v", c.Values())
	}

	if err := ApplyValues(inputs, map[string]any{"nickname": "x"}); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestBind_RollsBackOnFailure(t *testing.T) {
	def := Form{Fields: []Field{{Name: "a"}, {Name: "b"}, {Name: "c", Rules: []string{"isZipCode"}}}}
	inputs, err := def.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	c := form.New(form.WithDetachDebounce(5 * time.Millisecond))
	if err := Bind(c, inputs); !errors.Is(err, rules.ErrUnknownRule) {
		t.Fatalf("expected ErrUnknownRule, got %v", err)
	}
	if got := c.Fields(); len(got) != 0 {
		t.Fatalf("expected rollback to detach bound inputs, got %d attached", len(got))
	}
}

func settle(t *testing.T, c *form.Coordinator) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Wait(ctx); err != nil {
		t.Fatalf("coordinator did not settle: %v", err)
	}
}
