package formcoord

import (
	"context"
	"io/fs"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formcoord/pkg/definition"
	"github.com/goliatone/go-formcoord/pkg/form"
	"github.com/goliatone/go-formcoord/pkg/testsupport"
)

func TestSampleFormsLoad(t *testing.T) {
	fsys := SampleFormsFS()
	for _, name := range []string{"signup.yaml", "contact.json"} {
		def, err := LoadDefinitionFS(fsys, name)
		if err != nil {
			t.Fatalf("LoadDefinitionFS(%s): %v", name, err)
		}
		if err := def.Check(NewRules()); err != nil {
			t.Fatalf("%s does not check: %v", name, err)
		}
	}

	raw, err := fs.ReadFile(fsys, "accounts.openapi.yaml")
	if err != nil {
		t.Fatalf("read openapi sample: %v", err)
	}
	def, err := DefinitionFromOpenAPI(context.Background(), raw, "createAccount")
	if err != nil {
		t.Fatalf("DefinitionFromOpenAPI: %v", err)
	}
	if len(def.Fields) != 4 {
		t.Fatalf("expected four fields, got %d", len(def.Fields))
	}
}

func TestBuild_SignupFlow(t *testing.T) {
	def, err := LoadDefinitionFS(SampleFormsFS(), "signup.yaml")
	if err != nil {
		t.Fatalf("LoadDefinitionFS: %v", err)
	}

	var (
		mu      sync.Mutex
		changes []bool
		submits []bool
	)
	coord, inputs, err := Build(def,
		form.OnValidChanged(func(valid bool, _ map[string]any, validating bool) {
			if validating {
				return
			}
			mu.Lock()
			changes = append(changes, valid)
			mu.Unlock()
		}),
		form.OnSubmit(func(_ map[string]any, valid bool) {
			mu.Lock()
			submits = append(submits, valid)
			mu.Unlock()
		}),
	)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	coord.Mount(context.Background())
	defer coord.Unmount()
	testsupport.Settle(t, coord)

	if coord.Submit().Valid {
		t.Fatalf("expected empty signup to be invalid")
	}

	err = definition.ApplyValues(inputs, map[string]any{
		"email":           "dev@example.com",
		"displayName":     "dev",
		"password":        "correct horse",
		"confirmPassword": "correct horse",
	})
	if err != nil {
		t.Fatalf("ApplyValues: %v", err)
	}
	testsupport.Settle(t, coord)
	if !coord.Submit().Valid {
		t.Fatalf("expected filled signup to be valid: %v", coord.Values())
	}
	testsupport.Settle(t, coord)

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]bool{false, true}, submits); diff != "" {
		t.Fatalf("submit notifications mismatch (-want +got):\n%s", diff)
	}
	if len(changes) == 0 || !changes[len(changes)-1] {
		t.Fatalf("expected the last settled notification to be valid, got %v", changes)
	}
}

func TestBuild_RejectsBadDefinition(t *testing.T) {
	def := Definition{Fields: []definition.Field{{Name: "a"}, {Name: "a"}}}
	if _, _, err := Build(def); err == nil {
		t.Fatalf("expected duplicate names to be rejected")
	}
}

func TestNewInput(t *testing.T) {
	in, err := NewInput("city")
	if err != nil {
		t.Fatalf("NewInput: %v", err)
	}
	c := New()
	if err := in.Bind(c); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if diff := cmp.Diff([]string{"city"}, c.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}
