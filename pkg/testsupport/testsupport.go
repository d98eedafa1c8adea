// Package testsupport holds helpers shared by tests that drive a coordinator
// or compare form definitions against golden files.
package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formcoord/pkg/definition"
	"github.com/goliatone/go-formcoord/pkg/form"
)

// SettleTimeout bounds Settle.
const SettleTimeout = 2 * time.Second

// Settle waits for c to go idle or fails the test.
func Settle(t testing.TB, c *form.Coordinator) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), SettleTimeout)
	defer cancel()
	if err := c.Wait(ctx); err != nil {
		t.Fatalf("coordinator did not settle: %v", err)
	}
}

// MustLoadDefinition parses the definition at path.
func MustLoadDefinition(t testing.TB, path string) definition.Form {
	t.Helper()
	def, err := definition.LoadFile(path)
	if err != nil {
		t.Fatalf("load definition: %v", err)
	}
	return def
}

// AssertGoldenDefinition compares got with the definition stored at path.
// With UPDATE_GOLDENS set the golden is rewritten instead.
func AssertGoldenDefinition(t testing.TB, path string, got definition.Form) {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") != "" {
		payload, err := got.Marshal()
		if err != nil {
			t.Fatalf("marshal golden: %v", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir golden dir: %v", err)
		}
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			t.Fatalf("write golden: %v", err)
		}
		return
	}
	want := MustLoadDefinition(t, path)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("definition mismatch with %s (-want +got):\n%s", path, diff)
	}
}
