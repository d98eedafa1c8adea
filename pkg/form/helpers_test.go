package form

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeField struct {
	name string
	deps []string

	mu          sync.Mutex
	value       any
	valid       bool
	calls       int
	touched     bool
	resets      int
	invalidated error
	validate    func(ctx context.Context) error
}

func newFake(name string, valid bool, deps ...string) *fakeField {
	return &fakeField{name: name, valid: valid, deps: deps}
}

func (f *fakeField) Name() string             { return f.name }
func (f *fakeField) HasName(name string) bool { return f.name == name }
func (f *fakeField) Dependencies() []string   { return f.deps }

func (f *fakeField) Value() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

func (f *fakeField) IsValid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.valid
}

func (f *fakeField) setValid(valid bool) {
	f.mu.Lock()
	f.valid = valid
	f.mu.Unlock()
}

func (f *fakeField) setValidate(fn func(ctx context.Context) error) {
	f.mu.Lock()
	f.validate = fn
	f.mu.Unlock()
}

func (f *fakeField) Validate(ctx context.Context) error {
	f.mu.Lock()
	f.calls++
	fn := f.validate
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil
}

func (f *fakeField) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeField) resetCalls() {
	f.mu.Lock()
	f.calls = 0
	f.mu.Unlock()
}

func (f *fakeField) Reset() {
	f.mu.Lock()
	f.resets++
	f.mu.Unlock()
}

func (f *fakeField) Touch() {
	f.mu.Lock()
	f.touched = true
	f.mu.Unlock()
}

func (f *fakeField) Invalidate(err error) {
	f.mu.Lock()
	f.valid = false
	f.invalidated = err
	f.mu.Unlock()
}

// gate blocks a fake field's validation until released.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}, 16), release: make(chan struct{})}
}

func (g *gate) validate(ctx context.Context) error {
	g.entered <- struct{}{}
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *gate) awaitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("validation never started")
	}
}

func waitSettled(t *testing.T, c *Coordinator) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Wait(ctx); err != nil {
		t.Fatalf("coordinator did not settle: %v", err)
	}
}

type recordedEvent struct {
	Valid      bool
	Validating bool
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) onValidChanged(valid bool, _ map[string]any, validating bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Valid: valid, Validating: validating})
}

func (r *recorder) snapshot() []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedEvent(nil), r.events...)
}
