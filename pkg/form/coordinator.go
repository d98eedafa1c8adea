package form

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/goliatone/go-formcoord/pkg/rules"
)

// Field is the capability the coordinator consumes from every attached
// input. Implementations must be comparable (typically pointers) because
// Detach matches by identity, and must not call into the coordinator while
// holding a lock that Value, IsValid, Name or HasName also take.
type Field interface {
	Name() string
	HasName(name string) bool
	Value() any
	IsValid() bool
	// Dependencies names the fields whose changes re-validate this field. It
	// is read on attach and detach.
	Dependencies() []string
	// Validate updates the field's own validity. The coordinator only waits
	// for it to return.
	Validate(ctx context.Context) error
	Reset()
	Touch()
}

// Invalidator is implemented by fields that can be forced invalid when their
// own Validate fails or panics.
type Invalidator interface {
	Invalidate(err error)
}

// Binder is the capability handed to child fields.
type Binder interface {
	Attach(f Field) error
	Detach(f Field)
	AddToValidationQueue(f Field)
	StartValidation()
	Values() map[string]any
	Rules() *rules.Registry
}

// State is the aggregate validity state.
type State int

const (
	StateIdleInvalid State = iota
	StateIdleValid
	StateValidating
)

func (s State) String() string {
	switch s {
	case StateIdleValid:
		return "valid"
	case StateValidating:
		return "validating"
	default:
		return "invalid"
	}
}

// SubmitResult is the snapshot Submit reports.
type SubmitResult struct {
	Values map[string]any
	Valid  bool
}

// Coordinator owns the field registry, the validation queue and the single
// sequential validation driver.
type Coordinator struct {
	rules       *rules.Registry
	logger      *slog.Logger
	callbacks   Callbacks
	detachDelay time.Duration
	maxFields   int

	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	initialized bool
	fields      fieldRegistry
	queue       *Queue
	validating  bool
	valid       bool
	failed      map[string]error

	debounce      *debouncer
	detachGen     uint64
	detachPending bool

	mailbox     []event
	dispatching bool

	settled       chan struct{}
	settledClosed bool
}

var _ Binder = (*Coordinator)(nil)

// New constructs an unmounted Coordinator.
func New(options ...Option) *Coordinator {
	c := &Coordinator{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		detachDelay: DefaultDetachDebounce,
		maxFields:   DefaultMaxFields,
		ctx:         context.Background(),
		failed:      make(map[string]error),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.rules == nil {
		c.rules = rules.NewRegistry()
	}
	c.queue = NewQueue(c.maxFields)
	c.debounce = newDebouncer(c.detachDelay)
	c.settled = make(chan struct{})
	c.updateSettledLocked()
	return c
}

// Rules returns the registry fields evaluate against.
func (c *Coordinator) Rules() *rules.Registry {
	return c.rules
}

// Mount marks the coordinator initialized and runs a full sweep. ctx bounds
// every field validation until Unmount.
func (c *Coordinator) Mount(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.initialized = true
	c.mu.Unlock()

	c.Validate()
}

// Unmount stops further sweeps, drops queued work, cancels the pending
// detach sweep and cancels the context of an in-flight validation.
func (c *Coordinator) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialized = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.debounce.cancel()
	c.detachGen++
	c.detachPending = false
	c.queue.Clear()
	c.updateSettledLocked()
}

// Attach registers f. Attaching a name already in use fails with a
// *DuplicateNameError and leaves the registry untouched. Once mounted the
// new field is validated right away; before that it is only queued.
func (c *Coordinator) Attach(f Field) error {
	if f == nil {
		return ErrNilField
	}
	c.mu.Lock()
	if c.fields.len() >= c.maxFields {
		c.mu.Unlock()
		return ErrTooManyFields
	}
	if err := c.fields.add(f); err != nil {
		c.mu.Unlock()
		return err
	}
	name := f.Name()
	c.logger.Debug("field attached", "field", name, "dependencies", f.Dependencies())

	if !c.initialized {
		c.enqueueLocked(name)
		c.updateSettledLocked()
		c.mu.Unlock()
		return nil
	}
	c.enqueueLocked(name)
	c.pushInvalidLocked()
	c.updateSettledLocked()
	c.mu.Unlock()

	c.StartValidation()
	return nil
}

// Detach removes f and debounces a full sweep, so a burst of detaches runs a
// single re-validation.
func (c *Coordinator) Detach(f Field) {
	if f == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fields.remove(f) {
		c.logger.Debug("detach of unknown field ignored", "field", f.Name())
		return
	}
	delete(c.failed, f.Name())
	c.logger.Debug("field detached", "field", f.Name())

	c.detachGen++
	gen := c.detachGen
	c.detachPending = true
	c.debounce.schedule(func() { c.detachSweep(gen) })
	c.updateSettledLocked()
}

func (c *Coordinator) detachSweep(gen uint64) {
	c.mu.Lock()
	if gen != c.detachGen {
		c.mu.Unlock()
		return
	}
	c.detachPending = false
	c.mu.Unlock()

	c.Validate()
}

// AddToValidationQueue queues f and its transitive dependents without
// driving the queue.
func (c *Coordinator) AddToValidationQueue(f Field) {
	if f == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enqueueLocked(f.Name()) > 0 {
		c.pushInvalidLocked()
	}
	c.updateSettledLocked()
}

// ValidateInput queues f and its dependents, then drives the queue.
func (c *Coordinator) ValidateInput(f Field) {
	if f == nil {
		return
	}
	c.mu.Lock()
	c.enqueueLocked(f.Name())
	c.pushInvalidLocked()
	c.updateSettledLocked()
	c.mu.Unlock()

	c.StartValidation()
}

// Validate runs a full sweep over every attached field. It is a no-op until
// the coordinator is mounted.
func (c *Coordinator) Validate() {
	c.mu.Lock()
	if !c.initialized {
		c.updateSettledLocked()
		c.mu.Unlock()
		return
	}
	for _, name := range c.fields.names() {
		c.enqueueLocked(name)
	}
	c.pushInvalidLocked()
	c.updateSettledLocked()
	c.mu.Unlock()

	c.StartValidation()
}

// enqueueLocked queues name with its dependency cascade and returns how many
// names were added. Any addition invalidates the aggregate verdict until the
// round completes.
func (c *Coordinator) enqueueLocked(name string) int {
	added, full := c.queue.Enqueue(name, c.fields.dependentsOf)
	if full {
		c.logger.Warn("validation queue is full", "field", name, "limit", c.maxFields)
	}
	if len(added) == 0 {
		return 0
	}
	c.valid = false
	c.logger.Debug("queued for validation", "field", name, "queued", added)
	return len(added)
}

// Values maps every attached field name to its current value.
func (c *Coordinator) Values() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields.values()
}

// Fields lists attached field names in attachment order.
func (c *Coordinator) Fields() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields.names()
}

// Pending lists queued field names in processing order.
func (c *Coordinator) Pending() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Names()
}

// IsValidating reports whether names are queued or a validation is in
// flight.
func (c *Coordinator) IsValidating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isValidatingLocked()
}

// IsValid reports the last verdict, and false while validating.
func (c *Coordinator) IsValid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isValidLocked()
}

// State reports the aggregate state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.isValidatingLocked():
		return StateValidating
	case c.valid:
		return StateIdleValid
	default:
		return StateIdleInvalid
	}
}

func (c *Coordinator) isValidatingLocked() bool {
	return c.queue.Len() > 0 || c.validating
}

func (c *Coordinator) isValidLocked() bool {
	return c.valid && !c.isValidatingLocked()
}

// Submit touches every field and reports the validity snapshot at call time
// without waiting for an in-flight round. Hosts wanting the settled verdict
// call Wait first. The submit notifications are dispatched asynchronously.
func (c *Coordinator) Submit() SubmitResult {
	c.Touch()

	c.mu.Lock()
	defer c.mu.Unlock()
	result := SubmitResult{Values: c.fields.values(), Valid: c.isValidLocked()}
	c.logger.Debug("form submitted", "valid", result.Valid)
	c.pushLocked(event{kind: eventSubmit, values: result.Values, valid: result.Valid})
	c.updateSettledLocked()
	return result
}

// Reset delegates to every field. It does not queue validation itself.
func (c *Coordinator) Reset() {
	for _, f := range c.snapshot() {
		f.Reset()
	}
}

// Touch marks every field touched.
func (c *Coordinator) Touch() {
	for _, f := range c.snapshot() {
		f.Touch()
	}
}

func (c *Coordinator) snapshot() []Field {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields.snapshot()
}

// Wait blocks until nothing is queued, in flight, pending dispatch or
// waiting on the detach debounce. Fields queued before Mount keep the
// coordinator busy until it is mounted.
func (c *Coordinator) Wait(ctx context.Context) error {
	c.mu.Lock()
	ch := c.settled
	c.mu.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) updateSettledLocked() {
	busy := c.isValidatingLocked() || c.dispatching || c.detachPending
	switch {
	case busy && c.settledClosed:
		c.settled = make(chan struct{})
		c.settledClosed = false
	case !busy && !c.settledClosed:
		close(c.settled)
		c.settledClosed = true
	}
}
