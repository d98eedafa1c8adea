package form

import "fmt"

type eventKind int

const (
	eventValid eventKind = iota
	eventInvalid
	eventSubmit
)

func (k eventKind) String() string {
	switch k {
	case eventValid:
		return "valid"
	case eventInvalid:
		return "invalid"
	case eventSubmit:
		return "submit"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

type event struct {
	kind       eventKind
	values     map[string]any
	valid      bool
	validating bool
}

// pushInvalidLocked queues the "invalid" notification carrying the current
// validating flag.
func (c *Coordinator) pushInvalidLocked() {
	c.pushLocked(event{
		kind:       eventInvalid,
		values:     c.fields.values(),
		validating: c.isValidatingLocked(),
	})
}

func (c *Coordinator) pushValidLocked() {
	c.pushLocked(event{kind: eventValid, values: c.fields.values(), valid: true})
}

// pushLocked appends ev to the mailbox. Events are queued under the state
// lock so their order matches the order of the transitions they report.
func (c *Coordinator) pushLocked(ev event) {
	if !c.callbacks.any() {
		return
	}
	c.mailbox = append(c.mailbox, ev)
	if c.dispatching {
		return
	}
	c.dispatching = true
	c.updateSettledLocked()
	go c.dispatch()
}

func (c *Coordinator) dispatch() {
	for {
		c.mu.Lock()
		if len(c.mailbox) == 0 {
			c.dispatching = false
			c.mailbox = nil
			c.updateSettledLocked()
			c.mu.Unlock()
			return
		}
		ev := c.mailbox[0]
		c.mailbox[0] = event{}
		c.mailbox = c.mailbox[1:]
		c.mu.Unlock()

		c.deliver(ev)
	}
}

func (c *Coordinator) deliver(ev event) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("form callback panicked", "event", ev.kind.String(), "panic", fmt.Sprint(r))
		}
	}()

	cb := c.callbacks
	switch ev.kind {
	case eventValid:
		if cb.OnValid != nil {
			cb.OnValid(ev.values)
		}
		if cb.OnValidChanged != nil {
			cb.OnValidChanged(true, ev.values, false)
		}
	case eventInvalid:
		if cb.OnInvalid != nil {
			cb.OnInvalid(ev.values, ev.validating)
		}
		if cb.OnValidChanged != nil {
			cb.OnValidChanged(false, ev.values, ev.validating)
		}
	case eventSubmit:
		if cb.OnSubmit != nil {
			cb.OnSubmit(ev.values, ev.valid)
		}
		if ev.valid {
			if cb.OnValidSubmit != nil {
				cb.OnValidSubmit(ev.values)
			}
		} else if cb.OnInvalidSubmit != nil {
			cb.OnInvalidSubmit(ev.values)
		}
	}
}

func (cb Callbacks) any() bool {
	return cb.OnSubmit != nil || cb.OnValidSubmit != nil || cb.OnInvalidSubmit != nil ||
		cb.OnValid != nil || cb.OnInvalid != nil || cb.OnValidChanged != nil
}
