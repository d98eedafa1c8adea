package form

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
)

// StartValidation drives the queue when nothing is in flight. When a driver
// is already running, or the queue is empty, it only attempts to complete the
// round; that completion is dropped while work is still pending. Before
// Mount queued work is left for the mount sweep.
func (c *Coordinator) StartValidation() {
	c.mu.Lock()
	if !c.initialized {
		c.updateSettledLocked()
		c.mu.Unlock()
		return
	}
	if c.validating || c.queue.Len() == 0 {
		c.finishLocked()
		c.updateSettledLocked()
		c.mu.Unlock()
		return
	}
	c.validating = true
	ctx := c.ctx
	c.updateSettledLocked()
	c.mu.Unlock()

	go c.drain(ctx)
}

// drain validates queued fields one at a time, oldest first.
func (c *Coordinator) drain(ctx context.Context) {
	for {
		c.mu.Lock()
		if ctx.Err() != nil {
			c.abortLocked(ctx)
			return
		}
		name, ok := c.queue.Pop()
		if !ok {
			c.validating = false
			c.finishLocked()
			c.updateSettledLocked()
			c.mu.Unlock()
			return
		}
		f := c.fields.lookup(name)
		c.mu.Unlock()

		if f == nil {
			c.logger.Debug("queued field no longer attached", "field", name)
			continue
		}

		err := c.validateField(ctx, f)

		c.mu.Lock()
		// a field detached mid-flight is not tracked
		attached := c.fields.lookup(name) == f
		if attached {
			if err != nil {
				c.failed[name] = err
			} else {
				delete(c.failed, name)
			}
		}
		c.mu.Unlock()

		if err != nil {
			c.logger.Warn("field validation failed", "field", name, "error", err)
			if inv, ok := f.(Invalidator); ok && attached {
				inv.Invalidate(err)
			}
		}
	}
}

// abortLocked stops a driver whose context was cancelled. Work queued after
// a remount is handed to a fresh driver. Called with c.mu held; releases it.
func (c *Coordinator) abortLocked(ctx context.Context) {
	if c.ctx == ctx {
		c.queue.Clear()
	}
	c.validating = false
	restart := c.queue.Len() > 0
	c.updateSettledLocked()
	c.mu.Unlock()

	c.logger.Debug("validation driver stopped", "error", ctx.Err())
	if restart {
		c.StartValidation()
	}
}

// finishLocked completes a round: it recomputes aggregate validity and
// notifies the host, unless a newer round is already pending.
func (c *Coordinator) finishLocked() {
	if c.isValidatingLocked() {
		c.logger.Debug("stale completion suppressed", "queued", c.queue.Len())
		return
	}
	allValid := true
	for _, f := range c.fields.fields {
		if !f.IsValid() || c.failed[f.Name()] != nil {
			allValid = false
			break
		}
	}
	c.valid = allValid
	if allValid {
		c.pushValidLocked()
	} else {
		c.pushInvalidLocked()
	}
}

func (c *Coordinator) validateField(ctx context.Context, f Field) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("form: field %q validation panicked: %s", f.Name(), fmt.Sprint(r))
		}
	}()
	if err := f.Validate(ctx); err != nil {
		return errors.Wrapf(err, "form: validate %q", f.Name())
	}
	return nil
}
