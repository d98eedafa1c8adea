package form

import (
	"sync"
	"time"
)

// debouncer is a single-slot deferred task: scheduling replaces the pending
// run instead of stacking another one.
type debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	seq   uint64
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay}
}

// schedule cancels any pending run and arms fn to run after the delay.
func (d *debouncer) schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := seq == d.seq
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		// a timer that fired while being replaced is stale
		if current {
			fn()
		}
	})
}

// cancel drops the pending run and reports whether one existed.
func (d *debouncer) cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	return true
}
