package services

import (
	"sync"
	"time"
)

type stopper interface{ Stop() bool }

// Debouncer writes only the latest scheduled value once delay has passed
// without a newer one. Writes never overlap and happen in schedule order.
type Debouncer[T any] struct {
	mu         sync.Mutex
	writeMu    sync.Mutex
	delay      time.Duration
	write      func(T)
	afterFunc  func(time.Duration, func()) stopper
	timer      stopper
	gen        uint64
	pending    T
	hasPending bool
	stopped    bool
}

// NewDebouncer calls write with the latest value delay after the last Schedule.
func NewDebouncer[T any](delay time.Duration, write func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		delay: delay,
		write: write,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
}

// Schedule replaces any pending value with v and restarts the delay.
func (d *Debouncer[T]) Schedule(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = v
	d.hasPending = true
	d.timer = d.afterFunc(d.delay, func() { d.fire(gen) })
}

// Cancel drops the pending value without writing it.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

func (d *Debouncer[T]) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	var zero T
	d.pending = zero
	d.hasPending = false
}

// Pending reports whether a write is armed.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasPending
}

// Flush writes the pending value now, if any.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if !d.hasPending {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.cancelLocked()
	d.writeMu.Lock()
	d.mu.Unlock()
	defer d.writeMu.Unlock()
	d.write(v)
}

// Stop flushes the pending value and refuses further schedules.
func (d *Debouncer[T]) Stop() {
	d.Flush()
	d.mu.Lock()
	d.stopped = true
	d.cancelLocked()
	d.mu.Unlock()
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.hasPending {
		d.mu.Unlock()
		return
	}
	v := d.pending
	var zero T
	d.pending = zero
	d.hasPending = false
	d.timer = nil
	d.writeMu.Lock()
	d.mu.Unlock()
	defer d.writeMu.Unlock()
	d.write(v)
}
