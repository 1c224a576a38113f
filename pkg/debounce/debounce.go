// Package debounce delays a stream of values until it settles.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delivers the latest pushed value once no new value has arrived
// for the configured delay.
type Debouncer[T any] struct {
	delay time.Duration
	out   chan T

	mu     sync.Mutex
	timer  *time.Timer
	gen    uint64
	closed bool
}

// New returns a Debouncer with the given quiet period.
func New[T any](delay time.Duration) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, out: make(chan T, 1)}
}

// C returns the channel settled values are delivered on. It is closed by Close.
func (d *Debouncer[T]) C() <-chan T {
	return d.out
}

// Push records v and restarts the quiet period. A settled value that was
// not received yet is superseded by v.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.stopLocked()
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen, v) })
}

// Cancel drops a pending value, including one that settled but was not
// received yet.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Close cancels any pending value and closes C.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.stopLocked()
	d.closed = true
	close(d.out)
}

func (d *Debouncer[T]) fire(gen uint64, v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || gen != d.gen {
		return
	}
	d.timer = nil
	// Replace an undelivered value rather than block the timer goroutine.
	select {
	case <-d.out:
	default:
	}
	d.out <- v
}

// stopLocked invalidates the running timer and drops a settled value the
// consumer has not received yet. A timer that already fired and is waiting
// on mu sees the bumped generation and does nothing.
func (d *Debouncer[T]) stopLocked() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	select {
	case <-d.out:
	default:
	}
}
