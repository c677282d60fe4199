package utils

import (
	"sync"
	"time"
)

// Throttle limits calls to fn to at most one per window. A call outside the
// window runs immediately on the caller's goroutine; calls inside it schedule a
// single trailing call that runs when the window ends with the most recent
// argument.
type Throttle[T any] struct {
	fn     func(T)
	window time.Duration

	mu      sync.Mutex
	last    time.Time
	timer   *time.Timer
	gen     uint64
	pending T
	stopped bool
}

func NewThrottle[T any](window time.Duration, fn func(T)) *Throttle[T] {
	return &Throttle[T]{fn: fn, window: window}
}

func (t *Throttle[T]) Call(v T) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	remaining := t.window - time.Since(t.last)
	if remaining <= 0 {
		if t.timer != nil {
			t.timer.Stop()
			t.timer = nil
		}
		t.last = time.Now()
		t.mu.Unlock()
		t.fn(v)
		return
	}
	t.pending = v
	if t.timer == nil {
		t.gen++
		gen := t.gen
		t.timer = time.AfterFunc(remaining, func() { t.flush(gen) })
	}
	t.mu.Unlock()
}

func (t *Throttle[T]) flush(gen uint64) {
	t.mu.Lock()
	if t.stopped || t.timer == nil || gen != t.gen {
		t.mu.Unlock()
		return
	}
	v := t.pending
	var zero T
	t.pending = zero
	t.timer = nil
	t.last = time.Now()
	t.mu.Unlock()
	t.fn(v)
}

// Stop drops any pending trailing call. Later calls are ignored.
func (t *Throttle[T]) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Debounce runs fn only after delay has passed without another call, with the
// argument of the last call.
type Debounce[T any] struct {
	fn    func(T)
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func NewDebounce[T any](delay time.Duration, fn func(T)) *Debounce[T] {
	return &Debounce[T]{fn: fn, delay: delay}
}

func (d *Debounce[T]) Call(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fn(v) })
}

// Stop cancels a pending call. Later calls are ignored.
func (d *Debounce[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
