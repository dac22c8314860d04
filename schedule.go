package vcedit

import (
	"context"
	"sync"
)

// Task is a deferred callback that may still be canceled.
type Task interface {
	// Cancel prevents the callback from running. It reports whether the
	// callback was still pending.
	Cancel() bool
}

// Scheduler defers callbacks to the next tick: they run after the current
// synchronous batch of work, before the next external event is handled.
type Scheduler interface {
	Defer(fn func()) Task
}

type task struct {
	mu       sync.Mutex
	fn       func()
	finished bool
}

func (t *task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finished {
		return false
	}
	t.finished = true
	return true
}

// claim marks the task as run and reports whether it was still pending.
func (t *task) claim() bool {
	return t.Cancel()
}

// Loop is a cooperative event loop. Deferred callbacks run in FIFO order on
// Tick; callbacks deferred while a tick runs wait for the next one. External
// events are handed in with Post and run one at a time by Run, each followed
// by ticks until no callback is pending.
type Loop struct {
	mu      sync.Mutex
	pending []*task
	posted  chan func()
}

// NewLoop creates an idle loop.
func NewLoop() *Loop {
	return &Loop{posted: make(chan func(), 64)}
}

// Defer queues fn for the next tick.
func (l *Loop) Defer(fn func()) Task {
	t := &task{fn: fn}
	l.mu.Lock()
	l.pending = append(l.pending, t)
	l.mu.Unlock()
	return t
}

// Tick runs the callbacks that were pending when it was called and returns
// how many ran. Canceled callbacks are dropped.
func (l *Loop) Tick() int {
	l.mu.Lock()
	batch := l.pending
	l.pending = nil
	l.mu.Unlock()

	ran := 0
	for _, t := range batch {
		if !t.claim() {
			continue
		}
		t.fn()
		ran++
	}
	return ran
}

// Pending returns the number of queued callbacks, canceled ones included.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Drain ticks until no callback is pending.
func (l *Loop) Drain() {
	for l.Pending() > 0 {
		l.Tick()
	}
}

// Post hands an external event to the loop. It is safe to call from any
// goroutine and blocks while the loop's inbox is full or ctx is done.
func (l *Loop) Post(ctx context.Context, fn func()) error {
	select {
	case l.posted <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run serves posted events until ctx is done. Every event runs on the
// calling goroutine and is followed by a full Drain.
func (l *Loop) Run(ctx context.Context) error {
	l.Drain()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.posted:
			fn()
			l.Drain()
		}
	}
}
