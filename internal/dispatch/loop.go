// Package dispatch provides the single consumer loop that stands in for the
// interactive thread. All session and UI state is mutated inside closures
// executed by one goroutine; worker goroutines and timers cross the boundary
// only by posting messages.
package dispatch

import (
	"sync"
	"time"
)

// Loop executes posted closures sequentially on a single goroutine.
type Loop struct {
	tasks chan func()

	mu      sync.Mutex
	closed  bool
	done    chan struct{}
	started bool
}

// NewLoop creates a loop with a bounded task queue.
func NewLoop(buffer int) *Loop {
	if buffer <= 0 {
		buffer = 256
	}
	return &Loop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Start launches the consumer goroutine. Calling Start twice is a no-op.
func (l *Loop) Start() {
	l.mu.Lock()
	if l.started || l.closed {
		l.mu.Unlock()
		return
	}
	l.started = true
	l.mu.Unlock()

	go l.run()
}

// run consumes tasks until Close.
func (l *Loop) run() {
	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-l.done:
			// Drain whatever was already queued so posted outcomes are not
			// lost during shutdown.
			for {
				select {
				case fn := <-l.tasks:
					fn()
				default:
					return
				}
			}
		}
	}
}

// Post enqueues fn for execution on the loop. Posts after Close are dropped;
// the report value tells the caller whether the message was accepted.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return false
	}

	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// PostAfter schedules fn to be posted onto the loop after delay.
func (l *Loop) PostAfter(delay time.Duration, fn func()) *time.Timer {
	return time.AfterFunc(delay, func() {
		l.Post(fn)
	})
}

// Do posts fn and blocks until it has run. It must not be called from the
// loop goroutine itself.
func (l *Loop) Do(fn func()) {
	ran := make(chan struct{})
	if !l.Post(func() {
		defer close(ran)
		fn()
	}) {
		return
	}
	<-ran
}

// Close stops the consumer after draining already-queued tasks.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.done)
}
