// Package async provides asynchronous execution primitives for WG Manager.
// This file contains the Dispatcher, the designated callback context on
// which all completion continuations run.
package async

import "sync"

// Dispatcher is a serial execution context backed by a single goroutine.
// Functions posted to it run one at a time, in posting order. It plays
// the role of a main loop: completion continuations are delivered here
// so they never race with each other.
type Dispatcher struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}
}

// NewDispatcher creates a Dispatcher and starts its loop goroutine.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		done: make(chan struct{}),
	}
	d.cond = sync.NewCond(&d.mu)
	go d.run()
	return d
}

// Post enqueues fn for execution on the dispatcher goroutine.
// It never blocks the caller. Posting after Close is a no-op.
func (d *Dispatcher) Post(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.queue = append(d.queue, fn)
	d.cond.Signal()
}

// Close stops the dispatcher after draining already-posted functions.
// It blocks until the loop goroutine has exited.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	d.cond.Signal()
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.closed {
			d.cond.Wait()
		}
		if len(d.queue) == 0 && d.closed {
			d.mu.Unlock()
			return
		}
		fn := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()

		fn()
	}
}
