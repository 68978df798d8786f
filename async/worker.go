// Package async provides asynchronous execution primitives for WG Manager.
// This file contains the Worker, a serial background task queue, and the
// Handle type used to observe the completion of submitted work.
package async

import "sync"

// Worker executes submitted work items one at a time, in submission
// order, on a single background goroutine. Completion results are
// delivered to continuations on the associated Dispatcher, never on
// the background goroutine itself.
//
// The queue is unbounded: Submit never blocks the caller. There is no
// cancellation; a dequeued item always runs to completion. A failing
// item propagates its error to its own continuations and the queue
// keeps draining subsequent items.
type Worker struct {
	mu         sync.Mutex
	cond       *sync.Cond
	queue      []func()
	closed     bool
	done       chan struct{}
	dispatcher *Dispatcher
}

// NewWorker creates a Worker delivering completions to dispatcher and
// starts its background goroutine.
func NewWorker(dispatcher *Dispatcher) *Worker {
	w := &Worker{
		done:       make(chan struct{}),
		dispatcher: dispatcher,
	}
	w.cond = sync.NewCond(&w.mu)
	go w.run()
	return w
}

// Dispatcher returns the callback context completions are delivered on.
func (w *Worker) Dispatcher() *Dispatcher {
	return w.dispatcher
}

// Close stops the worker after draining already-submitted items.
// It blocks until the background goroutine has exited. Completions for
// drained items are still delivered through the dispatcher, so the
// dispatcher must be closed after the worker.
func (w *Worker) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	w.cond.Signal()
	w.mu.Unlock()
	<-w.done
}

// enqueue adds an item to the tail of the queue without blocking.
// Items enqueued after Close are dropped.
func (w *Worker) enqueue(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.queue = append(w.queue, fn)
	w.cond.Signal()
}

func (w *Worker) run() {
	defer close(w.done)
	for {
		w.mu.Lock()
		for len(w.queue) == 0 && !w.closed {
			w.cond.Wait()
		}
		if len(w.queue) == 0 && w.closed {
			w.mu.Unlock()
			return
		}
		fn := w.queue[0]
		w.queue = w.queue[1:]
		w.mu.Unlock()

		fn()
	}
}

// Handle observes the completion of one submitted work item.
// Continuations registered with OnComplete run on the worker's
// dispatcher, in registration order, exactly once each.
type Handle[T any] struct {
	mu         sync.Mutex
	settled    bool
	val        T
	err        error
	conts      []func(T, error)
	dispatcher *Dispatcher
}

// OnComplete registers a continuation to receive the item's result or
// error. If the item has already completed, the continuation is posted
// to the dispatcher immediately. Registering the same continuation
// twice runs it twice.
func (h *Handle[T]) OnComplete(fn func(T, error)) {
	h.mu.Lock()
	if !h.settled {
		h.conts = append(h.conts, fn)
		h.mu.Unlock()
		return
	}
	val, err := h.val, h.err
	h.mu.Unlock()
	h.dispatcher.Post(func() { fn(val, err) })
}

// settle records the result and posts registered continuations to the
// dispatcher as a single batch, preserving registration order.
func (h *Handle[T]) settle(val T, err error) {
	h.mu.Lock()
	h.settled = true
	h.val, h.err = val, err
	conts := h.conts
	h.conts = nil
	h.mu.Unlock()

	if len(conts) == 0 {
		return
	}
	h.dispatcher.Post(func() {
		for _, fn := range conts {
			fn(val, err)
		}
	})
}

// Submit enqueues work on the worker's background goroutine and returns
// a Handle for its completion. Submission never blocks. Chain further
// work by calling Submit again from a continuation; each hop keeps FIFO
// ordering relative to items already queued.
func Submit[T any](w *Worker, work func() (T, error)) *Handle[T] {
	h := &Handle[T]{dispatcher: w.dispatcher}
	w.enqueue(func() {
		val, err := work()
		h.settle(val, err)
	})
	return h
}

// Run enqueues fire-and-forget work with no result. Errors are passed
// to continuations of the returned handle, if any are registered.
func Run(w *Worker, work func() error) *Handle[struct{}] {
	return Submit(w, func() (struct{}, error) {
		return struct{}{}, work()
	})
}
