// Package async provides asynchronous execution primitives for WG Manager.
// This file contains the one-shot Future used to publish the resolved
// backend to every consumer in the process.
package async

import "sync"

// futureState is the tagged state of a Future. Transitions are
// monotonic: unset -> set, never back.
type futureState int

const (
	futureUnset futureState = iota
	futureSet
)

// Future is a single-assignment result cell. It is completed exactly
// once and may be observed any number of times, either by blocking on
// Get or by registering continuations with OnComplete.
type Future[T any] struct {
	mu    sync.Mutex
	state futureState
	val   T
	conts []func(T)
	done  chan struct{}
}

// NewFuture returns an empty, uncompleted Future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{
		done: make(chan struct{}),
	}
}

// Complete sets the value and synchronously invokes every registered
// continuation, in registration order, on the calling goroutine.
// Callers are expected to invoke it from the dispatcher so downstream
// continuations get consistent context guarantees.
//
// Completing a Future twice is a programming error and panics.
func (f *Future[T]) Complete(val T) {
	f.mu.Lock()
	if f.state == futureSet {
		f.mu.Unlock()
		panic("async: Future completed twice")
	}
	f.state = futureSet
	f.val = val
	conts := f.conts
	f.conts = nil
	close(f.done)
	f.mu.Unlock()

	for _, fn := range conts {
		fn(val)
	}
}

// OnComplete registers a continuation for the value. If the Future is
// already completed, fn runs immediately on the calling goroutine;
// otherwise it fires exactly once when Complete is invoked. Registering
// the same continuation twice runs it twice.
func (f *Future[T]) OnComplete(fn func(T)) {
	f.mu.Lock()
	if f.state != futureSet {
		f.conts = append(f.conts, fn)
		f.mu.Unlock()
		return
	}
	val := f.val
	f.mu.Unlock()
	fn(val)
}

// Completed reports whether the Future has been completed.
func (f *Future[T]) Completed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == futureSet
}

// Get blocks the calling goroutine until the Future is completed, then
// returns the value. It must not be called from the context responsible
// for driving the completion: that would deadlock. This is a caller
// obligation, not enforced here.
func (f *Future[T]) Get() T {
	<-f.done
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.val
}
