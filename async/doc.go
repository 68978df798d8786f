// Package async provides the asynchronous execution primitives used by
// WG Manager: a serial background task queue with ordered completion
// delivery, and a one-shot future for publishing a result to many
// consumers.
//
// # Execution model
//
// Two serial contexts exist per Worker:
//
//   - The background context runs submitted work, one item at a time,
//     in submission order. Slow or blocking work (starting the root
//     shell, reading a backend version) belongs here.
//   - The dispatcher is the designated callback context. All completion
//     continuations run on it, never on the background context, so a
//     continuation may safely touch state that is only valid there.
//
// Submitting work never blocks the caller; items are queued without
// bound and always run to completion once dequeued. One item failing
// never stops later items from running.
//
// # Futures
//
// Future is a single-assignment result cell. Complete may be called
// exactly once; continuations registered before completion fire in
// registration order when it happens, continuations registered after
// fire immediately. Get blocks until the value exists and must not be
// called from the context expected to deliver the completion.
package async
