// Package dispatch implements the dispatcher abstraction of the
// specification: an executor accepting unit-of-work submissions, decoupling
// signal emission from the caller's thread. Four variants are provided —
// synchronous, single-threaded, work-stealing pool and ring-buffer — all
// sharing the Dispatcher interface and differing only in ordering and
// parallelism guarantees (see the table on the Dispatcher interface).
//
// The pool variant is grounded directly on the teacher's worker/pool split
// (github.com/ygrebnov/workers' dispatcher.go, worker.go and the pool
// subpackage, reused here as github.com/ygrebnov/reactor/pool); the
// single-threaded variant generalizes the teacher's fifo.go sequential
// executor; shutdown sequencing in every variant follows the teacher's
// lifecycle.go ordered, sync.Once-guarded Close.
package dispatch

import "time"

// Task is a unit of work submitted to a Dispatcher.
type Task func()

// Dispatcher decouples signal emission from the caller's thread. All
// variants expose this same submit contract; they differ in ordering and
// parallelism guarantees:
//
//	Variant           Concurrency      Order across submissions   Order within one submitter
//	synchronous       caller thread    caller order                yes
//	single-threaded   1 worker         FIFO global                 yes
//	pool              N workers        none                        no
//	ring-buffer (sp)  1 consumer       FIFO                        yes
//	ring-buffer (mp)  1 consumer       per-producer FIFO           yes
type Dispatcher interface {
	// Dispatch enqueues t for execution without waiting for it to run,
	// except that under OverflowBlock it waits for queue space. t runs on
	// a dispatcher-owned goroutine, or inline for the synchronous variant.
	// Dispatch returns a non-nil Overflow error if the dispatcher cannot
	// accept the task under its configured backpressure policy.
	Dispatch(t Task) error

	// Shutdown stops accepting submissions, drains existing tasks up to
	// timeout, then abandons any remainder. It reports whether the queue
	// drained cleanly before the timeout elapsed.
	Shutdown(timeout time.Duration) bool

	// InContext reports whether the caller is currently running on this
	// dispatcher's worker goroutine, used to avoid redundant re-submission
	// (e.g. a boundary operator skipping a hop when already on-context).
	InContext() bool
}

// DispatchValue is the generic shorthand for dispatch(data, consumer):
// it submits a task that invokes consume(data) on d.
func DispatchValue[T any](d Dispatcher, data T, consume func(T)) error {
	return d.Dispatch(func() { consume(data) })
}
