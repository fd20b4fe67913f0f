package reactor

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ygrebnov/reactor/dispatch"
	"github.com/ygrebnov/reactor/timer"
)

// Flow is a fluent wrapper over a Publisher, letting a pipeline read as a
// chain of calls instead of nested constructor calls. Go generics cannot
// introduce a new type parameter on a method (only on the enclosing type),
// so operators that change the element type — MapFlow, BufferFlow,
// BufferTimeoutFlow, WindowFlow, MovingWindowFlow, ScanFlow, ReduceFlow,
// FlatMapFlow — are free functions taking and returning a Flow, rather than
// methods, as is FlowWhen, whose error type is a second type parameter;
// operators whose element type is unchanged (Filter, Observe, IgnoreErrors,
// Merge, Partition, DispatchOn, Timeout, Sample, SampleFirst, Retry,
// Consume) are plain methods on Flow[T].
type Flow[T any] struct {
	pub Publisher[T]
}

// FromPublisher wraps an existing Publisher into a Flow.
func FromPublisher[T any](p Publisher[T]) Flow[T] { return Flow[T]{pub: p} }

// Publisher unwraps the Flow back to its underlying Publisher.
func (f Flow[T]) Publisher() Publisher[T] { return f.pub }

// Filter keeps only values for which pred returns true.
func (f Flow[T]) Filter(pred func(T) bool) Flow[T] {
	return Flow[T]{pub: Filter(f.pub, pred)}
}

// Observe runs fn for its side effect on every value, passing it through
// unchanged.
func (f Flow[T]) Observe(fn func(T)) Flow[T] {
	return Flow[T]{pub: Observe(f.pub, fn)}
}

// IgnoreErrors converts an upstream Error into Complete.
func (f Flow[T]) IgnoreErrors() Flow[T] {
	return Flow[T]{pub: IgnoreErrors(f.pub)}
}

// FlowWhen catches an upstream Error of type E, invokes handler, and
// substitutes Complete.
func FlowWhen[T any, E error](f Flow[T], handler func(E)) Flow[T] {
	return Flow[T]{pub: When[T, E](f.pub, handler)}
}

// Merge interleaves this Flow with others of the same element type.
func (f Flow[T]) Merge(others ...Flow[T]) Flow[T] {
	pubs := make([]Publisher[T], 0, len(others)+1)
	pubs = append(pubs, f.pub)
	for _, o := range others {
		pubs = append(pubs, o.pub)
	}
	return Flow[T]{pub: Merge(pubs...)}
}

// Partition opens n sub-stream Flows, routing by keyFn mod n (round-robin
// when keyFn is nil).
func (f Flow[T]) Partition(n int, keyFn func(T) uint64) []Flow[T] {
	pubs := Partition(f.pub, n, keyFn)
	out := make([]Flow[T], len(pubs))
	for i, p := range pubs {
		out[i] = Flow[T]{pub: p}
	}
	return out
}

// DispatchOn routes every signal through d.
func (f Flow[T]) DispatchOn(d dispatch.Dispatcher) Flow[T] {
	return Flow[T]{pub: DispatchOn(f.pub, d)}
}

// Timeout surfaces Error(Timeout) if duration elapses without a Next.
func (f Flow[T]) Timeout(duration time.Duration, svc timer.Service) Flow[T] {
	return Flow[T]{pub: Timeout(f.pub, duration, svc)}
}

// Sample emits the most recent value once per period.
func (f Flow[T]) Sample(period time.Duration, svc timer.Service) Flow[T] {
	return Flow[T]{pub: Sample(f.pub, period, svc)}
}

// SampleFirst emits the first value of each period window.
func (f Flow[T]) SampleFirst(period time.Duration, svc timer.Service) Flow[T] {
	return Flow[T]{pub: SampleFirst(f.pub, period, svc)}
}

// Retry re-subscribes on Error up to maxRetries times, per the supplemented
// Retry operator.
func (f Flow[T]) Retry(maxRetries int, newBackOff func() backoff.BackOff, svc timer.Service) Flow[T] {
	return Flow[T]{pub: Retry(f.pub, maxRetries, newBackOff, svc)}
}

// Consume subscribes a terminal, Unbounded-demand consumer.
func (f Flow[T]) Consume(onNext func(T), onDone func(error)) {
	Consume(f.pub, onNext, onDone)
}

// MapFlow applies fn to every value, changing the Flow's element type.
func MapFlow[In, Out any](f Flow[In], fn func(In) Out) Flow[Out] {
	return Flow[Out]{pub: Map(f.pub, fn)}
}

// BufferFlow groups values into slices of at most size elements.
func BufferFlow[T any](f Flow[T], size int) Flow[[]T] {
	return Flow[[]T]{pub: Buffer(f.pub, size)}
}

// BufferTimeoutFlow is BufferFlow plus a periodic early flush.
func BufferTimeoutFlow[T any](f Flow[T], size int, period time.Duration, svc timer.Service) Flow[[]T] {
	return Flow[[]T]{pub: BufferTimeout(f.pub, size, period, svc)}
}

// WindowFlow groups values into inner Flows of at most size elements each.
func WindowFlow[T any](f Flow[T], size int) Flow[Publisher[T]] {
	return Flow[Publisher[T]]{pub: Window(f.pub, size)}
}

// MovingWindowFlow snapshots the most recent backlog values every period.
func MovingWindowFlow[T any](f Flow[T], period, delay time.Duration, backlog int, svc timer.Service) Flow[[]T] {
	return Flow[[]T]{pub: MovingWindow(f.pub, period, delay, backlog, svc)}
}

// ScanFlow folds upstream values into a running accumulator, emitting it
// after every Next.
func ScanFlow[In, Acc any](f Flow[In], seed Acc, fn func(Acc, In) Acc) Flow[Acc] {
	return Flow[Acc]{pub: Scan(f.pub, seed, fn)}
}

// ReduceFlow folds the entire upstream into a single accumulator, emitted
// once at Complete.
func ReduceFlow[In, Acc any](f Flow[In], seed Acc, fn func(Acc, In) Acc) Flow[Acc] {
	return Flow[Acc]{pub: Reduce(f.pub, seed, fn)}
}

// FlatMapFlow subscribes to fn(v) for every value and merges the inner
// Next signals into the output.
func FlatMapFlow[In, Out any](f Flow[In], fn func(In) Publisher[Out]) Flow[Out] {
	return Flow[Out]{pub: FlatMap(f.pub, fn)}
}
