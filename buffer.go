package reactor

import (
	"sync"
	"time"

	"github.com/ygrebnov/reactor/timer"
)

// bufferOperator groups upstream values into fixed-size slices, optionally
// flushing early on a timeout (spec.md §4.4). Each downstream Next carries
// at most size elements.
type bufferOperator[T any] struct {
	upstream Publisher[T]
	size     int
	period   time.Duration
	timerSvc timer.Service
}

// Buffer returns a Publisher that groups upstream values into slices of at
// most size elements, emitting a slice only once it is full or upstream
// completes.
func Buffer[T any](upstream Publisher[T], size int) Publisher[[]T] {
	if size <= 0 {
		panic("reactor: Buffer size must be positive")
	}
	return &bufferOperator[T]{upstream: upstream, size: size}
}

// BufferTimeout returns a Publisher like Buffer, but also flushes whatever
// is pending, even if the buffer isn't full, on every tick of a timer that
// fires once per period counted from subscription. A size-triggered flush
// does not restart that timer, so a partial slice can be flushed less than
// period after its first element arrived. svc schedules the periodic flush;
// pass an Environment's Timer() or timer.NewWheel().
//
// A timeout-triggered flush and a size-triggered flush racing each other
// are mutually exclusive: both take the same lock before reading or
// clearing the pending slice, so exactly one flush of any given set of
// buffered values is ever emitted.
func BufferTimeout[T any](upstream Publisher[T], size int, period time.Duration, svc timer.Service) Publisher[[]T] {
	if size <= 0 {
		panic("reactor: BufferTimeout size must be positive")
	}
	return &bufferOperator[T]{upstream: upstream, size: size, period: period, timerSvc: svc}
}

func (o *bufferOperator[T]) Subscribe(down Subscriber[[]T]) {
	gate := newDownstreamGate[[]T](down)
	s := &bufferSubscriber[T]{gate: gate, size: o.size, period: o.period, timerSvc: o.timerSvc}
	o.upstream.Subscribe(s)
}

type bufferSubscriber[T any] struct {
	gate *downstreamGate[[]T]
	size int

	mu      sync.Mutex
	pending []T
	done    bool

	period   time.Duration
	timerSvc timer.Service
	reg      timer.Registration

	upstream Subscription
}

func (s *bufferSubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.gate.sub.OnSubscribe(newSubscription(s, s.gate.Error))
	if s.timerSvc != nil && s.period > 0 {
		s.reg = s.timerSvc.SchedulePeriodic(s.onTick, s.period)
	}
}

func (s *bufferSubscriber[T]) OnNext(v T) {
	flush := s.append(v)
	if flush != nil {
		s.gate.Next(flush)
	}
}

// append adds v to the pending buffer and, if it is now full, atomically
// takes ownership of flushing it by swapping in a fresh slice under lock.
func (s *bufferSubscriber[T]) append(v T) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	s.pending = append(s.pending, v)
	if len(s.pending) < s.size {
		return nil
	}
	out := s.pending
	s.pending = nil
	return out
}

// onTick runs on the timer's own goroutine; it only flushes a non-empty
// pending buffer, and races harmlessly against a concurrent size-triggered
// flush under the same lock.
func (s *bufferSubscriber[T]) onTick() {
	s.mu.Lock()
	if s.done || len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}
	out := s.pending
	s.pending = nil
	s.mu.Unlock()
	s.gate.Next(out)
}

func (s *bufferSubscriber[T]) OnError(err error) {
	s.stopTimer()
	s.gate.Error(err)
}

func (s *bufferSubscriber[T]) OnComplete() {
	s.stopTimer()
	s.mu.Lock()
	s.done = true
	out := s.pending
	s.pending = nil
	s.mu.Unlock()
	if len(out) > 0 {
		s.gate.Next(out)
	}
	s.gate.Complete()
}

func (s *bufferSubscriber[T]) stopTimer() {
	if s.reg != nil {
		s.reg.Cancel()
	}
}

func (s *bufferSubscriber[T]) request(n uint64) {
	if s.upstream == nil {
		return
	}
	if n == Unbounded {
		s.upstream.Request(Unbounded)
		return
	}
	// Each downstream slice corresponds to up to size upstream values.
	var total uint64
	for i := uint64(0); i < n; i++ {
		next := total + uint64(s.size)
		if next < total {
			total = Unbounded
			break
		}
		total = next
	}
	s.upstream.Request(total)
}

func (s *bufferSubscriber[T]) cancel() {
	s.stopTimer()
	s.mu.Lock()
	s.done = true
	s.mu.Unlock()
	if s.upstream != nil {
		s.upstream.Cancel()
	}
}
