package reactor

import (
	"sync"
	"time"

	"github.com/ygrebnov/reactor/timer"
)

// sampleFirstOperator emits the first Next of each period window and drops
// the rest until the window rolls (spec.md §4.3). Every timing operator
// binds its timer registration at subscription and cancels it on any
// terminal or cancel.
type sampleFirstOperator[T any] struct {
	upstream Publisher[T]
	period   time.Duration
	svc      timer.Service
}

// SampleFirst returns a Publisher emitting only the first value of each
// period-long window.
func SampleFirst[T any](upstream Publisher[T], period time.Duration, svc timer.Service) Publisher[T] {
	return &sampleFirstOperator[T]{upstream: upstream, period: period, svc: svc}
}

func (o *sampleFirstOperator[T]) Subscribe(down Subscriber[T]) {
	gate := newDownstreamGate[T](down)
	s := &sampleFirstSubscriber[T]{gate: gate}
	o.upstream.Subscribe(s)
	s.reg = o.svc.SchedulePeriodic(s.rollWindow, o.period)
}

type sampleFirstSubscriber[T any] struct {
	gate     *downstreamGate[T]
	upstream Subscription
	reg      timer.Registration

	mu        sync.Mutex
	emittedIn bool
}

func (s *sampleFirstSubscriber[T]) rollWindow() {
	s.mu.Lock()
	s.emittedIn = false
	s.mu.Unlock()
}

func (s *sampleFirstSubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.gate.sub.OnSubscribe(newSubscription(s, s.gate.Error))
}

func (s *sampleFirstSubscriber[T]) OnNext(v T) {
	s.mu.Lock()
	if s.emittedIn {
		s.mu.Unlock()
		if s.upstream != nil {
			s.upstream.Request(1)
		}
		return
	}
	s.emittedIn = true
	s.mu.Unlock()
	s.gate.Next(v)
}

func (s *sampleFirstSubscriber[T]) OnError(err error) {
	s.stop()
	s.gate.Error(err)
}

func (s *sampleFirstSubscriber[T]) OnComplete() {
	s.stop()
	s.gate.Complete()
}

func (s *sampleFirstSubscriber[T]) stop() {
	if s.reg != nil {
		s.reg.Cancel()
	}
}

func (s *sampleFirstSubscriber[T]) request(n uint64) {
	if s.upstream != nil {
		s.upstream.Request(n)
	}
}

func (s *sampleFirstSubscriber[T]) cancel() {
	s.stop()
	if s.upstream != nil {
		s.upstream.Cancel()
	}
}

// sampleOperator emits the last Next seen in each period window, at the
// window boundary (spec.md §4.3). Like reduce, the emission is driven by
// the timer rather than paced 1:1 against downstream Request, so it pulls
// Unbounded from upstream.
type sampleOperator[T any] struct {
	upstream Publisher[T]
	period   time.Duration
	svc      timer.Service
}

// Sample returns a Publisher emitting the most recent value seen in each
// period-long window, once per window.
func Sample[T any](upstream Publisher[T], period time.Duration, svc timer.Service) Publisher[T] {
	return &sampleOperator[T]{upstream: upstream, period: period, svc: svc}
}

func (o *sampleOperator[T]) Subscribe(down Subscriber[T]) {
	gate := newDownstreamGate[T](down)
	s := &sampleSubscriber[T]{gate: gate}
	o.upstream.Subscribe(s)
	s.reg = o.svc.SchedulePeriodic(s.flush, o.period)
}

type sampleSubscriber[T any] struct {
	gate     *downstreamGate[T]
	upstream Subscription
	reg      timer.Registration

	mu      sync.Mutex
	hasLast bool
	last    T
}

func (s *sampleSubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.gate.sub.OnSubscribe(newSubscription(s, s.gate.Error))
	sub.Request(Unbounded)
}

func (s *sampleSubscriber[T]) OnNext(v T) {
	s.mu.Lock()
	s.last = v
	s.hasLast = true
	s.mu.Unlock()
}

func (s *sampleSubscriber[T]) flush() {
	s.mu.Lock()
	if !s.hasLast {
		s.mu.Unlock()
		return
	}
	v := s.last
	s.hasLast = false
	s.mu.Unlock()
	s.gate.Next(v)
}

func (s *sampleSubscriber[T]) OnError(err error) {
	s.stop()
	s.gate.Error(err)
}

func (s *sampleSubscriber[T]) OnComplete() {
	s.stop()
	s.gate.Complete()
}

func (s *sampleSubscriber[T]) stop() {
	if s.reg != nil {
		s.reg.Cancel()
	}
}

func (s *sampleSubscriber[T]) request(n uint64) {}

func (s *sampleSubscriber[T]) cancel() {
	s.stop()
	if s.upstream != nil {
		s.upstream.Cancel()
	}
}

// timeoutOperator forwards input unchanged but surfaces Error(Timeout) if
// no Next arrives within duration of the last emission (or of subscribe,
// for the first value) (spec.md §4.3).
type timeoutOperator[T any] struct {
	upstream Publisher[T]
	duration time.Duration
	svc      timer.Service
}

// Timeout returns a Publisher that forwards upstream unchanged, but emits
// Error(Timeout) if duration elapses without a Next.
func Timeout[T any](upstream Publisher[T], duration time.Duration, svc timer.Service) Publisher[T] {
	return &timeoutOperator[T]{upstream: upstream, duration: duration, svc: svc}
}

func (o *timeoutOperator[T]) Subscribe(down Subscriber[T]) {
	gate := newDownstreamGate[T](down)
	s := &timeoutSubscriber[T]{gate: gate, svc: o.svc, duration: o.duration}
	o.upstream.Subscribe(s)
	s.armTimer()
}

type timeoutSubscriber[T any] struct {
	gate     *downstreamGate[T]
	upstream Subscription
	svc      timer.Service
	duration time.Duration

	mu  sync.Mutex
	reg timer.Registration
	gen uint64
}

func (s *timeoutSubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.gate.sub.OnSubscribe(newSubscription(s, s.gate.Error))
}

func (s *timeoutSubscriber[T]) armTimer() {
	s.mu.Lock()
	s.gen++
	myGen := s.gen
	s.mu.Unlock()
	reg := s.svc.Schedule(func() { s.onFire(myGen) }, s.duration)
	s.mu.Lock()
	if s.gen == myGen {
		s.reg = reg
	} else {
		reg.Cancel()
	}
	s.mu.Unlock()
}

func (s *timeoutSubscriber[T]) onFire(gen uint64) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	if s.upstream != nil {
		s.upstream.Cancel()
	}
	s.gate.Error(newOperatorError(KindTimeout, "timeout", ErrTimeout))
}

func (s *timeoutSubscriber[T]) OnNext(v T) {
	s.armTimer()
	s.gate.Next(v)
}

func (s *timeoutSubscriber[T]) OnError(err error) {
	s.stop()
	s.gate.Error(err)
}

func (s *timeoutSubscriber[T]) OnComplete() {
	s.stop()
	s.gate.Complete()
}

func (s *timeoutSubscriber[T]) stop() {
	s.mu.Lock()
	s.gen++
	reg := s.reg
	s.mu.Unlock()
	if reg != nil {
		reg.Cancel()
	}
}

func (s *timeoutSubscriber[T]) request(n uint64) {
	if s.upstream != nil {
		s.upstream.Request(n)
	}
}

func (s *timeoutSubscriber[T]) cancel() {
	s.stop()
	if s.upstream != nil {
		s.upstream.Cancel()
	}
}
