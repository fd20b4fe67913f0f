package reactor

import "github.com/ygrebnov/reactor/dispatch"

// dispatchOnOperator is the boundary operator of spec.md §4.3: every
// upstream Next, Error and Complete is enqueued onto d instead of running
// synchronously on the caller's thread. request(n) bypasses the dispatcher
// and flows upstream immediately — only the three downstream-bound signals
// cross the boundary through d.
//
// Because a non-ordered dispatcher (the work-stealing pool) may run
// enqueued tasks out of submission order, downstream demand accounting
// must stay precise per spec.md §4.3 "Scheduling of demand": this operator
// forwards downstream Request upstream unchanged, so every Next it enqueues
// was already counted against that demand when upstream emitted it, and an
// in-flight (not yet executed) task is always already accounted for.
type dispatchOnOperator[T any] struct {
	upstream Publisher[T]
	d        dispatch.Dispatcher
}

// DispatchOn returns a Publisher that forwards upstream signals through d.
func DispatchOn[T any](upstream Publisher[T], d dispatch.Dispatcher) Publisher[T] {
	return &dispatchOnOperator[T]{upstream: upstream, d: d}
}

func (o *dispatchOnOperator[T]) Subscribe(down Subscriber[T]) {
	gate := newDownstreamGate[T](down)
	s := &dispatchOnSubscriber[T]{gate: gate, d: o.d}
	o.upstream.Subscribe(s)
}

type dispatchOnSubscriber[T any] struct {
	gate     *downstreamGate[T]
	d        dispatch.Dispatcher
	upstream Subscription
}

func (s *dispatchOnSubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.gate.sub.OnSubscribe(newSubscription(s, s.gate.Error))
}

func (s *dispatchOnSubscriber[T]) OnNext(v T) {
	// Credit is already consumed upstream (the subscription given to our
	// own downstream accounted for it on Request); enqueueing here only
	// defers delivery, it never re-spends demand.
	if err := dispatch.DispatchValue(s.d, v, s.gate.Next); err != nil {
		s.gate.Error(newOperatorError(KindOverflow, "dispatchOn", err))
	}
}

func (s *dispatchOnSubscriber[T]) OnError(err error) {
	if dispErr := s.d.Dispatch(func() { s.gate.Error(err) }); dispErr != nil {
		s.gate.Error(err)
	}
}

func (s *dispatchOnSubscriber[T]) OnComplete() {
	if err := s.d.Dispatch(s.gate.Complete); err != nil {
		s.gate.Complete()
	}
}

func (s *dispatchOnSubscriber[T]) request(n uint64) {
	if s.upstream != nil {
		s.upstream.Request(n)
	}
}

func (s *dispatchOnSubscriber[T]) cancel() {
	if s.upstream != nil {
		s.upstream.Cancel()
	}
}
