package reactor

import "fmt"

// observeOperator runs a side-effecting callback on each value, passing the
// value through unchanged. A panic or error from the callback is wrapped
// and surfaced as Error (spec.md §4.3).
type observeOperator[T any] struct {
	upstream Publisher[T]
	fn       func(T) error
}

// Observe returns a Publisher that invokes fn for its side effect on each
// value before passing it through unchanged.
func Observe[T any](upstream Publisher[T], fn func(T)) Publisher[T] {
	return ObserveErr(upstream, func(v T) error { fn(v); return nil })
}

// ObserveErr is Observe for callbacks that may fail.
func ObserveErr[T any](upstream Publisher[T], fn func(T) error) Publisher[T] {
	return &observeOperator[T]{upstream: upstream, fn: fn}
}

func (o *observeOperator[T]) Subscribe(down Subscriber[T]) {
	gate := newDownstreamGate[T](down)
	s := &observeSubscriber[T]{gate: gate, fn: o.fn}
	o.upstream.Subscribe(s)
}

type observeSubscriber[T any] struct {
	gate     *downstreamGate[T]
	fn       func(T) error
	upstream Subscription
}

func (s *observeSubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.gate.sub.OnSubscribe(newSubscription(s, s.gate.Error))
}

func (s *observeSubscriber[T]) OnNext(v T) {
	if err := s.run(v); err != nil {
		s.gate.Error(err)
		return
	}
	s.gate.Next(v)
}

func (s *observeSubscriber[T]) run(v T) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = wrapUserError("observe", fmt.Errorf("panic: %v", p))
		}
	}()
	if e := s.fn(v); e != nil {
		return wrapUserError("observe", e)
	}
	return nil
}

func (s *observeSubscriber[T]) OnError(err error) { s.gate.Error(err) }
func (s *observeSubscriber[T]) OnComplete()        { s.gate.Complete() }

func (s *observeSubscriber[T]) request(n uint64) {
	if s.upstream != nil {
		s.upstream.Request(n)
	}
}

func (s *observeSubscriber[T]) cancel() {
	if s.upstream != nil {
		s.upstream.Cancel()
	}
}
