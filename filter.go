package reactor

import "fmt"

// filterOperator keeps values for which p(v) is true. Discarding a value
// would otherwise silently consume one unit of downstream-issued demand
// without producing a Next signal for it, so on every discard the operator
// issues one extra Request(1) upstream to replace the lost credit and keep
// downstream pacing intact (spec.md §4.3).
type filterOperator[T any] struct {
	upstream Publisher[T]
	pred     func(T) bool
}

// Filter returns a Publisher emitting only the values from upstream for
// which pred returns true.
func Filter[T any](upstream Publisher[T], pred func(T) bool) Publisher[T] {
	return &filterOperator[T]{upstream: upstream, pred: pred}
}

func (f *filterOperator[T]) Subscribe(down Subscriber[T]) {
	gate := newDownstreamGate[T](down)
	s := &filterSubscriber[T]{gate: gate, pred: f.pred}
	f.upstream.Subscribe(s)
}

type filterSubscriber[T any] struct {
	gate     *downstreamGate[T]
	pred     func(T) bool
	upstream Subscription
}

func (s *filterSubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.gate.sub.OnSubscribe(newSubscription(s, s.gate.Error))
}

func (s *filterSubscriber[T]) OnNext(v T) {
	keep, err := s.test(v)
	if err != nil {
		s.gate.Error(err)
		return
	}
	if keep {
		s.gate.Next(v)
		return
	}
	// Replace the demand credit spent on a value we're not forwarding.
	if s.upstream != nil {
		s.upstream.Request(1)
	}
}

func (s *filterSubscriber[T]) test(v T) (ok bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = wrapUserError("filter", fmt.Errorf("panic: %v", p))
		}
	}()
	return s.pred(v), nil
}

func (s *filterSubscriber[T]) OnError(err error) { s.gate.Error(err) }
func (s *filterSubscriber[T]) OnComplete()        { s.gate.Complete() }

func (s *filterSubscriber[T]) request(n uint64) {
	if s.upstream != nil {
		s.upstream.Request(n)
	}
}

func (s *filterSubscriber[T]) cancel() {
	if s.upstream != nil {
		s.upstream.Cancel()
	}
}
