package reactor

import "errors"

// whenOperator intercepts an upstream Error matching target's type, invokes
// handler for its side effect, then completes the edge instead of
// propagating the error. Errors of any other type pass through unchanged
// (spec.md §4.3).
type whenOperator[T any, E error] struct {
	upstream Publisher[T]
	handler  func(E)
}

// When returns a Publisher that catches an upstream Error of type E, invokes
// handler, and substitutes Complete. Errors that do not match E propagate as
// usual.
func When[T any, E error](upstream Publisher[T], handler func(E)) Publisher[T] {
	return &whenOperator[T, E]{upstream: upstream, handler: handler}
}

func (o *whenOperator[T, E]) Subscribe(down Subscriber[T]) {
	gate := newDownstreamGate[T](down)
	s := &whenSubscriber[T, E]{gate: gate, handler: o.handler}
	o.upstream.Subscribe(s)
}

type whenSubscriber[T any, E error] struct {
	gate     *downstreamGate[T]
	handler  func(E)
	upstream Subscription
}

func (s *whenSubscriber[T, E]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.gate.sub.OnSubscribe(newSubscription(s, s.gate.Error))
}

func (s *whenSubscriber[T, E]) OnNext(v T) { s.gate.Next(v) }

func (s *whenSubscriber[T, E]) OnError(err error) {
	var target E
	if errors.As(err, &target) {
		s.handler(target)
		s.gate.Complete()
		return
	}
	s.gate.Error(err)
}

func (s *whenSubscriber[T, E]) OnComplete() { s.gate.Complete() }

func (s *whenSubscriber[T, E]) request(n uint64) {
	if s.upstream != nil {
		s.upstream.Request(n)
	}
}

func (s *whenSubscriber[T, E]) cancel() {
	if s.upstream != nil {
		s.upstream.Cancel()
	}
}
