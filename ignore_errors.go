package reactor

// ignoreErrorsOperator swallows an upstream Error and substitutes Complete.
// The upstream subscription is cancelled as soon as the error is observed,
// since no further Next is expected on an edge that already decided to
// terminate (spec.md §4.3).
type ignoreErrorsOperator[T any] struct {
	upstream Publisher[T]
}

// IgnoreErrors returns a Publisher that converts any upstream Error into a
// Complete signal instead, cancelling the upstream subscription first.
func IgnoreErrors[T any](upstream Publisher[T]) Publisher[T] {
	return &ignoreErrorsOperator[T]{upstream: upstream}
}

func (o *ignoreErrorsOperator[T]) Subscribe(down Subscriber[T]) {
	gate := newDownstreamGate[T](down)
	s := &ignoreErrorsSubscriber[T]{gate: gate}
	o.upstream.Subscribe(s)
}

type ignoreErrorsSubscriber[T any] struct {
	gate     *downstreamGate[T]
	upstream Subscription
}

func (s *ignoreErrorsSubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.gate.sub.OnSubscribe(newSubscription(s, s.gate.Error))
}

func (s *ignoreErrorsSubscriber[T]) OnNext(v T) { s.gate.Next(v) }

func (s *ignoreErrorsSubscriber[T]) OnError(_ error) {
	if s.upstream != nil {
		s.upstream.Cancel()
	}
	s.gate.Complete()
}

func (s *ignoreErrorsSubscriber[T]) OnComplete() { s.gate.Complete() }

func (s *ignoreErrorsSubscriber[T]) request(n uint64) {
	if s.upstream != nil {
		s.upstream.Request(n)
	}
}

func (s *ignoreErrorsSubscriber[T]) cancel() {
	if s.upstream != nil {
		s.upstream.Cancel()
	}
}
