package reactor

import "fmt"

// mapOperator applies a pure function to each Next signal (spec.md §4.3).
// f's panic or error is wrapped and forwarded as Error(f's exception); the
// upstream subscription is not explicitly cancelled by mapOperator itself —
// a terminal Error on the downstream gate already stops further delivery,
// and the caller is expected to Cancel the subscription it was given if it
// wants to stop pulling.
type mapOperator[In, Out any] struct {
	upstream Publisher[In]
	fn       func(In) (Out, error)
	name     string
}

// Map returns a Publisher that applies fn to each value from upstream. A
// panic in fn is wrapped as a UserError and terminates the edge.
func Map[In, Out any](upstream Publisher[In], fn func(In) Out) Publisher[Out] {
	return MapErr(upstream, func(v In) (Out, error) { return fn(v), nil })
}

// MapErr is Map for functions that may fail.
func MapErr[In, Out any](upstream Publisher[In], fn func(In) (Out, error)) Publisher[Out] {
	return &mapOperator[In, Out]{upstream: upstream, fn: fn, name: "map"}
}

func (m *mapOperator[In, Out]) Subscribe(down Subscriber[Out]) {
	gate := newDownstreamGate[Out](down)
	b := &mapSubscriber[In, Out]{gate: gate, fn: m.fn, name: m.name}
	m.upstream.Subscribe(b)
}

type mapSubscriber[In, Out any] struct {
	gate     *downstreamGate[Out]
	fn       func(In) (Out, error)
	name     string
	upstream Subscription
}

func (s *mapSubscriber[In, Out]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.gate.sub.OnSubscribe(newSubscription(s, s.gate.Error))
}

func (s *mapSubscriber[In, Out]) OnNext(v In) {
	out, err := recoverMapFn(s.name, s.fn, v)
	if err != nil {
		s.gate.Error(err)
		return
	}
	s.gate.Next(out)
}

func (s *mapSubscriber[In, Out]) OnError(err error) { s.gate.Error(err) }
func (s *mapSubscriber[In, Out]) OnComplete()        { s.gate.Complete() }

func (s *mapSubscriber[In, Out]) request(n uint64) {
	if s.upstream != nil {
		s.upstream.Request(n)
	}
}

func (s *mapSubscriber[In, Out]) cancel() {
	if s.upstream != nil {
		s.upstream.Cancel()
	}
}

func recoverMapFn[In, Out any](name string, fn func(In) (Out, error), v In) (out Out, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = wrapUserError(name, fmt.Errorf("panic: %v", p))
		}
	}()
	out, err = fn(v)
	if err != nil {
		err = wrapUserError(name, err)
	}
	return
}
