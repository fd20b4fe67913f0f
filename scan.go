package reactor

import "fmt"

// scanOperator folds upstream values into a running accumulator, emitting
// the updated accumulator after every Next (spec.md §4.4). Unlike reduce,
// scan is incremental: the first emission happens on the first upstream
// value, not at Complete.
type scanOperator[In, Acc any] struct {
	upstream Publisher[In]
	seed     func() Acc
	fn       func(Acc, In) (Acc, error)
}

// Scan returns a Publisher that emits seed folded with fn across every
// upstream value, one emission per Next.
func Scan[In, Acc any](upstream Publisher[In], seed Acc, fn func(Acc, In) Acc) Publisher[Acc] {
	return ScanErr(upstream, func() Acc { return seed }, func(acc Acc, v In) (Acc, error) {
		return fn(acc, v), nil
	})
}

// ScanErr is Scan for fold functions that may fail and for accumulators that
// need fresh per-subscription state (seed is invoked once per Subscribe).
func ScanErr[In, Acc any](upstream Publisher[In], seed func() Acc, fn func(Acc, In) (Acc, error)) Publisher[Acc] {
	return &scanOperator[In, Acc]{upstream: upstream, seed: seed, fn: fn}
}

func (o *scanOperator[In, Acc]) Subscribe(down Subscriber[Acc]) {
	gate := newDownstreamGate[Acc](down)
	s := &scanSubscriber[In, Acc]{gate: gate, fn: o.fn, acc: o.seed()}
	o.upstream.Subscribe(s)
}

type scanSubscriber[In, Acc any] struct {
	gate     *downstreamGate[Acc]
	fn       func(Acc, In) (Acc, error)
	acc      Acc
	upstream Subscription
}

func (s *scanSubscriber[In, Acc]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.gate.sub.OnSubscribe(newSubscription(s, s.gate.Error))
}

func (s *scanSubscriber[In, Acc]) OnNext(v In) {
	next, err := s.fold(v)
	if err != nil {
		s.gate.Error(err)
		return
	}
	s.acc = next
	s.gate.Next(s.acc)
}

func (s *scanSubscriber[In, Acc]) fold(v In) (acc Acc, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = wrapUserError("scan", fmt.Errorf("panic: %v", p))
		}
	}()
	acc, err = s.fn(s.acc, v)
	if err != nil {
		err = wrapUserError("scan", err)
	}
	return
}

func (s *scanSubscriber[In, Acc]) OnError(err error) { s.gate.Error(err) }
func (s *scanSubscriber[In, Acc]) OnComplete()        { s.gate.Complete() }

func (s *scanSubscriber[In, Acc]) request(n uint64) {
	if s.upstream != nil {
		s.upstream.Request(n)
	}
}

func (s *scanSubscriber[In, Acc]) cancel() {
	if s.upstream != nil {
		s.upstream.Cancel()
	}
}
