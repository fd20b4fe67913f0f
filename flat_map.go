package reactor

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// flatMapOperator subscribes to f(v) for every outer value v and merges all
// inner Next signals downstream (spec.md §4.4). Completion requires both
// the outer publisher and every inner publisher spawned so far to
// complete; an Error from the outer or any inner cancels everything else
// and propagates.
type flatMapOperator[In, Out any] struct {
	upstream Publisher[In]
	fn       func(In) Publisher[Out]
}

// FlatMap returns a Publisher that, for each upstream value v, subscribes
// to fn(v) and merges its Next signals into the output.
func FlatMap[In, Out any](upstream Publisher[In], fn func(In) Publisher[Out]) Publisher[Out] {
	return &flatMapOperator[In, Out]{upstream: upstream, fn: fn}
}

func (o *flatMapOperator[In, Out]) Subscribe(down Subscriber[Out]) {
	gate := newDownstreamGate[Out](down)
	state := &flatMapState[In, Out]{gate: gate, fn: o.fn, active: 1}
	outer := &flatMapOuter[In, Out]{state: state}
	o.upstream.Subscribe(outer)
}

type flatMapState[In, Out any] struct {
	gate *downstreamGate[Out]
	fn   func(In) Publisher[Out]

	mu       sync.Mutex
	outer    Subscription
	active   int // outer (1 while not done) + count of unfinished inners
	inners   []Subscription
	errs     *multierror.Error
	terminal  bool
}

func (s *flatMapState[In, Out]) cancelAll() {
	s.mu.Lock()
	outer := s.outer
	inners := append([]Subscription{}, s.inners...)
	s.terminal = true
	s.mu.Unlock()
	if outer != nil {
		outer.Cancel()
	}
	for _, in := range inners {
		if in != nil {
			in.Cancel()
		}
	}
}

func (s *flatMapState[In, Out]) fail(err error) {
	s.mu.Lock()
	if s.terminal {
		s.mu.Unlock()
		return
	}
	s.errs = multierror.Append(s.errs, err)
	combined := s.errs.ErrorOrNil()
	s.mu.Unlock()
	s.cancelAll()
	s.gate.Error(combined)
}

func (s *flatMapState[In, Out]) finishOne() {
	s.mu.Lock()
	s.active--
	done := s.active == 0
	s.mu.Unlock()
	if done {
		s.gate.Complete()
	}
}

type flatMapOuter[In, Out any] struct {
	state    *flatMapState[In, Out]
	upstream Subscription
}

func (o *flatMapOuter[In, Out]) OnSubscribe(sub Subscription) {
	o.upstream = sub
	o.state.mu.Lock()
	o.state.outer = sub
	o.state.mu.Unlock()
	o.state.gate.sub.OnSubscribe(newSubscription(o, o.state.gate.Error))
}

func (o *flatMapOuter[In, Out]) OnNext(v In) {
	out, err := o.apply(v)
	if err != nil {
		o.state.fail(err)
		return
	}
	o.state.spawnInner(out)
}

func (o *flatMapOuter[In, Out]) apply(v In) (p Publisher[Out], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = wrapUserError("flatMap", fmt.Errorf("panic: %v", r))
		}
	}()
	return o.state.fn(v), nil
}

func (o *flatMapOuter[In, Out]) OnError(err error) { o.state.fail(err) }

func (o *flatMapOuter[In, Out]) OnComplete() {
	o.state.mu.Lock()
	o.state.active--
	done := o.state.active == 0
	o.state.mu.Unlock()
	if done {
		o.state.gate.Complete()
	}
}

func (o *flatMapOuter[In, Out]) request(n uint64) {
	if o.upstream != nil {
		o.upstream.Request(n)
	}
}

func (o *flatMapOuter[In, Out]) cancel() { o.state.cancelAll() }

// spawnInner subscribes to an inner publisher produced by fn(v), tracking
// it alongside the outer edge so Complete waits for every inner to finish.
func (s *flatMapState[In, Out]) spawnInner(p Publisher[Out]) {
	sub := &flatMapInner[In, Out]{state: s}
	s.mu.Lock()
	s.active++
	s.mu.Unlock()
	p.Subscribe(sub)
}

type flatMapInner[In, Out any] struct {
	state    *flatMapState[In, Out]
	upstream Subscription
}

func (i *flatMapInner[In, Out]) OnSubscribe(sub Subscription) {
	i.upstream = sub
	i.state.mu.Lock()
	i.state.inners = append(i.state.inners, sub)
	i.state.mu.Unlock()
	sub.Request(Unbounded)
}

func (i *flatMapInner[In, Out]) OnNext(v Out) { i.state.gate.Next(v) }
func (i *flatMapInner[In, Out]) OnError(err error) { i.state.fail(err) }
func (i *flatMapInner[In, Out]) OnComplete()        { i.state.finishOne() }
