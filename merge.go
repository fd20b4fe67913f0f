package reactor

import (
	"sync"

	"github.com/hashicorp/go-multierror"
)

// mergeOperator subscribes to every input and interleaves their Next
// signals in arrival order (spec.md §4.4). Complete is emitted once every
// input has completed; any input Error cancels the remaining inputs and
// propagates immediately. Concurrent inputs are expected, so emission is
// serialized through the shared downstreamGate rather than per-input
// locking.
type mergeOperator[T any] struct {
	upstreams []Publisher[T]
}

// Merge returns a Publisher that interleaves the Next signals of every
// input publisher.
func Merge[T any](upstreams ...Publisher[T]) Publisher[T] {
	return &mergeOperator[T]{upstreams: upstreams}
}

func (o *mergeOperator[T]) Subscribe(down Subscriber[T]) {
	gate := newDownstreamGate[T](down)
	state := &mergeState[T]{gate: gate, remaining: len(o.upstreams)}
	state.branches = make([]*mergeBranch[T], len(o.upstreams))

	if len(o.upstreams) == 0 {
		gate.sub.OnSubscribe(newSubscription(state, gate.Error))
		gate.Complete()
		return
	}

	// Every branch subscribes, and so has its upstream Subscription bound,
	// before the downstream sees its composite Subscription — otherwise an
	// immediate Request from downstream could race a branch that hasn't
	// subscribed yet and lose that demand.
	for i, up := range o.upstreams {
		b := &mergeBranch[T]{state: state, index: i}
		state.branches[i] = b
		up.Subscribe(b)
	}
	gate.sub.OnSubscribe(newSubscription(state, gate.Error))
}

type mergeState[T any] struct {
	gate *downstreamGate[T]

	mu        sync.Mutex
	branches  []*mergeBranch[T]
	remaining int
	errs      *multierror.Error
	cancelled bool
}

func (m *mergeState[T]) request(n uint64) {
	m.mu.Lock()
	branches := append([]*mergeBranch[T]{}, m.branches...)
	m.mu.Unlock()
	for _, b := range branches {
		if b != nil && b.upstream != nil {
			b.upstream.Request(n)
		}
	}
}

func (m *mergeState[T]) cancel() {
	m.mu.Lock()
	m.cancelled = true
	branches := append([]*mergeBranch[T]{}, m.branches...)
	m.mu.Unlock()
	for _, b := range branches {
		if b != nil && b.upstream != nil {
			b.upstream.Cancel()
		}
	}
}

func (m *mergeState[T]) onBranchError(err error) {
	m.mu.Lock()
	if m.cancelled {
		m.mu.Unlock()
		return
	}
	m.cancelled = true
	m.errs = multierror.Append(m.errs, err)
	branches := append([]*mergeBranch[T]{}, m.branches...)
	combined := m.errs.ErrorOrNil()
	m.mu.Unlock()
	for _, b := range branches {
		if b != nil && b.upstream != nil {
			b.upstream.Cancel()
		}
	}
	m.gate.Error(combined)
}

func (m *mergeState[T]) onBranchComplete() {
	m.mu.Lock()
	if m.cancelled {
		m.mu.Unlock()
		return
	}
	m.remaining--
	done := m.remaining == 0
	m.mu.Unlock()
	if done {
		m.gate.Complete()
	}
}

type mergeBranch[T any] struct {
	state    *mergeState[T]
	index    int
	upstream Subscription
}

func (b *mergeBranch[T]) OnSubscribe(sub Subscription) { b.upstream = sub }
func (b *mergeBranch[T]) OnNext(v T)                   { b.state.gate.Next(v) }
func (b *mergeBranch[T]) OnError(err error)            { b.state.onBranchError(err) }
func (b *mergeBranch[T]) OnComplete()                  { b.state.onBranchComplete() }
