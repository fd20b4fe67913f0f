package reactor

import "sync"

// partitionOperator opens n sub-streams and routes each upstream value to
// exactly one, by hash(v) mod n when a key function is configured or by
// round-robin otherwise (spec.md §4.3). The shared upstream subscription
// requests the minimum of the n sub-streams' outstanding demand, so a slow
// partition throttles the whole source rather than letting others run
// unbounded ahead of it.
//
// Resolved open question (spec.md §9, first): a sub-stream's Complete is
// deferred until that sub-stream has had at least one subscriber issue
// Request — a late-subscribing inner consumer still observes Complete
// rather than finding an edge that already finished before it arrived.
type partitionOperator[T any] struct {
	upstream Publisher[T]
	n        int
	keyFn    func(T) uint64
}

// Partition returns n Publishers, each receiving the subset of upstream
// values routed to it. keyFn may be nil, in which case values are routed
// round-robin.
func Partition[T any](upstream Publisher[T], n int, keyFn func(T) uint64) []Publisher[T] {
	if n <= 0 {
		panic("reactor: Partition n must be positive")
	}
	state := &partitionState[T]{
		upstream: upstream,
		keyFn:    keyFn,
		branches: make([]*partitionBranch[T], n),
	}
	out := make([]Publisher[T], n)
	for i := 0; i < n; i++ {
		b := &partitionBranch[T]{state: state, index: i, active: true}
		state.branches[i] = b
		out[i] = b
	}
	return out
}

type partitionState[T any] struct {
	upstream Publisher[T]
	keyFn    func(T) uint64

	mu        sync.Mutex
	branches  []*partitionBranch[T]
	started   bool
	upSub     Subscription
	forwarded uint64
	rr        uint64
}

// ensureStarted subscribes to upstream exactly once, the first time any
// branch is subscribed to.
func (s *partitionState[T]) ensureStarted() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	outer := &partitionOuter[T]{state: s}
	s.upstream.Subscribe(outer)
}

func (s *partitionState[T]) route(v T) int {
	if s.keyFn != nil {
		return int(s.keyFn(v) % uint64(s.n()))
	}
	s.mu.Lock()
	idx := int(s.rr % uint64(len(s.branches)))
	s.rr++
	s.mu.Unlock()
	return idx
}

func (s *partitionState[T]) n() int { return len(s.branches) }

// recomputeUpstreamDemand forwards upstream the delta between the current
// minimum outstanding branch demand and whatever has already been
// forwarded.
func (s *partitionState[T]) recomputeUpstreamDemand() {
	s.mu.Lock()
	if s.upSub == nil {
		s.mu.Unlock()
		return
	}
	min := Unbounded
	anyActive := false
	for _, b := range s.branches {
		if !b.isActive() {
			continue
		}
		anyActive = true
		a := b.available()
		if a < min {
			min = a
		}
	}
	var delta uint64
	if anyActive && min > s.forwarded {
		delta = min - s.forwarded
		s.forwarded = min
	}
	upSub := s.upSub
	s.mu.Unlock()
	if delta > 0 {
		upSub.Request(delta)
	}
}

func (s *partitionState[T]) cancelAll() {
	s.mu.Lock()
	upSub := s.upSub
	s.mu.Unlock()
	if upSub != nil {
		upSub.Cancel()
	}
	for _, b := range s.branches {
		b.onUpstreamTerminal(func(gate *downstreamGate[T]) { gate.Complete() })
	}
}

// partitionOuter is the single Subscriber the operator binds to the real
// upstream.
type partitionOuter[T any] struct {
	state *partitionState[T]
}

func (o *partitionOuter[T]) OnSubscribe(sub Subscription) {
	o.state.mu.Lock()
	o.state.upSub = sub
	o.state.mu.Unlock()
	o.state.recomputeUpstreamDemand()
}

func (o *partitionOuter[T]) OnNext(v T) {
	idx := o.state.route(v)
	o.state.branches[idx].deliver(v)
}

func (o *partitionOuter[T]) OnError(err error) {
	for _, b := range o.state.branches {
		b.onUpstreamTerminal(func(gate *downstreamGate[T]) { gate.Error(err) })
	}
}

func (o *partitionOuter[T]) OnComplete() {
	for _, b := range o.state.branches {
		b.onUpstreamTerminal(func(gate *downstreamGate[T]) { gate.Complete() })
	}
}

// partitionBranch is both the Publisher a caller subscribes to and the
// per-sub-stream demand/queue state.
type partitionBranch[T any] struct {
	state *partitionState[T]
	index int

	mu          sync.Mutex
	gate        *downstreamGate[T]
	sub         *subscription
	pending     []T
	requested   bool // at least one Request has been issued on this branch
	upstreamEnd *func(*downstreamGate[T])
	active      bool // false once cancelled; excluded from the min-demand scan
}

func (b *partitionBranch[T]) Subscribe(down Subscriber[T]) {
	b.mu.Lock()
	b.gate = newDownstreamGate[T](down)
	b.mu.Unlock()
	sub := newSubscription(b, b.gate.Error)
	b.mu.Lock()
	b.sub = sub
	b.mu.Unlock()
	down.OnSubscribe(sub)
	b.state.ensureStarted()
}

// available reports this branch's outstanding, unconsumed demand.
func (b *partitionBranch[T]) available() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sub == nil {
		return 0
	}
	return b.sub.Available()
}

// isActive reports whether this branch still participates in upstream
// demand accounting. A cancelled branch is excluded rather than treated as
// having zero demand, so one cancelled sibling cannot pin recomputed
// upstream demand at zero forever (mirrors broadcast.go's remove-on-cancel).
func (b *partitionBranch[T]) isActive() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

func (b *partitionBranch[T]) deliver(v T) {
	b.mu.Lock()
	if b.sub != nil && b.sub.Take(1) {
		gate := b.gate
		b.mu.Unlock()
		gate.Next(v)
		return
	}
	b.pending = append(b.pending, v)
	b.mu.Unlock()
}

func (b *partitionBranch[T]) flush() {
	for {
		b.mu.Lock()
		if len(b.pending) == 0 || b.sub == nil || !b.sub.Take(1) {
			b.mu.Unlock()
			return
		}
		v := b.pending[0]
		b.pending = b.pending[1:]
		gate := b.gate
		b.mu.Unlock()
		gate.Next(v)
	}
}

// onUpstreamTerminal defers delivery of the upstream terminal signal until
// this branch has seen at least one Request, per the resolved open
// question above; otherwise it delivers immediately.
func (b *partitionBranch[T]) onUpstreamTerminal(deliver func(*downstreamGate[T])) {
	b.mu.Lock()
	if b.requested && b.gate != nil {
		gate := b.gate
		b.mu.Unlock()
		deliver(gate)
		return
	}
	b.upstreamEnd = &deliver
	b.mu.Unlock()
}

func (b *partitionBranch[T]) request(n uint64) {
	b.state.recomputeUpstreamDemand()
	b.flush()
	b.mu.Lock()
	first := !b.requested
	b.requested = true
	pendingEnd := b.upstreamEnd
	b.upstreamEnd = nil
	gate := b.gate
	b.mu.Unlock()
	if first && pendingEnd != nil && gate != nil {
		(*pendingEnd)(gate)
	}
}

func (b *partitionBranch[T]) cancel() {
	b.mu.Lock()
	b.sub = nil
	b.active = false
	b.mu.Unlock()
	b.state.recomputeUpstreamDemand()
	b.state.cancelUpstreamIfAllInactive()
}

// cancelUpstreamIfAllInactive cancels the shared upstream subscription once
// every branch has been cancelled, so a fully-abandoned Partition doesn't
// keep its source running.
func (s *partitionState[T]) cancelUpstreamIfAllInactive() {
	s.mu.Lock()
	for _, b := range s.branches {
		if b.isActive() {
			s.mu.Unlock()
			return
		}
	}
	upSub := s.upSub
	s.mu.Unlock()
	if upSub != nil {
		upSub.Cancel()
	}
}
