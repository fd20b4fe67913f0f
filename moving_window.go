package reactor

import (
	"sync"
	"time"

	"github.com/ygrebnov/reactor/timer"
)

// movingWindowOperator maintains a fixed-capacity ring of the most recent
// backlog values (spec.md §3 "Ring window buffer") and, on every period
// tick, emits a snapshot in arrival order without clearing the ring. Before
// backlog values have arrived, the snapshot has length min(arrived,
// backlog) rather than backlog, per spec.md §9's resolved ring-window open
// question — no uninitialized slot is ever surfaced.
type movingWindowOperator[T any] struct {
	upstream Publisher[T]
	period   time.Duration
	delay    time.Duration
	backlog  int
	timerSvc timer.Service
}

// MovingWindow returns a Publisher that snapshots the most recent backlog
// values from upstream every period (after an initial delay), in arrival
// order. svc schedules the periodic snapshot.
func MovingWindow[T any](upstream Publisher[T], period, delay time.Duration, backlog int, svc timer.Service) Publisher[[]T] {
	if backlog <= 0 {
		panic("reactor: MovingWindow backlog must be positive")
	}
	return &movingWindowOperator[T]{upstream: upstream, period: period, delay: delay, backlog: backlog, timerSvc: svc}
}

func (o *movingWindowOperator[T]) Subscribe(down Subscriber[[]T]) {
	gate := newDownstreamGate[[]T](down)
	s := &movingWindowSubscriber[T]{
		gate:    gate,
		ring:    make([]T, o.backlog),
		backlog: o.backlog,
		period:  o.period,
		delay:   o.delay,
		svc:     o.timerSvc,
	}
	o.upstream.Subscribe(s)
}

type movingWindowSubscriber[T any] struct {
	gate     *downstreamGate[[]T]
	upstream Subscription

	mu      sync.Mutex
	ring    []T
	pointer uint64
	backlog int

	period time.Duration
	delay  time.Duration
	svc    timer.Service
	reg    timer.Registration
}

func (s *movingWindowSubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.gate.sub.OnSubscribe(newSubscription(s, s.gate.Error))
	sub.Request(Unbounded)
	if s.svc != nil {
		if s.delay > 0 {
			s.reg = s.svc.Schedule(s.scheduleTicks, s.delay)
		} else {
			s.reg = s.svc.SchedulePeriodic(s.snapshot, s.period)
		}
	}
}

// scheduleTicks starts the recurring snapshot after the configured initial
// delay has elapsed once.
func (s *movingWindowSubscriber[T]) scheduleTicks() {
	s.mu.Lock()
	svc := s.svc
	period := s.period
	s.mu.Unlock()
	if svc == nil {
		return
	}
	reg := svc.SchedulePeriodic(s.snapshot, period)
	s.mu.Lock()
	s.reg = reg
	s.mu.Unlock()
}

func (s *movingWindowSubscriber[T]) OnNext(v T) {
	s.mu.Lock()
	idx := s.pointer % uint64(s.backlog)
	s.ring[idx] = v
	s.pointer++
	s.mu.Unlock()
}

// snapshot reads the ring in arrival order: slots [idx..backlog) followed
// by [0..idx), truncated to the number of values that have actually
// arrived (spec.md §3, §9).
func (s *movingWindowSubscriber[T]) snapshot() {
	s.mu.Lock()
	arrived := s.pointer
	n := s.backlog
	if arrived < uint64(n) {
		n = int(arrived)
	}
	out := make([]T, 0, n)
	if n > 0 {
		idx := int(s.pointer % uint64(s.backlog))
		out = append(out, s.ring[idx:]...)
		out = append(out, s.ring[:idx]...)
		if len(out) > n {
			out = out[len(out)-n:]
		}
	}
	s.mu.Unlock()
	if len(out) > 0 {
		s.gate.Next(out)
	}
}

func (s *movingWindowSubscriber[T]) OnError(err error) {
	s.stopTimer()
	s.gate.Error(err)
}

func (s *movingWindowSubscriber[T]) OnComplete() {
	s.stopTimer()
	s.gate.Complete()
}

func (s *movingWindowSubscriber[T]) stopTimer() {
	s.mu.Lock()
	reg := s.reg
	s.mu.Unlock()
	if reg != nil {
		reg.Cancel()
	}
}

func (s *movingWindowSubscriber[T]) request(n uint64) {
	// The ring already pulls Unbounded from upstream; downstream demand
	// only paces how many snapshots are forwarded, which the timer drives.
}

func (s *movingWindowSubscriber[T]) cancel() {
	s.stopTimer()
	if s.upstream != nil {
		s.upstream.Cancel()
	}
}
