package dispatch

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ygrebnov/reactor/metrics"
)

// slot is one array cell of the ring buffer. ready gates visibility between
// producer and consumer without a mutex: a producer publishes a task by
// writing it then flipping ready to true; the consumer clears ready back to
// false once it has taken the task, permitting that cell to wrap around.
type slot struct {
	task  Task
	ready atomic.Bool
}

// ringBuffer is the bounded, single-consumer dispatcher variant pinned by
// spec.md §1/§4.2: we implement the contract (single- or multi-producer
// bounded queue behind a configurable wait strategy), not a platform-
// specific high-throughput implementation, which the specification
// explicitly treats as an external collaborator. Producer slots are claimed
// with a single atomic increment, which is safe whether or not multiple
// producers call Dispatch concurrently; SingleProducer vs MultiProducer
// only documents the caller's intended usage.
type ringBuffer struct {
	cfg      Config
	slots    []slot
	mask     uint64
	writeSeq atomic.Uint64
	readSeq  atomic.Uint64
	notify   chan struct{}
	done     chan struct{}
	workerDone chan struct{}
	closed   atomic.Bool
	consumerGoroutine atomic.Int64

	queueDepth metrics.UpDownCounter
	dropped    metrics.Counter
}

// NewRingBuffer returns a Dispatcher backed by a fixed-capacity ring buffer.
// Capacity is rounded up to the next power of two at or above
// cfg.QueueSize (minimum 8).
func NewRingBuffer(opts ...Option) Dispatcher {
	cfg := buildConfig(opts)
	capacity := nextPowerOfTwo(cfg.QueueSize)

	attrs := metrics.WithAttributes(map[string]string{"dispatcher": cfg.Name})
	d := &ringBuffer{
		cfg:        cfg,
		slots:      make([]slot, capacity),
		mask:       uint64(capacity - 1),
		notify:     make(chan struct{}, 1),
		done:       make(chan struct{}),
		workerDone: make(chan struct{}),
		queueDepth: cfg.Metrics.UpDownCounter(metrics.DispatcherQueueDepth, attrs),
		dropped:    cfg.Metrics.Counter(metrics.DispatcherTasksDropped, attrs),
	}
	d.consumerGoroutine.Store(-1)
	go d.run()
	return d
}

func nextPowerOfTwo(n uint) uint {
	if n < 8 {
		n = 8
	}
	p := uint(1)
	for p < n {
		p <<= 1
	}
	return p
}

func (d *ringBuffer) run() {
	defer close(d.workerDone)
	d.consumerGoroutine.Store(currentGoroutineID())
	for {
		idx := d.readSeq.Load() & d.mask
		s := &d.slots[idx]
		if !d.waitReady(s) {
			return // shutting down and nothing left published
		}
		t := s.task
		s.task = nil
		s.ready.Store(false)
		d.readSeq.Add(1)
		d.queueDepth.Add(-1)
		func() {
			defer func() { _ = recover() }()
			t()
		}()
	}
}

// waitReady blocks (per the configured WaitStrategy) until s is published or
// the dispatcher is shutting down with nothing left to drain, returning
// false in the latter case.
func (d *ringBuffer) waitReady(s *slot) bool {
	switch d.cfg.WaitStrategy {
	case WaitBusySpin:
		for !s.ready.Load() {
			if d.shuttingDownEmpty() {
				return false
			}
		}
		return true
	case WaitYielding:
		for !s.ready.Load() {
			if d.shuttingDownEmpty() {
				return false
			}
			runtime.Gosched()
		}
		return true
	case WaitSleeping:
		b := backoff.NewExponentialBackOff()
		b.MaxInterval = 10 * time.Millisecond
		for !s.ready.Load() {
			if d.shuttingDownEmpty() {
				return false
			}
			delay := b.NextBackOff()
			if delay == backoff.Stop {
				delay = b.MaxInterval
			}
			time.Sleep(delay)
		}
		return true
	default: // WaitBlocking
		for !s.ready.Load() {
			select {
			case <-d.notify:
			case <-time.After(time.Millisecond):
			case <-d.done:
				if s.ready.Load() {
					return true
				}
				if d.shuttingDownEmpty() {
					return false
				}
			}
		}
		return true
	}
}

func (d *ringBuffer) shuttingDownEmpty() bool {
	select {
	case <-d.done:
		return d.readSeq.Load() >= d.writeSeq.Load()
	default:
		return false
	}
}

func (d *ringBuffer) Dispatch(t Task) error {
	if d.closed.Load() {
		return ErrClosed
	}
	capacity := uint64(len(d.slots))

	for {
		cur := d.writeSeq.Load()
		if cur-d.readSeq.Load() >= capacity {
			switch d.cfg.Overflow {
			case OverflowError:
				return ErrOverflow
			case OverflowDropNewest:
				d.dropped.Add(1)
				d.cfg.Logger.Warn("dispatch: ring buffer full, dropping newest task")
				return nil
			case OverflowDropOldest:
				// advance the read cursor past one stale, unconsumed slot
				old := d.readSeq.Load()
				oldSlot := &d.slots[old&d.mask]
				if oldSlot.ready.Load() {
					oldSlot.ready.Store(false)
					if d.readSeq.CompareAndSwap(old, old+1) {
						d.queueDepth.Add(-1)
						d.dropped.Add(1)
						d.cfg.Logger.Warn("dispatch: ring buffer full, dropping oldest task")
					}
				}
				continue
			default: // OverflowBlock
				runtime.Gosched()
				continue
			}
		}
		if !d.writeSeq.CompareAndSwap(cur, cur+1) {
			continue
		}
		s := &d.slots[cur&d.mask]
		s.task = t
		s.ready.Store(true)
		d.queueDepth.Add(1)
		select {
		case d.notify <- struct{}{}:
		default:
		}
		return nil
	}
}

func (d *ringBuffer) Shutdown(timeout time.Duration) bool {
	if !d.closed.CompareAndSwap(false, true) {
		return true
	}
	close(d.done)
	select {
	case <-d.workerDone:
		return d.readSeq.Load() >= d.writeSeq.Load()
	case <-time.After(timeout):
		return false
	}
}

func (d *ringBuffer) InContext() bool {
	return d.consumerGoroutine.Load() == currentGoroutineID()
}
