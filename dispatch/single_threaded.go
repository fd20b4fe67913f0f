package dispatch

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ygrebnov/reactor/metrics"
)

// singleThreaded drains a FIFO task queue with exactly one worker goroutine,
// preserving global submission order. It generalizes the teacher's fifo.go
// sequential task executor (a single goroutine reading one channel in a
// for/select loop) from "tasks that return (R, error)" to plain Task
// closures, and reuses the teacher's lifecycle.go ordered shutdown sequence:
// stop accepting, drain up to a timeout, then abandon the remainder.
type singleThreaded struct {
	cfg      Config
	tasks    chan Task
	closed   atomic.Bool
	workerID atomic.Int64
	done     chan struct{}
	closeWG  sync.WaitGroup

	queueDepth metrics.UpDownCounter
	dropped    metrics.Counter
}

// NewSingleThreaded returns a Dispatcher backed by one worker goroutine
// draining a bounded FIFO queue (QueueSize from opts, default 1024).
func NewSingleThreaded(opts ...Option) Dispatcher {
	cfg := buildConfig(opts)
	attrs := metrics.WithAttributes(map[string]string{"dispatcher": cfg.Name})
	d := &singleThreaded{
		cfg:        cfg,
		tasks:      make(chan Task, cfg.QueueSize),
		done:       make(chan struct{}),
		queueDepth: cfg.Metrics.UpDownCounter(metrics.DispatcherQueueDepth, attrs),
		dropped:    cfg.Metrics.Counter(metrics.DispatcherTasksDropped, attrs),
	}
	d.workerID.Store(-1)
	d.closeWG.Add(1)
	go d.run()
	return d
}

func (d *singleThreaded) run() {
	defer d.closeWG.Done()
	d.workerID.Store(currentGoroutineID())
	for {
		select {
		case t, ok := <-d.tasks:
			if !ok {
				return
			}
			d.queueDepth.Add(-1)
			t()
		case <-d.done:
			// Drain whatever is already queued, then stop; mirrors the
			// teacher's lifecycle.go "drain remaining, then exit".
			for {
				select {
				case t := <-d.tasks:
					d.queueDepth.Add(-1)
					t()
				default:
					return
				}
			}
		}
	}
}

func (d *singleThreaded) Dispatch(t Task) error {
	if d.closed.Load() {
		return ErrClosed
	}
	switch d.cfg.Overflow {
	case OverflowError:
		select {
		case d.tasks <- t:
			d.queueDepth.Add(1)
			return nil
		default:
			return ErrOverflow
		}
	case OverflowDropNewest:
		select {
		case d.tasks <- t:
			d.queueDepth.Add(1)
		default:
			d.dropped.Add(1)
			d.cfg.Logger.Warn("dispatch: queue full, dropping newest task")
		}
		return nil
	case OverflowDropOldest:
		for {
			select {
			case d.tasks <- t:
				d.queueDepth.Add(1)
				return nil
			default:
				select {
				case <-d.tasks:
					d.queueDepth.Add(-1)
					d.dropped.Add(1)
					d.cfg.Logger.Warn("dispatch: queue full, dropping oldest task")
				default:
				}
			}
		}
	default: // OverflowBlock
		select {
		case d.tasks <- t:
			d.queueDepth.Add(1)
			return nil
		case <-d.done:
			return ErrClosed
		}
	}
}

func (d *singleThreaded) Shutdown(timeout time.Duration) bool {
	if !d.closed.CompareAndSwap(false, true) {
		return true
	}
	close(d.done)
	waitCh := make(chan struct{})
	go func() {
		d.closeWG.Wait()
		close(waitCh)
	}()
	select {
	case <-waitCh:
		return len(d.tasks) == 0
	case <-time.After(timeout):
		return false
	}
}

func (d *singleThreaded) InContext() bool {
	return d.workerID.Load() == currentGoroutineID()
}
