package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ygrebnov/reactor/metrics"
	"github.com/ygrebnov/reactor/pool"
)

// poolWorker is the pooled object recycled by pool.Pool between task
// executions, mirroring the teacher's worker[R] struct shape in worker.go —
// generalized from "execute one task[R], forward result/error to channels"
// to "execute one Task, recovering any panic so it never reaches the
// goroutine that's about to be recycled".
type poolWorker struct{}

func (poolWorker) run(t Task) {
	defer func() { _ = recover() }() // never let user code panic out of a pooled worker
	t()
}

// workStealing is the N-worker pool dispatcher variant: no ordering is
// preserved across submissions, since tasks may run on any of the pool's
// goroutines in parallel. Grounded directly on the teacher's dispatcher.go
// (submission loop tracking inflight work with a WaitGroup, handing each
// task to a pool.Pool-recycled worker) and worker.go/pool/fixed.go/
// pool/dynamic.go, generalized from task[R] to plain Task and from a
// dedicated tasks-channel-per-Workers-instance to this package's shared
// Dispatcher contract. Shutdown coordination uses golang.org/x/sync/errgroup
// in place of the teacher's bespoke dispatch-loop goroutine.
type workStealing struct {
	cfg      Config
	tasks    chan Task
	pool     pool.Pool
	inflight sync.WaitGroup
	grp      *errgroup.Group
	grpCtx   context.Context
	cancel   context.CancelFunc
	closed   atomic.Bool

	inContext sync.Map // goroutine id (int64) -> struct{}, set while a worker executes

	queueDepth metrics.UpDownCounter
	dropped    metrics.Counter
}

// NewPool returns a Dispatcher backed by a work-stealing pool of workers.
// cfg.WorkerCount == 0 selects a dynamically-sized pool (sync.Pool-backed,
// via pool.NewDynamic); WorkerCount > 0 caps concurrency at that size (via
// pool.NewFixed).
func NewPool(opts ...Option) Dispatcher {
	cfg := buildConfig(opts)

	newFn := func() interface{} { return &poolWorker{} }
	var p pool.Pool
	if cfg.WorkerCount > 0 {
		p = pool.NewFixed(cfg.WorkerCount, newFn)
	} else {
		p = pool.NewDynamic(newFn)
	}

	ctx, cancel := context.WithCancel(context.Background())
	grp, grpCtx := errgroup.WithContext(ctx)
	attrs := metrics.WithAttributes(map[string]string{"dispatcher": cfg.Name})

	d := &workStealing{
		cfg:        cfg,
		tasks:      make(chan Task, cfg.QueueSize),
		pool:       p,
		grp:        grp,
		grpCtx:     grpCtx,
		cancel:     cancel,
		queueDepth: cfg.Metrics.UpDownCounter(metrics.DispatcherQueueDepth, attrs),
		dropped:    cfg.Metrics.Counter(metrics.DispatcherTasksDropped, attrs),
	}
	d.grp.Go(d.dispatchLoop)
	return d
}

func (d *workStealing) dispatchLoop() error {
	for {
		select {
		case <-d.grpCtx.Done():
			return nil
		case t, ok := <-d.tasks:
			if !ok {
				return nil
			}
			d.queueDepth.Add(-1)
			d.inflight.Add(1)
			go func(tt Task) {
				defer d.inflight.Done()
				d.execute(tt)
			}(t)
		}
	}
}

func (d *workStealing) execute(t Task) {
	id := currentGoroutineID()
	d.inContext.Store(id, struct{}{})
	defer d.inContext.Delete(id)

	w := d.pool.Get().(*poolWorker)
	w.run(t)
	d.pool.Put(w)
}

func (d *workStealing) Dispatch(t Task) error {
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
			d.cfg.Logger.Warn("dispatch: pool queue full, dropping newest task")
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
					d.cfg.Logger.Warn("dispatch: pool queue full, dropping oldest task")
				default:
				}
			}
		}
	default: // OverflowBlock
		select {
		case d.tasks <- t:
			d.queueDepth.Add(1)
			return nil
		case <-d.grpCtx.Done():
			return ErrClosed
		}
	}
}

func (d *workStealing) Shutdown(timeout time.Duration) bool {
	if !d.closed.CompareAndSwap(false, true) {
		return true
	}
	waitCh := make(chan struct{})
	go func() {
		// Let dispatchLoop hand every queued task to a worker before
		// stopping it, then wait for those workers to finish.
		for len(d.tasks) > 0 && d.grpCtx.Err() == nil {
			time.Sleep(time.Millisecond)
		}
		d.cancel()
		_ = d.grp.Wait()
		d.inflight.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		return len(d.tasks) == 0
	case <-time.After(timeout):
		d.cancel()
		return false
	}
}

func (d *workStealing) InContext() bool {
	_, ok := d.inContext.Load(currentGoroutineID())
	return ok
}
