package dispatch

import (
	"github.com/sirupsen/logrus"

	"github.com/ygrebnov/reactor/metrics"
)

// ProducerType selects single- or multi-producer accounting for the
// ring-buffer variant.
type ProducerType int

const (
	// SingleProducer assumes Dispatch is only ever called from one
	// goroutine at a time; it skips the producer-side synchronization
	// multi-producer mode requires.
	SingleProducer ProducerType = iota
	// MultiProducer allows Dispatch to be called concurrently from many
	// goroutines; each producer's submissions remain FIFO relative to each
	// other, though interleaving across producers is unspecified.
	MultiProducer
)

// WaitStrategy selects how the ring-buffer dispatcher's consumer waits for
// new entries when the queue is empty.
type WaitStrategy int

const (
	// WaitBlocking parks the consumer on a channel receive (default).
	WaitBlocking WaitStrategy = iota
	// WaitBusySpin polls in a tight loop without yielding, trading CPU for
	// minimal latency.
	WaitBusySpin
	// WaitYielding polls and calls runtime.Gosched between attempts.
	WaitYielding
	// WaitSleeping polls with an exponential backoff between attempts.
	WaitSleeping
)

// OverflowPolicy selects what happens when a bounded dispatcher's queue is
// full at Dispatch time (spec.md §4.2).
type OverflowPolicy int

const (
	// OverflowBlock blocks the caller until space is available.
	OverflowBlock OverflowPolicy = iota
	// OverflowDropOldest discards the oldest queued task to make room.
	OverflowDropOldest
	// OverflowDropNewest discards the incoming task.
	OverflowDropNewest
	// OverflowError returns ErrOverflow to the caller instead of blocking
	// or dropping.
	OverflowError
)

// Config configures a dispatcher instance, mirroring the fields named in
// spec.md §6: name, worker_count, queue_size, producer_type, wait_strategy.
type Config struct {
	// Name identifies the dispatcher for logging/metrics purposes.
	Name string

	// WorkerCount sets the pool variant's worker count. Zero means the
	// pool grows dynamically (teacher's pool.NewDynamic semantics).
	WorkerCount uint

	// QueueSize bounds the single-threaded, pool and ring-buffer variants'
	// task queue. Zero gives the single-threaded and pool variants an
	// unbuffered queue (each Dispatch hands off directly to the consumer)
	// and the ring-buffer its small internal minimum.
	QueueSize uint

	// ProducerType selects single- or multi-producer ring-buffer
	// accounting. Ignored by other variants.
	ProducerType ProducerType

	// WaitStrategy selects the ring-buffer consumer's idle-wait behavior.
	// Ignored by other variants.
	WaitStrategy WaitStrategy

	// Overflow selects the bounded-queue backpressure policy.
	Overflow OverflowPolicy

	// Metrics receives the dispatcher's queue-depth up/down counter and
	// dropped-task counter. Defaults to metrics.NewNoopProvider().
	Metrics metrics.Provider

	// Logger receives a Warn entry whenever OverflowDropOldest or
	// OverflowDropNewest actually discards a task. Defaults to a
	// logrus.Entry at Warn level, mirroring Environment's default.
	Logger *logrus.Entry
}

// defaultConfig centralizes default values, in the teacher's defaults.go
// style.
func defaultConfig() Config {
	base := logrus.New()
	base.SetLevel(logrus.WarnLevel)
	return Config{
		Name:         "dispatcher",
		WorkerCount:  0,
		QueueSize:    1024,
		ProducerType: SingleProducer,
		WaitStrategy: WaitBlocking,
		Overflow:     OverflowBlock,
		Metrics:      metrics.NewNoopProvider(),
		Logger:       logrus.NewEntry(base).WithField("component", Namespace),
	}
}
