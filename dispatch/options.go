package dispatch

import (
	"github.com/sirupsen/logrus"

	"github.com/ygrebnov/reactor/metrics"
)

// Option configures a Config, in the teacher's options.go functional-options
// style.
type Option func(*Config)

// WithName sets the dispatcher's logging/metrics name.
func WithName(name string) Option { return func(c *Config) { c.Name = name } }

// WithWorkerCount sets the pool variant's worker count (0 means dynamic).
func WithWorkerCount(n uint) Option { return func(c *Config) { c.WorkerCount = n } }

// WithQueueSize sets the bounded queue capacity for the single-threaded,
// pool and ring-buffer variants.
func WithQueueSize(n uint) Option { return func(c *Config) { c.QueueSize = n } }

// WithProducerType selects single- or multi-producer ring-buffer
// accounting.
func WithProducerType(p ProducerType) Option { return func(c *Config) { c.ProducerType = p } }

// WithWaitStrategy selects the ring-buffer consumer's idle-wait behavior.
func WithWaitStrategy(w WaitStrategy) Option { return func(c *Config) { c.WaitStrategy = w } }

// WithOverflowPolicy selects the bounded-queue backpressure policy.
func WithOverflowPolicy(p OverflowPolicy) Option { return func(c *Config) { c.Overflow = p } }

// WithMetrics sets the Provider a dispatcher records its queue-depth and
// dropped-task instruments to (see metrics.DispatcherQueueDepth and
// metrics.DispatcherTasksDropped). Typically passed the same Provider as
// Environment.Metrics().
func WithMetrics(p metrics.Provider) Option { return func(c *Config) { c.Metrics = p } }

// WithLogger sets the logger a dispatcher warns on when an overflow policy
// actually discards a task. Typically passed the same logger as
// Environment.Logger().
func WithLogger(l *logrus.Entry) Option { return func(c *Config) { c.Logger = l } }

func buildConfig(opts []Option) Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			panic(Namespace + ": nil dispatcher option")
		}
		opt(&cfg)
	}
	return cfg
}
