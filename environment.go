package reactor

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/ygrebnov/reactor/dispatch"
	"github.com/ygrebnov/reactor/metrics"
	"github.com/ygrebnov/reactor/timer"
)

// Environment is the explicit, threaded-through construction context that
// replaces any process-global registry (design note: "Global dispatcher
// registry"). It holds named dispatchers, a default timer service, a logger
// and a metrics provider. Operator constructors take the dispatcher or timer
// they need as an explicit argument (typically obtained from an
// Environment), never from a package-level singleton.
type Environment struct {
	mu          sync.RWMutex
	dispatchers map[string]dispatch.Dispatcher
	timerSvc    timer.Service
	logger      *logrus.Entry
	metricsP    metrics.Provider
}

// EnvOption configures an Environment built with NewEnvironment.
type EnvOption func(*Environment)

// WithDispatcher registers a named dispatcher, retrievable later via
// Dispatcher(name).
func WithDispatcher(name string, d dispatch.Dispatcher) EnvOption {
	return func(e *Environment) { e.dispatchers[name] = d }
}

// WithTimer overrides the default timer service (falls back to
// timer.NewWheel() otherwise).
func WithTimer(t timer.Service) EnvOption {
	return func(e *Environment) { e.timerSvc = t }
}

// WithLogger overrides the default logger (falls back to a logrus.Entry
// wrapping a new logrus.Logger at Warn level otherwise).
func WithLogger(l *logrus.Entry) EnvOption {
	return func(e *Environment) { e.logger = l }
}

// WithMetrics overrides the default metrics provider (falls back to
// metrics.NewNoopProvider() otherwise).
func WithMetrics(p metrics.Provider) EnvOption {
	return func(e *Environment) { e.metricsP = p }
}

// NewEnvironment builds an Environment from functional options, in the same
// style as the teacher's options.go NewOptions.
func NewEnvironment(opts ...EnvOption) *Environment {
	e := &Environment{dispatchers: make(map[string]dispatch.Dispatcher)}
	for _, opt := range opts {
		if opt == nil {
			panic(Namespace + ": nil environment option")
		}
		opt(e)
	}
	if e.timerSvc == nil {
		e.timerSvc = timer.NewWheel()
	}
	if e.logger == nil {
		base := logrus.New()
		base.SetLevel(logrus.WarnLevel)
		e.logger = logrus.NewEntry(base).WithField("component", Namespace)
	}
	if e.metricsP == nil {
		e.metricsP = metrics.NewNoopProvider()
	}
	return e
}

// Dispatcher returns the named dispatcher, or (nil, false) if absent.
func (e *Environment) Dispatcher(name string) (dispatch.Dispatcher, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	d, ok := e.dispatchers[name]
	return d, ok
}

// RegisterDispatcher registers or replaces a named dispatcher at runtime.
// Graph wiring itself is decided once at construction (dynamic operator
// re-wiring after subscription is a stated Non-goal); this only manages the
// named registry entries an Environment exposes to future construction
// calls.
func (e *Environment) RegisterDispatcher(name string, d dispatch.Dispatcher) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dispatchers[name] = d
}

// Timer returns the environment's timer service.
func (e *Environment) Timer() timer.Service { return e.timerSvc }

// Logger returns the environment's logger.
func (e *Environment) Logger() *logrus.Entry { return e.logger }

// Metrics returns the environment's metrics provider.
func (e *Environment) Metrics() metrics.Provider { return e.metricsP }

// DispatchOptions returns the dispatch.Option pair that threads this
// Environment's logger and metrics provider into a dispatcher built with
// dispatch.NewPool/NewSingleThreaded/NewRingBuffer, so its queue-depth
// instrument and overflow-drop warnings land on the same collaborators as
// the rest of the pipeline:
//
//	env.RegisterDispatcher("cpu", dispatch.NewPool(
//	    append(env.DispatchOptions(), dispatch.WithWorkerCount(4))...,
//	))
func (e *Environment) DispatchOptions() []dispatch.Option {
	return []dispatch.Option{
		dispatch.WithMetrics(e.Metrics()),
		dispatch.WithLogger(e.Logger()),
	}
}

var (
	defaultEnvOnce sync.Once
	defaultEnv     *Environment
)

// Default returns a lazily-constructed, process-wide convenience
// Environment. It is the one sanctioned exception to "no process-global
// singletons" in the design notes: a thin façade default for callers who
// don't need multiple named dispatchers or custom wiring. Core operator
// constructors never call Default() themselves — callers choose to pass it,
// or their own Environment, explicitly.
func Default() *Environment {
	defaultEnvOnce.Do(func() { defaultEnv = NewEnvironment() })
	return defaultEnv
}
