package metrics

// Standard instrument names, so a Provider implementation (BasicProvider,
// PrometheusProvider, or a caller's own) observes the engine under one
// stable naming scheme. Every dispatch variant records DispatcherQueueDepth
// and DispatcherTasksDropped; the other names are reserved and no code in
// this module records them.
const (
	// SignalsEmitted counts Next signals delivered by an operator,
	// tagged by operator name via InstrumentOption attributes.
	SignalsEmitted = "reactor_signals_emitted_total"
	// ErrorsEmitted counts Error terminal signals delivered by an
	// operator.
	ErrorsEmitted = "reactor_errors_emitted_total"
	// DemandRequested counts cumulative Request(n) units an operator has
	// issued upstream.
	DemandRequested = "reactor_demand_requested_total"
	// DispatcherQueueDepth tracks a dispatcher's current queued task
	// count.
	DispatcherQueueDepth = "reactor_dispatcher_queue_depth"
	// DispatcherTaskLatency records the time between a task's enqueue and
	// its execution, in seconds.
	DispatcherTaskLatency = "reactor_dispatcher_task_latency_seconds"
	// DispatcherTasksDropped counts tasks discarded by an OverflowDropOldest
	// or OverflowDropNewest policy instead of being queued.
	DispatcherTasksDropped = "reactor_dispatcher_tasks_dropped_total"
)
