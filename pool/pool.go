// Package pool provides small worker-recycling pools used by
// github.com/ygrebnov/reactor/dispatch's work-stealing pool dispatcher
// variant to avoid allocating a fresh execution wrapper per dispatched task.
package pool

// Pool is an interface that defines methods on a pool of recyclable
// objects. Dispatch's pool dispatcher uses it to recycle worker wrappers
// between task executions.
type Pool interface {
	// Get returns an object from the pool, constructing one if needed.
	Get() interface{}

	// Put returns an object back to the pool for reuse.
	Put(interface{})
}
