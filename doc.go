// Package reactor is a reactive dataflow engine: a library for constructing
// directed graphs of stream operators that carry discrete signals (values,
// errors, completion) from producers to consumers under a demand-driven
// backpressure protocol.
//
// Pipelines are composed declaratively with operators such as Map, Filter,
// Buffer, Window, Reduce, Scan, Merge, FlatMap and Partition. The engine
// schedules signal propagation across configurable execution contexts
// (package dispatch) while preserving per-edge ordering and honoring
// downstream demand.
//
// Construction
//   - Just, From and Range build cold source publishers.
//   - NewBroadcast builds a hot source with explicit BroadcastNext /
//     BroadcastError / BroadcastComplete methods; new subscribers never
//     observe signals emitted before they subscribed.
//   - FromPublisher wraps any Publisher[T] into the fluent Flow[T] builder,
//     whose methods mirror the operator family of the specification.
//
// Environment
// Named dispatchers, the default timer service, the logger and the metrics
// provider are threaded through an explicit Environment rather than held in
// package-level singletons (see "Global dispatcher registry" in the design
// notes). Default() returns a convenience environment for callers who don't
// need multiple named dispatchers.
//
// Non-goals
// Distributed operation across processes, persistent durability of
// in-flight elements, dynamic operator re-wiring after subscription, and
// exactly-once semantics across restarts are out of scope.
package reactor
