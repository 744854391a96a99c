// Package workflow defines workflow definitions, steps, executions, and
// the execution store interface.
//
// A Definition is an ordered collection of named Steps. Each Step declares
// the names of the steps it depends on, a retry budget, and an optional
// timeout. Validate checks that the definition is non-empty, that every
// dependency resolves to a step in the same definition, and that the
// dependency graph is acyclic. ExecutionOrder returns a deterministic
// topological order (ties broken by declaration order).
//
// An Execution is the mutable record of one run of a workflow, tracked
// through the Pending → InProgress → {Completed | Failed} lifecycle and
// persisted via the Store interface.
package workflow
