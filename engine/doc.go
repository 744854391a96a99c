// Package engine provides the workflow orchestrator. It wires the
// execution store, backoff strategy, middleware chain, and extension
// registry together and drives workflow executions to a terminal state.
//
// This package sits above the workflow, middleware, backoff, and ext
// packages and below the application layer; it exists so those subsystem
// packages never import each other.
package engine
