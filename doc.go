// Package conductor provides a library-first workflow orchestration engine
// for Go. It executes directed graphs of named, dependent steps with retry
// policies, status tracking, and execution-history recording.
//
// Conductor is a library, not a service. Build a workflow definition with
// the fluent builder, supply your step functions as ordinary Go closures,
// and hand the definition to an engine.Orchestrator.
//
// # Quick Start
//
//	def, err := workflow.NewBuilder("pipeline", "demo").
//	    AddStep("ingest", ingestFn).
//	    AddStep("validate", validateFn, workflow.WithDependencies("ingest")).
//	    Build()
//
//	orch, err := engine.New()
//	exec, err := orch.ExecuteWorkflow(ctx, def, map[string]any{"source": "data.csv"})
//
// # Architecture
//
// Each subsystem lives in its own package: workflow (definitions, steps,
// executions, the store contract), engine (the orchestrator), backoff
// (retry delay strategies), middleware (per-step cross-cutting wrappers),
// ext (lifecycle hooks), and store/memory (the default execution registry).
//
// Execution is strictly sequential: steps run one at a time in a
// topological order of the dependency graph, ties broken by declaration
// order. Execution IDs use TypeID — type-prefixed, K-sortable,
// UUIDv7-based identifiers.
package conductor
