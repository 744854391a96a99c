package workflow

import (
	"context"

	"github.com/nexora-ai/conductor/id"
)

// ListOpts controls filtering and pagination for execution list queries.
type ListOpts struct {
	// Limit is the maximum number of executions to return. Zero means
	// no limit.
	Limit int
	// Offset is the number of executions to skip.
	Offset int
	// Status filters by execution status. Empty means all statuses.
	Status Status
}

// Store is the execution registry contract. The orchestrator owns one
// store instance; implementations must be safe for concurrent use and
// must return copies so callers cannot race with the orchestrator's
// mutations.
type Store interface {
	// CreateExecution registers a new execution record.
	CreateExecution(ctx context.Context, e *Execution) error

	// GetExecution retrieves an execution by ID. Fails with
	// conductor.ErrExecutionNotFound if the ID is unknown.
	GetExecution(ctx context.Context, execID id.ExecutionID) (*Execution, error)

	// UpdateExecution persists changes to an existing execution.
	UpdateExecution(ctx context.Context, e *Execution) error

	// ListExecutions returns executions matching the given options,
	// oldest first.
	ListExecutions(ctx context.Context, opts ListOpts) ([]*Execution, error)
}
