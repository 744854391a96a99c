package workflow

import (
	"time"

	"github.com/nexora-ai/conductor"
	"github.com/nexora-ai/conductor/id"
)

// Status represents the lifecycle state of a workflow execution.
type Status string

const (
	// StatusPending means the execution is created but not yet running.
	StatusPending Status = "pending"
	// StatusInProgress means steps are currently executing.
	StatusInProgress Status = "in_progress"
	// StatusCompleted means every step finished successfully.
	StatusCompleted Status = "completed"
	// StatusFailed means the execution failed terminally.
	StatusFailed Status = "failed"
	// StatusCancelled is reserved for future cancellation support.
	// No code path sets it today.
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Execution is the mutable record of one run of a workflow. It is
// created and mutated only by the orchestrator and becomes immutable
// once it reaches a terminal status.
type Execution struct {
	conductor.Entity

	ID             id.ExecutionID `json:"id"`
	WorkflowID     id.WorkflowID  `json:"workflow_id"`
	WorkflowName   string         `json:"workflow_name"`
	Status         Status         `json:"status"`
	StepsCompleted int            `json:"steps_completed"`
	TotalSteps     int            `json:"total_steps"`

	// Result maps step names to step results. Set only on completion.
	Result map[string]any `json:"result,omitempty"`

	// Error describes the failure. Set only on a failed execution.
	Error string `json:"error,omitempty"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// MarkCompleted transitions the execution to StatusCompleted with the
// full per-step result map.
func (e *Execution) MarkCompleted(result map[string]any) {
	now := time.Now().UTC()
	e.Status = StatusCompleted
	e.Result = result
	e.CompletedAt = &now
	e.UpdatedAt = now
}

// MarkFailed transitions the execution to StatusFailed with an error
// message.
func (e *Execution) MarkFailed(msg string) {
	now := time.Now().UTC()
	e.Status = StatusFailed
	e.Error = msg
	e.CompletedAt = &now
	e.UpdatedAt = now
}
