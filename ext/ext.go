// Package ext defines the extension system for conductor.
// Extensions are notified of lifecycle events (workflow started, step
// completed, step retrying, etc.) and can react to them — audit logs,
// metrics, notifications.
//
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
package ext

import (
	"context"
	"time"

	"github.com/nexora-ai/conductor/workflow"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Workflow lifecycle hooks
// ──────────────────────────────────────────────────

// WorkflowStarted is called when a workflow execution begins.
type WorkflowStarted interface {
	OnWorkflowStarted(ctx context.Context, e *workflow.Execution) error
}

// StepCompleted is called after a step completes successfully.
type StepCompleted interface {
	OnStepCompleted(ctx context.Context, e *workflow.Execution, stepName string, elapsed time.Duration) error
}

// StepRetrying is called when a step attempt fails with retries remaining.
type StepRetrying interface {
	OnStepRetrying(ctx context.Context, e *workflow.Execution, stepName string, attempt int, err error) error
}

// StepFailed is called when a step fails terminally (budget exhausted).
type StepFailed interface {
	OnStepFailed(ctx context.Context, e *workflow.Execution, stepName string, err error) error
}

// WorkflowCompleted is called after a workflow execution finishes
// successfully.
type WorkflowCompleted interface {
	OnWorkflowCompleted(ctx context.Context, e *workflow.Execution, elapsed time.Duration) error
}

// WorkflowFailed is called when a workflow execution fails terminally.
type WorkflowFailed interface {
	OnWorkflowFailed(ctx context.Context, e *workflow.Execution, err error) error
}
