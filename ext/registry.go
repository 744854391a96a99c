package ext

import (
	"context"
	"log/slog"
	"time"

	"github.com/nexora-ai/conductor/workflow"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time. This avoids type-asserting back to
// Extension inside the emit methods.
type workflowStartedEntry struct {
	name string
	hook WorkflowStarted
}

type stepCompletedEntry struct {
	name string
	hook StepCompleted
}

type stepRetryingEntry struct {
	name string
	hook StepRetrying
}

type stepFailedEntry struct {
	name string
	hook StepFailed
}

type workflowCompletedEntry struct {
	name string
	hook WorkflowCompleted
}

type workflowFailedEntry struct {
	name string
	hook WorkflowFailed
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	// Type-cached slices for each lifecycle hook.
	workflowStarted   []workflowStartedEntry
	stepCompleted     []stepCompletedEntry
	stepRetrying      []stepRetryingEntry
	stepFailed        []stepFailedEntry
	workflowCompleted []workflowCompletedEntry
	workflowFailed    []workflowFailedEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(WorkflowStarted); ok {
		r.workflowStarted = append(r.workflowStarted, workflowStartedEntry{name, h})
	}
	if h, ok := e.(StepCompleted); ok {
		r.stepCompleted = append(r.stepCompleted, stepCompletedEntry{name, h})
	}
	if h, ok := e.(StepRetrying); ok {
		r.stepRetrying = append(r.stepRetrying, stepRetryingEntry{name, h})
	}
	if h, ok := e.(StepFailed); ok {
		r.stepFailed = append(r.stepFailed, stepFailedEntry{name, h})
	}
	if h, ok := e.(WorkflowCompleted); ok {
		r.workflowCompleted = append(r.workflowCompleted, workflowCompletedEntry{name, h})
	}
	if h, ok := e.(WorkflowFailed); ok {
		r.workflowFailed = append(r.workflowFailed, workflowFailedEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// EmitWorkflowStarted notifies all extensions that implement WorkflowStarted.
func (r *Registry) EmitWorkflowStarted(ctx context.Context, e *workflow.Execution) {
	for _, entry := range r.workflowStarted {
		if err := entry.hook.OnWorkflowStarted(ctx, e); err != nil {
			r.logHookError("OnWorkflowStarted", entry.name, err)
		}
	}
}

// EmitStepCompleted notifies all extensions that implement StepCompleted.
func (r *Registry) EmitStepCompleted(ctx context.Context, e *workflow.Execution, stepName string, elapsed time.Duration) {
	for _, entry := range r.stepCompleted {
		if err := entry.hook.OnStepCompleted(ctx, e, stepName, elapsed); err != nil {
			r.logHookError("OnStepCompleted", entry.name, err)
		}
	}
}

// EmitStepRetrying notifies all extensions that implement StepRetrying.
func (r *Registry) EmitStepRetrying(ctx context.Context, e *workflow.Execution, stepName string, attempt int, stepErr error) {
	for _, entry := range r.stepRetrying {
		if err := entry.hook.OnStepRetrying(ctx, e, stepName, attempt, stepErr); err != nil {
			r.logHookError("OnStepRetrying", entry.name, err)
		}
	}
}

// EmitStepFailed notifies all extensions that implement StepFailed.
func (r *Registry) EmitStepFailed(ctx context.Context, e *workflow.Execution, stepName string, stepErr error) {
	for _, entry := range r.stepFailed {
		if err := entry.hook.OnStepFailed(ctx, e, stepName, stepErr); err != nil {
			r.logHookError("OnStepFailed", entry.name, err)
		}
	}
}

// EmitWorkflowCompleted notifies all extensions that implement WorkflowCompleted.
func (r *Registry) EmitWorkflowCompleted(ctx context.Context, e *workflow.Execution, elapsed time.Duration) {
	for _, entry := range r.workflowCompleted {
		if err := entry.hook.OnWorkflowCompleted(ctx, e, elapsed); err != nil {
			r.logHookError("OnWorkflowCompleted", entry.name, err)
		}
	}
}

// EmitWorkflowFailed notifies all extensions that implement WorkflowFailed.
func (r *Registry) EmitWorkflowFailed(ctx context.Context, e *workflow.Execution, execErr error) {
	for _, entry := range r.workflowFailed {
		if err := entry.hook.OnWorkflowFailed(ctx, e, execErr); err != nil {
			r.logHookError("OnWorkflowFailed", entry.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated — they must not block execution.
func (r *Registry) logHookError(hook, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
