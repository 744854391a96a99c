package workflow

import (
	"context"
	"time"
)

// StepInput is the record passed to every step function. It carries the
// caller-supplied workflow context and the results of previously
// completed steps, keyed by step name.
type StepInput struct {
	// Context is the shared key-value data passed to ExecuteWorkflow.
	// It is visible to every step in the workflow.
	Context map[string]any

	// PreviousResults maps completed step names to their results.
	// A step may rely on an entry being present only for steps it
	// names in Dependencies.
	PreviousResults map[string]any
}

// StepFunc is the unit of work executed for a step. The returned value
// is stored opaquely under the step's name and made available to
// dependent steps via StepInput.PreviousResults.
type StepFunc func(ctx context.Context, in StepInput) (any, error)

// Step is a single named unit of work in a workflow.
type Step struct {
	// Name uniquely identifies the step within its workflow.
	Name string

	// Func is the function invoked when the step runs.
	Func StepFunc

	// Dependencies names the steps whose results must be available
	// before this step runs.
	Dependencies []string

	// RetryBudget is the number of additional attempts after the first
	// failure. Total attempts = RetryBudget + 1.
	RetryBudget int

	// Timeout bounds a single attempt. Zero means no per-step deadline.
	Timeout time.Duration

	// Metadata carries free-form annotations. The engine never reads it.
	Metadata map[string]string
}

// StepOption configures a Step at construction time.
type StepOption func(*Step)

// WithDependencies declares the steps this step depends on.
func WithDependencies(names ...string) StepOption {
	return func(s *Step) {
		s.Dependencies = append(s.Dependencies, names...)
	}
}

// WithRetryBudget sets the number of additional attempts after the first
// failure.
func WithRetryBudget(n int) StepOption {
	return func(s *Step) {
		s.RetryBudget = n
	}
}

// WithTimeout sets the per-attempt execution deadline.
func WithTimeout(d time.Duration) StepOption {
	return func(s *Step) {
		s.Timeout = d
	}
}

// WithMetadata attaches a metadata key-value pair to the step.
func WithMetadata(key, value string) StepOption {
	return func(s *Step) {
		if s.Metadata == nil {
			s.Metadata = make(map[string]string)
		}
		s.Metadata[key] = value
	}
}

// NewStep creates a step with the given name and function, applying any
// options.
func NewStep(name string, fn StepFunc, opts ...StepOption) Step {
	s := Step{Name: name, Func: fn}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
