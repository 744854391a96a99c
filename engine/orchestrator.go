package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/nexora-ai/conductor"
	"github.com/nexora-ai/conductor/backoff"
	"github.com/nexora-ai/conductor/ext"
	"github.com/nexora-ai/conductor/id"
	mw "github.com/nexora-ai/conductor/middleware"
	"github.com/nexora-ai/conductor/store/memory"
	"github.com/nexora-ai/conductor/workflow"
)

// Orchestrator drives workflow execution: it validates definitions,
// executes steps sequentially in topological order, retries failed
// attempts within each step's budget, records results, and maintains
// the execution registry.
//
// An Orchestrator is safe for concurrent ExecuteWorkflow calls as long
// as the injected store is (the default memory store is); each call
// owns its execution record exclusively.
type Orchestrator struct {
	config     conductor.Config
	store      workflow.Store
	extensions *ext.Registry
	bo         backoff.Strategy
	chain      mw.Middleware
	logger     *slog.Logger

	// Collected by options, resolved in New.
	userMws []mw.Middleware
	pending []ext.Extension

	// OpenTelemetry providers (optional; nil means use global).
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStore sets the execution registry. Defaults to an in-memory store.
func WithStore(s workflow.Store) Option {
	return func(o *Orchestrator) { o.store = s }
}

// WithLogger sets the structured logger for the orchestrator.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithConfig sets the orchestration limits. Defaults to
// conductor.DefaultConfig().
func WithConfig(cfg conductor.Config) Option {
	return func(o *Orchestrator) { o.config = cfg }
}

// WithBackoff sets the retry delay strategy. If not set,
// backoff.DefaultStrategy() (immediate) is used.
func WithBackoff(b backoff.Strategy) Option {
	return func(o *Orchestrator) { o.bo = b }
}

// WithMiddleware appends middleware to the step execution chain, inside
// the default stack.
func WithMiddleware(m mw.Middleware) Option {
	return func(o *Orchestrator) { o.userMws = append(o.userMws, m) }
}

// WithExtension registers a lifecycle extension.
func WithExtension(e ext.Extension) Option {
	return func(o *Orchestrator) { o.pending = append(o.pending, e) }
}

// WithTracerProvider sets a custom OTel TracerProvider. When set, the
// tracing middleware uses this provider instead of the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Orchestrator) { o.tracerProvider = tp }
}

// WithMeterProvider sets a custom OTel MeterProvider. When set, the
// metrics middleware uses this provider instead of the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *Orchestrator) { o.meterProvider = mp }
}

// New creates an Orchestrator with the given options.
func New(opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		config: conductor.DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.store == nil {
		o.store = memory.New()
	}
	if o.bo == nil {
		o.bo = backoff.DefaultStrategy()
	}

	o.extensions = ext.NewRegistry(o.logger)
	for _, e := range o.pending {
		o.extensions.Register(e)
	}
	o.pending = nil

	// Build tracing middleware (custom provider or global).
	var tracingMw mw.Middleware
	if o.tracerProvider != nil {
		tracingMw = mw.TracingWithTracer(o.tracerProvider.Tracer("github.com/nexora-ai/conductor"))
	} else {
		tracingMw = mw.Tracing()
	}

	// Build metrics middleware (custom provider or global).
	var metricsMw mw.Middleware
	if o.meterProvider != nil {
		metricsMw = mw.MetricsWithMeter(o.meterProvider.Meter("github.com/nexora-ai/conductor"))
	} else {
		metricsMw = mw.Metrics()
	}

	// Default middleware stack: recover → tracing → metrics → logging → timeout.
	defaultMws := []mw.Middleware{
		mw.Recover(o.logger),
		tracingMw,
		metricsMw,
		mw.Logging(o.logger),
		mw.Timeout(o.logger),
	}
	allMws := make([]mw.Middleware, 0, len(defaultMws)+len(o.userMws))
	allMws = append(allMws, defaultMws...)
	allMws = append(allMws, o.userMws...)
	o.chain = mw.Chain(allMws...)
	o.userMws = nil

	return o, nil
}

// Extensions returns the extension registry.
func (o *Orchestrator) Extensions() *ext.Registry { return o.extensions }

// Store returns the execution registry.
func (o *Orchestrator) Store() workflow.Store { return o.store }

// ExecuteWorkflow runs the workflow to a terminal state. It validates
// the definition (failing with conductor.ErrInvalidWorkflow before any
// execution record exists), registers a new execution, then runs each
// step sequentially in topological order, feeding the shared context and
// accumulated step results into every step function.
//
// On failure the returned execution is in StatusFailed and the error
// identifies the failing step; on success the execution is in
// StatusCompleted with the full per-step result map. The execution is
// never left in StatusInProgress after this call returns.
func (o *Orchestrator) ExecuteWorkflow(ctx context.Context, def *workflow.Definition, wfContext map[string]any) (*workflow.Execution, error) {
	order, err := def.ExecutionOrder()
	if err != nil {
		return nil, err
	}
	if o.config.MaxSteps > 0 && len(order) > o.config.MaxSteps {
		return nil, fmt.Errorf("%w: workflow %q declares %d steps (limit %d)",
			conductor.ErrInvalidWorkflow, def.Name, len(order), o.config.MaxSteps)
	}

	exec := &workflow.Execution{
		Entity:       conductor.NewEntity(),
		ID:           id.NewExecutionID(),
		WorkflowID:   def.ID,
		WorkflowName: def.Name,
		Status:       workflow.StatusPending,
		TotalSteps:   def.Len(),
		StartedAt:    time.Now().UTC(),
	}
	if createErr := o.store.CreateExecution(ctx, exec); createErr != nil {
		return nil, fmt.Errorf("create execution for workflow %q: %w", def.Name, createErr)
	}

	exec.Status = workflow.StatusInProgress
	o.updateExecution(ctx, exec)
	o.extensions.EmitWorkflowStarted(ctx, exec)
	o.logger.Info("workflow execution started",
		slog.String("workflow", def.Name),
		slog.String("workflow_id", def.ID.String()),
		slog.String("execution_id", exec.ID.String()),
		slog.Int("total_steps", exec.TotalSteps),
	)

	start := time.Now()
	if wfContext == nil {
		wfContext = make(map[string]any)
	}
	results := make(map[string]any, len(order))

	for i := range order {
		step := o.clampStep(order[i])

		if depErr := checkDependencies(&step, results); depErr != nil {
			o.failExecution(ctx, exec, depErr)
			return exec, depErr
		}

		result, stepErr := o.runStep(ctx, exec, &step, wfContext, results)
		if stepErr != nil {
			wrapped := stepErr
			if !errors.Is(stepErr, conductor.ErrStepTimeout) {
				wrapped = fmt.Errorf("%w: step %q: %w", conductor.ErrStepExecutionFailed, step.Name, stepErr)
			}
			o.failExecution(ctx, exec, fmt.Errorf("step %s failed: %w", step.Name, stepErr))
			return exec, wrapped
		}

		results[step.Name] = result
		exec.StepsCompleted++
		o.updateExecution(ctx, exec)
	}

	exec.MarkCompleted(results)
	o.updateExecution(ctx, exec)
	o.extensions.EmitWorkflowCompleted(ctx, exec, time.Since(start))
	o.logger.Info("workflow execution completed",
		slog.String("workflow", def.Name),
		slog.String("execution_id", exec.ID.String()),
		slog.Int("steps_completed", exec.StepsCompleted),
	)

	return exec, nil
}

// GetExecution retrieves an execution by ID. Fails with
// conductor.ErrExecutionNotFound if this orchestrator never ran it.
func (o *Orchestrator) GetExecution(ctx context.Context, execID id.ExecutionID) (*workflow.Execution, error) {
	return o.store.GetExecution(ctx, execID)
}

// ListExecutions returns all known executions matching opts, oldest
// first.
func (o *Orchestrator) ListExecutions(ctx context.Context, opts workflow.ListOpts) ([]*workflow.Execution, error) {
	return o.store.ListExecutions(ctx, opts)
}

// runStep invokes the step function through the middleware chain,
// retrying within the step's budget. Total attempts = RetryBudget + 1;
// the delay between attempts comes from the backoff strategy.
//
// Each attempt owns its result slot and a snapshot of the accumulated
// results. An attempt abandoned by the timeout middleware keeps running
// on its own copies, so it can never race with a live attempt or with
// the caller's results map; its eventual outcome is discarded.
func (o *Orchestrator) runStep(ctx context.Context, exec *workflow.Execution, step *workflow.Step, wfContext map[string]any, prev map[string]any) (any, error) {
	maxAttempts := step.RetryBudget + 1

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		input := workflow.StepInput{Context: wfContext, PreviousResults: maps.Clone(prev)}
		var result any
		terminal := func(ctx context.Context) error {
			v, fnErr := step.Func(ctx, input)
			if fnErr != nil {
				return fnErr
			}
			result = v
			return nil
		}

		attemptStart := time.Now()
		err := o.chain(ctx, exec, step, terminal)
		if err == nil {
			o.extensions.EmitStepCompleted(ctx, exec, step.Name, time.Since(attemptStart))
			return result, nil
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		o.extensions.EmitStepRetrying(ctx, exec, step.Name, attempt, err)
		delay := o.bo.Delay(attempt)
		o.logger.Warn("step failed, retrying",
			slog.String("workflow", exec.WorkflowName),
			slog.String("execution_id", exec.ID.String()),
			slog.String("step", step.Name),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()),
		)
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				o.extensions.EmitStepFailed(ctx, exec, step.Name, ctx.Err())
				return nil, ctx.Err()
			}
		}
	}

	o.extensions.EmitStepFailed(ctx, exec, step.Name, lastErr)
	return nil, lastErr
}

// clampStep applies the orchestrator's config limits to a copy of the
// step: default and maximum timeout, and maximum retry budget.
func (o *Orchestrator) clampStep(s workflow.Step) workflow.Step {
	if s.Timeout <= 0 {
		s.Timeout = o.config.DefaultStepTimeout
	}
	if o.config.MaxStepTimeout > 0 && s.Timeout > o.config.MaxStepTimeout {
		s.Timeout = o.config.MaxStepTimeout
	}
	if o.config.MaxRetryBudget > 0 && s.RetryBudget > o.config.MaxRetryBudget {
		s.RetryBudget = o.config.MaxRetryBudget
	}
	return s
}

// failExecution marks the execution failed, persists it, and notifies
// extensions. The execution is terminal after this call.
func (o *Orchestrator) failExecution(ctx context.Context, exec *workflow.Execution, cause error) {
	exec.MarkFailed(cause.Error())
	o.updateExecution(ctx, exec)
	o.extensions.EmitWorkflowFailed(ctx, exec, cause)
	o.logger.Error("workflow execution failed",
		slog.String("workflow", exec.WorkflowName),
		slog.String("execution_id", exec.ID.String()),
		slog.String("error", cause.Error()),
	)
}

// updateExecution persists the execution, logging (not propagating)
// store errors: a registry write failure must not change the outcome of
// a run that already happened.
func (o *Orchestrator) updateExecution(ctx context.Context, exec *workflow.Execution) {
	if err := o.store.UpdateExecution(ctx, exec); err != nil {
		o.logger.Error("failed to update execution",
			slog.String("execution_id", exec.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// checkDependencies verifies that every declared dependency of the step
// already has a result. With a validated definition the topological
// order guarantees this; the check remains as a runtime guard for
// hand-built orders.
func checkDependencies(step *workflow.Step, results map[string]any) error {
	for _, dep := range step.Dependencies {
		if _, ok := results[dep]; !ok {
			return fmt.Errorf("%w: step %q requires %q", conductor.ErrDependencyUnmet, step.Name, dep)
		}
	}
	return nil
}
