package engine_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nexora-ai/conductor"
	"github.com/nexora-ai/conductor/backoff"
	"github.com/nexora-ai/conductor/engine"
	"github.com/nexora-ai/conductor/ext"
	"github.com/nexora-ai/conductor/id"
	"github.com/nexora-ai/conductor/middleware"
	"github.com/nexora-ai/conductor/store/memory"
	"github.com/nexora-ai/conductor/workflow"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newOrchestrator(t *testing.T, opts ...engine.Option) *engine.Orchestrator {
	t.Helper()
	opts = append([]engine.Option{engine.WithLogger(testLogger())}, opts...)
	o, err := engine.New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return o
}

// statusStep returns a step function that reports "<name>_done".
func statusStep(name string) workflow.StepFunc {
	return func(_ context.Context, _ workflow.StepInput) (any, error) {
		return map[string]any{"status": name + "_done"}, nil
	}
}

func buildLinear(t *testing.T, names ...string) *workflow.Definition {
	t.Helper()
	b := workflow.NewBuilder("linear", "")
	for i, name := range names {
		var opts []workflow.StepOption
		if i > 0 {
			opts = append(opts, workflow.WithDependencies(names[i-1]))
		}
		b.AddStep(name, statusStep(name), opts...)
	}
	def, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return def
}

// trackingExt records lifecycle events for assertions.
type trackingExt struct {
	workflowStarted   atomic.Int32
	workflowCompleted atomic.Int32
	workflowFailed    atomic.Int32
	stepCompleted     atomic.Int32
	stepRetrying      atomic.Int32
	stepFailed        atomic.Int32
}

func (*trackingExt) Name() string { return "tracking" }

func (e *trackingExt) OnWorkflowStarted(_ context.Context, _ *workflow.Execution) error {
	e.workflowStarted.Add(1)
	return nil
}

func (e *trackingExt) OnWorkflowCompleted(_ context.Context, _ *workflow.Execution, _ time.Duration) error {
	e.workflowCompleted.Add(1)
	return nil
}

func (e *trackingExt) OnWorkflowFailed(_ context.Context, _ *workflow.Execution, _ error) error {
	e.workflowFailed.Add(1)
	return nil
}

func (e *trackingExt) OnStepCompleted(_ context.Context, _ *workflow.Execution, _ string, _ time.Duration) error {
	e.stepCompleted.Add(1)
	return nil
}

func (e *trackingExt) OnStepRetrying(_ context.Context, _ *workflow.Execution, _ string, _ int, _ error) error {
	e.stepRetrying.Add(1)
	return nil
}

func (e *trackingExt) OnStepFailed(_ context.Context, _ *workflow.Execution, _ string, _ error) error {
	e.stepFailed.Add(1)
	return nil
}

var _ interface {
	ext.Extension
	ext.WorkflowStarted
	ext.WorkflowCompleted
	ext.WorkflowFailed
	ext.StepCompleted
	ext.StepRetrying
	ext.StepFailed
} = (*trackingExt)(nil)

func TestExecuteWorkflow_Completed(t *testing.T) {
	t.Parallel()
	o := newOrchestrator(t)

	def, err := workflow.NewBuilder("pipeline", "").
		AddStep("a", statusStep("a")).
		AddStep("b", statusStep("b"), workflow.WithDependencies("a")).
		AddStep("c", statusStep("c"), workflow.WithDependencies("a", "b")).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	exec, err := o.ExecuteWorkflow(context.Background(), def, nil)
	if err != nil {
		t.Fatalf("ExecuteWorkflow: %v", err)
	}

	if exec.Status != workflow.StatusCompleted {
		t.Errorf("Status = %q, want %q", exec.Status, workflow.StatusCompleted)
	}
	if exec.StepsCompleted != 3 || exec.TotalSteps != 3 {
		t.Errorf("StepsCompleted/TotalSteps = %d/%d, want 3/3", exec.StepsCompleted, exec.TotalSteps)
	}
	if exec.Error != "" {
		t.Errorf("Error = %q, want empty", exec.Error)
	}
	if exec.CompletedAt == nil {
		t.Error("CompletedAt not set")
	}
	if exec.WorkflowID != def.ID {
		t.Errorf("WorkflowID = %v, want %v", exec.WorkflowID, def.ID)
	}

	for _, name := range []string{"a", "b", "c"} {
		result, ok := exec.Result[name].(map[string]any)
		if !ok {
			t.Fatalf("Result[%q] = %v (%T)", name, exec.Result[name], exec.Result[name])
		}
		if want := name + "_done"; result["status"] != want {
			t.Errorf("Result[%q][status] = %v, want %q", name, result["status"], want)
		}
	}
}

func TestExecuteWorkflow_StepInput(t *testing.T) {
	t.Parallel()
	o := newOrchestrator(t)

	var sawContext, sawPrevious bool
	def, err := workflow.NewBuilder("input", "").
		AddStep("first", func(_ context.Context, in workflow.StepInput) (any, error) {
			sawContext = in.Context["tenant"] == "acme"
			return 42, nil
		}).
		AddStep("second", func(_ context.Context, in workflow.StepInput) (any, error) {
			sawPrevious = in.PreviousResults["first"] == 42
			return nil, nil
		}, workflow.WithDependencies("first")).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if _, err := o.ExecuteWorkflow(context.Background(), def, map[string]any{"tenant": "acme"}); err != nil {
		t.Fatalf("ExecuteWorkflow: %v", err)
	}
	if !sawContext {
		t.Error("workflow context not visible to first step")
	}
	if !sawPrevious {
		t.Error("first step's result not visible to second step")
	}
}

func TestExecuteWorkflow_OutOfOrderDeclaration(t *testing.T) {
	t.Parallel()
	o := newOrchestrator(t)

	var order []string
	record := func(name string) workflow.StepFunc {
		return func(_ context.Context, _ workflow.StepInput) (any, error) {
			order = append(order, name)
			return nil, nil
		}
	}

	// "load" is declared before its dependency "extract".
	def, err := workflow.NewBuilder("out-of-order", "").
		AddStep("load", record("load"), workflow.WithDependencies("extract")).
		AddStep("extract", record("extract")).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	exec, err := o.ExecuteWorkflow(context.Background(), def, nil)
	if err != nil {
		t.Fatalf("ExecuteWorkflow: %v", err)
	}
	if exec.Status != workflow.StatusCompleted {
		t.Fatalf("Status = %q, want %q", exec.Status, workflow.StatusCompleted)
	}
	if len(order) != 2 || order[0] != "extract" || order[1] != "load" {
		t.Errorf("execution order = %v, want [extract load]", order)
	}
}

func TestExecuteWorkflow_RetryThenSucceed(t *testing.T) {
	t.Parallel()
	tracker := &trackingExt{}
	o := newOrchestrator(t, engine.WithExtension(tracker))

	var attempts int
	def, err := workflow.NewBuilder("flaky", "").
		AddStep("unstable", func(_ context.Context, _ workflow.StepInput) (any, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("transient")
			}
			return "ok", nil
		}, workflow.WithRetryBudget(2)).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	exec, err := o.ExecuteWorkflow(context.Background(), def, nil)
	if err != nil {
		t.Fatalf("ExecuteWorkflow: %v", err)
	}

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if exec.Status != workflow.StatusCompleted {
		t.Errorf("Status = %q, want %q", exec.Status, workflow.StatusCompleted)
	}
	if exec.Result["unstable"] != "ok" {
		t.Errorf("Result = %v", exec.Result)
	}
	if got := tracker.stepRetrying.Load(); got != 2 {
		t.Errorf("retry events = %d, want 2", got)
	}
	if got := tracker.stepFailed.Load(); got != 0 {
		t.Errorf("step failed events = %d, want 0", got)
	}
}

func TestExecuteWorkflow_RetriesExhausted(t *testing.T) {
	t.Parallel()
	tracker := &trackingExt{}
	o := newOrchestrator(t, engine.WithExtension(tracker))

	var attempts int
	def, err := workflow.NewBuilder("doomed", "").
		AddStep("ok", statusStep("ok")).
		AddStep("broken", func(_ context.Context, _ workflow.StepInput) (any, error) {
			attempts++
			return nil, errors.New("permanent failure")
		}, workflow.WithDependencies("ok"), workflow.WithRetryBudget(1)).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	exec, err := o.ExecuteWorkflow(context.Background(), def, nil)
	if !errors.Is(err, conductor.ErrStepExecutionFailed) {
		t.Fatalf("ExecuteWorkflow = %v, want ErrStepExecutionFailed", err)
	}
	if !strings.Contains(err.Error(), `"broken"`) {
		t.Errorf("error %q does not name the failing step", err)
	}

	if attempts != 2 {
		t.Errorf("attempts = %d, want 2 (budget 1 + first attempt)", attempts)
	}
	if exec.Status != workflow.StatusFailed {
		t.Errorf("Status = %q, want %q", exec.Status, workflow.StatusFailed)
	}
	if !strings.Contains(exec.Error, "step broken failed") {
		t.Errorf("exec.Error = %q, want step name and cause", exec.Error)
	}
	if exec.StepsCompleted != 1 {
		t.Errorf("StepsCompleted = %d, want 1", exec.StepsCompleted)
	}
	if exec.CompletedAt == nil {
		t.Error("CompletedAt not set on failure")
	}
	if got := tracker.workflowFailed.Load(); got != 1 {
		t.Errorf("workflow failed events = %d, want 1", got)
	}
	if got := tracker.stepFailed.Load(); got != 1 {
		t.Errorf("step failed events = %d, want 1", got)
	}
}

func TestExecuteWorkflow_InvalidCreatesNoRecord(t *testing.T) {
	t.Parallel()
	store := memory.New()
	o := newOrchestrator(t, engine.WithStore(store))

	def := workflow.NewDefinition("cyclic", "")
	for _, s := range []workflow.Step{
		workflow.NewStep("a", statusStep("a"), workflow.WithDependencies("b")),
		workflow.NewStep("b", statusStep("b"), workflow.WithDependencies("a")),
	} {
		if err := def.AddStep(s); err != nil {
			t.Fatalf("AddStep: %v", err)
		}
	}

	exec, err := o.ExecuteWorkflow(context.Background(), def, nil)
	if !errors.Is(err, conductor.ErrInvalidWorkflow) {
		t.Fatalf("ExecuteWorkflow = %v, want ErrInvalidWorkflow", err)
	}
	if exec != nil {
		t.Errorf("execution = %+v, want nil for an invalid workflow", exec)
	}
	if store.Len() != 0 {
		t.Errorf("store holds %d executions, want 0", store.Len())
	}

	// Same contract for an empty definition.
	empty := workflow.NewDefinition("empty", "")
	if _, err := o.ExecuteWorkflow(context.Background(), empty, nil); !errors.Is(err, conductor.ErrInvalidWorkflow) {
		t.Fatalf("ExecuteWorkflow(empty) = %v, want ErrInvalidWorkflow", err)
	}
	if store.Len() != 0 {
		t.Errorf("store holds %d executions after empty run, want 0", store.Len())
	}
}

func TestExecuteWorkflow_MaxStepsExceeded(t *testing.T) {
	t.Parallel()
	cfg := conductor.DefaultConfig()
	cfg.MaxSteps = 2
	o := newOrchestrator(t, engine.WithConfig(cfg))

	def := buildLinear(t, "a", "b", "c")
	_, err := o.ExecuteWorkflow(context.Background(), def, nil)
	if !errors.Is(err, conductor.ErrInvalidWorkflow) {
		t.Fatalf("ExecuteWorkflow = %v, want ErrInvalidWorkflow", err)
	}
	if !strings.Contains(err.Error(), "limit 2") {
		t.Errorf("error %q does not mention the step limit", err)
	}
}

func TestExecuteWorkflow_Timeout(t *testing.T) {
	t.Parallel()
	o := newOrchestrator(t)

	def, err := workflow.NewBuilder("slow", "").
		AddStep("sleepy", func(_ context.Context, _ workflow.StepInput) (any, error) {
			time.Sleep(500 * time.Millisecond)
			return nil, nil
		}, workflow.WithTimeout(20*time.Millisecond)).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	exec, execErr := o.ExecuteWorkflow(context.Background(), def, nil)
	if !errors.Is(execErr, conductor.ErrStepTimeout) {
		t.Fatalf("ExecuteWorkflow = %v, want ErrStepTimeout", execErr)
	}
	if exec.Status != workflow.StatusFailed {
		t.Errorf("Status = %q, want %q", exec.Status, workflow.StatusFailed)
	}
	if !strings.Contains(exec.Error, "sleepy") {
		t.Errorf("exec.Error = %q, want failing step name", exec.Error)
	}
}

func TestExecuteWorkflow_TimedOutAttemptDoesNotCommit(t *testing.T) {
	t.Parallel()
	o := newOrchestrator(t)

	// First attempt ignores its deadline, keeps running past the retry,
	// and eventually returns a value. Only the retry's value may be
	// committed, and the overlap must not touch engine-owned state
	// (this test is meaningful under the race detector).
	var attempts atomic.Int32
	def, err := workflow.NewBuilder("overlap", "").
		AddStep("seed", statusStep("seed")).
		AddStep("stubborn", func(_ context.Context, in workflow.StepInput) (any, error) {
			if attempts.Add(1) == 1 {
				time.Sleep(80 * time.Millisecond)
				_ = in.PreviousResults["seed"]
				return "stale", nil
			}
			return "fresh", nil
		}, workflow.WithDependencies("seed"), workflow.WithRetryBudget(3), workflow.WithTimeout(20*time.Millisecond)).
		AddStep("sink", func(_ context.Context, in workflow.StepInput) (any, error) {
			return in.PreviousResults["stubborn"], nil
		}, workflow.WithDependencies("stubborn")).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	exec, err := o.ExecuteWorkflow(context.Background(), def, nil)
	if err != nil {
		t.Fatalf("ExecuteWorkflow: %v", err)
	}

	if exec.Status != workflow.StatusCompleted {
		t.Fatalf("Status = %q, want %q", exec.Status, workflow.StatusCompleted)
	}
	if got := exec.Result["stubborn"]; got != "fresh" {
		t.Errorf("Result[stubborn] = %v, want %q (abandoned attempt leaked through)", got, "fresh")
	}
	if got := exec.Result["sink"]; got != "fresh" {
		t.Errorf("Result[sink] = %v, want %q", got, "fresh")
	}
	if n := attempts.Load(); n != 2 {
		t.Errorf("attempts = %d, want 2", n)
	}

	// Let the abandoned attempt finish before the test returns.
	time.Sleep(100 * time.Millisecond)
}

func TestExecuteWorkflow_PanicRecovered(t *testing.T) {
	t.Parallel()
	o := newOrchestrator(t)

	def, err := workflow.NewBuilder("panicky", "").
		AddStep("boom", func(_ context.Context, _ workflow.StepInput) (any, error) {
			panic("unexpected state")
		}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	exec, execErr := o.ExecuteWorkflow(context.Background(), def, nil)
	if !errors.Is(execErr, conductor.ErrStepExecutionFailed) {
		t.Fatalf("ExecuteWorkflow = %v, want ErrStepExecutionFailed", execErr)
	}
	if exec.Status != workflow.StatusFailed {
		t.Errorf("Status = %q, want %q", exec.Status, workflow.StatusFailed)
	}
	if !strings.Contains(exec.Error, "unexpected state") {
		t.Errorf("exec.Error = %q, want panic message", exec.Error)
	}
}

func TestExecuteWorkflow_PanicRetriedWithinBudget(t *testing.T) {
	t.Parallel()
	o := newOrchestrator(t)

	// A panicking attempt consumes retry budget like any other failure.
	var attempts int
	def, err := workflow.NewBuilder("shaky", "").
		AddStep("fragile", func(_ context.Context, _ workflow.StepInput) (any, error) {
			attempts++
			if attempts == 1 {
				panic("first attempt blew up")
			}
			return "recovered", nil
		}, workflow.WithRetryBudget(1)).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	exec, execErr := o.ExecuteWorkflow(context.Background(), def, nil)
	if execErr != nil {
		t.Fatalf("ExecuteWorkflow: %v", execErr)
	}

	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if exec.Status != workflow.StatusCompleted {
		t.Errorf("Status = %q, want %q", exec.Status, workflow.StatusCompleted)
	}
	if exec.Result["fragile"] != "recovered" {
		t.Errorf("Result[fragile] = %v, want %q", exec.Result["fragile"], "recovered")
	}
	if exec.Error != "" {
		t.Errorf("Error = %q, want empty after successful retry", exec.Error)
	}
}

func TestExecuteWorkflow_BackoffDelays(t *testing.T) {
	t.Parallel()
	o := newOrchestrator(t, engine.WithBackoff(backoff.NewConstant(30*time.Millisecond)))

	var attempts int
	def, err := workflow.NewBuilder("delayed", "").
		AddStep("flaky", func(_ context.Context, _ workflow.StepInput) (any, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("transient")
			}
			return nil, nil
		}, workflow.WithRetryBudget(2)).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	start := time.Now()
	if _, err := o.ExecuteWorkflow(context.Background(), def, nil); err != nil {
		t.Fatalf("ExecuteWorkflow: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Errorf("elapsed = %s, want at least 60ms (two 30ms delays)", elapsed)
	}
}

func TestExecuteWorkflow_ContextCancelledDuringBackoff(t *testing.T) {
	t.Parallel()
	o := newOrchestrator(t, engine.WithBackoff(backoff.NewConstant(5*time.Second)))

	ctx, cancel := context.WithCancel(context.Background())
	def, err := workflow.NewBuilder("cancelled", "").
		AddStep("failing", func(_ context.Context, _ workflow.StepInput) (any, error) {
			cancel()
			return nil, errors.New("always fails")
		}, workflow.WithRetryBudget(3)).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	start := time.Now()
	exec, execErr := o.ExecuteWorkflow(ctx, def, nil)
	if execErr == nil {
		t.Fatal("ExecuteWorkflow succeeded, want cancellation error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("elapsed = %s, backoff wait ignored cancellation", elapsed)
	}
	if exec.Status != workflow.StatusFailed {
		t.Errorf("Status = %q, want %q", exec.Status, workflow.StatusFailed)
	}
}

func TestGetExecution(t *testing.T) {
	t.Parallel()
	o := newOrchestrator(t)

	def := buildLinear(t, "a", "b")
	exec, err := o.ExecuteWorkflow(context.Background(), def, nil)
	if err != nil {
		t.Fatalf("ExecuteWorkflow: %v", err)
	}

	// Repeated reads return the same terminal record.
	for i := 0; i < 2; i++ {
		got, getErr := o.GetExecution(context.Background(), exec.ID)
		if getErr != nil {
			t.Fatalf("GetExecution: %v", getErr)
		}
		if got.Status != workflow.StatusCompleted {
			t.Errorf("Status = %q, want %q", got.Status, workflow.StatusCompleted)
		}
		if got.StepsCompleted != 2 {
			t.Errorf("StepsCompleted = %d, want 2", got.StepsCompleted)
		}
	}

	if _, err := o.GetExecution(context.Background(), id.NewExecutionID()); !errors.Is(err, conductor.ErrExecutionNotFound) {
		t.Errorf("GetExecution unknown = %v, want ErrExecutionNotFound", err)
	}
}

func TestListExecutions(t *testing.T) {
	t.Parallel()
	o := newOrchestrator(t)

	good := buildLinear(t, "a")
	bad, err := workflow.NewBuilder("failing", "").
		AddStep("broken", func(_ context.Context, _ workflow.StepInput) (any, error) {
			return nil, errors.New("boom")
		}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if _, err := o.ExecuteWorkflow(context.Background(), good, nil); err != nil {
		t.Fatalf("ExecuteWorkflow: %v", err)
	}
	if _, err := o.ExecuteWorkflow(context.Background(), bad, nil); err == nil {
		t.Fatal("ExecuteWorkflow on failing workflow succeeded")
	}

	all, err := o.ListExecutions(context.Background(), workflow.ListOpts{})
	if err != nil {
		t.Fatalf("ListExecutions: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}

	failed, err := o.ListExecutions(context.Background(), workflow.ListOpts{Status: workflow.StatusFailed})
	if err != nil {
		t.Fatalf("ListExecutions: %v", err)
	}
	if len(failed) != 1 || failed[0].WorkflowName != "failing" {
		t.Errorf("failed executions = %v", failed)
	}
}

func TestExecuteWorkflow_MidRunProgressVisible(t *testing.T) {
	t.Parallel()
	store := memory.New()
	o := newOrchestrator(t, engine.WithStore(store))

	var observed int
	def, err := workflow.NewBuilder("observable", "").
		AddStep("first", statusStep("first")).
		AddStep("second", func(ctx context.Context, _ workflow.StepInput) (any, error) {
			// The registry already shows the first step's progress.
			running, listErr := store.ListExecutions(ctx, workflow.ListOpts{Status: workflow.StatusInProgress})
			if listErr != nil {
				return nil, listErr
			}
			if len(running) != 1 {
				return nil, fmt.Errorf("in-progress executions = %d, want 1", len(running))
			}
			observed = running[0].StepsCompleted
			return nil, nil
		}, workflow.WithDependencies("first")).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if _, err := o.ExecuteWorkflow(context.Background(), def, nil); err != nil {
		t.Fatalf("ExecuteWorkflow: %v", err)
	}
	if observed != 1 {
		t.Errorf("StepsCompleted observed mid-run = %d, want 1", observed)
	}
}

func TestExecuteWorkflow_ExtensionEvents(t *testing.T) {
	t.Parallel()
	tracker := &trackingExt{}
	o := newOrchestrator(t, engine.WithExtension(tracker))

	def := buildLinear(t, "a", "b", "c")
	if _, err := o.ExecuteWorkflow(context.Background(), def, nil); err != nil {
		t.Fatalf("ExecuteWorkflow: %v", err)
	}

	if got := tracker.workflowStarted.Load(); got != 1 {
		t.Errorf("workflow started events = %d, want 1", got)
	}
	if got := tracker.workflowCompleted.Load(); got != 1 {
		t.Errorf("workflow completed events = %d, want 1", got)
	}
	if got := tracker.stepCompleted.Load(); got != 3 {
		t.Errorf("step completed events = %d, want 3", got)
	}
}

func TestExecuteWorkflow_UserMiddleware(t *testing.T) {
	t.Parallel()

	var seen []string
	record := func(ctx context.Context, _ *workflow.Execution, s *workflow.Step, next middleware.Handler) error {
		seen = append(seen, s.Name)
		return next(ctx)
	}
	o := newOrchestrator(t, engine.WithMiddleware(record))

	def := buildLinear(t, "a", "b")
	if _, err := o.ExecuteWorkflow(context.Background(), def, nil); err != nil {
		t.Fatalf("ExecuteWorkflow: %v", err)
	}
	if len(seen) != 2 || seen[0] != "a" || seen[1] != "b" {
		t.Errorf("middleware saw %v, want [a b]", seen)
	}
}

func TestExecuteWorkflow_RetryBudgetClamped(t *testing.T) {
	t.Parallel()
	cfg := conductor.DefaultConfig()
	cfg.MaxRetryBudget = 1
	o := newOrchestrator(t, engine.WithConfig(cfg))

	var attempts int
	def, err := workflow.NewBuilder("greedy", "").
		AddStep("broken", func(_ context.Context, _ workflow.StepInput) (any, error) {
			attempts++
			return nil, errors.New("nope")
		}, workflow.WithRetryBudget(50)).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if _, err := o.ExecuteWorkflow(context.Background(), def, nil); err == nil {
		t.Fatal("ExecuteWorkflow succeeded, want failure")
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2 (budget clamped to 1)", attempts)
	}
}
