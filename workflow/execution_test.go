package workflow_test

import (
	"testing"

	"github.com/nexora-ai/conductor"
	"github.com/nexora-ai/conductor/id"
	"github.com/nexora-ai/conductor/workflow"
)

func TestStatus_Terminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status workflow.Status
		want   bool
	}{
		{workflow.StatusPending, false},
		{workflow.StatusInProgress, false},
		{workflow.StatusCompleted, true},
		{workflow.StatusFailed, true},
		{workflow.StatusCancelled, true},
	}

	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("Terminal(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestExecution_MarkCompleted(t *testing.T) {
	t.Parallel()
	e := &workflow.Execution{
		Entity:       conductor.NewEntity(),
		ID:           id.NewExecutionID(),
		WorkflowName: "wf",
		Status:       workflow.StatusInProgress,
	}

	e.MarkCompleted(map[string]any{"a": 1})

	if e.Status != workflow.StatusCompleted {
		t.Errorf("Status = %q, want %q", e.Status, workflow.StatusCompleted)
	}
	if e.Result["a"] != 1 {
		t.Errorf("Result = %v", e.Result)
	}
	if e.CompletedAt == nil {
		t.Error("CompletedAt not set")
	}
	if e.Error != "" {
		t.Errorf("Error = %q, want empty", e.Error)
	}
}

func TestExecution_MarkFailed(t *testing.T) {
	t.Parallel()
	e := &workflow.Execution{
		Entity:       conductor.NewEntity(),
		ID:           id.NewExecutionID(),
		WorkflowName: "wf",
		Status:       workflow.StatusInProgress,
	}

	e.MarkFailed("step load failed: boom")

	if e.Status != workflow.StatusFailed {
		t.Errorf("Status = %q, want %q", e.Status, workflow.StatusFailed)
	}
	if e.Error != "step load failed: boom" {
		t.Errorf("Error = %q", e.Error)
	}
	if e.CompletedAt == nil {
		t.Error("CompletedAt not set")
	}
}
