package workflow

import (
	"fmt"

	"github.com/nexora-ai/conductor"
	"github.com/nexora-ai/conductor/id"
)

// Definition is an ordered collection of steps forming a dependency DAG.
// The declaration order is the default tie-break for execution order; it
// is not required to be a valid topological order itself.
type Definition struct {
	// ID uniquely identifies this definition (prefix "wf"). Executions
	// record it so runs of same-named workflows stay distinguishable.
	ID id.WorkflowID

	// Name identifies the workflow.
	Name string

	// Description is free-form documentation for the workflow.
	Description string

	steps  []Step
	frozen bool
}

// NewDefinition creates an empty workflow definition.
func NewDefinition(name, description string) *Definition {
	return &Definition{ID: id.NewWorkflowID(), Name: name, Description: description}
}

// AddStep appends a step to the definition in declaration order.
// No dependency validation happens at add time; call Validate (or build
// via Builder) before executing. Adding to a frozen definition fails.
func (d *Definition) AddStep(s Step) error {
	if d.frozen {
		return fmt.Errorf("workflow %q: %w", d.Name, conductor.ErrDefinitionFrozen)
	}
	d.steps = append(d.steps, s)
	return nil
}

// Steps returns the steps in declaration order. The returned slice is a
// copy; mutating it does not affect the definition.
func (d *Definition) Steps() []Step {
	out := make([]Step, len(d.steps))
	copy(out, d.steps)
	return out
}

// Len returns the number of declared steps.
func (d *Definition) Len() int { return len(d.steps) }

// Freeze marks the definition immutable. Called by Builder.Build after a
// successful validation; further AddStep calls fail.
func (d *Definition) Freeze() { d.frozen = true }

// Validate checks the structural invariants of the definition:
//
//   - at least one step
//   - every step has a non-empty, unique name and a function
//   - every declared dependency names another step in this definition
//   - the dependency graph is acyclic
//
// All violations are reported as conductor.ErrInvalidWorkflow.
func (d *Definition) Validate() error {
	if len(d.steps) == 0 {
		return fmt.Errorf("%w: workflow %q has no steps", conductor.ErrInvalidWorkflow, d.Name)
	}

	names := make(map[string]struct{}, len(d.steps))
	for _, s := range d.steps {
		if s.Name == "" {
			return fmt.Errorf("%w: workflow %q has a step with an empty name", conductor.ErrInvalidWorkflow, d.Name)
		}
		if s.Func == nil {
			return fmt.Errorf("%w: workflow %q: step %q has no function", conductor.ErrInvalidWorkflow, d.Name, s.Name)
		}
		if _, dup := names[s.Name]; dup {
			return fmt.Errorf("%w: workflow %q: duplicate step name %q", conductor.ErrInvalidWorkflow, d.Name, s.Name)
		}
		names[s.Name] = struct{}{}
	}

	for _, s := range d.steps {
		for _, dep := range s.Dependencies {
			if _, ok := names[dep]; !ok {
				return fmt.Errorf("%w: workflow %q: step %q has unknown dependency %q",
					conductor.ErrInvalidWorkflow, d.Name, s.Name, dep)
			}
		}
	}

	if cycle := findCycle(d.steps); cycle != nil {
		return fmt.Errorf("%w: workflow %q: dependency cycle: %s",
			conductor.ErrInvalidWorkflow, d.Name, joinCycle(cycle))
	}

	return nil
}

// ExecutionOrder returns the steps in a topological order of the
// dependency graph, with ties broken by declaration order so the result
// is deterministic. It fails with conductor.ErrInvalidWorkflow if the
// definition does not validate.
func (d *Definition) ExecutionOrder() ([]Step, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return topoOrder(d.steps), nil
}
