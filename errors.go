package conductor

import "errors"

var (
	// Validation errors.
	ErrInvalidWorkflow  = errors.New("conductor: invalid workflow definition")
	ErrDefinitionFrozen = errors.New("conductor: definition is frozen")

	// Execution errors.
	ErrDependencyUnmet     = errors.New("conductor: step dependency not met")
	ErrStepExecutionFailed = errors.New("conductor: step execution failed")
	ErrStepTimeout         = errors.New("conductor: step timed out")

	// Store errors.
	ErrExecutionNotFound = errors.New("conductor: execution not found")
	ErrExecutionExists   = errors.New("conductor: execution already exists")
)
