package workflow

// Builder accumulates steps into a Definition and validates on Build.
// Methods return the builder for chaining:
//
//	def, err := workflow.NewBuilder("pipeline", "nightly batch").
//	    AddStep("extract", extractFn).
//	    AddStep("load", loadFn, workflow.WithDependencies("extract")).
//	    Build()
type Builder struct {
	def *Definition
	err error
}

// NewBuilder creates a builder for a workflow with the given name and
// description.
func NewBuilder(name, description string) *Builder {
	return &Builder{def: NewDefinition(name, description)}
}

// AddStep appends a step built from the name, function, and options.
func (b *Builder) AddStep(name string, fn StepFunc, opts ...StepOption) *Builder {
	return b.Add(NewStep(name, fn, opts...))
}

// Add appends an already-constructed step.
func (b *Builder) Add(s Step) *Builder {
	if b.err == nil {
		b.err = b.def.AddStep(s)
	}
	return b
}

// Build validates the accumulated definition and returns it frozen
// against further step additions. It fails with
// conductor.ErrInvalidWorkflow if validation fails.
func (b *Builder) Build() (*Definition, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	b.def.Freeze()
	return b.def, nil
}
