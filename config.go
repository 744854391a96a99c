package conductor

import "time"

// Config holds orchestration limits applied by the Orchestrator.
type Config struct {
	// MaxSteps is the maximum number of steps a workflow may declare.
	// Zero means no limit.
	MaxSteps int

	// DefaultStepTimeout is applied to steps that declare no timeout.
	// Zero means steps without a timeout run unbounded.
	DefaultStepTimeout time.Duration

	// MaxStepTimeout caps per-step timeouts. Steps declaring a longer
	// timeout are clamped. Zero means no cap.
	MaxStepTimeout time.Duration

	// MaxRetryBudget caps per-step retry budgets. Steps declaring a
	// larger budget are clamped. Zero means no cap.
	MaxRetryBudget int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxSteps:           64,
		DefaultStepTimeout: 0,
		MaxStepTimeout:     5 * time.Minute,
		MaxRetryBudget:     10,
	}
}
