package middleware

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/nexora-ai/conductor/workflow"
)

// Throttle returns middleware that paces step attempts through a shared
// token-bucket limiter. Useful when step functions call rate-limited
// collaborators (APIs, databases) and retries must not hammer them.
// The wait respects context cancellation and any deadline set by the
// Timeout middleware further out in the chain.
func Throttle(limiter *rate.Limiter) Middleware {
	return func(ctx context.Context, _ *workflow.Execution, _ *workflow.Step, next Handler) error {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		return next(ctx)
	}
}
