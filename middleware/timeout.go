package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nexora-ai/conductor"
	"github.com/nexora-ai/conductor/workflow"
)

// Timeout returns middleware that enforces a per-attempt execution
// deadline. If the step declares a non-zero Timeout, the handler runs
// under a context.WithTimeout and the attempt fails with
// conductor.ErrStepTimeout when the deadline expires — even if the step
// function does not honor context cancellation. In that case the
// function's goroutine is abandoned and its eventual result discarded.
func Timeout(logger *slog.Logger) Middleware {
	return func(ctx context.Context, e *workflow.Execution, s *workflow.Step, next Handler) error {
		if s.Timeout <= 0 {
			return next(ctx)
		}

		logger.Debug("step timeout set",
			slog.String("execution_id", e.ID.String()),
			slog.String("step", s.Name),
			slog.Duration("timeout", s.Timeout),
		)

		ctx, cancel := context.WithTimeout(ctx, s.Timeout)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			// Panics must not escape this goroutine: convert them to
			// errors so the Recover middleware semantics still hold.
			defer func() {
				if r := recover(); r != nil {
					done <- fmt.Errorf("panic in step %s: %v", s.Name, r)
				}
			}()
			done <- next(ctx)
		}()

		select {
		case err := <-done:
			if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: step %q exceeded %s", conductor.ErrStepTimeout, s.Name, s.Timeout)
			}
			return err
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: step %q exceeded %s", conductor.ErrStepTimeout, s.Name, s.Timeout)
			}
			return ctx.Err()
		}
	}
}
