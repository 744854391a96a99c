package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/nexora-ai/conductor/workflow"
)

// Recover returns middleware that recovers from panics in the handler
// chain. Panics are converted to errors and logged with a stack trace,
// so a panicking step fails (and retries) like any other step failure.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, e *workflow.Execution, s *workflow.Step, next Handler) (retErr error) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.Error("step function panicked",
					slog.String("workflow", e.WorkflowName),
					slog.String("execution_id", e.ID.String()),
					slog.String("step", s.Name),
					slog.Any("panic", r),
					slog.String("stack", stack),
				)
				retErr = fmt.Errorf("panic in step %s: %v", s.Name, r)
			}
		}()
		return next(ctx)
	}
}
