package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/nexora-ai/conductor/workflow"
)

// Logging returns middleware that logs each step attempt's start and
// completion.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, e *workflow.Execution, s *workflow.Step, next Handler) error {
		logger.Info("step started",
			slog.String("workflow", e.WorkflowName),
			slog.String("execution_id", e.ID.String()),
			slog.String("step", s.Name),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("step failed",
				slog.String("workflow", e.WorkflowName),
				slog.String("execution_id", e.ID.String()),
				slog.String("step", s.Name),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("step completed",
				slog.String("workflow", e.WorkflowName),
				slog.String("execution_id", e.ID.String()),
				slog.String("step", s.Name),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
