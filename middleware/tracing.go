package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nexora-ai/conductor/workflow"
)

// tracerName is the instrumentation scope name for conductor tracing.
const tracerName = "github.com/nexora-ai/conductor"

// Tracing returns middleware that wraps each step attempt in an
// OpenTelemetry span. If no TracerProvider is configured globally, the
// default noop tracer is used and this middleware becomes a pass-through
// with zero overhead.
//
// Span attributes include: conductor.workflow, conductor.execution.id,
// conductor.step, conductor.retry_budget. On error, the span status is
// set to codes.Error with the error message.
func Tracing() Middleware {
	tracer := otel.Tracer(tracerName)
	return TracingWithTracer(tracer)
}

// TracingWithTracer returns tracing middleware using the provided tracer.
// This variant allows injecting a specific TracerProvider for testing or
// when multiple providers are in use.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, e *workflow.Execution, s *workflow.Step, next Handler) error {
		ctx, span := tracer.Start(ctx, "conductor.step.execute",
			trace.WithAttributes(
				attribute.String("conductor.workflow", e.WorkflowName),
				attribute.String("conductor.execution.id", e.ID.String()),
				attribute.String("conductor.step", s.Name),
				attribute.Int("conductor.retry_budget", s.RetryBudget),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	}
}
