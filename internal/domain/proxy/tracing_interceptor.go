package proxy

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingInterceptor wraps every call in a span named after the method.
type TracingInterceptor struct {
	tracer trace.Tracer
}

// NewTracingInterceptor creates a TracingInterceptor using the given provider.
func NewTracingInterceptor(tp trace.TracerProvider) *TracingInterceptor {
	return &TracingInterceptor{
		tracer: tp.Tracer("github.com/Sentinel-Gate/introgate/internal/domain/proxy"),
	}
}

// Invoke starts a span, proceeds with the span's context and ends the span.
func (t *TracingInterceptor) Invoke(ctx context.Context, inv Invocation) ([]any, error) {
	m := inv.Method()
	ctx, span := t.tracer.Start(ctx, m.String(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("introgate.invocation_id", inv.ID()),
			attribute.String("introgate.interface", m.Interface.String()),
			attribute.String("introgate.method", m.Name),
			attribute.Int("introgate.arity", len(inv.Arguments())),
		),
	)
	defer span.End()

	results, err := inv.Proceed(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return results, err
}

var _ MethodInterceptor = (*TracingInterceptor)(nil)
