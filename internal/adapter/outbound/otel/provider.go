// Package otel sets up OpenTelemetry tracing and metrics for proxied calls.
package otel

import (
	"context"
	"io"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Setup returns a tracer provider and its shutdown function.
//
// When disabled, Setup returns a no-op provider. When enabled, spans are
// written as JSON to w. The shutdown function flushes pending spans and
// should be deferred by the caller.
func Setup(enabled bool, prettyPrint bool, w io.Writer) (trace.TracerProvider, func(context.Context) error, error) {
	noopShutdown := func(context.Context) error { return nil }
	if !enabled {
		return noop.NewTracerProvider(), noopShutdown, nil
	}

	opts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
	if prettyPrint {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, noopShutdown, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	return tp, tp.Shutdown, nil
}
