package otel

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/Sentinel-Gate/introgate/internal/adapter/outbound/otel"

// SetupMetrics returns a meter provider that periodically writes metrics
// as JSON to w. Shutting the provider down exports the final values.
func SetupMetrics(w io.Writer, prettyPrint bool) (*sdkmetric.MeterProvider, error) {
	opts := []stdoutmetric.Option{stdoutmetric.WithWriter(w)}
	if prettyPrint {
		opts = append(opts, stdoutmetric.WithPrettyPrint())
	}
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	), nil
}

// MeterRecorder records calls and dispatch decisions as OpenTelemetry
// instruments. It satisfies the same recorder interfaces as metrics.Metrics.
type MeterRecorder struct {
	calls      metric.Int64Counter
	duration   metric.Float64Histogram
	dispatches metric.Int64Counter
}

// NewMeterRecorder creates the instruments on mp, named "<namespace>.calls",
// "<namespace>.call.duration" and "<namespace>.dispatches".
func NewMeterRecorder(mp metric.MeterProvider, namespace string) (*MeterRecorder, error) {
	meter := mp.Meter(meterName)

	calls, err := meter.Int64Counter(namespace+".calls",
		metric.WithDescription("Total number of proxied calls"))
	if err != nil {
		return nil, fmt.Errorf("failed to create calls counter: %w", err)
	}
	duration, err := meter.Float64Histogram(namespace+".call.duration",
		metric.WithDescription("Proxied call duration"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}
	dispatches, err := meter.Int64Counter(namespace+".dispatches",
		metric.WithDescription("Dispatch decisions made by introduction interceptors"))
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatches counter: %w", err)
	}

	return &MeterRecorder{calls: calls, duration: duration, dispatches: dispatches}, nil
}

// RecordCall records a completed call.
func (r *MeterRecorder) RecordCall(method string, err error, latency time.Duration) {
	ctx := context.Background()
	r.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("status", status(err)),
	))
	r.duration.Record(ctx, latency.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
	))
}

// RecordDispatch records one dispatch decision.
func (r *MeterRecorder) RecordDispatch(path string, method string, err error) {
	r.dispatches.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("path", path),
		attribute.String("status", status(err)),
	))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
