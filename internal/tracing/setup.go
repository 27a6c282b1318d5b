package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// NoopExporter discards all spans. It is the default exporter so deployments
// without a collector still run the instrumented code paths.
type NoopExporter struct{}

func (e *NoopExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	return nil
}

func (e *NoopExporter) Shutdown(ctx context.Context) error {
	return nil
}

// Setup builds a tracer provider for the given service name, registers it
// globally, and installs the package tracer. The returned shutdown function
// flushes pending spans.
func Setup(ctx context.Context, serviceName string, exporter sdktrace.SpanExporter) (func(context.Context) error, error) {
	if exporter == nil {
		exporter = &NoopExporter{}
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			attribute.String("component", "aster"),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	SetTracer(tp.Tracer(serviceName))

	return tp.Shutdown, nil
}
