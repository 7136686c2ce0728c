// Package tracing wires the OpenTelemetry SDK to a Jaeger collector and
// installs the W3C trace-context propagator so spans join up across services.
package tracing

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/poslink/stock-service/pkg/logger"
)

const defaultCollectorEndpoint = "http://localhost:14268/api/traces"

// InitTracer builds a sampling tracer provider backed by the Jaeger collector
// named in JAEGER_ENDPOINT and registers it globally, propagator included.
func InitTracer(serviceName string) (trace.TracerProvider, error) {
	endpoint := envOr("JAEGER_ENDPOINT", defaultCollectorEndpoint)

	exporter, err := jaeger.New(
		jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Jaeger exporter: %w", err)
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("endpoint", endpoint).
		Msg("Tracer initialized")
	return tp, nil
}

// Shutdown flushes pending spans. A no-op for providers this package did not
// create.
func Shutdown(ctx context.Context, tp trace.TracerProvider) error {
	provider, ok := tp.(*sdktrace.TracerProvider)
	if !ok {
		return nil
	}
	return provider.Shutdown(ctx)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
