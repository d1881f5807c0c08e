// Package tracing builds the OpenTelemetry tracer provider used by flaudit.
package tracing

import (
	"context"
	"errors"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	errNoURL         = errors.New("url is empty")
	errNoSvcName     = errors.New("service name is empty")
	errInvalidRatio  = errors.New("trace ratio must be between 0 and 1")
	errExporterSetup = errors.New("failed to create trace exporter")
)

// ShutdownFunc flushes and stops a tracer provider.
type ShutdownFunc func(ctx context.Context) error

// NewProvider returns an OTLP/HTTP backed tracer provider.
func NewProvider(ctx context.Context, svcName, instanceID string, endpoint url.URL, ratio float64) (*sdktrace.TracerProvider, error) {
	if endpoint == (url.URL{}) {
		return nil, errNoURL
	}
	if svcName == "" {
		return nil, errNoSvcName
	}
	if ratio < 0 || ratio > 1 {
		return nil, errInvalidRatio
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(endpoint.Host),
	}
	if endpoint.Path != "" {
		opts = append(opts, otlptracehttp.WithURLPath(endpoint.Path))
	}
	if endpoint.Scheme != "https" {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, errors.Join(errExporterSetup, err)
	}

	attrs := []attribute.KeyValue{
		attribute.String("service.name", svcName),
	}
	if instanceID != "" {
		attrs = append(attrs, attribute.String("host.id", instanceID))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attrs...)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp, nil
}

// Setup returns a noop provider when no collector URL is configured.
func Setup(ctx context.Context, svcName, instanceID string, endpoint url.URL, ratio float64) (trace.TracerProvider, ShutdownFunc, error) {
	if endpoint == (url.URL{}) {
		return noop.NewTracerProvider(), func(context.Context) error { return nil }, nil
	}

	tp, err := NewProvider(ctx, svcName, instanceID, endpoint, ratio)
	if err != nil {
		return nil, nil, err
	}

	return tp, tp.Shutdown, nil
}
