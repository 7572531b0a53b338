package observability

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// newTracerProvider returns nil when no collector endpoint is configured.
func newTracerProvider(opts Options) (*sdktrace.TracerProvider, error) {
	if opts.JaegerEndpoint == "" {
		return nil, nil
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(opts.JaegerEndpoint)))
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(attribute.String("service.name", opts.ServiceName))
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}
