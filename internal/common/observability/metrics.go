// Package observability wires OpenTelemetry metrics (exported through the
// Prometheus registry) and tracing for the worker process.
package observability

import (
	"context"
	"time"

	"dispatch-workers/internal/common/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	jobCounter     otelmetric.Int64Counter
	jobDuration    otelmetric.Float64Histogram
	log            logger.Logger
}

type Options struct {
	ServiceName    string
	JaegerEndpoint string
}

// New builds the meter and tracer providers. Exporter failures degrade to
// no-op instruments and are logged.
func New(opts Options, log logger.Logger) *Observability {
	o := &Observability{
		tracer: noop.NewTracerProvider().Tracer(opts.ServiceName),
		log:    log,
	}

	if exporter, err := prometheus.New(); err != nil {
		log.Warn("prometheus exporter unavailable, otel metrics disabled", map[string]interface{}{"error": err})
	} else {
		o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter))
		otel.SetMeterProvider(o.meterProvider)

		meter := o.meterProvider.Meter(opts.ServiceName)
		o.jobCounter, _ = meter.Int64Counter(
			"jobs.processed",
			otelmetric.WithDescription("Number of jobs processed"),
		)
		o.jobDuration, _ = meter.Float64Histogram(
			"jobs.duration",
			otelmetric.WithDescription("Job processing duration"),
			otelmetric.WithUnit("ms"),
		)
	}

	if tp, err := newTracerProvider(opts); err != nil {
		log.Warn("tracing disabled", map[string]interface{}{"error": err, "endpoint": opts.JaegerEndpoint})
	} else if tp != nil {
		o.tracerProvider = tp
		otel.SetTracerProvider(tp)
		o.tracer = tp.Tracer(opts.ServiceName)
	}

	return o
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

// StartSpan opens a span for one job execution.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			o.log.Warn("tracer shutdown failed", map[string]interface{}{"error": err})
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			o.log.Warn("meter shutdown failed", map[string]interface{}{"error": err})
		}
	}
}
