package parking

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceVersion = "1.0.0"

// TelemetrySettings carries the exporter wiring resolved by the config
// package; the provider itself never reads the environment.
type TelemetrySettings struct {
	ServiceName    string
	OTLPEndpoint   string
	ExportInterval time.Duration
}

type TelemetryProvider struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	tracer         trace.Tracer
	meter          metric.Meter
}

func NewTelemetryProvider(ctx context.Context, settings TelemetrySettings) (*TelemetryProvider, error) {
	if settings.ExportInterval <= 0 {
		settings.ExportInterval = 5 * time.Second
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(
			semconv.ServiceName(settings.ServiceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(settings.OTLPEndpoint+"/v1/traces"),
		otlptracehttp.WithInsecure(), // Use for local development
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	metricExporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpointURL(settings.OTLPEndpoint+"/v1/metrics"),
		otlpmetrichttp.WithInsecure(), // Use for local development
	)
	if err != nil {
		return nil, err
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
			sdkmetric.WithInterval(settings.ExportInterval),
		)),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TelemetryProvider{
		tracerProvider: tracerProvider,
		meterProvider:  meterProvider,
		tracer:         otel.Tracer(settings.ServiceName),
		meter:          otel.Meter(settings.ServiceName),
	}, nil
}

func (tp *TelemetryProvider) Tracer() trace.Tracer {
	return tp.tracer
}

func (tp *TelemetryProvider) Meter() metric.Meter {
	return tp.meter
}

func (tp *TelemetryProvider) Shutdown(ctx context.Context) error {
	if err := tp.tracerProvider.Shutdown(ctx); err != nil {
		return err
	}
	return tp.meterProvider.Shutdown(ctx)
}
