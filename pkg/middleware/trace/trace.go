package trace

import (
	"context"
	"time"

	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
	"go.opentelemetry.io/contrib/instrumentation/host"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type InitConfig struct {
	ServiceName     string
	Version         string
	TraceEndpoint   string
	MetricEndpoint  string
	TraceProject    string
	TraceInstanceID string
	TraceAK         string
	TraceSK         string
}

var (
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
)

// InitTrace wires the global tracer and meter providers. Without configured
// endpoints it falls back to stdout exporters, which is what dev runs use.
func InitTrace(ctx context.Context, conf *InitConfig) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(conf.ServiceName),
			semconv.ServiceVersionKey.String(conf.Version),
		))
	if err != nil {
		logger.Fatalf(ctx, "build otel resource err: %+v", err)
	}

	traceExp, err := newTraceExporter(ctx, conf)
	if err != nil {
		logger.Fatalf(ctx, "build trace exporter err: %+v", err)
	}
	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	metricExp, err := newMetricExporter(ctx, conf)
	if err != nil {
		logger.Fatalf(ctx, "build metric exporter err: %+v", err)
	}
	meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp,
			sdkmetric.WithInterval(time.Minute))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	if err := host.Start(host.WithMeterProvider(meterProvider)); err != nil {
		logger.Warnf(ctx, "start host instrumentation err: %+v", err)
	}
	if err := runtime.Start(
		runtime.WithMeterProvider(meterProvider),
		runtime.WithMinimumReadMemStatsInterval(10*time.Second)); err != nil {
		logger.Warnf(ctx, "start runtime instrumentation err: %+v", err)
	}
}

func newTraceExporter(ctx context.Context, conf *InitConfig) (sdktrace.SpanExporter, error) {
	if conf.TraceEndpoint == "" {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	client := otlptracegrpc.NewClient(
		otlptracegrpc.WithEndpoint(conf.TraceEndpoint),
		otlptracegrpc.WithHeaders(otlpHeaders(conf)),
	)
	return otlptrace.New(ctx, client)
}

func newMetricExporter(ctx context.Context, conf *InitConfig) (sdkmetric.Exporter, error) {
	if conf.MetricEndpoint == "" {
		return stdoutmetric.New()
	}
	return otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(conf.MetricEndpoint),
		otlpmetricgrpc.WithHeaders(otlpHeaders(conf)))
}

func otlpHeaders(conf *InitConfig) map[string]string {
	headers := map[string]string{}
	if conf.TraceProject != "" {
		headers["x-sls-otel-project"] = conf.TraceProject
	}
	if conf.TraceInstanceID != "" {
		headers["x-sls-otel-instance-id"] = conf.TraceInstanceID
	}
	if conf.TraceAK != "" {
		headers["x-sls-otel-ak-id"] = conf.TraceAK
		headers["x-sls-otel-ak-secret"] = conf.TraceSK
	}
	return headers
}

func CloseTrace() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if tracerProvider != nil {
		_ = tracerProvider.Shutdown(ctx)
	}
	if meterProvider != nil {
		_ = meterProvider.Shutdown(ctx)
	}
}
