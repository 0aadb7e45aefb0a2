package telemetry

import (
	"context"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of engine spans
const TracerName = "github.com/kode4food/paybutton"

const (
	defaultOTLPHost = "localhost:4318"
	defaultOTLPPath = "/v1/traces"
)

// Tracer returns the engine tracer from the global provider
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// InitTracer installs a global OTLP/HTTP tracer provider. The endpoint may
// be a full URL or a host:port pair. An empty endpoint leaves the no-op
// provider in place
func InitTracer(
	ctx context.Context, service, version, endpoint string,
) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	host, path, insecure := parseEndpoint(endpoint)
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(host),
		otlptracehttp.WithURLPath(path),
	}
	if insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(service),
			semconv.ServiceVersionKey.String(version),
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
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown, nil
}

func parseEndpoint(raw string) (host, path string, insecure bool) {
	host, path, insecure = defaultOTLPHost, defaultOTLPPath, true
	if !strings.HasPrefix(raw, "http://") &&
		!strings.HasPrefix(raw, "https://") {
		return raw, path, insecure
	}

	u, err := url.Parse(raw)
	if err != nil {
		return host, path, insecure
	}
	if u.Host != "" {
		host = u.Host
	}
	if u.Path != "" {
		path = u.Path
	}
	return host, path, u.Scheme == "http"
}
