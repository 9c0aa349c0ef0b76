// Package otel exports spans and log records of one cynthia invocation over
// OTLP/HTTP, and hands the active trace context to child processes so a
// deno test run can join the generation trace.
package otel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/whaaaley/cynthia/core/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// exportInterval bounds how long a span or record waits in a batch.
const exportInterval = time.Second

// Telemetry owns the providers installed by Setup.
type Telemetry struct {
	shutdown []func(context.Context) error
}

// Shutdown flushes and stops every provider. It is safe on a nil or
// disabled Telemetry.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	for _, fn := range t.shutdown {
		errs = append(errs, fn(ctx))
	}
	return errors.Join(errs...)
}

// Setup installs OTLP trace and log providers when cfg has an endpoint.
// Without one it returns an empty Telemetry and leaves the otel globals as
// no-ops. Only W3C trace context is propagated: the one consumer is the
// deno child, which reads TRACEPARENT.
func Setup(ctx context.Context, cfg config.OTelConfig) (*Telemetry, error) {
	t := &Telemetry{}
	if !cfg.Enabled() {
		return t, nil
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return t, err
	}
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	headers := parseHeaders(cfg.Headers)

	traceExporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(endpoint+"/v1/traces"),
		otlptracehttp.WithHeaders(headers),
	)
	if err != nil {
		return t, fmt.Errorf("creating trace exporter: %w", err)
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter, sdktrace.WithBatchTimeout(exportInterval)),
		sdktrace.WithResource(res),
	)
	t.shutdown = append(t.shutdown, tracerProvider.Shutdown)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	logExporter, err := otlploghttp.New(ctx,
		otlploghttp.WithEndpointURL(endpoint+"/v1/logs"),
		otlploghttp.WithHeaders(headers),
	)
	if err != nil {
		return t, fmt.Errorf("creating log exporter: %w", err)
	}
	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter, sdklog.WithExportInterval(exportInterval))),
		sdklog.WithResource(res),
	)
	t.shutdown = append(t.shutdown, loggerProvider.Shutdown)
	global.SetLoggerProvider(loggerProvider)

	return t, nil
}

func newResource(ctx context.Context, cfg config.OTelConfig) (*resource.Resource, error) {
	opts := []resource.Option{
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
		resource.WithProcessPID(),
		resource.WithProcessExecutableName(),
		resource.WithTelemetrySDK(),
	}
	if cwd, err := os.Getwd(); err == nil {
		opts = append(opts, resource.WithAttributes(attribute.String("process.working_directory", cwd)))
	}
	res, err := resource.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}
	return res, nil
}

// Environ returns the trace context of ctx as environment entries, e.g.
// TRACEPARENT=00-...; empty when nothing is being traced.
func Environ(ctx context.Context) []string {
	return environ(ctx, otel.GetTextMapPropagator())
}

func environ(ctx context.Context, p propagation.TextMapPropagator) []string {
	carrier := propagation.MapCarrier{}
	p.Inject(ctx, carrier)
	keys := carrier.Keys()
	sort.Strings(keys)
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, strings.ToUpper(k)+"="+carrier.Get(k))
	}
	return env
}

// parseHeaders reads the OTEL_EXPORTER_OTLP_HEADERS form "k1=v1,k2=v2".
func parseHeaders(s string) map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			continue
		}
		headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return headers
}
