// Package observability sets up OpenTelemetry tracing for the server.
package observability

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/rsned/crafting-macro-server/internal/crafting/config"
)

const defaultBatchTimeout = 5 * time.Second

// TracingOption is a functional option for InitTracing.
type TracingOption func(*tracingOptions)

type tracingOptions struct {
	version   string
	syncWrite bool
}

// WithServiceVersion records the binary version on the trace resource.
func WithServiceVersion(v string) TracingOption {
	return func(o *tracingOptions) { o.version = v }
}

// WithSyncExport exports each span as it ends instead of batching. Use it
// where the process may be frozen between requests.
func WithSyncExport() TracingOption {
	return func(o *tracingOptions) { o.syncWrite = true }
}

// InitTracing builds a tracer provider from cfg and installs it as the
// global provider. Spans are written as JSON to w.
//
// When tracing is disabled, or the exporter is "noop", the provider records
// spans in-process but exports nothing.
func InitTracing(ctx context.Context, cfg config.TracingConfig, w io.Writer, opts ...TracingOption) (*sdktrace.TracerProvider, error) {
	if !cfg.Enabled || cfg.Exporter == "noop" {
		return sdktrace.NewTracerProvider(), nil
	}

	options := &tracingOptions{version: "dev"}
	for _, opt := range opts {
		opt(options)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(options.version),
		),
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating trace resource: %w", err)
	}

	var exporter sdktrace.SpanExporter
	switch cfg.Exporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("creating stdout exporter: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.Exporter)
	}

	processor := sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(defaultBatchTimeout))
	if options.syncWrite {
		processor = sdktrace.WithSyncer(exporter)
	}

	tp := sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp, nil
}

// ShutdownTracing flushes pending spans and stops the provider.
func ShutdownTracing(ctx context.Context, tp *sdktrace.TracerProvider) error {
	if tp == nil {
		return nil
	}
	if err := tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down tracer provider: %w", err)
	}
	return nil
}
