// Package telemetry provides OpenTelemetry tracing setup.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Options configures tracing for one run.
type Options struct {
	ServiceName string
	Version     string
	RunID       string
	// TraceFile receives finished spans as JSON. Empty disables tracing.
	TraceFile string
}

// Shutdown flushes pending spans and releases the exporter.
type Shutdown func(context.Context) error

// InitTracerProvider returns a provider for opts and installs it globally.
// With no TraceFile the provider is a no-op and nothing is installed.
func InitTracerProvider(ctx context.Context, opts Options) (trace.TracerProvider, Shutdown, error) {
	if opts.TraceFile == "" {
		return noop.NewTracerProvider(), func(context.Context) error { return nil }, nil
	}

	f, err := os.Create(opts.TraceFile) // #nosec G304 -- operator-chosen trace path
	if err != nil {
		return nil, nil, fmt.Errorf("create trace file: %w", err)
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(f))
	if err != nil {
		_ = f.Close() //nolint:errcheck // exporter error takes precedence
		return nil, nil, fmt.Errorf("create trace exporter: %w", err)
	}

	attrs := []attribute.KeyValue{semconv.ServiceName(opts.ServiceName)}
	if opts.Version != "" {
		attrs = append(attrs, semconv.ServiceVersion(opts.Version))
	}
	if opts.RunID != "" {
		attrs = append(attrs, attribute.String("spellcheck.run_id", opts.RunID))
	}
	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		_ = f.Close() //nolint:errcheck // resource error takes precedence
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp, func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), f.Close())
	}, nil
}
