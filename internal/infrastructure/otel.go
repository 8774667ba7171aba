package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope for all spans emitted here.
const TracerName = "salespulse"

// OTelConfig controls tracer provider setup.
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	// Enabled turns span export on. When false a no-op provider is used so
	// instrumentation call sites stay unconditional.
	Enabled bool
	// Writer receives exported spans; defaults to io.Discard when nil and
	// tracing is enabled, which keeps spans available to in-process
	// processors without polluting stdout.
	Writer io.Writer
}

// DefaultOTelConfig returns the standard tracing configuration.
func DefaultOTelConfig() OTelConfig {
	return OTelConfig{
		ServiceName:    "salespulse",
		ServiceVersion: "dev",
		Enabled:        true,
	}
}

// OTelProviders bundles the configured tracer provider with its shutdown.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	logger         *slog.Logger
}

// InitializeOTel sets up the global tracer provider.
func InitializeOTel(cfg OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if !cfg.Enabled {
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return &OTelProviders{TracerProvider: tp, logger: logger}, nil
	}

	w := cfg.Writer
	if w == nil {
		w = io.Discard
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to build trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.Info("tracing initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion))

	return &OTelProviders{TracerProvider: tp, logger: logger}, nil
}

// Tracer returns the application tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartSpan starts a span with common attributes attached.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := Tracer().Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

// Shutdown flushes and stops the tracer provider.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	if p == nil || p.TracerProvider == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.TracerProvider.Shutdown(ctx); err != nil {
		p.logger.Warn("tracer provider shutdown failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}
