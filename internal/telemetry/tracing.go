/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package telemetry configures OpenTelemetry tracing for the
// authentication core. Custom span attributes use the `platewise.` prefix.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "platewise.dev/auth"

// Tracer returns the package-level tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// InitTraceProvider initialises the OTel trace provider with an OTLP gRPC
// exporter. If endpoint is empty, tracing is disabled (noop provider is
// used). Returns a shutdown function that must be called on application
// exit.
func InitTraceProvider(ctx context.Context, endpoint string, version string) (func(context.Context) error, error) {
	if endpoint == "" {
		// No-op: tracing disabled
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(), // TLS configurable via env (OTEL_EXPORTER_OTLP_INSECURE)
	)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String("platewise-auth"),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// --- Span helpers ---

// StartLoginSpan creates the span for a login attempt. Credentials are
// never recorded as attributes.
func StartLoginSpan(ctx context.Context) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "auth.login",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartRefreshSpan creates the span for a session refresh.
func StartRefreshSpan(ctx context.Context) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "auth.refresh",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartSweepSpan creates the span for a sweeper pass.
func StartSweepSpan(ctx context.Context) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "auth.sweep",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndAuthSpan records the terminal result on span and ends it.
func EndAuthSpan(span trace.Span, result string) {
	span.SetAttributes(attribute.String("platewise.auth_result", result))
	span.End()
}
