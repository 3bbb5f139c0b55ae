/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer installs an in-memory span exporter for test assertions.
func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(
		trace.WithSyncer(exporter),
	)
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})
	return exporter
}

func TestInitTraceProviderNoopWhenEmpty(t *testing.T) {
	shutdown, err := InitTraceProvider(context.Background(), "", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Should be a no-op shutdown
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestStartLoginSpan(t *testing.T) {
	exporter := setupTestTracer(t)

	_, span := StartLoginSpan(context.Background())
	EndAuthSpan(span, "success")

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "auth.login" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "auth.login")
	}

	found := false
	for _, a := range spans[0].Attributes {
		if string(a.Key) == "platewise.auth_result" && a.Value.AsString() == "success" {
			found = true
		}
	}
	if !found {
		t.Error("missing platewise.auth_result attribute")
	}
}

func TestStartRefreshSpan(t *testing.T) {
	exporter := setupTestTracer(t)

	_, span := StartRefreshSpan(context.Background())
	EndAuthSpan(span, "invalid")

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "auth.refresh" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "auth.refresh")
	}
}

func TestSweepSpanNestsUnderParent(t *testing.T) {
	exporter := setupTestTracer(t)

	ctx := context.Background()
	ctx, loginSpan := StartLoginSpan(ctx)
	_, sweepSpan := StartSweepSpan(ctx)
	sweepSpan.End()
	loginSpan.End()

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}

	// The inner span ends first.
	inner := spans[0]
	outer := spans[1]

	if inner.Parent.TraceID() != outer.SpanContext.TraceID() {
		t.Error("child span should share the parent's trace ID")
	}
	if !inner.Parent.SpanID().IsValid() {
		t.Error("child span should have a valid parent span ID")
	}
}
