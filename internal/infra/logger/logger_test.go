package logger

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewDisabledReturnsNop(t *testing.T) {
	log, err := New(Options{Env: "development", Enabled: false, Debug: true})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if log.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatalf("expected disabled logger to drop every level")
	}
}

func TestNewDebugToggle(t *testing.T) {
	quiet, err := New(Options{Env: "production", Enabled: true})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if quiet.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug disabled by default")
	}

	verbose, err := New(Options{Env: "development", Enabled: true, Debug: true})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if !verbose.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug enabled")
	}

	if quiet == verbose {
		t.Fatalf("expected independent logger instances")
	}
}

func TestWithContextAddsRequestAndTraceIDs(t *testing.T) {
	if WithContext(context.Background(), nil) == nil {
		t.Fatalf("expected a logger for nil base")
	}

	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := context.WithValue(context.Background(), RequestIDKey{}, "req-1")
	ctx = trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID}))

	WithContext(ctx, base).Info("tagged")
	WithContext(context.Background(), base).Info("plain")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" || fields["trace_id"] != traceID.String() {
		t.Fatalf("unexpected fields %v", fields)
	}
	if len(entries[1].Context) != 0 {
		t.Fatalf("expected no fields without context values, got %v", entries[1].ContextMap())
	}
}

func TestMaskIP(t *testing.T) {
	cases := map[string]string{
		"192.168.1.100":   "192.168.*.*",
		"::ffff:10.1.2.3": "10.1.*.*",
		"2001:0db8:85a3:0000:0000:8a2e:0370:7334": "2001:db8:85a3:*",
		"fe80::1":   "fe80:0:0:*",
		"not-an-ip": "***",
		"":          "",
	}
	for in, want := range cases {
		if got := MaskIP(in); got != want {
			t.Fatalf("MaskIP(%q) = %q, want %q", in, got, want)
		}
	}
}
