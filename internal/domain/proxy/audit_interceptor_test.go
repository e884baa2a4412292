package proxy

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// mockCallRecorder captures RecordCall invocations for testing.
type mockCallRecorder struct {
	methods []string
	errs    []error
}

func (m *mockCallRecorder) RecordCall(method string, err error, latency time.Duration) {
	m.methods = append(m.methods, method)
	m.errs = append(m.errs, err)
}

// stubInvocation is a minimal Invocation whose Proceed is scripted.
type stubInvocation struct {
	method    Method
	args      []any
	proceeded int
	results   []any
	err       error
}

func (s *stubInvocation) ID() string       { return "inv-1" }
func (s *stubInvocation) Method() Method   { return s.method }
func (s *stubInvocation) Arguments() []any { return s.args }
func (s *stubInvocation) Target() any      { return nil }

func (s *stubInvocation) Proceed(ctx context.Context) ([]any, error) {
	s.proceeded++
	return s.results, s.err
}

func TestAuditInterceptor_RecordsSuccessfulCall(t *testing.T) {
	recorder := &mockCallRecorder{}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	interceptor := NewAuditInterceptor(recorder, logger)
	inv := &stubInvocation{method: methodGreet, args: []any{"x"}, results: []any{"hello x"}}

	results, err := interceptor.Invoke(context.Background(), inv)

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if inv.proceeded != 1 {
		t.Errorf("expected Proceed to be called once, got %d", inv.proceeded)
	}
	if len(results) != 1 || results[0] != "hello x" {
		t.Errorf("results changed: %v", results)
	}
	if len(recorder.methods) != 1 || recorder.methods[0] != "proxy.greeter.Greet" {
		t.Fatalf("expected one recorded call for proxy.greeter.Greet, got %v", recorder.methods)
	}
	if recorder.errs[0] != nil {
		t.Errorf("expected nil recorded error, got %v", recorder.errs[0])
	}

	logged := buf.String()
	if !strings.Contains(logged, "call completed") || !strings.Contains(logged, "invocation_id=inv-1") {
		t.Errorf("unexpected log output: %s", logged)
	}
}

func TestAuditInterceptor_RecordsFailedCall(t *testing.T) {
	recorder := &mockCallRecorder{}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	callErr := errors.New("target failed")

	interceptor := NewAuditInterceptor(recorder, logger)
	inv := &stubInvocation{method: methodFail, err: callErr}

	_, err := interceptor.Invoke(context.Background(), inv)

	if err != callErr {
		t.Errorf("expected the target error unchanged, got: %v", err)
	}
	if len(recorder.errs) != 1 || recorder.errs[0] != callErr {
		t.Errorf("expected recorded error %v, got %v", callErr, recorder.errs)
	}
	if !strings.Contains(buf.String(), "call failed") {
		t.Errorf("expected failure to be logged, got: %s", buf.String())
	}
}

func TestAuditInterceptor_NilRecorder(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	interceptor := NewAuditInterceptor(nil, logger)
	inv := &stubInvocation{method: methodGreet, args: []any{"x"}}

	if _, err := interceptor.Invoke(context.Background(), inv); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if inv.proceeded != 1 {
		t.Errorf("expected Proceed to be called once, got %d", inv.proceeded)
	}
}

func TestAuditInterceptor_StoresLoggerInContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var fromCtx *slog.Logger
	capture := MethodInterceptorFunc(func(ctx context.Context, inv Invocation) ([]any, error) {
		fromCtx = LoggerFromContext(ctx, nil)
		return inv.Proceed(ctx)
	})
	p, err := New(&greeterImpl{}, []Advisor{
		{Name: "audit", Interceptor: NewAuditInterceptor(nil, logger)},
		{Name: "capture", Interceptor: capture},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := p.Invoke(context.Background(), methodGreet, "x"); err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}

	if fromCtx == nil {
		t.Fatal("expected a logger in the interceptor context")
	}
	buf.Reset()
	fromCtx.Info("inner")
	if !strings.Contains(buf.String(), "invocation_id=") || !strings.Contains(buf.String(), "method=proxy.greeter.Greet") {
		t.Errorf("context logger is not enriched: %s", buf.String())
	}
}

func TestLoggerFromContext_Fallback(t *testing.T) {
	fallback := slog.New(slog.DiscardHandler)
	if got := LoggerFromContext(context.Background(), fallback); got != fallback {
		t.Error("expected the fallback logger")
	}
}
