package proxy

import (
	"context"
	"log/slog"
	"time"

	"github.com/Sentinel-Gate/introgate/internal/ctxkey"
)

// LoggerFromContext returns the per-invocation logger stored by
// AuditInterceptor, or fallback when ctx carries none.
func LoggerFromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(ctxkey.LoggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return fallback
}

// CallRecorder records call statistics.
// This interface is satisfied by metrics.Metrics.
type CallRecorder interface {
	RecordCall(method string, err error, latency time.Duration)
}

// AuditInterceptor logs every call that passes through it and its outcome.
// Place it first in the chain to measure the whole call.
type AuditInterceptor struct {
	stats  CallRecorder // optional, may be nil
	logger *slog.Logger
}

// NewAuditInterceptor creates a new AuditInterceptor.
func NewAuditInterceptor(stats CallRecorder, logger *slog.Logger) *AuditInterceptor {
	return &AuditInterceptor{
		stats:  stats,
		logger: logger,
	}
}

// Invoke proceeds and records the outcome. Results and error are returned unchanged.
// Later interceptors find the enriched logger with LoggerFromContext.
func (a *AuditInterceptor) Invoke(ctx context.Context, inv Invocation) ([]any, error) {
	startTime := time.Now()
	method := inv.Method().String()

	logger := a.logger.With("invocation_id", inv.ID(), "method", method)
	ctx = context.WithValue(ctx, ctxkey.LoggerKey{}, logger)

	results, err := inv.Proceed(ctx)

	latency := time.Since(startTime)
	if a.stats != nil {
		a.stats.RecordCall(method, err, latency)
	}

	if err != nil {
		logger.Debug("call failed",
			"latency_us", latency.Microseconds(),
			"error", err,
		)
	} else {
		logger.Debug("call completed",
			"latency_us", latency.Microseconds(),
			"results", len(results),
		)
	}

	return results, err
}

var _ MethodInterceptor = (*AuditInterceptor)(nil)
