// Package ctxkey defines context key types shared across packages.
// It has no dependencies on other internal packages.
package ctxkey

// LoggerKey is the context key type for the per-invocation logger.
// The audit interceptor stores a logger carrying invocation_id and method under it.
type LoggerKey struct{}
