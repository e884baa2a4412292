// Package proxy contains the interception machinery that proxied calls flow through.
package proxy

import (
	"context"
	"reflect"
)

// MethodInterceptor intercepts calls on their way to the proxied target.
type MethodInterceptor interface {
	// Invoke handles the invocation and returns the method's results
	// (minus a trailing error) and its error.
	// To continue along the chain, call inv.Proceed(ctx).
	Invoke(ctx context.Context, inv Invocation) ([]any, error)
}

// MethodInterceptorFunc adapts a function to MethodInterceptor.
type MethodInterceptorFunc func(ctx context.Context, inv Invocation) ([]any, error)

// Invoke calls f(ctx, inv).
func (f MethodInterceptorFunc) Invoke(ctx context.Context, inv Invocation) ([]any, error) {
	return f(ctx, inv)
}

// Invocation describes a single method call in flight.
type Invocation interface {
	// ID uniquely identifies the call, for logs and traces.
	ID() string
	// Method is the interface method being called.
	Method() Method
	// Arguments returns the call arguments. Callers must not modify the slice.
	Arguments() []any
	// Target is the proxied object the chain ends at.
	Target() any
	// Proceed passes the call to the next interceptor, or to the target
	// when the chain is exhausted.
	Proceed(ctx context.Context) ([]any, error)
}

// ProxyInvocation is an Invocation that knows the caller-facing proxy.
type ProxyInvocation interface {
	Invocation
	// Proxy returns the exposed proxy handle, or nil if none was exposed.
	Proxy() any
}

// DynamicIntroductionAdvice answers whether an advice introduces an interface.
type DynamicIntroductionAdvice interface {
	ImplementsInterface(iface reflect.Type) bool
}

// IntroductionInterceptor is the control surface of an interceptor that
// makes a proxy answer for additional interfaces.
type IntroductionInterceptor interface {
	MethodInterceptor
	DynamicIntroductionAdvice
}

// IntroductionInfo lists the interfaces an advice introduces.
type IntroductionInfo interface {
	Interfaces() []reflect.Type
}

// PassthroughInterceptor forwards every call unchanged.
type PassthroughInterceptor struct{}

// NewPassthroughInterceptor creates a passthrough interceptor.
func NewPassthroughInterceptor() *PassthroughInterceptor {
	return &PassthroughInterceptor{}
}

// Invoke proceeds down the chain.
func (i *PassthroughInterceptor) Invoke(ctx context.Context, inv Invocation) ([]any, error) {
	return inv.Proceed(ctx)
}

// Compile-time checks.
var (
	_ MethodInterceptor = (*PassthroughInterceptor)(nil)
	_ MethodInterceptor = MethodInterceptorFunc(nil)
)
