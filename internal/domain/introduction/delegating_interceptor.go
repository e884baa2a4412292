package introduction

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/Sentinel-Gate/introgate/internal/domain/proxy"
)

// Classification tells how a call is dispatched.
type Classification int

const (
	// Forwarded calls continue along the interception chain.
	Forwarded Classification = iota
	// Introduced calls are answered by the delegate.
	Introduced
)

// String returns "forwarded" or "introduced".
func (c Classification) String() string {
	if c == Introduced {
		return "introduced"
	}
	return "forwarded"
}

// Forwarder continues a call that is not for an introduced interface.
type Forwarder interface {
	Forward(ctx context.Context, inv proxy.Invocation) ([]any, error)
}

// ForwarderFunc adapts a function to Forwarder.
type ForwarderFunc func(ctx context.Context, inv proxy.Invocation) ([]any, error)

// Forward calls f(ctx, inv).
func (f ForwarderFunc) Forward(ctx context.Context, inv proxy.Invocation) ([]any, error) {
	return f(ctx, inv)
}

// chainForwarder passes the call on unchanged.
type chainForwarder struct{}

func (chainForwarder) Forward(ctx context.Context, inv proxy.Invocation) ([]any, error) {
	return inv.Proceed(ctx)
}

// DispatchRecorder records dispatch decisions.
// This interface is satisfied by metrics.Metrics.
type DispatchRecorder interface {
	RecordDispatch(path string, method string, err error)
}

// controlInterfaces are never introduced: they are the mechanism's own surface.
var controlInterfaces = []reflect.Type{
	reflect.TypeFor[proxy.IntroductionInterceptor](),
	reflect.TypeFor[proxy.DynamicIntroductionAdvice](),
	reflect.TypeFor[Forwarder](),
}

// Option configures a DelegatingInterceptor.
type Option func(*DelegatingInterceptor)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *DelegatingInterceptor) {
		d.logger = l
	}
}

// WithForwarder replaces the step that continues forwarded calls.
// The forwarder observes or wraps calls on the target; it is never
// called for introduced interfaces. A nil forwarder keeps the default.
func WithForwarder(f Forwarder) Option {
	return func(d *DelegatingInterceptor) {
		if f != nil {
			d.forwarder = f
		}
	}
}

// WithSuppressed keeps the given interfaces from being introduced even
// though the delegate implements them.
func WithSuppressed(ifaces ...reflect.Type) Option {
	return func(d *DelegatingInterceptor) {
		d.suppress = append(d.suppress, ifaces...)
	}
}

// WithRecorder sets the dispatch recorder.
func WithRecorder(r DispatchRecorder) Option {
	return func(d *DelegatingInterceptor) {
		d.recorder = r
	}
}

// DelegatingInterceptor introduces the interfaces its delegate implements.
//
// Calls on an introduced interface are invoked on the delegate; all other
// calls are handed to the forwarder, which by default proceeds down the
// chain. The delegate may be the value embedding the interceptor itself.
//
// All configuration happens in NewDelegatingInterceptor. Once published,
// the interceptor is read-only and safe for concurrent use; the delegate's
// own thread safety is the delegate's concern.
type DelegatingInterceptor struct {
	delegate  any
	registry  *Registry
	forwarder Forwarder
	recorder  DispatchRecorder // optional, may be nil
	logger    *slog.Logger
	suppress  []reflect.Type
}

// NewDelegatingInterceptor binds delegate and introduces the interfaces
// resolver reports for it, minus suppressed and control interfaces.
func NewDelegatingInterceptor(delegate any, resolver InterfaceResolver, opts ...Option) (*DelegatingInterceptor, error) {
	if proxy.IsNil(delegate) {
		return nil, fmt.Errorf("%w: delegate must not be nil", proxy.ErrInvalidArgument)
	}
	if proxy.IsNil(resolver) {
		return nil, fmt.Errorf("%w: interface resolver must not be nil", proxy.ErrInvalidArgument)
	}

	d := &DelegatingInterceptor{
		delegate:  delegate,
		registry:  NewRegistry(),
		forwarder: chainForwarder{},
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := d.registry.RegisterIntroducedInterfaces(resolver.InterfacesOf(delegate)...); err != nil {
		return nil, fmt.Errorf("registering interfaces of %T: %w", delegate, err)
	}
	for _, iface := range append(d.suppress, controlInterfaces...) {
		if err := d.registry.SuppressInterface(iface); err != nil {
			return nil, fmt.Errorf("suppressing interface: %w", err)
		}
	}

	introduced := d.registry.Interfaces()
	if len(introduced) == 0 {
		d.logger.Debug("delegate introduces no interfaces, all calls will be forwarded",
			"delegate", fmt.Sprintf("%T", delegate),
		)
	} else {
		d.logger.Debug("introduction bound",
			"delegate", fmt.Sprintf("%T", delegate),
			"interfaces", typeNames(introduced),
		)
	}
	return d, nil
}

// Delegate returns the bound delegate.
func (d *DelegatingInterceptor) Delegate() any {
	return d.delegate
}

// SuppressInterface stops iface from being introduced.
// Only call it before the interceptor is published.
func (d *DelegatingInterceptor) SuppressInterface(iface reflect.Type) error {
	return d.registry.SuppressInterface(iface)
}

// Interfaces returns the introduced interfaces.
func (d *DelegatingInterceptor) Interfaces() []reflect.Type {
	return d.registry.Interfaces()
}

// IsIntroduced reports whether iface is introduced.
func (d *DelegatingInterceptor) IsIntroduced(iface reflect.Type) bool {
	return d.registry.IsIntroduced(iface)
}

// ImplementsInterface reports whether an introduced interface can be used as iface.
func (d *DelegatingInterceptor) ImplementsInterface(iface reflect.Type) bool {
	return d.registry.ImplementsInterface(iface)
}

// Classify decides how inv is dispatched from its method's declaring interface.
func (d *DelegatingInterceptor) Classify(inv proxy.Invocation) Classification {
	if d.registry.IsIntroduced(inv.Method().Interface) {
		return Introduced
	}
	return Forwarded
}

// Invoke answers introduced calls from the delegate and forwards the rest.
func (d *DelegatingInterceptor) Invoke(ctx context.Context, inv proxy.Invocation) ([]any, error) {
	m := inv.Method()

	if d.Classify(inv) == Introduced {
		results, err := proxy.InvokeJoinpoint(d.delegate, m, inv.Arguments())
		if err == nil {
			d.correctIdentity(inv, results)
		}
		d.record(Introduced, m, err)
		return results, err
	}

	results, err := d.forwarder.Forward(ctx, inv)
	d.record(Forwarded, m, err)
	return results, err
}

// correctIdentity replaces results that are the delegate itself with the
// proxy, where the proxy is known and the declared result type can hold it.
func (d *DelegatingInterceptor) correctIdentity(inv proxy.Invocation, results []any) {
	pi, ok := inv.(proxy.ProxyInvocation)
	if !ok {
		return
	}
	p := pi.Proxy()
	if p == nil {
		return
	}
	proxyType := reflect.TypeOf(p)
	declared := inv.Method().ResultTypes()
	for i, r := range results {
		if i >= len(declared) {
			break
		}
		if sameObject(r, d.delegate) && proxyType.AssignableTo(declared[i]) {
			results[i] = p
		}
	}
}

func (d *DelegatingInterceptor) record(c Classification, m proxy.Method, err error) {
	if d.recorder != nil {
		d.recorder.RecordDispatch(c.String(), m.String(), err)
	}
	d.logger.Debug("call dispatched",
		"method", m.String(),
		"path", c.String(),
		"error", err,
	)
}

// sameObject reports reference identity for pointer-like values.
func sameObject(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}
	return false
}

func typeNames(ts []reflect.Type) []string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.String()
	}
	return names
}

// Compile-time checks.
var (
	_ proxy.IntroductionInterceptor = (*DelegatingInterceptor)(nil)
	_ proxy.IntroductionInfo        = (*DelegatingInterceptor)(nil)
)
