package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
)

// Pointcut selects the methods an advisor applies to.
type Pointcut interface {
	Matches(m Method, targetType reflect.Type) bool
}

// PointcutFunc adapts a function to Pointcut.
type PointcutFunc func(m Method, targetType reflect.Type) bool

// Matches calls f(m, targetType).
func (f PointcutFunc) Matches(m Method, targetType reflect.Type) bool {
	return f(m, targetType)
}

// Advisor pairs an interceptor with the pointcut that selects its methods.
// A nil Pointcut matches every method.
type Advisor struct {
	Name        string
	Interceptor MethodInterceptor
	Pointcut    Pointcut
}

func (a Advisor) matches(m Method, targetType reflect.Type) bool {
	return a.Pointcut == nil || a.Pointcut.Matches(m, targetType)
}

// Option configures a Proxy.
type Option func(*Proxy)

// WithLogger sets the proxy logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Proxy) {
		p.logger = l
	}
}

// WithInterfaces declares the target interfaces the proxy exposes.
// Types the target does not implement are rejected by New.
func WithInterfaces(ifaces ...reflect.Type) Option {
	return func(p *Proxy) {
		p.interfaces = append(p.interfaces, ifaces...)
	}
}

// Proxy routes calls through an ordered advisor chain to a target.
//
// Advisors, interfaces and the exposed handle are fixed at construction
// time; Invoke is safe for concurrent use afterwards.
type Proxy struct {
	target     any
	targetType reflect.Type
	advisors   []Advisor
	interfaces []reflect.Type
	handle     any
	logger     *slog.Logger

	chains sync.Map // map[Method][]MethodInterceptor
}

// New creates a proxy for target.
func New(target any, advisors []Advisor, opts ...Option) (*Proxy, error) {
	if IsNil(target) {
		return nil, fmt.Errorf("%w: proxy target is nil", ErrInvalidArgument)
	}
	for i, a := range advisors {
		if a.Interceptor == nil {
			return nil, fmt.Errorf("%w: advisor %d (%q) has no interceptor", ErrInvalidArgument, i, a.Name)
		}
	}

	p := &Proxy{
		target:     target,
		targetType: reflect.TypeOf(target),
		advisors:   append([]Advisor(nil), advisors...),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}

	for _, iface := range p.interfaces {
		if err := CheckInterface(iface); err != nil {
			return nil, err
		}
		if !p.targetType.Implements(iface) {
			return nil, fmt.Errorf("%w: %s does not implement %s", ErrInvalidArgument, p.targetType, iface)
		}
	}
	return p, nil
}

// Expose records the caller-facing handle (typically a typed stub that
// embeds the proxy). It must be called before the proxy is published.
func (p *Proxy) Expose(handle any) {
	p.handle = handle
}

// Handle returns the exposed handle, or nil.
func (p *Proxy) Handle() any {
	return p.handle
}

// Target returns the proxied target.
func (p *Proxy) Target() any {
	return p.target
}

// Invoke runs m with args through the advisors that match m.
func (p *Proxy) Invoke(ctx context.Context, m Method, args ...any) ([]any, error) {
	if _, ok := m.Signature(); !ok {
		return nil, invocationErrorf(m, "not an interface method")
	}
	inv := newReflectiveInvocation(p.handle, p.target, m, args, p.chainFor(m))
	return inv.Proceed(ctx)
}

// chainFor returns the interceptors whose pointcut matches m, memoized per method.
func (p *Proxy) chainFor(m Method) []MethodInterceptor {
	if cached, ok := p.chains.Load(m); ok {
		return cached.([]MethodInterceptor)
	}
	chain := make([]MethodInterceptor, 0, len(p.advisors))
	for _, a := range p.advisors {
		if a.matches(m, p.targetType) {
			chain = append(chain, a.Interceptor)
		}
	}
	p.logger.Debug("interceptor chain resolved",
		"method", m.String(),
		"interceptors", len(chain),
	)
	actual, _ := p.chains.LoadOrStore(m, chain)
	return actual.([]MethodInterceptor)
}

// Implements reports whether callers may treat the proxy as iface:
// the target implements it, or an introduction advisor introduces it.
func (p *Proxy) Implements(iface reflect.Type) bool {
	if CheckInterface(iface) != nil {
		return false
	}
	if p.targetType.Implements(iface) {
		return true
	}
	for _, a := range p.advisors {
		if da, ok := a.Interceptor.(DynamicIntroductionAdvice); ok && da.ImplementsInterface(iface) {
			return true
		}
	}
	return false
}

// Interfaces returns the declared target interfaces plus every introduced
// interface, sorted by name and without duplicates.
func (p *Proxy) Interfaces() []reflect.Type {
	seen := make(map[reflect.Type]struct{})
	var out []reflect.Type
	add := func(t reflect.Type) {
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, t := range p.interfaces {
		add(t)
	}
	for _, a := range p.advisors {
		if info, ok := a.Interceptor.(IntroductionInfo); ok {
			for _, t := range info.Interfaces() {
				add(t)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
