// Package service wires configuration, introductions and telemetry into proxies.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"go.opentelemetry.io/otel/trace"

	"github.com/Sentinel-Gate/introgate/internal/adapter/outbound/cel"
	"github.com/Sentinel-Gate/introgate/internal/config"
	"github.com/Sentinel-Gate/introgate/internal/domain/introduction"
	"github.com/Sentinel-Gate/introgate/internal/domain/proxy"
	"github.com/Sentinel-Gate/introgate/internal/domain/remoting"
)

// ErrUnknownIntroduction is returned when no introduction has the requested name.
var ErrUnknownIntroduction = errors.New("unknown introduction")

// Recorder receives call and dispatch statistics.
// Satisfied by metrics.Metrics and otel.MeterRecorder.
type Recorder interface {
	proxy.CallRecorder
	introduction.DispatchRecorder
}

// ProxyFactory builds proxies whose chains follow the configuration:
// audit first, then tracing (when enabled), then the given advisors.
type ProxyFactory struct {
	cfg       *config.Config
	catalog   *introduction.Catalog
	evaluator *cel.Evaluator
	recorder  Recorder             // optional, may be nil
	tracer    trace.TracerProvider // optional, may be nil
	logger    *slog.Logger
}

// NewProxyFactory creates a new ProxyFactory.
//
// Parameters:
//   - cfg: validated configuration
//   - catalog: the interfaces delegates are resolved against
//   - evaluator: compiles introduction pointcuts
//   - rec: statistics recorder, or nil to disable recording
//   - tp: tracer provider, or nil to disable tracing
//   - logger: logger for all built components
func NewProxyFactory(
	cfg *config.Config,
	catalog *introduction.Catalog,
	evaluator *cel.Evaluator,
	rec Recorder,
	tp trace.TracerProvider,
	logger *slog.Logger,
) *ProxyFactory {
	return &ProxyFactory{
		cfg:       cfg,
		catalog:   catalog,
		evaluator: evaluator,
		recorder:  rec,
		tracer:    tp,
		logger:    logger,
	}
}

// IntroductionAdvisor binds delegate to the introduction named name and
// returns it as an advisor, with the configured pointcut and suppressions.
func (f *ProxyFactory) IntroductionAdvisor(name string, delegate any, opts ...introduction.Option) (proxy.Advisor, error) {
	ic, ok := f.cfg.Introduction(name)
	if !ok {
		return proxy.Advisor{}, fmt.Errorf("%w: %q", ErrUnknownIntroduction, name)
	}

	suppressed := make([]reflect.Type, 0, len(ic.Suppress))
	for _, ifaceName := range ic.Suppress {
		iface, found := f.catalog.Lookup(ifaceName)
		if !found {
			return proxy.Advisor{}, fmt.Errorf("introduction %q: %w: interface %q is not in the catalog",
				name, proxy.ErrInvalidArgument, ifaceName)
		}
		suppressed = append(suppressed, iface)
	}

	var pc proxy.Pointcut
	if ic.Pointcut != "" {
		compiled, err := f.evaluator.NewPointcut(ic.Pointcut)
		if err != nil {
			return proxy.Advisor{}, fmt.Errorf("introduction %q: %w", name, err)
		}
		pc = compiled
	}

	diOpts := []introduction.Option{
		introduction.WithLogger(f.logger.With("introduction", name)),
		introduction.WithSuppressed(suppressed...),
	}
	if f.recorder != nil {
		diOpts = append(diOpts, introduction.WithRecorder(f.recorder))
	}
	di, err := introduction.NewDelegatingInterceptor(delegate, f.catalog, append(diOpts, opts...)...)
	if err != nil {
		return proxy.Advisor{}, fmt.Errorf("introduction %q: %w", name, err)
	}

	f.logger.Info("introduction configured",
		"name", name,
		"delegate", fmt.Sprintf("%T", delegate),
		"interfaces", len(di.Interfaces()),
		"pointcut", ic.Pointcut,
	)

	return proxy.Advisor{Name: name, Interceptor: di, Pointcut: pc}, nil
}

// NewProxy builds a proxy for target with the standard chain followed by advisors.
func (f *ProxyFactory) NewProxy(target any, advisors []proxy.Advisor, opts ...proxy.Option) (*proxy.Proxy, error) {
	chain := f.chain(advisors)
	opts = append([]proxy.Option{proxy.WithLogger(f.logger)}, opts...)
	return proxy.New(target, chain, opts...)
}

// NewServiceProxy builds a proxy for target accessed through serviceInterface.
func (f *ProxyFactory) NewServiceProxy(serviceInterface reflect.Type, target any, advisors []proxy.Advisor, opts ...proxy.Option) (*proxy.Proxy, error) {
	var accessor remoting.Accessor
	if err := accessor.SetServiceInterface(serviceInterface); err != nil {
		return nil, err
	}
	opts = append([]proxy.Option{proxy.WithLogger(f.logger)}, opts...)
	return accessor.NewProxy(target, f.chain(advisors), opts...)
}

func (f *ProxyFactory) chain(advisors []proxy.Advisor) []proxy.Advisor {
	var stats proxy.CallRecorder
	if f.recorder != nil {
		stats = f.recorder
	}
	chain := []proxy.Advisor{{
		Name:        "audit",
		Interceptor: proxy.NewAuditInterceptor(stats, f.logger),
	}}
	if f.cfg.Tracing.Enabled && f.tracer != nil {
		chain = append(chain, proxy.Advisor{
			Name:        "tracing",
			Interceptor: proxy.NewTracingInterceptor(f.tracer),
		})
	}
	return append(chain, advisors...)
}
