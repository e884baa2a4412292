package service

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sentinel-Gate/introgate/internal/adapter/outbound/cel"
	"github.com/Sentinel-Gate/introgate/internal/adapter/outbound/metrics"
	"github.com/Sentinel-Gate/introgate/internal/adapter/outbound/otel"
	"github.com/Sentinel-Gate/introgate/internal/config"
	"github.com/Sentinel-Gate/introgate/internal/domain/introduction"
	"github.com/Sentinel-Gate/introgate/internal/domain/proxy"
)

type ledger interface {
	Entries() int
}

type tagger interface {
	Tag() string
}

type hidden interface {
	Secret() string
}

type ledgerImpl struct{}

func (ledgerImpl) Entries() int { return 3 }

type tagMixin struct{}

func (*tagMixin) Tag() string    { return "tagged" }
func (*tagMixin) Secret() string { return "secret" }

var (
	_ Recorder = (*metrics.Metrics)(nil)
	_ Recorder = (*otel.MeterRecorder)(nil)
)

var (
	methodEntries = proxy.MustMethod[ledger]("Entries")
	methodTag     = proxy.MustMethod[tagger]("Tag")
)

func testConfig() *config.Config {
	return &config.Config{
		LogLevel: "info",
		Metrics:  config.MetricsConfig{Enabled: true, Namespace: "test"},
		Introductions: []config.IntroductionConfig{{
			Name:     "tags",
			Pointcut: `interface_name == "service.tagger"`,
			Suppress: []string{"service.hidden"},
		}},
	}
}

type factoryFixture struct {
	factory *ProxyFactory
	metrics *metrics.Metrics
	spans   *tracetest.SpanRecorder
}

func newFactoryFixture(t *testing.T, cfg *config.Config) *factoryFixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	catalog, err := introduction.NewCatalog(
		reflect.TypeFor[ledger](),
		reflect.TypeFor[tagger](),
		reflect.TypeFor[hidden](),
	)
	if err != nil {
		t.Fatalf("NewCatalog() error: %v", err)
	}
	evaluator, err := cel.NewEvaluator(logger)
	if err != nil {
		t.Fatalf("NewEvaluator() error: %v", err)
	}

	m := metrics.NewMetrics(prometheus.NewRegistry(), cfg.Metrics.Namespace)
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return &factoryFixture{
		factory: NewProxyFactory(cfg, catalog, evaluator, m, tp, logger),
		metrics: m,
		spans:   sr,
	}
}

func TestProxyFactory_IntroductionAdvisor(t *testing.T) {
	fx := newFactoryFixture(t, testConfig())

	advisor, err := fx.factory.IntroductionAdvisor("tags", &tagMixin{})
	if err != nil {
		t.Fatalf("IntroductionAdvisor() error: %v", err)
	}
	if advisor.Name != "tags" {
		t.Errorf("Name = %q, want tags", advisor.Name)
	}
	if advisor.Pointcut == nil {
		t.Fatal("expected the configured pointcut")
	}

	di, ok := advisor.Interceptor.(*introduction.DelegatingInterceptor)
	if !ok {
		t.Fatalf("Interceptor is %T, want *introduction.DelegatingInterceptor", advisor.Interceptor)
	}
	want := []reflect.Type{reflect.TypeFor[tagger]()}
	if got := di.Interfaces(); !reflect.DeepEqual(got, want) {
		t.Errorf("Interfaces() = %v, want %v (hidden suppressed)", got, want)
	}
}

func TestProxyFactory_IntroductionAdvisorErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		intro   string
		wantErr error
	}{
		{"unknown introduction", func(*config.Config) {}, "missing", ErrUnknownIntroduction},
		{"unknown suppressed interface", func(c *config.Config) {
			c.Introductions[0].Suppress = []string{"service.unknown"}
		}, "tags", proxy.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			fx := newFactoryFixture(t, cfg)

			_, err := fx.factory.IntroductionAdvisor(tt.intro, &tagMixin{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestProxyFactory_IntroductionAdvisorRejectsBadPointcut(t *testing.T) {
	cfg := testConfig()
	cfg.Introductions[0].Pointcut = `method_name`
	fx := newFactoryFixture(t, cfg)

	if _, err := fx.factory.IntroductionAdvisor("tags", &tagMixin{}); err == nil {
		t.Error("expected error for non-bool pointcut")
	}
}

func TestProxyFactory_NewServiceProxyDispatches(t *testing.T) {
	fx := newFactoryFixture(t, testConfig())
	advisor, err := fx.factory.IntroductionAdvisor("tags", &tagMixin{})
	if err != nil {
		t.Fatal(err)
	}

	p, err := fx.factory.NewServiceProxy(reflect.TypeFor[ledger](), ledgerImpl{}, []proxy.Advisor{advisor})
	if err != nil {
		t.Fatalf("NewServiceProxy() error: %v", err)
	}
	ctx := context.Background()

	results, err := p.Invoke(ctx, methodTag)
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	if got := proxy.Result[string](results, 0); got != "tagged" {
		t.Errorf("Tag() = %q, want tagged", got)
	}
	results, err = p.Invoke(ctx, methodEntries)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if got := proxy.Result[int](results, 0); got != 3 {
		t.Errorf("Entries() = %d, want 3", got)
	}

	if got := testutil.ToFloat64(fx.metrics.CallsTotal.WithLabelValues("service.tagger.Tag", "ok")); got != 1 {
		t.Errorf("calls for Tag = %v, want 1", got)
	}
	if got := testutil.ToFloat64(fx.metrics.CallsTotal.WithLabelValues("service.ledger.Entries", "ok")); got != 1 {
		t.Errorf("calls for Entries = %v, want 1", got)
	}
	// The pointcut keeps the introduction out of ledger calls entirely.
	if got := testutil.ToFloat64(fx.metrics.DispatchesTotal.WithLabelValues("introduced", "ok")); got != 1 {
		t.Errorf("introduced dispatches = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(fx.metrics.DispatchesTotal); got != 1 {
		t.Errorf("dispatch series = %d, want 1", got)
	}

	if !p.Implements(reflect.TypeFor[tagger]()) {
		t.Error("proxy should implement the introduced interface")
	}
	if p.Implements(reflect.TypeFor[hidden]()) {
		t.Error("proxy should not implement a suppressed interface")
	}
	if len(fx.spans.Ended()) != 0 {
		t.Error("spans recorded with tracing disabled")
	}
}

func TestProxyFactory_TracingEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.Tracing.Enabled = true
	fx := newFactoryFixture(t, cfg)

	p, err := fx.factory.NewProxy(ledgerImpl{}, nil)
	if err != nil {
		t.Fatalf("NewProxy() error: %v", err)
	}
	if _, err := p.Invoke(context.Background(), methodEntries); err != nil {
		t.Fatal(err)
	}

	spans := fx.spans.Ended()
	if len(spans) != 1 || spans[0].Name() != "service.ledger.Entries" {
		t.Errorf("spans = %v, want one for service.ledger.Entries", spans)
	}
}

func TestProxyFactory_NewServiceProxyErrors(t *testing.T) {
	fx := newFactoryFixture(t, testConfig())

	if _, err := fx.factory.NewServiceProxy(reflect.TypeFor[ledgerImpl](), ledgerImpl{}, nil); !errors.Is(err, proxy.ErrInvalidArgument) {
		t.Errorf("non-interface: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := fx.factory.NewServiceProxy(reflect.TypeFor[tagger](), ledgerImpl{}, nil); !errors.Is(err, proxy.ErrInvalidArgument) {
		t.Errorf("non-implementing target: err = %v, want ErrInvalidArgument", err)
	}
}

func TestProxyFactory_WithoutMetrics(t *testing.T) {
	cfg := testConfig()
	catalog, err := introduction.NewCatalog(reflect.TypeFor[tagger]())
	if err != nil {
		t.Fatal(err)
	}
	cfg.Introductions[0].Suppress = nil
	evaluator, err := cel.NewEvaluator(nil)
	if err != nil {
		t.Fatal(err)
	}
	factory := NewProxyFactory(cfg, catalog, evaluator, nil, nil, slog.New(slog.DiscardHandler))

	advisor, err := factory.IntroductionAdvisor("tags", &tagMixin{})
	if err != nil {
		t.Fatal(err)
	}
	p, err := factory.NewProxy(ledgerImpl{}, []proxy.Advisor{advisor})
	if err != nil {
		t.Fatal(err)
	}
	results, err := p.Invoke(context.Background(), methodTag)
	if err != nil {
		t.Fatal(err)
	}
	if got := proxy.Result[string](results, 0); got != "tagged" {
		t.Errorf("Tag() = %q, want tagged", got)
	}
}
