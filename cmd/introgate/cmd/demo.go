package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Sentinel-Gate/introgate/internal/adapter/outbound/cel"
	"github.com/Sentinel-Gate/introgate/internal/adapter/outbound/metrics"
	"github.com/Sentinel-Gate/introgate/internal/adapter/outbound/otel"
	"github.com/Sentinel-Gate/introgate/internal/config"
	"github.com/Sentinel-Gate/introgate/internal/demo"
	"github.com/Sentinel-Gate/introgate/internal/service"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the lock mixin demonstration",
	Long: `Introduce a Lockable mixin onto a proxied bank account and show how
calls are dispatched: Lockable calls go to the mixin, account calls go
to the account, and deposits are rejected while the account is locked.

The demo uses the introduction named "lockable" from the configuration,
or a default one when none is configured. Prometheus metrics are printed
after the run; with metrics.exporter=otel they are exported as JSON to
stderr instead.`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, ok := cfg.Introduction(demo.IntroductionName); !ok {
		cfg.Introductions = append(cfg.Introductions, config.IntroductionConfig{Name: demo.IntroductionName})
	}

	logger := newLogger(cfg, os.Stderr)
	out := cmd.OutOrStdout()

	var (
		reg *prometheus.Registry
		rec service.Recorder
	)
	if cfg.Metrics.Enabled {
		switch cfg.Metrics.Exporter {
		case "otel":
			mp, err := otel.SetupMetrics(os.Stderr, cfg.Tracing.PrettyPrint)
			if err != nil {
				return err
			}
			defer func() {
				if err := mp.Shutdown(context.Background()); err != nil {
					logger.Warn("meter provider shutdown failed", "error", err)
				}
			}()
			if rec, err = otel.NewMeterRecorder(mp, cfg.Metrics.Namespace); err != nil {
				return err
			}
		default:
			reg = prometheus.NewRegistry()
			rec = metrics.NewMetrics(reg, cfg.Metrics.Namespace)
		}
	}

	tp, shutdown, err := otel.Setup(cfg.Tracing.Enabled, cfg.Tracing.PrettyPrint, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	catalog, err := demo.NewCatalog()
	if err != nil {
		return err
	}
	evaluator, err := cel.NewEvaluator(logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	factory := service.NewProxyFactory(cfg, catalog, evaluator, rec, tp, logger)
	if err := demo.Run(ctx, factory, out); err != nil {
		return fmt.Errorf("demo failed: %w", err)
	}

	if reg != nil {
		return printMetrics(out, reg)
	}
	return nil
}

// printMetrics writes counter values as "name{labels} value" lines, sorted.
func printMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			if metric.GetCounter() == nil {
				continue
			}
			labels := ""
			for i, lp := range metric.GetLabel() {
				if i > 0 {
					labels += ","
				}
				labels += fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue())
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), labels, metric.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)

	fmt.Fprintln(w, "metrics:")
	for _, line := range lines {
		fmt.Fprintf(w, "  %s\n", line)
	}
	return nil
}
