// Package config provides configuration types for introgate.
//
// The configuration describes how proxies are assembled: log level,
// metrics and tracing, and the introductions applied to proxied beans.
// Introductions are matched to delegates by name in code; the file only
// controls where they apply (pointcut) and what they must not expose
// (suppress).
package config

import (
	"github.com/spf13/viper"
)

// Config is the top-level configuration for introgate.
type Config struct {
	// LogLevel sets the minimum log level.
	// Valid values: "debug", "info", "warn", "error".
	// Defaults to "info" if empty. DevMode=true overrides to "debug".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// Metrics configures Prometheus metrics for proxied calls.
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`

	// Tracing configures OpenTelemetry spans for proxied calls.
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`

	// Introductions configures the introductions applied to proxies.
	// Optional: when empty, proxies forward every call to their target.
	Introductions []IntroductionConfig `yaml:"introductions" mapstructure:"introductions" validate:"omitempty,dive"`

	// DevMode enables development features (verbose logging, tracing to stdout).
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled controls whether call and dispatch metrics are recorded.
	// Default: true.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Namespace prefixes every metric name. Default: "introgate".
	Namespace string `yaml:"namespace" mapstructure:"namespace" validate:"omitempty,metric_namespace"`
	// Exporter selects the metrics backend: "prometheus" (gathered and
	// printed by the CLI) or "otel" (OpenTelemetry, exported as JSON).
	// Default: "prometheus".
	Exporter string `yaml:"exporter" mapstructure:"exporter" validate:"omitempty,oneof=prometheus otel"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled controls whether a span is started for each proxied call.
	// Default: false.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// PrettyPrint indents exported spans.
	PrettyPrint bool `yaml:"pretty_print" mapstructure:"pretty_print"`
}

// IntroductionConfig configures one named introduction.
type IntroductionConfig struct {
	// Name identifies the introduction; code binds a delegate to it.
	Name string `yaml:"name" mapstructure:"name" validate:"required"`

	// Pointcut is a CEL expression selecting the methods the introduction
	// sees (see internal/adapter/outbound/cel). Empty matches every method.
	Pointcut string `yaml:"pointcut" mapstructure:"pointcut"`

	// Suppress lists interfaces (e.g. "demo.Describer") that must not be
	// introduced even though the delegate implements them.
	Suppress []string `yaml:"suppress" mapstructure:"suppress" validate:"omitempty,dive,interface_name"`
}

// SetDevDefaults applies development defaults.
// These defaults are applied BEFORE validation.
func (c *Config) SetDevDefaults() {
	if !c.DevMode {
		return
	}
	c.LogLevel = "debug"
	c.Tracing.Enabled = true
}

// SetDefaults applies sensible default values to the configuration.
func (c *Config) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	// Metrics are enabled by default. viper.IsSet distinguishes
	// "not set" (zero value) from "explicitly false".
	if !viper.IsSet("metrics.enabled") {
		c.Metrics.Enabled = true
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "introgate"
	}
	if c.Metrics.Exporter == "" {
		c.Metrics.Exporter = "prometheus"
	}
}

// Introduction returns the introduction named name.
func (c *Config) Introduction(name string) (IntroductionConfig, bool) {
	for _, ic := range c.Introductions {
		if ic.Name == name {
			return ic, true
		}
	}
	return IntroductionConfig{}, false
}
