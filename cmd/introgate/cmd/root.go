// Package cmd provides the CLI commands for introgate.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sentinel-Gate/introgate/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "introgate",
	Short: "introgate - interface introduction for Go proxies",
	Long: `introgate lets a proxied object answer calls for interfaces it does not
implement, by forwarding those calls to a delegate, while every other call
flows through the interceptor chain to the real target.

Configuration:
  Config is loaded from introgate.yaml in the current directory,
  $HOME/.introgate/, or /etc/introgate/.

  Environment variables can override config values with the INTROGATE_ prefix.
  Example: INTROGATE_TRACING_ENABLED=true

Commands:
  validate    Validate the configuration and compile pointcuts
  demo        Run the lock mixin demonstration
  version     Print version information`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./introgate.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
