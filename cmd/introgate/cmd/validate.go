package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sentinel-Gate/introgate/internal/adapter/outbound/cel"
)

var printConfig bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and compile pointcuts",
	Long: `Load the configuration, validate it, and compile every introduction
pointcut. Exits non-zero on the first problem.

Example:
  introgate validate --config ./introgate.yaml --print`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&printConfig, "print", false, "print the effective configuration as YAML")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)

	evaluator, err := cel.NewEvaluator(logger)
	if err != nil {
		return err
	}
	for i, ic := range cfg.Introductions {
		if ic.Pointcut == "" {
			continue
		}
		if err := evaluator.ValidateExpression(ic.Pointcut); err != nil {
			return fmt.Errorf("introductions[%d] (%s): %w", i, ic.Name, err)
		}
	}

	out := cmd.OutOrStdout()
	if printConfig {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		_, _ = out.Write(data)
	}
	fmt.Fprintf(out, "configuration valid (%d introductions)\n", len(cfg.Introductions))
	return nil
}
