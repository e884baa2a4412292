package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// interfaceNamePattern matches reflect's printed form of a named type: "pkg.Name".
	interfaceNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*\.[A-Za-z_][A-Za-z0-9_]*$`)

	// metricNamespacePattern matches a valid Prometheus metric name prefix.
	metricNamespacePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// RegisterCustomValidators registers introgate-specific validation rules.
// Must be called before validating Config.
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("interface_name", validateInterfaceName); err != nil {
		return fmt.Errorf("failed to register interface_name validator: %w", err)
	}
	if err := v.RegisterValidation("metric_namespace", validateMetricNamespace); err != nil {
		return fmt.Errorf("failed to register metric_namespace validator: %w", err)
	}
	return nil
}

func validateInterfaceName(fl validator.FieldLevel) bool {
	return interfaceNamePattern.MatchString(fl.Field().String())
}

func validateMetricNamespace(fl validator.FieldLevel) bool {
	return metricNamespacePattern.MatchString(fl.Field().String())
}

// Validate validates the Config using struct tags and cross-field rules.
// Returns an error if validation fails, with actionable error messages.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := RegisterCustomValidators(v); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	if err := c.validateUniqueIntroductionNames(); err != nil {
		return err
	}

	return nil
}

// validateUniqueIntroductionNames ensures each introduction name is used once.
func (c *Config) validateUniqueIntroductionNames() error {
	seen := make(map[string]int, len(c.Introductions))
	for i, ic := range c.Introductions {
		if first, exists := seen[ic.Name]; exists {
			return fmt.Errorf("introductions[%d]: duplicate name %q (first used at introductions[%d])", i, ic.Name, first)
		}
		seen[ic.Name] = i
	}
	return nil
}

// formatValidationErrors converts validator.ValidationErrors to user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatSingleValidationError creates a user-friendly message for a single validation error.
func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	tag := e.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "interface_name":
		return fmt.Sprintf("%s must be an interface name like \"pkg.Name\"", field)
	case "metric_namespace":
		return fmt.Sprintf("%s must be a valid Prometheus name", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}
