// Package cel provides CEL-based pointcut expressions for selecting proxied methods.
package cel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/Sentinel-Gate/introgate/internal/domain/proxy"
)

// maxExpressionLength is the maximum allowed length for pointcut expressions.
const maxExpressionLength = 1024

// maxCostBudget is the CEL runtime cost limit.
const maxCostBudget = 100_000

// maxNestingDepth is the maximum allowed parenthesis/bracket nesting depth.
const maxNestingDepth = 50

// evalTimeout is the maximum time allowed for a single evaluation.
const evalTimeout = time.Second

// interruptCheckFreq is how often (in comprehension iterations) cancellation is checked.
const interruptCheckFreq = 100

// Evaluator compiles pointcut expressions.
type Evaluator struct {
	env    *cel.Env
	logger *slog.Logger
}

// NewEvaluator creates a new evaluator with the pointcut environment.
func NewEvaluator(logger *slog.Logger) (*Evaluator, error) {
	env, err := NewPointcutEnvironment()
	if err != nil {
		return nil, fmt.Errorf("failed to create pointcut environment: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Evaluator{env: env, logger: logger}, nil
}

// Compile parses and type-checks a CEL expression, returning a compiled program.
func (e *Evaluator) Compile(expression string) (cel.Program, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation failed: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression must evaluate to bool, got %s", ast.OutputType())
	}

	prg, err := e.env.Program(ast,
		cel.EvalOptions(cel.OptOptimize),
		cel.CostLimit(maxCostBudget),
		cel.InterruptCheckFrequency(interruptCheckFreq),
	)
	if err != nil {
		return nil, fmt.Errorf("program creation failed: %w", err)
	}

	return prg, nil
}

// validateNesting checks that the expression does not exceed the maximum
// nesting depth for parentheses, brackets, and braces.
func validateNesting(expr string) error {
	var depth, maxDepth int
	for _, ch := range expr {
		switch ch {
		case '(', '[', '{':
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case ')', ']', '}':
			depth--
		}
	}
	if maxDepth > maxNestingDepth {
		return fmt.Errorf("expression nesting too deep: %d levels (max %d)", maxDepth, maxNestingDepth)
	}
	return nil
}

// ValidateExpression checks that an expression is safe and compiles.
func (e *Evaluator) ValidateExpression(expr string) error {
	if len(expr) > maxExpressionLength {
		return fmt.Errorf("expression too long: %d characters (max %d)", len(expr), maxExpressionLength)
	}

	if expr == "" {
		return errors.New("expression is empty")
	}

	if err := validateNesting(expr); err != nil {
		return err
	}

	if _, err := e.Compile(expr); err != nil {
		return fmt.Errorf("invalid pointcut expression: %w", err)
	}

	return nil
}

// Evaluate runs a compiled program for the given method and target type.
func (e *Evaluator) Evaluate(prg cel.Program, m proxy.Method, targetType reflect.Type) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	result, _, err := prg.ContextEval(ctx, buildActivation(m, targetType))
	if err != nil {
		return false, fmt.Errorf("evaluation failed: %w", err)
	}

	boolResult, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression did not return a boolean, got %T", result.Value())
	}

	return boolResult, nil
}

// Pointcut is a compiled expression usable as a proxy.Pointcut.
type Pointcut struct {
	expr      string
	prg       cel.Program
	evaluator *Evaluator
}

// NewPointcut validates and compiles expr.
func (e *Evaluator) NewPointcut(expr string) (*Pointcut, error) {
	if err := e.ValidateExpression(expr); err != nil {
		return nil, err
	}
	prg, err := e.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &Pointcut{expr: expr, prg: prg, evaluator: e}, nil
}

// Expression returns the source expression.
func (p *Pointcut) Expression() string {
	return p.expr
}

// Matches evaluates the expression. Evaluation errors count as no match.
func (p *Pointcut) Matches(m proxy.Method, targetType reflect.Type) bool {
	ok, err := p.evaluator.Evaluate(p.prg, m, targetType)
	if err != nil {
		p.evaluator.logger.Warn("pointcut evaluation failed",
			"expression", p.expr,
			"method", m.String(),
			"error", err,
		)
		return false
	}
	return ok
}

var _ proxy.Pointcut = (*Pointcut)(nil)
