package cel

import (
	"path/filepath"
	"reflect"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/Sentinel-Gate/introgate/internal/domain/proxy"
)

// NewPointcutEnvironment creates the CEL environment pointcut expressions are compiled in.
//
// Variables:
//   - method_name: the method name, e.g. "Lock"
//   - interface_name: the declaring interface as printed by reflect, e.g. "demo.Lockable"
//   - interface_pkg: the interface's import path
//   - arity: number of declared parameters
//   - variadic: whether the method is variadic
//   - returns_error: whether the last result is an error
//   - target_type: the proxied target's type, e.g. "*demo.Account"
//
// Functions: glob(pattern, name) with filepath.Match semantics.
func NewPointcutEnvironment() (*cel.Env, error) {
	return cel.NewEnv(
		ext.Strings(),
		ext.Sets(),

		cel.Variable("method_name", cel.StringType),
		cel.Variable("interface_name", cel.StringType),
		cel.Variable("interface_pkg", cel.StringType),
		cel.Variable("arity", cel.IntType),
		cel.Variable("variadic", cel.BoolType),
		cel.Variable("returns_error", cel.BoolType),
		cel.Variable("target_type", cel.StringType),

		cel.Function("glob",
			cel.Overload("glob_string_string",
				[]*cel.Type{cel.StringType, cel.StringType},
				cel.BoolType,
				cel.BinaryBinding(func(pattern, name ref.Val) ref.Val {
					p := pattern.Value().(string)
					n := name.Value().(string)
					matched, _ := filepath.Match(p, n)
					return types.Bool(matched)
				}),
			),
		),
	)
}

// buildActivation maps a method and target type onto the pointcut variables.
func buildActivation(m proxy.Method, targetType reflect.Type) map[string]any {
	act := map[string]any{
		"method_name":    m.Name,
		"interface_name": "",
		"interface_pkg":  "",
		"arity":          int64(0),
		"variadic":       false,
		"returns_error":  false,
		"target_type":    "",
	}
	if m.Interface != nil {
		act["interface_name"] = m.Interface.String()
		act["interface_pkg"] = m.Interface.PkgPath()
	}
	if sig, ok := m.Signature(); ok {
		act["arity"] = int64(sig.NumIn())
		act["variadic"] = sig.IsVariadic()
		act["returns_error"] = len(m.ResultTypes()) < sig.NumOut()
	}
	if targetType != nil {
		act["target_type"] = targetType.String()
	}
	return act
}
