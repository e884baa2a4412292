package proxy

import (
	"reflect"
)

// InvokeJoinpoint calls m on target through reflection.
//
// Mismatches that prevent the call (absent target, missing method,
// signature mismatch, wrong argument count or types) are reported as
// *InvocationError before anything runs. Once the call is made, the
// method's own trailing error result is returned unchanged, and a panic
// in the method propagates unchanged.
func InvokeJoinpoint(target any, m Method, args []any) ([]any, error) {
	sig, ok := m.Signature()
	if !ok {
		return nil, invocationErrorf(m, "not an interface method")
	}
	if IsNil(target) {
		return nil, invocationErrorf(m, "target is nil")
	}

	fn := reflect.ValueOf(target).MethodByName(m.Name)
	if !fn.IsValid() {
		return nil, invocationErrorf(m, "%T has no method %s", target, m.Name)
	}
	if fn.Type() != sig {
		return nil, invocationErrorf(m, "%T.%s has signature %s, want %s", target, m.Name, fn.Type(), sig)
	}

	in, err := callArguments(m, sig, args)
	if err != nil {
		return nil, err
	}

	out := fn.Call(in)

	n := len(out)
	var callErr error
	if returnsError(sig) {
		n--
		if e := out[n]; !e.IsNil() {
			callErr = e.Interface().(error)
		}
	}
	results := make([]any, n)
	for i := range n {
		results[i] = out[i].Interface()
	}
	return results, callErr
}

// callArguments converts args to reflect values matching sig.
// Variadic arguments are passed flattened, as at a regular call site.
func callArguments(m Method, sig reflect.Type, args []any) ([]reflect.Value, error) {
	numIn := sig.NumIn()
	if sig.IsVariadic() {
		if len(args) < numIn-1 {
			return nil, invocationErrorf(m, "got %d arguments, want at least %d", len(args), numIn-1)
		}
	} else if len(args) != numIn {
		return nil, invocationErrorf(m, "got %d arguments, want %d", len(args), numIn)
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var pt reflect.Type
		if sig.IsVariadic() && i >= numIn-1 {
			pt = sig.In(numIn - 1).Elem()
		} else {
			pt = sig.In(i)
		}

		if arg == nil {
			if !nilable(pt) {
				return nil, invocationErrorf(m, "argument %d: nil is not a valid %s", i, pt)
			}
			in[i] = reflect.Zero(pt)
			continue
		}
		v := reflect.ValueOf(arg)
		if !v.Type().AssignableTo(pt) {
			return nil, invocationErrorf(m, "argument %d: %s is not assignable to %s", i, v.Type(), pt)
		}
		in[i] = v
	}
	return in, nil
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return true
	}
	return false
}
