package proxy

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrInvalidArgument is returned for absent or malformed configuration input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvocationFailure is matched by every InvocationError.
	ErrInvocationFailure = errors.New("invocation failure")
)

// InvocationError reports that a reflective call could not be performed at all.
// It never wraps an error returned by the invoked method; those are returned as-is.
type InvocationError struct {
	Method Method
	Reason string
}

// Error implements the error interface.
func (e *InvocationError) Error() string {
	return fmt.Sprintf("cannot invoke %s: %s", e.Method, e.Reason)
}

// Is reports whether target is ErrInvocationFailure.
func (e *InvocationError) Is(target error) bool {
	return target == ErrInvocationFailure
}

func invocationErrorf(m Method, format string, args ...any) *InvocationError {
	return &InvocationError{Method: m, Reason: fmt.Sprintf(format, args...)}
}

// CheckInterface returns ErrInvalidArgument unless t is a non-nil interface type.
func CheckInterface(t reflect.Type) error {
	if t == nil {
		return fmt.Errorf("%w: interface type is nil", ErrInvalidArgument)
	}
	if t.Kind() != reflect.Interface {
		return fmt.Errorf("%w: %s is not an interface", ErrInvalidArgument, t)
	}
	return nil
}

// IsNil reports whether v is nil or a typed nil of a nilable kind.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
