package proxy

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeFor[error]()

// Method identifies an interface method. Interface is the interface the
// call was made through; it is the declaring interface for classification.
// Method is comparable and can be used as a map key.
type Method struct {
	Interface reflect.Type
	Name      string
}

// NewMethod returns the descriptor for iface.name.
func NewMethod(iface reflect.Type, name string) (Method, error) {
	if err := CheckInterface(iface); err != nil {
		return Method{}, err
	}
	if _, ok := iface.MethodByName(name); !ok {
		return Method{}, fmt.Errorf("%w: %s has no method %q", ErrInvalidArgument, iface, name)
	}
	return Method{Interface: iface, Name: name}, nil
}

// MustMethod is like NewMethod for the interface T but panics on error.
// It is meant for package-level descriptors in hand-written proxy stubs.
func MustMethod[T any](name string) Method {
	m, err := NewMethod(reflect.TypeFor[T](), name)
	if err != nil {
		panic(err)
	}
	return m
}

// Signature returns the method's function type (without receiver).
func (m Method) Signature() (reflect.Type, bool) {
	if m.Interface == nil || m.Interface.Kind() != reflect.Interface {
		return nil, false
	}
	sm, ok := m.Interface.MethodByName(m.Name)
	if !ok {
		return nil, false
	}
	return sm.Type, true
}

// ResultTypes returns the declared result types, excluding a trailing error.
func (m Method) ResultTypes() []reflect.Type {
	sig, ok := m.Signature()
	if !ok {
		return nil
	}
	n := sig.NumOut()
	if returnsError(sig) {
		n--
	}
	out := make([]reflect.Type, n)
	for i := range n {
		out[i] = sig.Out(i)
	}
	return out
}

// String returns "pkg.Iface.Name".
func (m Method) String() string {
	if m.Interface == nil {
		return "<nil>." + m.Name
	}
	return m.Interface.String() + "." + m.Name
}

func returnsError(sig reflect.Type) bool {
	n := sig.NumOut()
	return n > 0 && sig.Out(n-1) == errorType
}
