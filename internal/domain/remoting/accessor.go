// Package remoting holds the service-interface configuration shared by
// remote-access style proxies.
package remoting

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/Sentinel-Gate/introgate/internal/domain/proxy"
)

// ErrServiceInterfaceNotSet is returned when a proxy is requested before
// the service interface is configured.
var ErrServiceInterfaceNotSet = errors.New("service interface not set")

// Accessor holds the interface a remote service is accessed through.
type Accessor struct {
	serviceInterface reflect.Type
}

// SetServiceInterface sets the service interface. It rejects nil and
// non-interface types with proxy.ErrInvalidArgument.
func (a *Accessor) SetServiceInterface(iface reflect.Type) error {
	if err := proxy.CheckInterface(iface); err != nil {
		return fmt.Errorf("service interface: %w", err)
	}
	a.serviceInterface = iface
	return nil
}

// ServiceInterface returns the configured interface, or nil.
func (a *Accessor) ServiceInterface() reflect.Type {
	return a.serviceInterface
}

// NewProxy builds a proxy for target exposing the service interface.
func (a *Accessor) NewProxy(target any, advisors []proxy.Advisor, opts ...proxy.Option) (*proxy.Proxy, error) {
	if a.serviceInterface == nil {
		return nil, ErrServiceInterfaceNotSet
	}
	opts = append([]proxy.Option{proxy.WithInterfaces(a.serviceInterface)}, opts...)
	return proxy.New(target, advisors, opts...)
}
