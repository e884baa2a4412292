// Package introduction lets a proxy answer calls for interfaces its target
// does not implement, by forwarding them to a delegate.
package introduction

import (
	"reflect"
	"sort"

	"github.com/Sentinel-Gate/introgate/internal/domain/proxy"
)

// Registry tracks the interfaces an introduction publishes and the ones
// suppressed from publication. Suppression always wins, whatever the order
// of calls.
//
// Registry is not synchronized. Mutate it only during construction, before
// the owning interceptor is published; concurrent reads are safe afterwards.
type Registry struct {
	introduced map[reflect.Type]struct{}
	suppressed map[reflect.Type]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		introduced: make(map[reflect.Type]struct{}),
		suppressed: make(map[reflect.Type]struct{}),
	}
}

// RegisterIntroducedInterfaces publishes every given interface that is not
// suppressed. All descriptors are validated first; on error nothing is added.
func (r *Registry) RegisterIntroducedInterfaces(ifaces ...reflect.Type) error {
	for _, iface := range ifaces {
		if err := proxy.CheckInterface(iface); err != nil {
			return err
		}
	}
	for _, iface := range ifaces {
		if _, ok := r.suppressed[iface]; ok {
			continue
		}
		r.introduced[iface] = struct{}{}
	}
	return nil
}

// SuppressInterface removes iface from publication, now and for any later registration.
func (r *Registry) SuppressInterface(iface reflect.Type) error {
	if err := proxy.CheckInterface(iface); err != nil {
		return err
	}
	r.suppressed[iface] = struct{}{}
	delete(r.introduced, iface)
	return nil
}

// IsIntroduced reports whether iface is published.
func (r *Registry) IsIntroduced(iface reflect.Type) bool {
	if iface == nil {
		return false
	}
	_, ok := r.introduced[iface]
	return ok
}

// ImplementsInterface reports whether some published interface can be used
// as iface, which covers iface itself and any interface it embeds.
func (r *Registry) ImplementsInterface(iface reflect.Type) bool {
	if proxy.CheckInterface(iface) != nil {
		return false
	}
	for pub := range r.introduced {
		if pub.AssignableTo(iface) {
			return true
		}
	}
	return false
}

// Interfaces returns the published interfaces sorted by name.
func (r *Registry) Interfaces() []reflect.Type {
	return sortedTypes(r.introduced)
}

// Suppressed returns the suppressed interfaces sorted by name.
func (r *Registry) Suppressed() []reflect.Type {
	return sortedTypes(r.suppressed)
}

func sortedTypes(set map[reflect.Type]struct{}) []reflect.Type {
	out := make([]reflect.Type, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
