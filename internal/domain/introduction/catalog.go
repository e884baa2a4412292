package introduction

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/Sentinel-Gate/introgate/internal/domain/proxy"
)

// InterfaceResolver lists the interfaces a value implements.
type InterfaceResolver interface {
	InterfacesOf(obj any) []reflect.Type
}

// InterfaceResolverFunc adapts a function to InterfaceResolver.
type InterfaceResolverFunc func(obj any) []reflect.Type

// InterfacesOf calls f(obj).
func (f InterfaceResolverFunc) InterfacesOf(obj any) []reflect.Type {
	return f(obj)
}

// Catalog is an InterfaceResolver over a fixed set of known interfaces.
// A value's interfaces are the catalog entries its dynamic type implements.
// Thread-safe for concurrent registration and lookup.
type Catalog struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
}

// NewCatalog creates a catalog holding ifaces.
func NewCatalog(ifaces ...reflect.Type) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]reflect.Type)}
	if err := c.Register(ifaces...); err != nil {
		return nil, err
	}
	return c, nil
}

// Register adds interfaces to the catalog. Registering a type twice is a no-op;
// two distinct types with the same name are rejected.
func (c *Catalog) Register(ifaces ...reflect.Type) error {
	for _, iface := range ifaces {
		if err := proxy.CheckInterface(iface); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, iface := range ifaces {
		name := iface.String()
		if existing, ok := c.byName[name]; ok && existing != iface {
			return fmt.Errorf("%w: interface name %q already registered by %s", proxy.ErrInvalidArgument, name, existing.PkgPath())
		}
	}
	for _, iface := range ifaces {
		c.byName[iface.String()] = iface
	}
	return nil
}

// Register adds the interface T to c.
func Register[T any](c *Catalog) error {
	return c.Register(reflect.TypeFor[T]())
}

// Lookup returns the interface registered under name (as printed by reflect, e.g. "demo.Lockable").
func (c *Catalog) Lookup(name string) (reflect.Type, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.byName[name]
	return t, ok
}

// Len returns the number of registered interfaces.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byName)
}

// InterfacesOf returns the catalog interfaces obj implements, sorted by name.
func (c *Catalog) InterfacesOf(obj any) []reflect.Type {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []reflect.Type
	for _, iface := range c.byName {
		if t.Implements(iface) {
			out = append(out, iface)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

var _ InterfaceResolver = (*Catalog)(nil)
