package gfx

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a Device. Factories are registered with Register and
// called by Open.
type Factory func(opts ...Option) (Device, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register makes a backend available by name. It is typically called from
// init() in a backend package, following the database/sql driver pattern:
//
//	func init() {
//	    gfx.Register("gl", func(opts ...gfx.Option) (gfx.Device, error) {
//	        return gl.NewDevice(Functions{}, opts...)
//	    })
//	}
//
// Register panics if factory is nil or name is already registered.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("gfx: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("gfx: Register called twice for " + name)
	}
	factories[name] = factory
}

// Unregister removes a backend. Unknown names are ignored.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Open creates a device from a registered backend.
//
//	import _ "github.com/gogpu/gfx/backend/gl/glcore"
//
//	dev, err := gfx.Open("gl", gfx.WithLogger(logger))
//
// The error for an unknown name hints at a missing import.
func Open(name string, opts ...Option) (Device, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q (forgotten import?)", ErrUnknownBackend, name)
	}
	dev, err := factory(opts...)
	if err != nil {
		return nil, fmt.Errorf("gfx: open %s: %w", name, err)
	}
	NewOptions(opts...).Logger.Info("gfx: device opened", "backend", name)
	return dev, nil
}

// MustOpen is like Open but panics on error.
func MustOpen(name string, opts ...Option) Device {
	dev, err := Open(name, opts...)
	if err != nil {
		panic(err)
	}
	return dev
}

// Backends returns the registered backend names in sorted order.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}
