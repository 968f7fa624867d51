package renderer

import (
	"slices"
	"sync"

	"github.com/pkg/errors"

	"github.com/andewx/dieselrt/platform"
)

// Backend names known to Default.
const (
	BackendVulkan = "vulkan"
	BackendNull   = "null"
)

// Factory creates a backend bound to the given platform.
type Factory func(p platform.Platform, opts Options) (Backend, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// First registered name in this list wins in Default.
	backendPriority = []string{BackendVulkan, BackendNull}
)

// Register makes a backend available under name. It is normally called from
// an init function of the backend package. A later registration under the
// same name replaces the earlier one.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a backend. Used by tests.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered backend names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Create builds the backend registered under name.
func Create(name string, p platform.Platform, opts Options) (Backend, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, errors.Wrapf(ErrBackendNotAvailable, "%q (registered: %v)", name, Available())
	}
	b, err := factory(p, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s backend", name)
	}
	return b, nil
}

// Default returns the name of the preferred registered backend, or "" when
// none is registered.
func Default() string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range backendPriority {
		if _, ok := factories[name]; ok {
			return name
		}
	}
	for name := range factories {
		return name
	}
	return ""
}
