package backend

import (
	"fmt"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/vidgfx/render"
)

// Factory creates a backend instance.
type Factory func() render.Backend

// registry holds registered backends. Priority order for Default: the first
// registered name in the list wins.
var registry = gpucontext.NewRegistry[render.Backend](
	gpucontext.WithPriority(Native, Software),
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	registry.Register(name, factory)
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registry.Unregister(name)
}

// Available returns the registered backend names.
func Available() []string {
	return registry.Available()
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	return registry.Has(name)
}

// Get returns a backend instance by name, or nil if it is not registered.
func Get(name string) render.Backend {
	return registry.Get(name)
}

// Open opens a device on the named backend.
func Open(name string) (render.Device, error) {
	b := registry.Get(name)
	if b == nil {
		return nil, fmt.Errorf("%w: %q (forgotten import?)", ErrBackendNotAvailable, name)
	}
	dev, err := b.Open()
	if err != nil {
		return nil, fmt.Errorf("backend: open %s: %w", name, err)
	}
	render.Logger().Debug("backend opened", "backend", name)
	return dev, nil
}

// Default opens a device on the best available backend. Backends whose Open
// fails are skipped, so a missing GPU falls back to software.
func Default() (render.Device, error) {
	name := registry.BestName()
	if name == "" {
		return nil, ErrBackendNotAvailable
	}
	dev, err := Open(name)
	if err == nil {
		return dev, nil
	}
	render.Logger().Warn("preferred backend failed, trying others", "backend", name, "err", err)

	for _, other := range registry.Available() {
		if other == name {
			continue
		}
		if dev, err := Open(other); err == nil {
			return dev, nil
		}
	}
	return nil, fmt.Errorf("%w: %w", ErrBackendNotAvailable, err)
}
