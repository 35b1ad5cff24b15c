package save

import (
	"fmt"
	"sync"

	"imgseries/pkg/imageseries"
)

// Factory constructs a writer for one series/destination pair. Constructors
// validate their options eagerly and perform no I/O.
type Factory func(ims *imageseries.Series, fname string, opts any) (Writer, error)

var (
	registryMu sync.Mutex
	registry   = map[string]Factory{}

	builtinOnce sync.Once
)

// ensureBuiltins populates the registry with the built-in formats exactly
// once, before any lookup or caller registration can observe it empty.
func ensureBuiltins() {
	builtinOnce.Do(func() {
		registryMu.Lock()
		defer registryMu.Unlock()
		registry[FormatHDF5] = newHDF5Writer
		registry[FormatFrameCache] = newFrameCacheWriter
	})
}

// Register adds a writer factory under name. Registering an existing name
// replaces the previous factory; the last registration wins. Registrations
// are never removed.
func Register(name string, factory Factory) {
	ensureBuiltins()
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// resolve looks up the factory registered under name.
func resolve(name string) (Factory, error) {
	ensureBuiltins()
	registryMu.Lock()
	defer registryMu.Unlock()
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return factory, nil
}

// Formats returns the names of every registered format, in no particular
// order.
func Formats() []string {
	ensureBuiltins()
	registryMu.Lock()
	defer registryMu.Unlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
