package validation

import (
	"fmt"
	"sort"
	"sync"
)

// Backend compiles schemas into reusable validators.
//
// Backends must be stateless so one instance can serve many schemas.
type Backend interface {
	// Name identifies the backend in the registry.
	Name() string

	// Compile builds a reusable validator from schema. It returns a
	// *fault.SchemaError when the schema itself is invalid.
	Compile(schema map[string]any) (Compiled, error)
}

// Compiled validates payloads against one compiled schema. Validation is
// pure: the same payload always produces the same outcome, and compiling
// once is equivalent to compiling per payload.
type Compiled interface {
	// Validate checks payload, returning a structured validation error
	// carrying the failure messages, or nil.
	Validate(payload any) error
}

// registry holds the known backends by name.
var (
	registryMu sync.RWMutex
	registry   = make(map[string]Backend)
)

// Register makes a backend available under its name. A later registration
// with the same name replaces the earlier one.
func Register(b Backend) {
	registryMu.Lock()
	registry[b.Name()] = b
	registryMu.Unlock()
}

// Get returns the backend registered under name.
func Get(name string) (Backend, error) {
	registryMu.RLock()
	b, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("validation: unknown backend %q (have %v)", name, Backends())
	}
	return b, nil
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	registryMu.RLock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	registryMu.RUnlock()
	sort.Strings(names)
	return names
}
