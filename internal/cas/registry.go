package cas

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Opener constructs a backend. Openers should honor ctx cancellation for
// backends that connect to external processes.
type Opener func(ctx context.Context) (Backend, error)

var (
	backendsMu sync.RWMutex
	backends   = make(map[string]Opener)
)

// Register makes a backend available under the given name. Backend packages
// call Register from init, mirroring database/sql driver registration.
//
// Panics if the opener is nil or the name is already registered: both are
// programmer errors that should fail loudly at startup, not at run time.
func Register(name string, opener Opener) {
	backendsMu.Lock()
	defer backendsMu.Unlock()

	if opener == nil {
		panic("cas: Register opener is nil")
	}
	if _, dup := backends[name]; dup {
		panic(fmt.Sprintf("cas: Register called twice for backend %q", name))
	}
	backends[name] = opener
}

// Open constructs the backend registered under name.
// The error for an unknown name lists the registered backends so a CLI can
// surface the valid choices without extra plumbing.
func Open(ctx context.Context, name string) (Backend, error) {
	backendsMu.RLock()
	opener, ok := backends[name]
	backendsMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("cas: unknown backend %q (registered: %v)", name, Backends())
	}
	return opener(ctx)
}

// Backends returns the sorted names of all registered backends.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// unregister removes a backend registration. Only used by tests to keep the
// global registry clean between cases.
func unregister(name string) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	delete(backends, name)
}
