package backend

import (
	"sort"
	"sync"

	"github.com/gogpu/gpubridge/internal/logx"
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU backend.
	BackendSoftware = "software"
	// BackendNative is the name of the Pure Go GPU backend (gogpu/wgpu).
	BackendNative = "native"
	// BackendRust is the name of the wgpu-native backend.
	BackendRust = "rust"
)

// Factory creates a new backend instance. It may return nil when the
// backend is compiled out.
type Factory func() Backend

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first available wins).
	backendPriority = []string{BackendRust, BackendNative, BackendSoftware}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the sorted names of registered backends.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get returns a backend instance by name.
// Returns nil if the backend is not registered or compiled out.
func Get(name string) Backend {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil
	}
	return factory()
}

// candidates returns fresh instances in priority order followed by any
// other registered backends.
func candidates() []Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var out []Backend
	seen := make(map[string]bool, len(backends))
	for _, name := range backendPriority {
		seen[name] = true
		if factory, ok := backends[name]; ok {
			if b := factory(); b != nil {
				out = append(out, b)
			}
		}
	}
	rest := make([]string, 0, len(backends))
	for name := range backends {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		if b := backends[name](); b != nil {
			out = append(out, b)
		}
	}
	return out
}

// Default returns the best available backend based on priority.
// Priority order: rust > native > software.
// Returns nil if no backends are registered.
func Default() Backend {
	if c := candidates(); len(c) > 0 {
		return c[0]
	}
	return nil
}

// MustDefault returns the default backend or panics.
func MustDefault() Backend {
	b := Default()
	if b == nil {
		panic("backend: no backend available")
	}
	return b
}

// InitDefault initializes the highest-priority backend whose Init succeeds.
// A GPU backend without a usable device falls through to the next one.
func InitDefault() (Backend, error) {
	for _, b := range candidates() {
		if err := b.Init(); err != nil {
			logx.Logger().Warn("backend: init failed, trying next", "backend", b.Name(), "err", err)
			continue
		}
		return b, nil
	}
	return nil, ErrBackendNotAvailable
}
