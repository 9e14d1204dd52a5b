package proxy

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// Registry caches member descriptors per wrapped type.
//
// It is intentionally:
// - construction-time only (proxies never touch it after creation)
// - safe for concurrent use (the proxies themselves are not)
// - overridable, so generated or hand-enriched descriptors win over reflection
//
// Expected usage:
//
//	desc, err := reg.DescriptorFor(reflect.TypeFor[Report]())
type Registry struct {
	mu    sync.RWMutex
	items map[reflect.Type]*Descriptor
}

// ErrDescribePanic is returned if the reflection walk panics internally.
var ErrDescribePanic = errors.New("proxy: panic while describing type")

// describePanicError converts a recovered panic value into a typed error.
func describePanicError(rec any) error {
	return fmt.Errorf("%w: %v", ErrDescribePanic, rec)
}

// NewRegistry returns an empty descriptor registry.
func NewRegistry() *Registry {
	return &Registry{items: map[reflect.Type]*Descriptor{}}
}

// Provide stores a descriptor for a type and returns the registry for
// chaining. It overrides any cached descriptor, which is how generated code
// installs descriptors carrying real parameter names.
func (r *Registry) Provide(t reflect.Type, d *Descriptor) *Registry {
	r.mu.Lock()
	r.items[t] = d
	r.mu.Unlock()
	return r
}

// DescriptorFor returns the cached descriptor for t, building it via
// reflection on first request.
func (r *Registry) DescriptorFor(t reflect.Type) (*Descriptor, error) {
	r.mu.RLock()
	d, ok := r.items[t]
	r.mu.RUnlock()
	if ok {
		return d, nil
	}

	built, err := describeType(t)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	// Another caller may have raced the build; keep the first descriptor so
	// every proxy for a type shares one.
	if existing, ok := r.items[t]; ok {
		built = existing
	} else {
		r.items[t] = built
	}
	r.mu.Unlock()
	return built, nil
}

// Get returns the cached descriptor if present (no build).
func (r *Registry) Get(t reflect.Type) (*Descriptor, bool) {
	r.mu.RLock()
	d, ok := r.items[t]
	r.mu.RUnlock()
	return d, ok
}

// Len returns the number of cached descriptors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
