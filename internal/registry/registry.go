// Package registry provides the type-keyed service registry through which
// stagehand components discover each other.
//
// A Registry holds at most one instance per type. Services are registered by
// installers during startup and unregistered during shutdown; there is no
// reference counting. The registry is an explicit object passed to the
// components that need it rather than process-wide state.
//
// Lookups use the static type parameter as the key, so a service registered
// as an interface must be retrieved as that same interface:
//
//	registry.Register[audio.Manager](r, svc)
//	mgr, err := registry.Get[audio.Manager](r)
package registry

import (
	"reflect"
	"sort"
	"sync"

	"github.com/Iron-Ham/stagehand/internal/errors"
	"github.com/Iron-Ham/stagehand/internal/logging"
)

// Registry maps types to singleton instances.
type Registry struct {
	mu       sync.RWMutex
	services map[reflect.Type]any
	logger   *logging.Logger
}

// New creates an empty registry.
func New(logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Registry{
		services: make(map[reflect.Type]any),
		logger:   logger.WithComponent("registry"),
	}
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Register stores svc as the singleton for T, replacing any previous instance.
func Register[T any](r *Registry, svc T) {
	key := typeKey[T]()

	r.mu.Lock()
	_, replaced := r.services[key]
	r.services[key] = svc
	r.mu.Unlock()

	r.logger.Debug("service registered", "type", key.String(), "replaced", replaced)
}

// Unregister removes the singleton for T. It is a no-op if none is registered.
func Unregister[T any](r *Registry) {
	key := typeKey[T]()

	r.mu.Lock()
	_, ok := r.services[key]
	delete(r.services, key)
	r.mu.Unlock()

	if ok {
		r.logger.Debug("service unregistered", "type", key.String())
	}
}

// Get returns the singleton for T. A missing service is logged and reported
// as a *errors.NotFoundError wrapping errors.ErrServiceNotFound; callers
// should treat it as a reason to disable themselves.
func Get[T any](r *Registry) (T, error) {
	key := typeKey[T]()

	r.mu.RLock()
	svc, ok := r.services[key]
	r.mu.RUnlock()

	if !ok {
		var zero T
		r.logger.Error("service not found", "type", key.String())
		return zero, errors.NewNotFoundError("service", key.String()).WithCause(errors.ErrServiceNotFound)
	}
	typed, _ := svc.(T)
	return typed, nil
}

// Has reports whether a singleton for T is registered, without logging.
func Has[T any](r *Registry) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.services[typeKey[T]()]
	return ok
}

// Clear drops every entry. Used at full teardown.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services = make(map[reflect.Type]any)
}

// Len returns the number of registered services.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.services)
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.services))
	for key := range r.services {
		names = append(names, key.String())
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}
