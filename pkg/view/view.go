package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/a-h/templ"
)

// ErrViewNotFound is returned when rendering a name with no registration.
var ErrViewNotFound = errors.New("view: not found")

// Factory produces a templ component for a data map.
type Factory func(data map[string]any) templ.Component

// Registry maps view names to templ component factories. Registration
// happens at bootstrap; rendering is safe for concurrent use afterwards.
type Registry struct {
	mu    sync.RWMutex
	views map[string]Factory
}

// NewRegistry creates an empty view registry.
func NewRegistry() *Registry {
	return &Registry{views: make(map[string]Factory)}
}

// Register binds a name to a component factory.
// Re-registering a name panics: two views with one name is a bootstrap bug.
func (r *Registry) Register(name string, fn Factory) {
	if fn == nil {
		panic(fmt.Sprintf("view: nil factory for %q", name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.views[name]; exists {
		panic(fmt.Sprintf("view: %q already registered", name))
	}
	r.views[name] = fn
}

// Render writes the named view to w.
// Satisfies the renderer interface the router's View routes dispatch to.
func (r *Registry) Render(ctx context.Context, w io.Writer, name string, data map[string]any) error {
	r.mu.RLock()
	fn, ok := r.views[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrViewNotFound, name)
	}
	return fn(data).Render(ctx, w)
}
