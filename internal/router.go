package internal

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// Router owns the ordered route table, the group scope stacks, and the
// middleware alias registry. Registration happens in a single-threaded
// bootstrap phase; once the first request is dispatched the table must be
// treated as read-only. Concurrent readers are safe, registration
// mutators are not.
type Router struct {
	routes   []*Route
	global   []any
	prefixes []string
	scopes   [][]any
	aliases  map[string]Middleware
}

// GroupConfig configures a route group. Zero-value aspects are skipped:
// a group without a prefix only scopes middleware, and vice versa.
type GroupConfig struct {
	Prefix     string
	Middleware []any
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{aliases: make(map[string]Middleware)}
}

// Handle registers a route for an arbitrary HTTP verb. The method is
// upper-cased, the path template is compiled immediately, and the route's
// middleware list is fixed as global + active groups (outer to inner) +
// route-specific, in that order, duplicates preserved.
//
// Malformed templates panic: registration runs at bootstrap, and a broken
// template is a programming error.
func (r *Router) Handle(method, path string, h any, mw ...any) *Route {
	template := r.fullPath(path)
	pat, err := compilePattern(template)
	if err != nil {
		panic(fmt.Sprintf("waypoint: %v", err))
	}

	middleware := make([]any, 0, len(r.global)+len(mw))
	middleware = append(middleware, r.global...)
	for _, scope := range r.scopes {
		middleware = append(middleware, scope...)
	}
	middleware = append(middleware, mw...)

	rt := &Route{
		method:     strings.ToUpper(method),
		template:   template,
		pattern:    pat,
		handler:    h,
		middleware: middleware,
	}
	r.routes = append(r.routes, rt)
	return rt
}

// GET registers a handler for GET requests.
func (r *Router) GET(path string, h any, mw ...any) *Route {
	return r.Handle(http.MethodGet, path, h, mw...)
}

// POST registers a handler for POST requests.
func (r *Router) POST(path string, h any, mw ...any) *Route {
	return r.Handle(http.MethodPost, path, h, mw...)
}

// PUT registers a handler for PUT requests.
func (r *Router) PUT(path string, h any, mw ...any) *Route {
	return r.Handle(http.MethodPut, path, h, mw...)
}

// PATCH registers a handler for PATCH requests.
func (r *Router) PATCH(path string, h any, mw ...any) *Route {
	return r.Handle(http.MethodPatch, path, h, mw...)
}

// DELETE registers a handler for DELETE requests.
func (r *Router) DELETE(path string, h any, mw ...any) *Route {
	return r.Handle(http.MethodDelete, path, h, mw...)
}

// OPTIONS registers a handler for OPTIONS requests.
func (r *Router) OPTIONS(path string, h any, mw ...any) *Route {
	return r.Handle(http.MethodOptions, path, h, mw...)
}

// Any registers the handler for all standard verbs.
func (r *Router) Any(path string, h any, mw ...any) []*Route {
	return r.Match([]string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}, path, h, mw...)
}

// Match registers the handler for each of the given verbs.
// One route is created per method, in the order provided.
func (r *Router) Match(methods []string, path string, h any, mw ...any) []*Route {
	routes := make([]*Route, 0, len(methods))
	for _, m := range methods {
		routes = append(routes, r.Handle(m, path, h, mw...))
	}
	return routes
}

// Redirect registers a GET route that redirects from one path to another.
// Status defaults to 302 when zero.
func (r *Router) Redirect(from, to string, status int) *Route {
	if status == 0 {
		status = http.StatusFound
	}
	return r.GET(from, HandlerFunc(func(c Context) error {
		return c.Redirect(status, to)
	}))
}

// View registers a GET route that renders a named view with static data.
// Rendering goes through the application's view renderer.
func (r *Router) View(path, name string, data map[string]any) *Route {
	return r.GET(path, HandlerFunc(func(c Context) error {
		return c.Render(http.StatusOK, name, data)
	}))
}

// Group runs fn with the config's prefix and middleware pushed onto the
// scope stacks. The stacks are restored to their pre-call state when fn
// returns, including when it panics, so a failed group body cannot
// corrupt scoping for routes registered afterwards.
func (r *Router) Group(cfg GroupConfig, fn func(*Router)) {
	if cfg.Prefix != "" {
		r.prefixes = append(r.prefixes, cfg.Prefix)
		defer func() { r.prefixes = r.prefixes[:len(r.prefixes)-1] }()
	}
	if len(cfg.Middleware) > 0 {
		r.scopes = append(r.scopes, cfg.Middleware)
		defer func() { r.scopes = r.scopes[:len(r.scopes)-1] }()
	}
	fn(r)
}

// Middleware is shorthand for a group that scopes middleware without a
// path prefix.
func (r *Router) Middleware(mw []any, fn func(*Router)) {
	r.Group(GroupConfig{Middleware: mw}, fn)
}

// Use appends global middleware. Global middleware is snapshotted into
// each route at registration time, so it applies to routes registered
// after the call.
func (r *Router) Use(mw ...any) {
	r.global = append(r.global, mw...)
}

// Alias registers a named middleware in the alias table.
// Registering nil or re-registering a name panics: both indicate a
// configuration bug that should fail at bootstrap.
func (r *Router) Alias(name string, mw Middleware) {
	if mw == nil {
		panic(fmt.Sprintf("waypoint: nil middleware for alias %q", name))
	}
	if _, exists := r.aliases[name]; exists {
		panic(fmt.Sprintf("waypoint: middleware alias %q already registered", name))
	}
	r.aliases[name] = mw
}

func (r *Router) hasAlias(name string) bool {
	_, ok := r.aliases[name]
	return ok
}

// Routes returns the registered routes in registration order.
func (r *Router) Routes() []*Route {
	return slices.Clone(r.routes)
}

// Find returns the first route registered under the given name,
// or nil if no route carries it.
func (r *Router) Find(name string) *Route {
	for _, rt := range r.routes {
		if rt.name == name {
			return rt
		}
	}
	return nil
}

// Reset clears the route table, scope stacks, and global middleware.
// Intended for test isolation only; never call it after serving begins.
func (r *Router) Reset() {
	r.routes = nil
	r.global = nil
	r.prefixes = nil
	r.scopes = nil
}

// match scans the table in registration order and returns the first route
// whose method and compiled pattern accept the request. The scan stops at
// the first hit; later overlapping routes are never consulted.
func (r *Router) match(method, path string) (*Route, map[string]string) {
	for _, rt := range r.routes {
		if rt.method != method {
			continue
		}
		if params, ok := rt.pattern.match(path); ok {
			return rt, params
		}
	}
	return nil, nil
}

// fullPath joins the active group prefixes and the route path into a
// normalized template.
func (r *Router) fullPath(path string) string {
	if len(r.prefixes) == 0 {
		return normalizePath("/" + strings.TrimLeft(path, "/"))
	}

	parts := make([]string, 0, len(r.prefixes)+1)
	for _, p := range r.prefixes {
		parts = append(parts, strings.Trim(p, "/"))
	}
	parts = append(parts, strings.TrimLeft(path, "/"))
	return normalizePath("/" + strings.Join(parts, "/"))
}

// validateAliases checks every string middleware entry on every route
// against the alias table. Called once at application construction so
// alias typos fail at startup instead of on the first matching request.
func (r *Router) validateAliases() error {
	for _, rt := range r.routes {
		for _, entry := range rt.middleware {
			name, ok := entry.(string)
			if !ok {
				continue
			}
			if _, ok := r.aliases[name]; !ok {
				return &MiddlewareError{Entry: name}
			}
		}
	}
	return nil
}
