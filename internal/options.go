package internal

import (
	"log/slog"

	"github.com/dmitrymomot/waypoint/pkg/cookie"
	"github.com/dmitrymomot/waypoint/pkg/logger"
	"github.com/dmitrymomot/waypoint/pkg/session"
)

// Option configures the App during construction.
type Option func(*App)

// WithMiddleware adds global middleware applied to every route registered
// afterwards. Entries may be Middleware values or alias names.
func WithMiddleware(mw ...any) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handler groups. Each handler's Routes method is
// invoked during construction, after global middleware is installed.
func WithHandlers(handlers ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, handlers...)
	}
}

// WithErrorHandler replaces the default error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		if h != nil {
			a.errorHandler = h
		}
	}
}

// WithNotFoundHandler appends a fallback handler consulted, in order,
// when no route matches. The first fallback to write a response wins.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		if h != nil {
			a.notFound = append(a.notFound, h)
		}
	}
}

// WithLogger creates a component logger with optional context extractors.
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.NewComponent(component, extractors...)
	}
}

// WithCustomLogger injects a preconfigured slog logger.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithCookieOptions configures the cookie manager.
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(a *App) {
		a.cookieOpts = append(a.cookieOpts, opts...)
	}
}

// WithSession enables session support backed by the given store.
func WithSession(store session.Store, opts ...SessionOption) Option {
	return func(a *App) {
		a.sessions = NewSessionManager(store, opts...)
	}
}

// WithCSRF configures the CSRF guard. The guard is always present; this
// option adjusts its field, header, and exclusion settings.
func WithCSRF(opts ...CSRFOption) Option {
	return func(a *App) {
		a.csrfOpts = append(a.csrfOpts, opts...)
	}
}

// WithViews installs the view renderer backing Render and View routes.
func WithViews(r ViewRenderer) Option {
	return func(a *App) {
		a.views = r
	}
}

// WithMiddlewareAlias registers a named middleware usable as a string
// entry in route and group middleware lists.
func WithMiddlewareAlias(name string, mw Middleware) Option {
	return func(a *App) {
		a.router.Alias(name, mw)
	}
}

// WithDefaultMiddlewareAlias registers a named middleware only when the
// name is still free, so explicit registrations take precedence. Used for
// the stock alias table.
func WithDefaultMiddlewareAlias(name string, mw Middleware) Option {
	return func(a *App) {
		if !a.router.hasAlias(name) {
			a.router.Alias(name, mw)
		}
	}
}
