package waypoint

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/waypoint/internal"
	"github.com/dmitrymomot/waypoint/middlewares"
	"github.com/dmitrymomot/waypoint/pkg/cookie"
	"github.com/dmitrymomot/waypoint/pkg/logger"
	"github.com/dmitrymomot/waypoint/pkg/session"
)

// Type aliases - public API
type (
	// App is the HTTP application: router, dispatcher, and request-scoped
	// collaborators. It manages routing, middleware, CSRF protection, and
	// graceful shutdown.
	App = internal.App

	// Router owns the ordered route table and group scoping.
	Router = internal.Router

	// Route is a single entry in the route table.
	Route = internal.Route

	// GroupConfig configures a route group's prefix and middleware.
	GroupConfig = internal.GroupConfig

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// MethodHandler references a named method on a receiver as a route handler.
	MethodHandler = internal.MethodHandler

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// CSRFOption configures the CSRF guard.
	CSRFOption = internal.CSRFOption

	// CSRFGuard issues and verifies anti-forgery tokens.
	CSRFGuard = internal.CSRFGuard

	// SessionOption configures the session manager.
	SessionOption = internal.SessionOption

	// Session represents a user session.
	Session = session.Session

	// SessionStore defines the interface for session persistence.
	SessionStore = session.Store

	// ViewRenderer renders named views; pkg/view.Registry satisfies it.
	ViewRenderer = internal.ViewRenderer

	// ResponseWriter wraps http.ResponseWriter with write tracking and hooks.
	ResponseWriter = internal.ResponseWriter

	// HTTPError represents an HTTP error with rendering metadata.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// RouteNotFoundError is raised when no route matches a request.
	RouteNotFoundError = internal.RouteNotFoundError

	// CSRFError is raised when token verification fails.
	CSRFError = internal.CSRFError

	// MissingParamError is raised by URL generation for an absent required parameter.
	MissingParamError = internal.MissingParamError

	// MiddlewareError is raised for unresolvable middleware entries.
	MiddlewareError = internal.MiddlewareError

	// HandlerResolutionError is raised for unresolvable handler references.
	HandlerResolutionError = internal.HandlerResolutionError

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor

	// CookieOption configures the cookie manager.
	CookieOption = cookie.Option
)

// StatusPageExpired is the status code rendered on CSRF failure.
const StatusPageExpired = internal.StatusPageExpired

// ErrRouteNameUnknown is returned by URL generation for unknown names.
var ErrRouteNameUnknown = internal.ErrRouteNameUnknown

// Cookie errors for checking return values.
var (
	ErrCookieNotFound  = cookie.ErrNotFound
	ErrCookieNoSecret  = cookie.ErrNoSecret
	ErrCookieBadSecret = cookie.ErrBadSecret
	ErrCookieBadSig    = cookie.ErrBadSig
)

// Session errors for checking return values.
var (
	ErrSessionNotConfigured = session.ErrNotConfigured
	ErrSessionNotFound      = session.ErrNotFound
	ErrSessionExpired       = session.ErrExpired
)

// Constructors

// New creates a new application with the given options.
// The App is immutable after creation.
//
// A stock middleware alias table is installed ("auth", "guest", "cors",
// "throttle"), so routes can reference those by name out of the box.
// WithMiddlewareAlias registrations take precedence over the stock table.
//
// Example:
//
//	app := waypoint.New(
//	    waypoint.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    waypoint.WithHandlers(
//	        handlers.NewAuth(repo),
//	        handlers.NewPages(repo),
//	    ),
//	)
//
//	err := app.Run(":8080")
func New(opts ...Option) *App {
	opts = append(opts,
		internal.WithDefaultMiddlewareAlias("auth", middlewares.RequireAuth()),
		internal.WithDefaultMiddlewareAlias("guest", middlewares.RequireGuest()),
		internal.WithDefaultMiddlewareAlias("cors", middlewares.CORS()),
		internal.WithDefaultMiddlewareAlias("throttle", middlewares.Throttle()),
	)
	return internal.New(opts...)
}

// NewRouter creates a standalone router, mainly for tests and for
// building route tables outside an App.
func NewRouter() *Router {
	return internal.NewRouter()
}

// App options

// WithMiddleware adds global middleware to the application.
// Entries may be Middleware values or alias names; they apply in order.
func WithMiddleware(mw ...any) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithErrorHandler sets a custom error handler for handler errors.
// Called when a handler returns a non-nil error.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler appends a 404 fallback handler. Fallbacks are
// consulted in registration order; the first to write a response wins.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
// Extractors pull values from context (e.g., request_id, user_id).
//
// Example:
//
//	waypoint.New(
//	    waypoint.WithLogger("api", middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
// Use this when you need complete control over logging configuration.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithCookieOptions configures the cookie manager.
//
// Example:
//
//	waypoint.New(
//	    waypoint.WithCookieOptions(
//	        waypoint.WithCookieSecret(os.Getenv("COOKIE_SECRET")),
//	        waypoint.WithCookieSecure(true),
//	    ),
//	)
func WithCookieOptions(opts ...CookieOption) Option {
	return internal.WithCookieOptions(opts...)
}

// WithSession enables server-side session management.
// A SessionStore implementation must be provided (memory, Redis, or Postgres).
// Sessions are loaded lazily and saved automatically before the response is written.
//
// Example:
//
//	store := session.NewPostgresStore(pool)
//	waypoint.New(
//	    waypoint.WithSession(store,
//	        waypoint.WithSessionCookieName("__sid"),
//	        waypoint.WithSessionMaxAge(86400 * 30),
//	    ),
//	)
func WithSession(store SessionStore, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

// WithCSRF configures the CSRF guard's field, header, and exclusions.
// The guard is always active for unsafe methods; this option tunes it.
//
// Example:
//
//	waypoint.New(
//	    waypoint.WithCSRF(
//	        waypoint.WithCSRFExclude("/webhooks/*"),
//	    ),
//	)
func WithCSRF(opts ...CSRFOption) Option {
	return internal.WithCSRF(opts...)
}

// WithViews installs the view renderer backing Render and View routes.
func WithViews(r ViewRenderer) Option {
	return internal.WithViews(r)
}

// WithMiddlewareAlias registers a named middleware usable as a string
// entry in route and group middleware lists.
//
// Example:
//
//	waypoint.New(
//	    waypoint.WithMiddlewareAlias("jwt", middlewares.JWT(secret)),
//	)
func WithMiddlewareAlias(name string, mw Middleware) Option {
	return internal.WithMiddlewareAlias(name, mw)
}

// CSRF options

// WithCSRFField sets the form field checked for a submitted token.
// Defaults to "_token".
func WithCSRFField(name string) CSRFOption {
	return internal.WithCSRFField(name)
}

// WithCSRFHeader sets the request header checked for a submitted token.
// Defaults to "X-CSRF-Token".
func WithCSRFHeader(name string) CSRFOption {
	return internal.WithCSRFHeader(name)
}

// WithCSRFExclude registers exclusion path patterns. A pattern ending in
// "*" matches any path with that prefix; anything else matches exactly.
func WithCSRFExclude(patterns ...string) CSRFOption {
	return internal.WithCSRFExclude(patterns...)
}

// WithCSRFSessionKey sets the session key the token is stored under.
// Defaults to "_csrf".
func WithCSRFSessionKey(key string) CSRFOption {
	return internal.WithCSRFSessionKey(key)
}

// Run options

// Logger sets the runtime logger.
// Defaults to the application logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// This applies to both the HTTP server and shutdown hooks.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function to run before the listener opens.
// Hooks are called in the order they were registered. If any hook fails,
// the server does not start.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
// Hooks are called in the order they were registered.
// Each hook receives a context with the shutdown timeout.
//
// Example:
//
//	app.Run(":8080", waypoint.ShutdownHook(db.Shutdown(pool)))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets a custom base context for signal handling.
// Useful for testing or when integrating with existing context hierarchies.
// Defaults to context.Background() if not set.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Cookie options

// WithCookieSecret sets the secret for signing.
// Must be at least 32 bytes.
func WithCookieSecret(secret string) CookieOption {
	return cookie.WithSecret(secret)
}

// WithCookieDomain sets the cookie domain.
func WithCookieDomain(domain string) CookieOption {
	return cookie.WithDomain(domain)
}

// WithCookiePath sets the cookie path.
func WithCookiePath(path string) CookieOption {
	return cookie.WithPath(path)
}

// WithCookieSecure sets the Secure flag.
func WithCookieSecure(secure bool) CookieOption {
	return cookie.WithSecure(secure)
}

// WithCookieHTTPOnly sets the HttpOnly flag.
func WithCookieHTTPOnly(httpOnly bool) CookieOption {
	return cookie.WithHTTPOnly(httpOnly)
}

// WithCookieSameSite sets the SameSite attribute.
func WithCookieSameSite(ss http.SameSite) CookieOption {
	return cookie.WithSameSite(ss)
}

// Session options

// WithSessionCookieName sets the session cookie name.
// Defaults to "__sid".
func WithSessionCookieName(name string) SessionOption {
	return internal.WithSessionCookieName(name)
}

// WithSessionMaxAge sets the session max age in seconds.
// Defaults to 30 days.
func WithSessionMaxAge(seconds int) SessionOption {
	return internal.WithSessionMaxAge(seconds)
}

// WithSessionDomain sets the session cookie domain.
func WithSessionDomain(domain string) SessionOption {
	return internal.WithSessionDomain(domain)
}

// WithSessionPath sets the session cookie path.
// Defaults to "/".
func WithSessionPath(path string) SessionOption {
	return internal.WithSessionPath(path)
}

// WithSessionSecure sets the session cookie Secure flag.
// Defaults to false (should be true in production with HTTPS).
func WithSessionSecure(secure bool) SessionOption {
	return internal.WithSessionSecure(secure)
}

// WithSessionHTTPOnly sets the session cookie HttpOnly flag.
// Defaults to true (recommended for security).
func WithSessionHTTPOnly(httpOnly bool) SessionOption {
	return internal.WithSessionHTTPOnly(httpOnly)
}

// WithSessionSameSite sets the session cookie SameSite attribute.
// Defaults to SameSiteLaxMode.
func WithSessionSameSite(sameSite http.SameSite) SessionOption {
	return internal.WithSessionSameSite(sameSite)
}

// Error constructors

// NewHTTPError creates an HTTPError with the given status code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return internal.NewHTTPError(code, message)
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

func ErrPageExpired(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrPageExpired(message, opts...)
}

func ErrTooManyRequests(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrTooManyRequests(message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

// WithErrorCode attaches an application-specific error code.
func WithErrorCode(code string) HTTPErrorOption {
	return internal.WithErrorCode(code)
}

// WithRequestID attaches the request tracking ID.
func WithRequestID(id string) HTTPErrorOption {
	return internal.WithRequestID(id)
}

// WithError attaches the underlying cause for logging.
func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

// AsHTTPError extracts the HTTPError from an error if present.
// Returns nil if the error is not an HTTPError.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// Context helpers

// ContextValue retrieves a typed value from the context.
// Returns the zero value of T if the key is not found or type assertion fails.
//
// Example:
//
//	type tenantKey struct{}
//
//	tenant := waypoint.ContextValue[string](c, tenantKey{})
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// SessionValue is a typed helper to retrieve session values with type safety.
// Returns an error if the key doesn't exist or type assertion fails.
//
// Example:
//
//	theme, err := waypoint.SessionValue[string](sess, "theme")
func SessionValue[T any](sess *Session, key string) (T, error) {
	return session.Value[T](sess, key)
}

// SessionValueOr is a typed helper that returns a default value if the key
// doesn't exist or type assertion fails.
//
// Example:
//
//	theme := waypoint.SessionValueOr(sess, "theme", "light")
func SessionValueOr[T any](sess *Session, key string, defaultVal T) T {
	return session.ValueOr(sess, key, defaultVal)
}
