package internal

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/waypoint/pkg/cookie"
	"github.com/dmitrymomot/waypoint/pkg/logger"
)

// App is the HTTP application: a router, an error handler, and the
// request-scoped collaborators (logger, cookies, sessions, views, CSRF
// guard) handed to every Context. Construction is the bootstrap phase;
// once ServeHTTP runs, configuration is frozen.
type App struct {
	router       *Router
	errorHandler ErrorHandler
	notFound     []HandlerFunc
	logger       *slog.Logger
	cookies      *cookie.Manager
	sessions     *SessionManager
	views        ViewRenderer
	csrf         *CSRFGuard

	middlewares []any
	handlers    []Handler
	cookieOpts  []cookie.Option
	csrfOpts    []CSRFOption
}

// New creates an App, applies options, installs global middleware, runs
// every handler's route registration, and validates the resulting table.
// An alias referenced by any route but never registered panics here, so
// typos fail at startup rather than on the first matching request.
func New(opts ...Option) *App {
	a := &App{
		router: NewRouter(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = logger.NewNope()
	}
	a.cookies = cookie.New(a.cookieOpts...)
	a.csrf = NewCSRFGuard(a.csrfOpts...)
	if a.errorHandler == nil {
		a.errorHandler = defaultErrorHandler
	}
	if a.sessions != nil {
		a.sessions.SetLogger(a.logger)
	}

	a.router.Use(a.middlewares...)
	for _, h := range a.handlers {
		h.Routes(a.router)
	}

	if err := a.router.validateAliases(); err != nil {
		panic(fmt.Sprintf("waypoint: %v", err))
	}
	return a
}

// Router returns the application's router for registration outside of
// WithHandlers. Registration after serving begins is not supported.
func (a *App) Router() *Router {
	return a.router
}

// URL generates a URL for a named route. See Router.URL.
func (a *App) URL(name string, params map[string]string) (string, error) {
	return a.router.URL(name, params)
}

// CSRF returns the application's CSRF guard.
func (a *App) CSRF() *CSRFGuard {
	return a.csrf
}

// ServeHTTP dispatches the request: first matching route wins, the CSRF
// gate runs before the chain for unsafe methods, and handler errors go to
// the error handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt, params := a.router.match(r.Method, r.URL.Path)

	rw := NewResponseWriter(w)
	c := newContext(rw, r, a, params)
	defer c.finalize()

	if rt == nil {
		a.renderNotFound(c)
		return
	}

	if a.csrf.ShouldValidate(c) && !a.csrf.Verify(c, a.csrf.SubmittedToken(c)) {
		a.handleError(c, &CSRFError{Path: r.URL.Path})
		return
	}

	chain, err := rt.chainFor(a.router)
	if err != nil {
		a.handleError(c, err)
		return
	}

	if err := chain(c); err != nil {
		a.handleError(c, err)
	}
}

// renderNotFound walks the fallback chain in registration order. The
// first fallback to write a response ends the walk; a fallback error goes
// to the error handler. With no fallbacks, or none that responded, the
// error handler renders a plain 404.
func (a *App) renderNotFound(c Context) {
	for _, h := range a.notFound {
		if err := h(c); err != nil {
			a.handleError(c, err)
			return
		}
		if c.Written() {
			return
		}
	}
	a.handleError(c, &RouteNotFoundError{Method: c.Request().Method, Path: c.Request().URL.Path})
}

// handleError runs the configured error handler; whatever it cannot
// handle falls through to the default renderer.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		c.LogError("error after response was written", "error", err)
		return
	}
	if hErr := a.errorHandler(c, err); hErr != nil {
		c.LogError("error handler failed", "error", hErr, "cause", err)
		if !c.Written() {
			_ = defaultErrorHandler(c, err)
		}
	}
}

// defaultErrorHandler maps errors to HTTP responses. Typed dispatch
// errors get their canonical status; anything else is a 500. The body is
// JSON or HTML depending on what the client asked for.
func defaultErrorHandler(c Context, err error) error {
	httpErr := AsHTTPError(err)
	if httpErr == nil {
		httpErr = httpErrorFor(c, err)
	}

	if c.WantsJSON() {
		return renderJSONError(c, httpErr)
	}
	return renderHTMLError(c, httpErr)
}

func httpErrorFor(c Context, err error) *HTTPError {
	var (
		notFound   *RouteNotFoundError
		csrf       *CSRFError
		middleware *MiddlewareError
		resolution *HandlerResolutionError
	)
	switch {
	case errors.As(err, &notFound):
		return c.Error(http.StatusNotFound, "Not Found", WithError(err))
	case errors.As(err, &csrf):
		return c.Error(StatusPageExpired, "Page Expired", WithError(err), WithErrorCode("csrf_token_mismatch"))
	case errors.As(err, &middleware), errors.As(err, &resolution):
		c.LogError("route configuration error", "error", err)
		return c.Error(http.StatusInternalServerError, "Internal Server Error", WithError(err))
	default:
		c.LogError("unhandled error", "error", err)
		return c.Error(http.StatusInternalServerError, "Internal Server Error", WithError(err))
	}
}

func renderJSONError(c Context, e *HTTPError) error {
	payload := map[string]any{
		"error":  e.StatusText(),
		"status": e.Code,
	}
	if e.Message != "" && e.Message != e.StatusText() {
		payload["message"] = e.Message
	}
	if e.ErrorCode != "" {
		payload["code"] = e.ErrorCode
	}
	if e.RequestID != "" {
		payload["request_id"] = e.RequestID
	}
	return c.JSON(e.Code, payload)
}

func renderHTMLError(c Context, e *HTTPError) error {
	body := fmt.Sprintf(
		"<!DOCTYPE html><html><head><title>%d %s</title></head><body><h1>%d %s</h1><p>%s</p></body></html>",
		e.Code, e.StatusText(), e.Code, e.StatusText(), html.EscapeString(e.Message),
	)
	return c.HTML(e.Code, body)
}
