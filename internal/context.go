package internal

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/waypoint/pkg/cookie"
	"github.com/dmitrymomot/waypoint/pkg/session"
)

// ViewRenderer writes a named view for a data map. The view registry in
// pkg/view satisfies it; anything else that can render by name works too.
type ViewRenderer interface {
	Render(ctx context.Context, w io.Writer, name string, data map[string]any) error
}

// Context is the per-request interface handlers receive. It wraps the
// request and response, exposes route parameters, and provides helpers
// for rendering, cookies, sessions, and logging.
type Context interface {
	context.Context

	// Request returns the underlying HTTP request.
	Request() *http.Request

	// Response returns the wrapped response writer.
	Response() *ResponseWriter

	// Param returns a route parameter by name, or "" when absent.
	Param(name string) string

	// Params returns a copy of all route parameters.
	Params() map[string]string

	// Query returns a query string parameter by name.
	Query(name string) string

	// QueryDefault returns a query string parameter or a fallback.
	QueryDefault(name, def string) string

	// Form returns a form value by name, parsing the body on first use.
	Form(name string) string

	// Header returns a request header by name.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// JSON writes a JSON response with the given status code.
	JSON(code int, v any) error

	// String writes a plain text response.
	String(code int, s string) error

	// HTML writes an HTML response.
	HTML(code int, html string) error

	// NoContent writes a response with no body.
	NoContent(code int) error

	// Redirect sends a redirect to the given URL.
	Redirect(code int, url string) error

	// Render writes a registered view with the given status code.
	Render(code int, name string, data map[string]any) error

	// WantsJSON reports whether the client prefers a JSON response.
	WantsJSON() bool

	// Written reports whether a response has already been sent.
	Written() bool

	// Error builds an HTTPError carrying the request ID when available.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Logger returns the request-scoped logger.
	Logger() *slog.Logger

	LogDebug(msg string, args ...any)
	LogInfo(msg string, args ...any)
	LogWarn(msg string, args ...any)
	LogError(msg string, args ...any)

	// Set stores a value in the request context.
	Set(key, value any)

	// Get retrieves a value from the request context.
	Get(key any) any

	// Cookie returns a request cookie value by name.
	Cookie(name string) (string, error)

	// SetCookie sets a response cookie.
	SetCookie(name, value string, maxAge int)

	// DeleteCookie expires a cookie.
	DeleteCookie(name string)

	// SignedCookie returns a cookie value after verifying its signature.
	SignedCookie(name string) (string, error)

	// SetSignedCookie sets an HMAC-signed cookie.
	SetSignedCookie(name, value string, maxAge int) error

	// Session returns the request session, loading it on first use.
	Session() (*session.Session, error)

	// CSRFToken returns the session's anti-forgery token, issuing one
	// when the session has none.
	CSRFToken() (string, error)

	// IsAuthenticated reports whether the session carries a user ID.
	IsAuthenticated() bool
}

type ctx struct {
	w        *ResponseWriter
	r        *http.Request
	logger   *slog.Logger
	cookies  *cookie.Manager
	sessions *SessionManager
	views    ViewRenderer
	csrf     *CSRFGuard
	params   map[string]string

	sess       *session.Session
	sessErr    error
	sessLoaded bool
}

func newContext(w *ResponseWriter, r *http.Request, app *App, params map[string]string) *ctx {
	return &ctx{
		w:        w,
		r:        r,
		logger:   app.logger,
		cookies:  app.cookies,
		sessions: app.sessions,
		views:    app.views,
		csrf:     app.csrf,
		params:   params,
	}
}

// context.Context is satisfied by delegating to the request context so
// cancellation and deadlines propagate into handlers transparently.

func (c *ctx) Deadline() (time.Time, bool) { return c.r.Context().Deadline() }
func (c *ctx) Done() <-chan struct{}       { return c.r.Context().Done() }
func (c *ctx) Err() error                  { return c.r.Context().Err() }
func (c *ctx) Value(key any) any           { return c.r.Context().Value(key) }

func (c *ctx) Request() *http.Request    { return c.r }
func (c *ctx) Response() *ResponseWriter { return c.w }

func (c *ctx) Param(name string) string {
	return c.params[name]
}

func (c *ctx) Params() map[string]string {
	out := make(map[string]string, len(c.params))
	for k, v := range c.params {
		out[k] = v
	}
	return out
}

func (c *ctx) Query(name string) string {
	return c.r.URL.Query().Get(name)
}

func (c *ctx) QueryDefault(name, def string) string {
	if v := c.r.URL.Query().Get(name); v != "" {
		return v
	}
	return def
}

func (c *ctx) Form(name string) string {
	if c.r.Form == nil {
		if err := c.r.ParseMultipartForm(maxMultipartMemory); err != nil {
			_ = c.r.ParseForm()
		}
	}
	return c.r.FormValue(name)
}

func (c *ctx) Header(name string) string {
	return c.r.Header.Get(name)
}

func (c *ctx) SetHeader(name, value string) {
	c.w.Header().Set(name, value)
}

func (c *ctx) JSON(code int, v any) error {
	c.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.w.WriteHeader(code)
	return json.NewEncoder(c.w).Encode(v)
}

func (c *ctx) String(code int, s string) error {
	c.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.w.WriteHeader(code)
	_, err := io.WriteString(c.w, s)
	return err
}

func (c *ctx) HTML(code int, html string) error {
	c.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.w.WriteHeader(code)
	_, err := io.WriteString(c.w, html)
	return err
}

func (c *ctx) NoContent(code int) error {
	c.w.WriteHeader(code)
	return nil
}

func (c *ctx) Redirect(code int, url string) error {
	http.Redirect(c.w, c.r, url, code)
	return nil
}

func (c *ctx) Render(code int, name string, data map[string]any) error {
	if c.views == nil {
		return ErrInternal("view renderer is not configured")
	}
	c.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.w.WriteHeader(code)
	return c.views.Render(c.r.Context(), c.w, name, data)
}

// WantsJSON checks whether the client prefers a JSON response, either by
// an explicit Accept header or by having sent a JSON body.
func (c *ctx) WantsJSON() bool {
	accept := c.r.Header.Get("Accept")
	if strings.Contains(accept, "application/json") {
		return true
	}
	if strings.Contains(accept, "text/html") {
		return false
	}
	return strings.Contains(c.r.Header.Get("Content-Type"), "application/json")
}

func (c *ctx) Written() bool {
	return c.w.Written()
}

func (c *ctx) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := NewHTTPError(code, message)
	if id, ok := c.Get(requestIDContextKey{}).(string); ok && e.RequestID == "" {
		e.RequestID = id
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (c *ctx) Logger() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

func (c *ctx) LogDebug(msg string, args ...any) {
	c.Logger().DebugContext(c.r.Context(), msg, args...)
}

func (c *ctx) LogInfo(msg string, args ...any) {
	c.Logger().InfoContext(c.r.Context(), msg, args...)
}

func (c *ctx) LogWarn(msg string, args ...any) {
	c.Logger().WarnContext(c.r.Context(), msg, args...)
}

func (c *ctx) LogError(msg string, args ...any) {
	c.Logger().ErrorContext(c.r.Context(), msg, args...)
}

func (c *ctx) Set(key, value any) {
	c.r = c.r.WithContext(context.WithValue(c.r.Context(), key, value))
}

func (c *ctx) Get(key any) any {
	return c.r.Context().Value(key)
}

func (c *ctx) Cookie(name string) (string, error) {
	if c.cookies != nil {
		return c.cookies.Get(c.r, name)
	}
	ck, err := c.r.Cookie(name)
	if err != nil {
		return "", cookie.ErrNotFound
	}
	return ck.Value, nil
}

func (c *ctx) SetCookie(name, value string, maxAge int) {
	if c.cookies != nil {
		c.cookies.Set(c.w, name, value, maxAge)
		return
	}
	http.SetCookie(c.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *ctx) DeleteCookie(name string) {
	c.SetCookie(name, "", -1)
}

func (c *ctx) SignedCookie(name string) (string, error) {
	if c.cookies == nil {
		return "", cookie.ErrNoSecret
	}
	return c.cookies.GetSigned(c.r, name)
}

func (c *ctx) SetSignedCookie(name, value string, maxAge int) error {
	if c.cookies == nil {
		return cookie.ErrNoSecret
	}
	return c.cookies.SetSigned(c.w, name, value, maxAge)
}

// Session loads the request session on first use. The load result is
// cached so repeated calls within one request see the same instance, and
// a save hook is registered so mutations flush before the first write.
func (c *ctx) Session() (*session.Session, error) {
	if c.sessLoaded {
		return c.sess, c.sessErr
	}
	c.sessLoaded = true

	if c.sessions == nil {
		c.sessErr = session.ErrNotConfigured
		return nil, c.sessErr
	}

	c.sess, c.sessErr = c.sessions.Load(c.r.Context(), c.r)
	if c.sessErr != nil {
		return nil, c.sessErr
	}

	c.w.OnBeforeWrite(func() {
		if err := c.sessions.Save(c.r.Context(), c.w.ResponseWriter, c.sess); err != nil {
			c.LogError("failed to save session", "error", err)
		}
	})
	return c.sess, nil
}

func (c *ctx) CSRFToken() (string, error) {
	if c.csrf == nil {
		return "", ErrInternal("csrf guard is not configured")
	}
	return c.csrf.Token(c)
}

func (c *ctx) IsAuthenticated() bool {
	sess, err := c.Session()
	if err != nil {
		return false
	}
	return sess.IsAuthenticated()
}

// finalize flushes session state for requests that never wrote a body.
func (c *ctx) finalize() {
	if c.sessLoaded && c.sessErr == nil && !c.w.Written() {
		if err := c.sessions.Save(c.r.Context(), c.w.ResponseWriter, c.sess); err != nil {
			c.LogError("failed to save session", "error", err)
		}
	}
}

// NewTestContext builds a Context over bare primitives for exercising
// middleware and handlers outside a running App.
func NewTestContext(w http.ResponseWriter, r *http.Request) Context {
	return &ctx{w: NewResponseWriter(w), r: r}
}

// NewTestContextWithSession is NewTestContext with a session manager
// attached so session-dependent code paths can run.
func NewTestContextWithSession(w http.ResponseWriter, r *http.Request, sm *SessionManager) Context {
	return &ctx{w: NewResponseWriter(w), r: r, sessions: sm}
}

const maxMultipartMemory = 32 << 20 // 32 MB

type requestIDContextKey struct{}

// RequestIDContextKey is the context key request ID middleware stores
// the generated ID under.
var RequestIDContextKey = requestIDContextKey{}
