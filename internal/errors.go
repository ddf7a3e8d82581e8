package internal

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusPageExpired is the status code rendered when CSRF verification
// fails. Not part of the IANA registry but widely understood by clients.
const StatusPageExpired = 419

// ErrRouteNameUnknown is returned by URL generation when no registered
// route carries the requested name.
var ErrRouteNameUnknown = errors.New("waypoint: unknown route name")

// RouteNotFoundError is raised when no registered route matches the
// request method and path. Recoverable: the dispatcher renders 404.
type RouteNotFoundError struct {
	Method string
	Path   string
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("waypoint: no route for %s %s", e.Method, e.Path)
}

// CSRFError is raised when a gated request fails token verification.
// Recoverable: the dispatcher renders 419, as JSON or HTML depending on
// the client's content negotiation.
type CSRFError struct {
	Path string
}

func (e *CSRFError) Error() string {
	return fmt.Sprintf("waypoint: csrf token mismatch on %s", e.Path)
}

// MissingParamError is raised when URL generation is invoked without a
// value for a required placeholder. This is a programming error and is
// surfaced immediately rather than swallowed.
type MissingParamError struct {
	Route string
	Param string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("waypoint: route %q requires parameter %q", e.Route, e.Param)
}

// MiddlewareError is raised when a middleware entry cannot be resolved to
// the Middleware contract: an alias with no registration, or a value of
// the wrong type. Fatal configuration error, never retried.
type MiddlewareError struct {
	Entry any
}

func (e *MiddlewareError) Error() string {
	if name, ok := e.Entry.(string); ok {
		return fmt.Sprintf("waypoint: middleware alias %q is not registered", name)
	}
	return fmt.Sprintf("waypoint: value of type %T does not satisfy the middleware contract", e.Entry)
}

// HandlerResolutionError is raised when a route's handler reference cannot
// be resolved to a callable. Fatal for the request it occurs on.
type HandlerResolutionError struct {
	Detail string
}

func (e *HandlerResolutionError) Error() string {
	return "waypoint: cannot resolve handler: " + e.Detail
}

// HTTPError represents an HTTP error with the data needed for rendering.
// It implements the error interface and carries structured fields for
// error handlers to render pages or JSON payloads.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Message is the user-facing error message.
	Message string

	// ErrorCode is an application-specific error code.
	ErrorCode string

	// RequestID is the request tracking ID.
	RequestID string

	// Code is the HTTP status code.
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	if e.Code == StatusPageExpired {
		return "Page Expired"
	}
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

func WithErrorCode(code string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.ErrorCode = code
	}
}

func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.RequestID = id
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// Convenience constructors for common HTTP errors.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return applyHTTPErrorOpts(NewHTTPError(http.StatusBadRequest, message), opts)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return applyHTTPErrorOpts(NewHTTPError(http.StatusUnauthorized, message), opts)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return applyHTTPErrorOpts(NewHTTPError(http.StatusForbidden, message), opts)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return applyHTTPErrorOpts(NewHTTPError(http.StatusNotFound, message), opts)
}

func ErrPageExpired(message string, opts ...HTTPErrorOption) *HTTPError {
	return applyHTTPErrorOpts(NewHTTPError(StatusPageExpired, message), opts)
}

func ErrTooManyRequests(message string, opts ...HTTPErrorOption) *HTTPError {
	return applyHTTPErrorOpts(NewHTTPError(http.StatusTooManyRequests, message), opts)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return applyHTTPErrorOpts(NewHTTPError(http.StatusInternalServerError, message), opts)
}

func applyHTTPErrorOpts(e *HTTPError, opts []HTTPErrorOption) *HTTPError {
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AsHTTPError extracts the HTTPError from an error if present.
// Returns nil if the error is not an HTTPError.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}
