package internal

// Handler declares routes on a router.
//
// Example:
//
//	type AuthHandler struct {
//	    repo *repository.Queries
//	}
//
//	func (h *AuthHandler) Routes(r *waypoint.Router) {
//	    r.GET("/login", h.showLogin)
//	    r.POST("/login", h.handleLogin)
//	}
type Handler interface {
	Routes(r *Router)
}

// HandlerFunc is the signature for route handlers.
// It receives a Context and returns an error.
// Returning a non-nil error triggers the application error handler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// Middleware can inspect or modify the request, short-circuit processing
// by not calling next, or wrap the response.
//
// Example:
//
//	func Auth(next waypoint.HandlerFunc) waypoint.HandlerFunc {
//	    return func(c waypoint.Context) error {
//	        if !c.IsAuthenticated() {
//	            return c.Redirect(302, "/login")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error

// MethodHandler references a named method on a receiver as a route
// handler. The method must have the signature func(Context) error.
// Resolution happens lazily on first dispatch and is cached; a missing or
// incompatible method surfaces as a HandlerResolutionError for that
// request.
//
// Example:
//
//	r.GET("/users/{id}", waypoint.MethodHandler{Receiver: users, Method: "Show"})
type MethodHandler struct {
	Receiver any
	Method   string
}
