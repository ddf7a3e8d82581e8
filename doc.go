// Package waypoint provides a Laravel-flavored HTTP router and request
// pipeline for Go web applications.
//
// Routes are registered against an ordered table and matched first-come
// first-served: the first registered route whose method and pattern
// accept the request wins, and later overlapping routes are never
// consulted. Path templates support required ({name}) and optional
// ({name?}) placeholders, groups scope prefixes and middleware, and
// named routes drive reverse URL generation.
//
// # Quick Start
//
// Create an application with waypoint.New(), configure it with options,
// and call Run() to start the HTTP server:
//
//	app := waypoint.New(
//	    waypoint.WithLogger("web"),
//	    waypoint.WithHandlers(
//	        handlers.NewAuth(repo),
//	        handlers.NewPages(repo),
//	    ),
//	)
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Handlers
//
// Handlers implement the [Handler] interface to declare routes:
//
//	type AuthHandler struct {
//	    repo *repository.Queries
//	}
//
//	func (h *AuthHandler) Routes(r *waypoint.Router) {
//	    r.GET("/login", h.ShowLogin).Name("login")
//	    r.POST("/login", h.HandleLogin)
//	    r.POST("/logout", h.HandleLogout, "auth")
//	}
//
//	func (h *AuthHandler) ShowLogin(c waypoint.Context) error {
//	    return c.Render(200, "auth/login", nil)
//	}
//
// # Groups
//
// Groups scope a path prefix and middleware over a registration block:
//
//	r.Group(waypoint.GroupConfig{
//	    Prefix:     "/admin",
//	    Middleware: []any{"auth"},
//	}, func(r *waypoint.Router) {
//	    r.GET("/dashboard", h.Dashboard).Name("admin.dashboard")
//	    r.GET("/users/{id}", h.ShowUser).Name("admin.users.show")
//	})
//
// # Middleware
//
// Middleware wraps handlers onion-style: the first entry is outermost.
// Route middleware lists mix concrete values and alias names; the stock
// aliases "auth", "guest", "cors", and "throttle" work out of the box.
//
//	func Logger(log *slog.Logger) waypoint.Middleware {
//	    return func(next waypoint.HandlerFunc) waypoint.HandlerFunc {
//	        return func(c waypoint.Context) error {
//	            start := time.Now()
//	            err := next(c)
//	            log.Info("request",
//	                "method", c.Request().Method,
//	                "path", c.Request().URL.Path,
//	                "duration", time.Since(start),
//	            )
//	            return err
//	        }
//	    }
//	}
//
// # CSRF Protection
//
// Unsafe requests (POST, PUT, PATCH, DELETE) are verified against a
// session-scoped token submitted via the "_token" form field or the
// X-CSRF-Token header. Failures render 419 Page Expired. Webhook-style
// endpoints opt out with exclusion patterns:
//
//	app := waypoint.New(
//	    waypoint.WithSession(store),
//	    waypoint.WithCSRF(waypoint.WithCSRFExclude("/webhooks/*")),
//	)
//
// # URL Generation
//
// Named routes generate URLs back from parameters:
//
//	url, err := app.URL("admin.users.show", map[string]string{"id": "42"})
//	// "/admin/users/42"
package waypoint
