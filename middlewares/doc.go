// Package middlewares provides HTTP middleware for waypoint applications.
//
// The middlewares cover the usual cross-cutting concerns: request IDs,
// panic recovery, CORS, request timeouts, rate limiting, JWT
// authentication, and session-based auth gates.
//
// # Recommended Middleware Order
//
//	waypoint.WithMiddleware(
//	    middlewares.CORS(),       // First: handle preflight before other processing
//	    middlewares.RequestID(),  // Second: assign ID for all subsequent logging
//	    middlewares.Recover(),    // Third: catch panics from timeout and handlers
//	    middlewares.Timeout(5*time.Second), // Fourth: enforce timeout
//	)
//
// # Complete Example
//
//	import (
//	    "github.com/dmitrymomot/waypoint"
//	    "github.com/dmitrymomot/waypoint/middlewares"
//	)
//
//	app := waypoint.New(
//	    waypoint.WithLogger("api", middlewares.RequestIDExtractor()),
//	    waypoint.WithMiddleware(
//	        middlewares.CORS(),
//	        middlewares.RequestID(),
//	        middlewares.Recover(),
//	        middlewares.Timeout(5*time.Second),
//	    ),
//	)
package middlewares
