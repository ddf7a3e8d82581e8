package middlewares

import (
	"context"
	"time"

	"github.com/dmitrymomot/waypoint/internal"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// timeoutContextKey is used to store the timeout context.
type timeoutContextKey struct{}

// Timeout returns middleware that enforces a request timeout.
// If the handler does not complete within the timeout, a TimeoutError is
// returned to be handled by the global ErrorHandler.
//
// Note: The handler goroutine continues running after timeout. Use
// GetTimeoutContext and ctx.Done() in long-running operations to detect
// cancellation and terminate early.
func Timeout(timeout time.Duration) internal.Middleware {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			ctx, cancel := context.WithTimeout(c, timeout)
			defer cancel()

			c.Set(timeoutContextKey{}, ctx)

			// The handler runs in its own goroutine so a late completion
			// after cancellation for unrelated reasons is still delivered.
			done := make(chan error, 1)
			go func() {
				done <- next(c)
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					c.LogWarn("request timeout", "timeout", timeout.String())
					return &TimeoutError{Duration: timeout}
				}
				return ctx.Err()
			}
		}
	}
}

// GetTimeoutContext retrieves the timeout context if available.
// This allows handlers to check for cancellation via ctx.Done().
func GetTimeoutContext(c internal.Context) context.Context {
	if v, ok := c.Get(timeoutContextKey{}).(context.Context); ok {
		return v
	}
	return c
}
