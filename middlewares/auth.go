package middlewares

import (
	"net/http"

	"github.com/dmitrymomot/waypoint/internal"
)

// AuthConfig configures the session auth middlewares.
type AuthConfig struct {
	// LoginURL is where unauthenticated browser requests are redirected.
	// API clients (WantsJSON) get a 401 instead.
	LoginURL string

	// HomeURL is where authenticated users are redirected by RequireGuest.
	HomeURL string
}

// AuthOption configures AuthConfig.
type AuthOption func(*AuthConfig)

// WithLoginURL sets the redirect target for unauthenticated requests.
func WithLoginURL(url string) AuthOption {
	return func(cfg *AuthConfig) {
		if url != "" {
			cfg.LoginURL = url
		}
	}
}

// WithHomeURL sets the redirect target for RequireGuest rejections.
func WithHomeURL(url string) AuthOption {
	return func(cfg *AuthConfig) {
		if url != "" {
			cfg.HomeURL = url
		}
	}
}

// RequireAuth returns middleware that rejects requests without an
// authenticated session. Browser clients are redirected to the login
// page; JSON clients get 401.
func RequireAuth(opts ...AuthOption) internal.Middleware {
	cfg := &AuthConfig{LoginURL: "/login", HomeURL: "/"}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if c.IsAuthenticated() {
				return next(c)
			}
			if c.WantsJSON() {
				return internal.ErrUnauthorized("authentication required")
			}
			return c.Redirect(http.StatusFound, cfg.LoginURL)
		}
	}
}

// RequireGuest returns middleware that rejects authenticated sessions,
// for login and registration pages that make no sense once signed in.
func RequireGuest(opts ...AuthOption) internal.Middleware {
	cfg := &AuthConfig{LoginURL: "/login", HomeURL: "/"}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if !c.IsAuthenticated() {
				return next(c)
			}
			if c.WantsJSON() {
				return internal.ErrForbidden("already authenticated")
			}
			return c.Redirect(http.StatusFound, cfg.HomeURL)
		}
	}
}
