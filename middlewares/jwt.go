package middlewares

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/dmitrymomot/waypoint/internal"
)

// jwtClaimsKey is the context key for storing parsed JWT claims.
type jwtClaimsKey struct{}

// JWTConfig configures the JWT middleware.
type JWTConfig struct {
	// Extract pulls the raw token out of the request.
	// Defaults to the Bearer token from the Authorization header.
	Extract func(c internal.Context) string

	// Method is the expected signing method. Defaults to HS256.
	Method jwt.SigningMethod
}

// JWTOption configures JWTConfig.
type JWTOption func(*JWTConfig)

// WithJWTExtractor sets a custom token extractor.
func WithJWTExtractor(fn func(c internal.Context) string) JWTOption {
	return func(cfg *JWTConfig) {
		if fn != nil {
			cfg.Extract = fn
		}
	}
}

// WithJWTSigningMethod sets the expected signing method.
func WithJWTSigningMethod(m jwt.SigningMethod) JWTOption {
	return func(cfg *JWTConfig) {
		if m != nil {
			cfg.Method = m
		}
	}
}

// JWT returns middleware that extracts a token from the request, verifies
// its signature against the secret, and stores the parsed claims in the
// context. A missing, expired, or tampered token fails with 401.
func JWT(secret []byte, opts ...JWTOption) internal.Middleware {
	cfg := &JWTConfig{
		Extract: bearerToken,
		Method:  jwt.SigningMethodHS256,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			raw := cfg.Extract(c)
			if raw == "" {
				return internal.ErrUnauthorized("missing authentication token")
			}

			claims := jwt.MapClaims{}
			_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
				if t.Method.Alg() != cfg.Method.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return secret, nil
			})
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return internal.ErrUnauthorized("token expired")
				}
				return internal.ErrUnauthorized("invalid token")
			}

			c.Set(jwtClaimsKey{}, claims)
			return next(c)
		}
	}
}

// GetJWTClaims extracts parsed JWT claims from the context.
// Returns nil if the JWT middleware is not applied.
func GetJWTClaims(c internal.Context) jwt.MapClaims {
	if v, ok := c.Get(jwtClaimsKey{}).(jwt.MapClaims); ok {
		return v
	}
	return nil
}

func bearerToken(c internal.Context) string {
	auth := c.Header("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
