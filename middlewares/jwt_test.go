package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waypoint/internal"
	"github.com/dmitrymomot/waypoint/middlewares"
)

var jwtTestSecret = []byte("jwt-test-secret-0123456789abcdef")

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return raw
}

func bearerContext(token string) internal.Context {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return internal.NewTestContext(w, r)
}

func TestJWT(t *testing.T) {
	t.Parallel()

	t.Run("valid token passes with claims", func(t *testing.T) {
		t.Parallel()
		raw := signToken(t, jwtTestSecret, jwt.MapClaims{
			"sub": "user-42",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		var claims jwt.MapClaims
		handler := middlewares.JWT(jwtTestSecret)(func(c internal.Context) error {
			claims = middlewares.GetJWTClaims(c)
			return nil
		})

		require.NoError(t, handler(bearerContext(raw)))
		require.Equal(t, "user-42", claims["sub"])
	})

	t.Run("missing token fails", func(t *testing.T) {
		t.Parallel()
		handler := middlewares.JWT(jwtTestSecret)(func(c internal.Context) error {
			t.Fatal("handler should not run")
			return nil
		})

		err := handler(bearerContext(""))
		httpErr := internal.AsHTTPError(err)
		require.NotNil(t, httpErr)
		require.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("expired token fails", func(t *testing.T) {
		t.Parallel()
		raw := signToken(t, jwtTestSecret, jwt.MapClaims{
			"sub": "user-42",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})

		handler := middlewares.JWT(jwtTestSecret)(func(c internal.Context) error { return nil })

		err := handler(bearerContext(raw))
		httpErr := internal.AsHTTPError(err)
		require.NotNil(t, httpErr)
		require.Equal(t, http.StatusUnauthorized, httpErr.Code)
		require.Equal(t, "token expired", httpErr.Message)
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		t.Parallel()
		raw := signToken(t, []byte("another-secret-0123456789abcdef0"), jwt.MapClaims{
			"sub": "user-42",
		})

		handler := middlewares.JWT(jwtTestSecret)(func(c internal.Context) error { return nil })

		err := handler(bearerContext(raw))
		httpErr := internal.AsHTTPError(err)
		require.NotNil(t, httpErr)
		require.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("unexpected signing method fails", func(t *testing.T) {
		t.Parallel()
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
			"sub": "user-42",
		}).SignedString(jwtTestSecret)
		require.NoError(t, err)

		handler := middlewares.JWT(jwtTestSecret)(func(c internal.Context) error { return nil })

		err = handler(bearerContext(raw))
		httpErr := internal.AsHTTPError(err)
		require.NotNil(t, httpErr)
		require.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("custom extractor", func(t *testing.T) {
		t.Parallel()
		raw := signToken(t, jwtTestSecret, jwt.MapClaims{"sub": "user-42"})

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/?token="+raw, nil)
		c := internal.NewTestContext(w, r)

		handler := middlewares.JWT(jwtTestSecret,
			middlewares.WithJWTExtractor(func(c internal.Context) string {
				return c.Query("token")
			}),
		)(func(c internal.Context) error { return nil })

		require.NoError(t, handler(c))
	})

	t.Run("claims empty without middleware", func(t *testing.T) {
		t.Parallel()
		require.Nil(t, middlewares.GetJWTClaims(bearerContext("")))
	})
}
