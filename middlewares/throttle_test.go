package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waypoint/internal"
	"github.com/dmitrymomot/waypoint/middlewares"
)

func TestThrottle(t *testing.T) {
	t.Parallel()

	okHandler := func(c internal.Context) error { return nil }

	t.Run("allows up to the limit then rejects", func(t *testing.T) {
		t.Parallel()
		handler := middlewares.Throttle(
			middlewares.WithThrottleLimit(3),
			middlewares.WithThrottleWindow(time.Hour),
		)(okHandler)

		for i := 0; i < 3; i++ {
			c, _ := newTestContext(http.MethodGet, "/")
			require.NoError(t, handler(c))
		}

		c, w := newTestContext(http.MethodGet, "/")
		err := handler(c)
		require.Error(t, err)

		httpErr := internal.AsHTTPError(err)
		require.NotNil(t, httpErr)
		require.Equal(t, http.StatusTooManyRequests, httpErr.Code)
		require.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("clients are counted separately", func(t *testing.T) {
		t.Parallel()
		handler := middlewares.Throttle(
			middlewares.WithThrottleLimit(1),
			middlewares.WithThrottleWindow(time.Hour),
		)(okHandler)

		reqFrom := func(addr string) internal.Context {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = addr
			return internal.NewTestContext(w, r)
		}

		require.NoError(t, handler(reqFrom("10.0.0.1:1111")))
		require.NoError(t, handler(reqFrom("10.0.0.2:2222")))
		require.Error(t, handler(reqFrom("10.0.0.1:3333")))
	})

	t.Run("custom key function", func(t *testing.T) {
		t.Parallel()
		handler := middlewares.Throttle(
			middlewares.WithThrottleLimit(1),
			middlewares.WithThrottleWindow(time.Hour),
			middlewares.WithThrottleKeyFunc(func(c internal.Context) string {
				return c.Header("X-API-Key")
			}),
		)(okHandler)

		reqWithKey := func(key string) internal.Context {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("X-API-Key", key)
			return internal.NewTestContext(w, r)
		}

		require.NoError(t, handler(reqWithKey("alpha")))
		require.NoError(t, handler(reqWithKey("beta")))
		require.Error(t, handler(reqWithKey("alpha")))
	})
}
