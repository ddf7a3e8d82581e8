package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waypoint/pkg/cookie"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func requestWithCookies(t *testing.T, w *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestPlainCookies(t *testing.T) {
	t.Parallel()

	t.Run("set and get", func(t *testing.T) {
		t.Parallel()
		m := cookie.New()
		w := httptest.NewRecorder()
		m.Set(w, "theme", "dark", 3600)

		got, err := m.Get(requestWithCookies(t, w), "theme")
		require.NoError(t, err)
		require.Equal(t, "dark", got)
	})

	t.Run("missing cookie", func(t *testing.T) {
		t.Parallel()
		m := cookie.New()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		_, err := m.Get(r, "absent")
		require.ErrorIs(t, err, cookie.ErrNotFound)
	})

	t.Run("delete expires the cookie", func(t *testing.T) {
		t.Parallel()
		m := cookie.New()
		w := httptest.NewRecorder()
		m.Delete(w, "theme")

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, -1, cookies[0].MaxAge)
	})

	t.Run("attributes follow options", func(t *testing.T) {
		t.Parallel()
		m := cookie.New(
			cookie.WithDomain("example.com"),
			cookie.WithPath("/app"),
			cookie.WithSecure(true),
			cookie.WithSameSite(http.SameSiteStrictMode),
		)
		w := httptest.NewRecorder()
		m.Set(w, "theme", "dark", 60)

		c := w.Result().Cookies()[0]
		require.Equal(t, "example.com", c.Domain)
		require.Equal(t, "/app", c.Path)
		require.True(t, c.Secure)
		require.Equal(t, http.SameSiteStrictMode, c.SameSite)
	})
}

func TestSignedCookies(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		m := cookie.New(cookie.WithSecret(testSecret))
		w := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(w, "uid", "user-42", 3600))

		got, err := m.GetSigned(requestWithCookies(t, w), "uid")
		require.NoError(t, err)
		require.Equal(t, "user-42", got)
	})

	t.Run("tampered value fails verification", func(t *testing.T) {
		t.Parallel()
		m := cookie.New(cookie.WithSecret(testSecret))
		w := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(w, "uid", "user-42", 3600))

		c := w.Result().Cookies()[0]
		encoded, sig, _ := strings.Cut(c.Value, ".")
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "uid", Value: encoded + "x." + sig})

		_, err := m.GetSigned(r, "uid")
		require.ErrorIs(t, err, cookie.ErrBadSig)
	})

	t.Run("signature from another name fails", func(t *testing.T) {
		t.Parallel()
		m := cookie.New(cookie.WithSecret(testSecret))
		w := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(w, "uid", "user-42", 3600))

		c := w.Result().Cookies()[0]
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "other", Value: c.Value})

		_, err := m.GetSigned(r, "other")
		require.ErrorIs(t, err, cookie.ErrBadSig)
	})

	t.Run("signing requires a secret", func(t *testing.T) {
		t.Parallel()
		m := cookie.New()
		w := httptest.NewRecorder()
		require.ErrorIs(t, m.SetSigned(w, "uid", "user-42", 3600), cookie.ErrNoSecret)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		_, err := m.GetSigned(r, "uid")
		require.ErrorIs(t, err, cookie.ErrNoSecret)
	})

	t.Run("short secret is rejected", func(t *testing.T) {
		t.Parallel()
		m := cookie.New(cookie.WithSecret("too-short"))
		w := httptest.NewRecorder()
		require.ErrorIs(t, m.SetSigned(w, "uid", "user-42", 3600), cookie.ErrNoSecret)
	})
}
