package internal_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waypoint/internal"
	"github.com/dmitrymomot/waypoint/pkg/session"
)

func newSessionContext(t *testing.T, r *http.Request) internal.Context {
	t.Helper()
	sm := internal.NewSessionManager(session.NewMemoryStore())
	return internal.NewTestContextWithSession(httptest.NewRecorder(), r, sm)
}

func formRequest(path string, values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestCSRFToken(t *testing.T) {
	t.Parallel()

	t.Run("issues once and is idempotent", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard()
		c := newSessionContext(t, httptest.NewRequest(http.MethodGet, "/", nil))

		first, err := g.Token(c)
		require.NoError(t, err)
		require.NotEmpty(t, first)

		second, err := g.Token(c)
		require.NoError(t, err)
		require.Equal(t, first, second)
	})

	t.Run("distinct sessions get distinct tokens", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard()
		c1 := newSessionContext(t, httptest.NewRequest(http.MethodGet, "/", nil))
		c2 := newSessionContext(t, httptest.NewRequest(http.MethodGet, "/", nil))

		t1, err := g.Token(c1)
		require.NoError(t, err)
		t2, err := g.Token(c2)
		require.NoError(t, err)
		require.NotEqual(t, t1, t2)
	})
}

func TestCSRFSafeMethod(t *testing.T) {
	t.Parallel()

	g := internal.NewCSRFGuard()
	require.True(t, g.SafeMethod(http.MethodGet))
	require.True(t, g.SafeMethod(http.MethodHead))
	require.True(t, g.SafeMethod(http.MethodOptions))
	require.True(t, g.SafeMethod("get"))
	require.False(t, g.SafeMethod(http.MethodPost))
	require.False(t, g.SafeMethod(http.MethodPut))
	require.False(t, g.SafeMethod(http.MethodPatch))
	require.False(t, g.SafeMethod(http.MethodDelete))
}

func TestCSRFExclusions(t *testing.T) {
	t.Parallel()

	t.Run("exact match", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard(internal.WithCSRFExclude("/health"))
		require.True(t, g.IsExcluded("/health"))
		require.False(t, g.IsExcluded("/healthz"))
		require.False(t, g.IsExcluded("/health/live"))
	})

	t.Run("trailing star is a prefix match", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard(internal.WithCSRFExclude("/webhooks/*"))
		require.True(t, g.IsExcluded("/webhooks/stripe"))
		require.True(t, g.IsExcluded("/webhooks/"))
		require.False(t, g.IsExcluded("/webhook"))
	})

	t.Run("Except appends at runtime", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard()
		require.False(t, g.IsExcluded("/api/ingest"))
		g.Except("/api/*")
		require.True(t, g.IsExcluded("/api/ingest"))
	})
}

func TestCSRFSubmittedToken(t *testing.T) {
	t.Parallel()

	t.Run("form field wins over header", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard()
		r := formRequest("/submit", url.Values{"_token": {"from-form"}})
		r.Header.Set("X-CSRF-Token", "from-header")
		c := newSessionContext(t, r)

		require.Equal(t, "from-form", g.SubmittedToken(c))
	})

	t.Run("header is the fallback", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard()
		r := httptest.NewRequest(http.MethodPost, "/submit", nil)
		r.Header.Set("X-CSRF-Token", "from-header")
		c := newSessionContext(t, r)

		require.Equal(t, "from-header", g.SubmittedToken(c))
	})

	t.Run("custom field and header names", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard(
			internal.WithCSRFField("csrf"),
			internal.WithCSRFHeader("X-XSRF-Token"),
		)
		r := httptest.NewRequest(http.MethodPost, "/submit", nil)
		r.Header.Set("X-XSRF-Token", "custom")
		c := newSessionContext(t, r)

		require.Equal(t, "custom", g.SubmittedToken(c))
	})
}

func TestCSRFVerify(t *testing.T) {
	t.Parallel()

	t.Run("matching token verifies", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard()
		c := newSessionContext(t, httptest.NewRequest(http.MethodPost, "/submit", nil))

		token, err := g.Token(c)
		require.NoError(t, err)
		require.True(t, g.Verify(c, token))
	})

	t.Run("mismatched token fails", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard()
		c := newSessionContext(t, httptest.NewRequest(http.MethodPost, "/submit", nil))

		_, err := g.Token(c)
		require.NoError(t, err)
		require.False(t, g.Verify(c, "forged"))
	})

	t.Run("empty submission fails", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard()
		c := newSessionContext(t, httptest.NewRequest(http.MethodPost, "/submit", nil))

		_, err := g.Token(c)
		require.NoError(t, err)
		require.False(t, g.Verify(c, ""))
	})

	t.Run("session without issued token fails", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard()
		c := newSessionContext(t, httptest.NewRequest(http.MethodPost, "/submit", nil))
		require.False(t, g.Verify(c, "anything"))
	})
}

func TestCSRFShouldValidate(t *testing.T) {
	t.Parallel()

	t.Run("safe methods never validate", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard()
		r := httptest.NewRequest(http.MethodGet, "/page", nil)
		r.Header.Set("Origin", "https://evil.test")
		c := newSessionContext(t, r)
		require.False(t, g.ShouldValidate(c))
	})

	t.Run("excluded paths never validate", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard(internal.WithCSRFExclude("/webhooks/*"))
		r := formRequest("/webhooks/stripe", url.Values{"_token": {"anything"}})
		c := newSessionContext(t, r)
		require.False(t, g.ShouldValidate(c))
	})

	t.Run("submitted token forces validation", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard()
		r := httptest.NewRequest(http.MethodDelete, "/resource/1", nil)
		r.Header.Set("X-CSRF-Token", "anything")
		c := newSessionContext(t, r)
		require.True(t, g.ShouldValidate(c))
	})

	t.Run("cross-origin form without token validates", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard()
		r := formRequest("/submit", url.Values{})
		r.Host = "example.com"
		r.Header.Set("Origin", "https://evil.test")
		c := newSessionContext(t, r)
		require.True(t, g.ShouldValidate(c))
	})

	t.Run("same-host form without token skips", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard()
		r := formRequest("/submit", url.Values{})
		r.Host = "example.com"
		r.Header.Set("Origin", "https://example.com")
		c := newSessionContext(t, r)
		require.False(t, g.ShouldValidate(c))
	})

	t.Run("subdomain origin containing host skips", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard()
		r := formRequest("/submit", url.Values{})
		r.Host = "example.com"
		r.Header.Set("Origin", "https://app.example.com")
		c := newSessionContext(t, r)
		require.False(t, g.ShouldValidate(c))
	})

	t.Run("referer stands in for missing origin", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard()
		r := formRequest("/submit", url.Values{})
		r.Host = "example.com"
		r.Header.Set("Referer", "https://evil.test/page")
		c := newSessionContext(t, r)
		require.True(t, g.ShouldValidate(c))
	})

	t.Run("no origin or referer skips", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard()
		r := formRequest("/submit", url.Values{})
		c := newSessionContext(t, r)
		require.False(t, g.ShouldValidate(c))
	})

	t.Run("json body without token skips", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard()
		r := httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader("{}"))
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set("Origin", "https://evil.test")
		c := newSessionContext(t, r)
		require.False(t, g.ShouldValidate(c))
	})

	t.Run("multipart form counts as form content type", func(t *testing.T) {
		t.Parallel()
		g := internal.NewCSRFGuard()
		r := httptest.NewRequest(http.MethodPost, "/upload", nil)
		r.Host = "example.com"
		r.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
		r.Header.Set("Origin", "https://evil.test")
		c := newSessionContext(t, r)
		require.True(t, g.ShouldValidate(c))
	})
}
