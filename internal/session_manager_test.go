package internal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waypoint/internal"
	"github.com/dmitrymomot/waypoint/pkg/session"
)

func TestSessionManagerLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no cookie yields a fresh session", func(t *testing.T) {
		t.Parallel()
		sm := internal.NewSessionManager(session.NewMemoryStore())
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		sess, err := sm.Load(ctx, r)
		require.NoError(t, err)
		require.True(t, sess.IsNew())
		require.NotEmpty(t, sess.ID)
		require.NotEmpty(t, sess.Token)
	})

	t.Run("unknown token yields a fresh session", func(t *testing.T) {
		t.Parallel()
		sm := internal.NewSessionManager(session.NewMemoryStore())
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "__sid", Value: "stale-token"})

		sess, err := sm.Load(ctx, r)
		require.NoError(t, err)
		require.True(t, sess.IsNew())
	})

	t.Run("valid cookie loads the stored session", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		sm := internal.NewSessionManager(store)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		sess, err := sm.Load(ctx, r)
		require.NoError(t, err)
		sess.SetValue("theme", "dark")
		require.NoError(t, sm.Save(ctx, w, sess))

		r2 := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, ck := range w.Result().Cookies() {
			r2.AddCookie(ck)
		}
		loaded, err := sm.Load(ctx, r2)
		require.NoError(t, err)
		require.False(t, loaded.IsNew())
		require.Equal(t, sess.ID, loaded.ID)
	})

	t.Run("distinct sessions get distinct tokens", func(t *testing.T) {
		t.Parallel()
		sm := internal.NewSessionManager(session.NewMemoryStore())
		s1, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		s2, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		require.NotEqual(t, s1.Token, s2.Token)
		require.NotEqual(t, s1.ID, s2.ID)
	})
}

func TestSessionManagerSave(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("untouched new session is not persisted or cookied", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		sm := internal.NewSessionManager(store)

		sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)

		w := httptest.NewRecorder()
		require.NoError(t, sm.Save(ctx, w, sess))
		require.Empty(t, w.Result().Cookies())

		_, err = store.Get(ctx, sess.Token)
		require.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("dirty new session is created with cookie", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		sm := internal.NewSessionManager(store)

		sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		sess.SetValue("k", "v")

		w := httptest.NewRecorder()
		require.NoError(t, sm.Save(ctx, w, sess))
		require.False(t, sess.IsNew())
		require.False(t, sess.IsDirty())

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, "__sid", cookies[0].Name)
		require.Equal(t, sess.Token, cookies[0].Value)
		require.True(t, cookies[0].HttpOnly)

		_, err = store.Get(ctx, sess.Token)
		require.NoError(t, err)
	})

	t.Run("clean existing session is a no-op", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		sm := internal.NewSessionManager(store)

		sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		sess.SetValue("k", "v")
		require.NoError(t, sm.Save(ctx, httptest.NewRecorder(), sess))

		w := httptest.NewRecorder()
		require.NoError(t, sm.Save(ctx, w, sess))
		require.Empty(t, w.Result().Cookies())
	})

	t.Run("custom cookie options apply", func(t *testing.T) {
		t.Parallel()
		sm := internal.NewSessionManager(session.NewMemoryStore(),
			internal.WithSessionCookieName("sid"),
			internal.WithSessionSecure(true),
			internal.WithSessionSameSite(http.SameSiteStrictMode),
		)

		sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		sess.SetValue("k", "v")

		w := httptest.NewRecorder()
		require.NoError(t, sm.Save(ctx, w, sess))
		ck := w.Result().Cookies()[0]
		require.Equal(t, "sid", ck.Name)
		require.True(t, ck.Secure)
		require.Equal(t, http.SameSiteStrictMode, ck.SameSite)
	})
}

func TestSessionManagerDestroy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("removes the session and expires the cookie", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		sm := internal.NewSessionManager(store)

		sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		sess.SetValue("k", "v")
		require.NoError(t, sm.Save(ctx, httptest.NewRecorder(), sess))

		w := httptest.NewRecorder()
		require.NoError(t, sm.Destroy(ctx, w, sess))

		ck := w.Result().Cookies()[0]
		require.Equal(t, -1, ck.MaxAge)
		require.Empty(t, ck.Value)

		_, err = store.Get(ctx, sess.Token)
		require.ErrorIs(t, err, session.ErrNotFound)
	})
}
