package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waypoint/internal"
)

func TestResponseWriter(t *testing.T) {
	t.Parallel()

	t.Run("tracks status and size", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		w := internal.NewResponseWriter(rec)

		w.WriteHeader(http.StatusCreated)
		n, err := w.Write([]byte("hello"))
		require.NoError(t, err)
		require.Equal(t, 5, n)

		require.True(t, w.Written())
		require.Equal(t, http.StatusCreated, w.Status())
		require.Equal(t, int64(5), w.Size())
		require.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("defaults to 200 on bare write", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		w := internal.NewResponseWriter(rec)

		_, err := w.Write([]byte("ok"))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, w.Status())
	})

	t.Run("second WriteHeader is ignored", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		w := internal.NewResponseWriter(rec)

		w.WriteHeader(http.StatusNotFound)
		w.WriteHeader(http.StatusOK)
		require.Equal(t, http.StatusNotFound, w.Status())
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("hooks run before the first write", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		w := internal.NewResponseWriter(rec)

		var order []string
		w.OnBeforeWrite(func() {
			order = append(order, "hook")
			// Headers are still mutable here.
			w.Header().Set("X-Hooked", "yes")
		})

		_, err := w.Write([]byte("body"))
		require.NoError(t, err)
		order = append(order, "written")

		require.Equal(t, []string{"hook", "written"}, order)
		require.Equal(t, "yes", rec.Header().Get("X-Hooked"))
	})

	t.Run("hooks run once", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		w := internal.NewResponseWriter(rec)

		count := 0
		w.OnBeforeWrite(func() { count++ })

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("a"))
		_, _ = w.Write([]byte("b"))
		require.Equal(t, 1, count)
		require.Equal(t, int64(2), w.Size())
	})

	t.Run("not written until first write", func(t *testing.T) {
		t.Parallel()
		w := internal.NewResponseWriter(httptest.NewRecorder())
		require.False(t, w.Written())
		require.Equal(t, http.StatusOK, w.Status())
	})
}
