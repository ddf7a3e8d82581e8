package internal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func appendingMiddleware(log *[]string, label string) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			*log = append(*log, label+":before")
			err := next(c)
			*log = append(*log, label+":after")
			return err
		}
	}
}

func TestBuildChain(t *testing.T) {
	t.Parallel()

	t.Run("first entry is outermost", func(t *testing.T) {
		t.Parallel()
		var log []string
		chain := buildChain([]Middleware{
			appendingMiddleware(&log, "a"),
			appendingMiddleware(&log, "b"),
		}, func(c Context) error {
			log = append(log, "handler")
			return nil
		})

		require.NoError(t, chain(nil))
		require.Equal(t, []string{"a:before", "b:before", "handler", "b:after", "a:after"}, log)
	})

	t.Run("short-circuit skips inner layers", func(t *testing.T) {
		t.Parallel()
		var log []string
		blocker := Middleware(func(next HandlerFunc) HandlerFunc {
			return func(c Context) error {
				log = append(log, "blocked")
				return nil
			}
		})
		chain := buildChain([]Middleware{
			appendingMiddleware(&log, "a"),
			blocker,
			appendingMiddleware(&log, "c"),
		}, func(c Context) error {
			log = append(log, "handler")
			return nil
		})

		require.NoError(t, chain(nil))
		require.Equal(t, []string{"a:before", "blocked", "a:after"}, log)
	})

	t.Run("empty list runs terminal directly", func(t *testing.T) {
		t.Parallel()
		called := false
		chain := buildChain(nil, func(c Context) error {
			called = true
			return nil
		})
		require.NoError(t, chain(nil))
		require.True(t, called)
	})
}

func TestResolveMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("concrete values pass through", func(t *testing.T) {
		t.Parallel()
		r := NewRouter()
		var log []string
		mws, err := r.resolveMiddleware([]any{
			appendingMiddleware(&log, "a"),
			func(next HandlerFunc) HandlerFunc { return next },
		})
		require.NoError(t, err)
		require.Len(t, mws, 2)
	})

	t.Run("alias resolves from the registry", func(t *testing.T) {
		t.Parallel()
		r := NewRouter()
		var log []string
		r.Alias("tag", appendingMiddleware(&log, "tag"))

		mws, err := r.resolveMiddleware([]any{"tag"})
		require.NoError(t, err)
		require.Len(t, mws, 1)

		chain := buildChain(mws, func(c Context) error { return nil })
		require.NoError(t, chain(nil))
		require.Equal(t, []string{"tag:before", "tag:after"}, log)
	})

	t.Run("unregistered alias fails", func(t *testing.T) {
		t.Parallel()
		r := NewRouter()
		_, err := r.resolveMiddleware([]any{"ghost"})
		require.Error(t, err)

		var mwErr *MiddlewareError
		require.ErrorAs(t, err, &mwErr)
		require.Equal(t, "ghost", mwErr.Entry)
	})

	t.Run("wrong type fails", func(t *testing.T) {
		t.Parallel()
		r := NewRouter()
		_, err := r.resolveMiddleware([]any{42})
		require.Error(t, err)

		var mwErr *MiddlewareError
		require.ErrorAs(t, err, &mwErr)
		require.Equal(t, 42, mwErr.Entry)
	})

	t.Run("duplicates run once per occurrence", func(t *testing.T) {
		t.Parallel()
		r := NewRouter()
		var log []string
		r.Alias("tag", appendingMiddleware(&log, "tag"))

		mws, err := r.resolveMiddleware([]any{"tag", "tag"})
		require.NoError(t, err)
		require.Len(t, mws, 2)

		chain := buildChain(mws, func(c Context) error { return nil })
		require.NoError(t, chain(nil))
		require.Equal(t, []string{"tag:before", "tag:before", "tag:after", "tag:after"}, log)
	})
}
