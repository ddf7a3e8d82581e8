package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waypoint/pkg/session"
)

func TestFlash(t *testing.T) {
	t.Parallel()

	newSession := func() *session.Session {
		return session.New("id-1", "tok-1", time.Now().Add(time.Hour))
	}

	t.Run("pop consumes the message", func(t *testing.T) {
		t.Parallel()
		s := newSession()
		s.Flash("notice", "saved")

		val, ok := s.PopFlash("notice")
		require.True(t, ok)
		require.Equal(t, "saved", val)

		_, ok = s.PopFlash("notice")
		require.False(t, ok)
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()
		s := newSession()
		_, ok := s.PopFlash("nothing")
		require.False(t, ok)
	})

	t.Run("overwrite replaces the value", func(t *testing.T) {
		t.Parallel()
		s := newSession()
		s.Flash("notice", "first")
		s.Flash("notice", "second")

		val, ok := s.PopFlash("notice")
		require.True(t, ok)
		require.Equal(t, "second", val)
	})

	t.Run("flashes drains everything", func(t *testing.T) {
		t.Parallel()
		s := newSession()
		s.Flash("notice", "saved")
		s.Flash("error", "failed")

		all := s.Flashes()
		require.Len(t, all, 2)
		require.Equal(t, "saved", all["notice"])
		require.Equal(t, "failed", all["error"])
		require.Nil(t, s.Flashes())
	})

	t.Run("flash marks the session dirty", func(t *testing.T) {
		t.Parallel()
		s := newSession()
		s.ClearDirty()
		s.Flash("notice", "saved")
		require.True(t, s.IsDirty())
	})
}
