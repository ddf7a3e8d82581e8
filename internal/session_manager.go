package internal

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/waypoint/pkg/session"
)

// Default session configuration.
const (
	defaultSessionCookieName = "__sid"
	defaultSessionMaxAge     = 86400 * 30 // 30 days
	sessionTokenBytes        = 32
)

// SessionManager handles session lifecycle and cookie management.
// One logical session is owned by one in-flight request; the manager does
// not lock across concurrent requests sharing a session cookie.
type SessionManager struct {
	store      session.Store
	logger     *slog.Logger
	cookieName string
	domain     string
	path       string
	maxAge     int
	sameSite   http.SameSite
	secure     bool
	httpOnly   bool
}

// SessionOption configures the SessionManager.
type SessionOption func(*SessionManager)

// NewSessionManager creates a SessionManager with the given store and options.
func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:      store,
		cookieName: defaultSessionCookieName,
		maxAge:     defaultSessionMaxAge,
		path:       "/",
		httpOnly:   true,
		sameSite:   http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.cookieName = name
		}
	}
}

// WithSessionMaxAge sets the session max age in seconds.
func WithSessionMaxAge(seconds int) SessionOption {
	return func(sm *SessionManager) {
		if seconds > 0 {
			sm.maxAge = seconds
		}
	}
}

// WithSessionDomain sets the session cookie domain.
func WithSessionDomain(domain string) SessionOption {
	return func(sm *SessionManager) {
		sm.domain = domain
	}
}

// WithSessionPath sets the session cookie path. Defaults to "/".
func WithSessionPath(path string) SessionOption {
	return func(sm *SessionManager) {
		if path != "" {
			sm.path = path
		}
	}
}

// WithSessionSecure sets the session cookie Secure flag.
func WithSessionSecure(secure bool) SessionOption {
	return func(sm *SessionManager) {
		sm.secure = secure
	}
}

// WithSessionHTTPOnly sets the session cookie HttpOnly flag.
// Defaults to true.
func WithSessionHTTPOnly(httpOnly bool) SessionOption {
	return func(sm *SessionManager) {
		sm.httpOnly = httpOnly
	}
}

// WithSessionSameSite sets the session cookie SameSite attribute.
// Defaults to SameSiteLaxMode.
func WithSessionSameSite(sameSite http.SameSite) SessionOption {
	return func(sm *SessionManager) {
		sm.sameSite = sameSite
	}
}

// SetLogger injects the application logger.
func (sm *SessionManager) SetLogger(l *slog.Logger) {
	if l != nil {
		sm.logger = l
	}
}

// Load returns the session for the request's cookie token, or a fresh
// session when the cookie is absent, unknown, or expired.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*session.Session, error) {
	c, err := r.Cookie(sm.cookieName)
	if err != nil || c.Value == "" {
		return sm.newSession()
	}

	sess, err := sm.store.Get(ctx, c.Value)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrExpired) {
			return sm.newSession()
		}
		return nil, err
	}

	sess.LastActiveAt = time.Now()
	return sess, nil
}

// Save persists the session and, for new sessions, sets the cookie.
// No-op for sessions with no unsaved changes.
func (sm *SessionManager) Save(ctx context.Context, w http.ResponseWriter, sess *session.Session) error {
	if sess == nil {
		return nil
	}

	if sess.IsNew() {
		if !sess.IsDirty() {
			// Untouched anonymous session: don't persist, don't set a cookie.
			return nil
		}
		http.SetCookie(w, sm.cookie(sess.Token, sm.maxAge))
		if err := sm.store.Create(ctx, sess); err != nil {
			return err
		}
		sess.ClearNew()
		sess.ClearDirty()
		return nil
	}

	if !sess.IsDirty() {
		return nil
	}
	if err := sm.store.Update(ctx, sess); err != nil {
		return err
	}
	sess.ClearDirty()
	return nil
}

// Destroy deletes the session and expires its cookie.
func (sm *SessionManager) Destroy(ctx context.Context, w http.ResponseWriter, sess *session.Session) error {
	if sess == nil {
		return nil
	}
	http.SetCookie(w, sm.cookie("", -1))
	if sess.IsNew() {
		return nil
	}
	return sm.store.Delete(ctx, sess.ID)
}

func (sm *SessionManager) newSession() (*session.Session, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	expiresAt := time.Now().Add(time.Duration(sm.maxAge) * time.Second)
	return session.New(uuid.NewString(), token, expiresAt), nil
}

func (sm *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sm.cookieName,
		Value:    value,
		MaxAge:   maxAge,
		Domain:   sm.domain,
		Path:     sm.path,
		Secure:   sm.secure,
		HttpOnly: sm.httpOnly,
		SameSite: sm.sameSite,
	}
}
