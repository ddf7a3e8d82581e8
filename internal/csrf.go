package internal

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"mime"
	"net/http"
	"strings"

	"github.com/dmitrymomot/waypoint/pkg/session"
)

// Default CSRF configuration.
const (
	DefaultCSRFField  = "_token"
	DefaultCSRFHeader = "X-CSRF-Token"

	defaultCSRFSessionKey = "_csrf"
	csrfTokenBytes        = 32
)

// CSRFGuard issues and verifies the per-session anti-forgery token and
// decides when verification is required. The token is a single secret
// string scoped to the session: created lazily, regenerated only when
// absent, and living exactly as long as the session does.
type CSRFGuard struct {
	field      string
	header     string
	sessionKey string
	exclusions []string
}

// CSRFOption configures the CSRFGuard.
type CSRFOption func(*CSRFGuard)

// WithCSRFField sets the form field checked for a submitted token.
// Defaults to "_token".
func WithCSRFField(name string) CSRFOption {
	return func(g *CSRFGuard) {
		if name != "" {
			g.field = name
		}
	}
}

// WithCSRFHeader sets the request header checked for a submitted token.
// Defaults to "X-CSRF-Token".
func WithCSRFHeader(name string) CSRFOption {
	return func(g *CSRFGuard) {
		if name != "" {
			g.header = name
		}
	}
}

// WithCSRFExclude registers exclusion path patterns. A pattern ending in
// "*" matches any path with that prefix; anything else matches exactly.
func WithCSRFExclude(patterns ...string) CSRFOption {
	return func(g *CSRFGuard) {
		g.exclusions = append(g.exclusions, patterns...)
	}
}

// WithCSRFSessionKey sets the session key the token is stored under.
// Defaults to "_csrf".
func WithCSRFSessionKey(key string) CSRFOption {
	return func(g *CSRFGuard) {
		if key != "" {
			g.sessionKey = key
		}
	}
}

// NewCSRFGuard creates a guard with the given options.
func NewCSRFGuard(opts ...CSRFOption) *CSRFGuard {
	g := &CSRFGuard{
		field:      DefaultCSRFField,
		header:     DefaultCSRFHeader,
		sessionKey: defaultCSRFSessionKey,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Token returns the session's CSRF token, creating and storing one if the
// session does not carry one yet. Idempotent once issued.
func (g *CSRFGuard) Token(c Context) (string, error) {
	sess, err := c.Session()
	if err != nil {
		return "", err
	}

	if token, err := session.Value[string](sess, g.sessionKey); err == nil && token != "" {
		return token, nil
	}

	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	sess.SetValue(g.sessionKey, token)
	return token, nil
}

// SafeMethod reports whether the method is read-only and therefore never
// subject to verification.
func (g *CSRFGuard) SafeMethod(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Except registers additional exclusion path patterns.
func (g *CSRFGuard) Except(patterns ...string) {
	g.exclusions = append(g.exclusions, patterns...)
}

// IsExcluded checks the path against the registered exclusion patterns.
func (g *CSRFGuard) IsExcluded(path string) bool {
	for _, pattern := range g.exclusions {
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
			if strings.HasPrefix(path, prefix) {
				return true
			}
			continue
		}
		if path == pattern {
			return true
		}
	}
	return false
}

// SubmittedToken extracts the token the client sent, form field first,
// then the designated header.
func (g *CSRFGuard) SubmittedToken(c Context) string {
	if token := c.Form(g.field); token != "" {
		return token
	}
	return c.Header(g.header)
}

// Verify reports whether the submitted token is non-empty and equal to
// the session token. The comparison is constant-time. A session without
// an issued token never verifies.
func (g *CSRFGuard) Verify(c Context, submitted string) bool {
	if submitted == "" {
		return false
	}

	sess, err := c.Session()
	if err != nil {
		return false
	}
	stored, err := session.Value[string](sess, g.sessionKey)
	if err != nil || stored == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(submitted), []byte(stored)) == 1
}

// ShouldValidate decides whether verification must run for the request.
// Safe methods and excluded paths bypass entirely. For unsafe methods,
// verification runs when a token was submitted, or when the request looks
// like a form submission coming from another origin: in that case the
// missing token is exactly what verification should reject.
//
// The cross-origin check is substring containment of the request host in
// the Origin (or Referer) value, not strict origin equality. Deliberate:
// it tolerates subdomain setups that a strict comparison would reject.
func (g *CSRFGuard) ShouldValidate(c Context) bool {
	r := c.Request()
	if g.SafeMethod(r.Method) {
		return false
	}
	if g.IsExcluded(r.URL.Path) {
		return false
	}
	if g.SubmittedToken(c) != "" {
		return true
	}

	if !isFormContentType(r.Header.Get("Content-Type")) {
		return false
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = r.Header.Get("Referer")
	}
	if origin == "" {
		return false
	}
	return !strings.Contains(origin, r.Host)
}

func isFormContentType(ct string) bool {
	if ct == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data"
}
