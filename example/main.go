// Package main demonstrates core waypoint features in a single-file
// example: ordered routing, groups with alias middleware, sessions with
// CSRF protection, and reverse URL generation. No external services
// required (sessions use the in-memory store).
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dmitrymomot/waypoint"
	"github.com/dmitrymomot/waypoint/middlewares"
	"github.com/dmitrymomot/waypoint/pkg/logger"
	"github.com/dmitrymomot/waypoint/pkg/session"
)

func main() {
	slog := logger.New().With("app", "example")

	app := waypoint.New(
		waypoint.WithCustomLogger(slog),
		waypoint.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
		),
		waypoint.WithSession(session.NewMemoryStore()),
		waypoint.WithCSRF(waypoint.WithCSRFExclude("/webhooks/*")),
		waypoint.WithHandlers(
			&pagesHandler{},
			&accountHandler{},
		),
		waypoint.WithNotFoundHandler(handleNotFound),
	)

	slog.Info("starting server", "addr", ":8080")

	if err := app.Run(
		":8080",
		waypoint.ShutdownTimeout(10*time.Second),
	); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// --- Pages ---

// pagesHandler demonstrates routing patterns and URL generation.
type pagesHandler struct{}

func (h *pagesHandler) Routes(r *waypoint.Router) {
	r.GET("/", h.home).Name("home")
	r.GET("/hello/{name}", h.helloName).Name("hello")
	// Optional placeholder: /posts lists, /posts/my-slug shows.
	r.GET("/posts/{slug?}", h.posts).Name("posts")
	r.Redirect("/index", "/", 0)
	r.POST("/webhooks/ping", h.webhook)
}

func (h *pagesHandler) home(c waypoint.Context) error {
	return c.String(http.StatusOK, "Welcome to waypoint!")
}

func (h *pagesHandler) helloName(c waypoint.Context) error {
	return c.String(http.StatusOK, fmt.Sprintf("Hello, %s!", c.Param("name")))
}

func (h *pagesHandler) posts(c waypoint.Context) error {
	if slug := c.Param("slug"); slug != "" {
		return c.String(http.StatusOK, "post: "+slug)
	}
	return c.String(http.StatusOK, "all posts")
}

// webhook is CSRF-excluded via the /webhooks/* pattern.
func (h *pagesHandler) webhook(c waypoint.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "received"})
}

// --- Account ---

// accountHandler demonstrates sessions, flash messages, and the stock
// "auth"/"guest" middleware aliases.
type accountHandler struct{}

func (h *accountHandler) Routes(r *waypoint.Router) {
	r.GET("/login", h.showLogin, "guest").Name("login")
	r.POST("/login", h.handleLogin, "guest")
	r.POST("/logout", h.handleLogout, "auth")

	r.Group(waypoint.GroupConfig{
		Prefix:     "/account",
		Middleware: []any{"auth"},
	}, func(r *waypoint.Router) {
		r.GET("/", h.profile).Name("account.profile")
	})
}

func (h *accountHandler) showLogin(c waypoint.Context) error {
	token, err := c.CSRFToken()
	if err != nil {
		return err
	}
	form := fmt.Sprintf(`<form method="post" action="/login">
	<input type="hidden" name="_token" value="%s">
	<input name="username">
	<button>Sign in</button>
</form>`, token)
	return c.HTML(http.StatusOK, form)
}

func (h *accountHandler) handleLogin(c waypoint.Context) error {
	username := c.Form("username")
	if username == "" {
		return waypoint.ErrBadRequest("username is required")
	}

	sess, err := c.Session()
	if err != nil {
		return err
	}
	sess.Authenticate(username)
	sess.Flash("notice", "Welcome back, "+username)

	return c.Redirect(http.StatusFound, "/account")
}

func (h *accountHandler) handleLogout(c waypoint.Context) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	sess.UserID = nil
	sess.DeleteValue("_csrf")
	return c.Redirect(http.StatusFound, "/")
}

func (h *accountHandler) profile(c waypoint.Context) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}

	greeting := "Your account"
	if notice, ok := sess.PopFlash("notice"); ok {
		greeting = fmt.Sprint(notice)
	}
	return c.String(http.StatusOK, greeting)
}

// handleNotFound handles requests to unknown routes.
func handleNotFound(c waypoint.Context) error {
	return c.JSON(http.StatusNotFound, map[string]string{
		"error": "not found",
	})
}
