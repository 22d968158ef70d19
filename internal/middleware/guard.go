// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for session loading,
// route guarding, and request protection.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/olegiv/academy-go/internal/model"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeySession     ContextKey = "session"
	ContextKeyRequestPath ContextKey = "request_path"
)

// Redirect targets used by Guard.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// SessionReader returns the stored session record for a request context.
type SessionReader interface {
	Read(ctx context.Context) *model.Session
}

// LoadSession reads the session record once and places it in the request
// context. Handlers and templates read it back with GetSession.
func LoadSession(store SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := store.Read(r.Context())
			if rec == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithSession(r.Context(), rec)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithSession returns a copy of ctx carrying rec.
func WithSession(ctx context.Context, rec *model.Session) context.Context {
	return context.WithValue(ctx, ContextKeySession, rec)
}

// GetSession retrieves the current session record from the request context.
// Returns nil if nobody is signed in.
func GetSession(r *http.Request) *model.Session {
	return SessionFromContext(r.Context())
}

// SessionFromContext is GetSession for code that only holds a context.
func SessionFromContext(ctx context.Context) *model.Session {
	rec, ok := ctx.Value(ContextKeySession).(*model.Session)
	if !ok {
		return nil
	}
	return rec
}

// Decision is the outcome of an access check.
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Decide evaluates access for a session against a set of allowed roles.
// An empty set admits any signed-in user.
func Decide(allowed []string, s *model.Session) Decision {
	if s == nil {
		return RedirectLogin
	}
	if len(allowed) == 0 || s.HasRole(allowed...) {
		return Allow
	}
	return RedirectHome
}

// Guard creates middleware that only lets through sessions whose role is in
// allowed. Anonymous visitors go to the login page, others to home.
func Guard(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := GetSession(r)
			switch Decide(allowed, s) {
			case Allow:
				next.ServeHTTP(w, r)
			case RedirectLogin:
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			default:
				slog.Warn("access denied",
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", s.User.ID.String(),
					"user_role", s.User.Role,
					"allowed_roles", allowed,
					"remote_addr", r.RemoteAddr,
					"category", model.EventCategoryAuth,
				)
				http.Redirect(w, r, HomePath, http.StatusSeeOther)
			}
		})
	}
}

// RequireAdmin is Guard(model.RoleAdmin).
func RequireAdmin() func(http.Handler) http.Handler {
	return Guard(model.RoleAdmin)
}

// RedirectAuthenticated sends signed-in visitors away from pages meant for
// anonymous users, such as the login form.
func RedirectAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s := GetSession(r); s != nil {
			target := HomePath
			if s.IsAdmin() {
				target = "/admin"
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestPath creates middleware that stores the request path in the context.
// This is used by the logging handler to include the URL in error logs.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}
