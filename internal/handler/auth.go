// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/academy-go/internal/api"
	"github.com/olegiv/academy-go/internal/editor"
	"github.com/olegiv/academy-go/internal/middleware"
	"github.com/olegiv/academy-go/internal/model"
	"github.com/olegiv/academy-go/internal/render"
	"github.com/olegiv/academy-go/internal/session"
)

// lowAttemptsWarning is the remaining-attempts count from which a failed
// login tells the user how close the lockout is.
const lowAttemptsWarning = 2

// Authenticator exchanges credentials for a session record.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (model.Session, error)
	Register(ctx context.Context, name, email, password string) (model.Session, error)
}

// AuthHandler handles authentication routes.
type AuthHandler struct {
	auth            Authenticator
	sessions        *session.Store
	renderer        *render.Renderer
	notifier        *session.Notifier
	loginProtection *middleware.LoginProtection
	validator       *editor.Validator
}

// NewAuthHandler creates a new AuthHandler. lp may be nil to disable account lockout.
func NewAuthHandler(auth Authenticator, sessions *session.Store, renderer *render.Renderer,
	notifier *session.Notifier, lp *middleware.LoginProtection, v *editor.Validator) *AuthHandler {
	return &AuthHandler{
		auth:            auth,
		sessions:        sessions,
		renderer:        renderer,
		notifier:        notifier,
		loginProtection: lp,
		validator:       v,
	}
}

// LoginInput is the login form.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupInput is the signup form.
type SignupInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, tmplLogin, render.TemplateData{
		Title: "Log in",
		Data:  LoginInput{},
	})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	input := LoginInput{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	if errs := h.validator.Check(input); errs != nil {
		h.renderLogin(w, r, http.StatusUnprocessableEntity, input, errs, "")
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(input.Email); locked {
			slog.Warn("login attempt on locked account", "email", input.Email, "category", model.EventCategoryAuth)
			h.renderLogin(w, r, http.StatusTooManyRequests, input, nil, lockedMessage(remaining))
			return
		}
	}

	rec, err := h.auth.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		status, msg := authFailure(err, http.StatusUnauthorized)
		if status == http.StatusUnauthorized && h.loginProtection != nil {
			if locked, d := h.loginProtection.RecordFailedAttempt(input.Email); locked {
				msg = lockedMessage(d)
			} else if left := h.loginProtection.GetRemainingAttempts(input.Email); left <= lowAttemptsWarning {
				msg = fmt.Sprintf("%s (%d attempts left)", msg, left)
			}
		}
		slog.Warn("login failed", "email", input.Email, "error", err, "category", model.EventCategoryAuth)
		h.renderLogin(w, r, status, input, nil, msg)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(input.Email)
	}
	h.startSession(w, r, rec)
}

// SignupForm renders the signup page.
func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, tmplSignup, render.TemplateData{
		Title: "Sign up",
		Data:  SignupInput{},
	})
}

// Signup handles the signup form submission.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteSignup) {
		return
	}

	input := SignupInput{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	if errs := h.validator.Check(input); errs != nil {
		h.renderSignup(w, r, http.StatusUnprocessableEntity, input, errs, "")
		return
	}

	rec, err := h.auth.Register(r.Context(), input.Name, input.Email, input.Password)
	if err != nil {
		status, msg := authFailure(err, http.StatusUnprocessableEntity)
		slog.Warn("signup failed", "email", input.Email, "error", err, "category", model.EventCategoryAuth)
		h.renderSignup(w, r, status, input, nil, msg)
		return
	}

	h.startSession(w, r, rec)
}

// Logout clears the session and tells other tabs about it.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	rec := middleware.GetSession(r)

	if err := h.sessions.Clear(r.Context()); err != nil {
		slog.Error("failed to clear session", "error", err)
	}

	if rec != nil {
		h.publish(r.Context(), session.EventLogout, rec.User.ID.String())
		slog.Info("user logged out", "user_id", rec.User.ID, "category", model.EventCategoryAuth)
	}

	http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
}

// startSession persists rec and redirects by role: admins to the console,
// everyone else to the home page.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, rec model.Session) {
	if err := h.sessions.Save(r.Context(), rec); err != nil {
		logAndInternalError(w, "failed to save session", "error", err)
		return
	}

	h.publish(r.Context(), session.EventLogin, rec.User.ID.String())
	slog.Info("user logged in", "user_id", rec.User.ID, "role", rec.User.Role)

	if rec.IsAdmin() {
		http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
}

func (h *AuthHandler) publish(ctx context.Context, kind session.EventKind, userID string) {
	if h.notifier == nil {
		return
	}
	ev := session.Event{Kind: kind, UserID: userID, At: time.Now().UTC()}
	if err := h.notifier.Publish(ctx, ev); err != nil {
		slog.Warn("failed to publish session event", "kind", kind, "error", err)
	}
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, input LoginInput, errs editor.ValidationErrors, msg string) {
	input.Password = ""
	data := render.TemplateData{Title: "Log in", Data: input, Errors: errs}
	if msg != "" {
		data.Flash, data.FlashType = msg, render.FlashError
	}
	renderStatus(w, r, h.renderer, status, tmplLogin, data)
}

func (h *AuthHandler) renderSignup(w http.ResponseWriter, r *http.Request, status int, input SignupInput, errs editor.ValidationErrors, msg string) {
	input.Password = ""
	data := render.TemplateData{Title: "Sign up", Data: input, Errors: errs}
	if msg != "" {
		data.Flash, data.FlashType = msg, render.FlashError
	}
	renderStatus(w, r, h.renderer, status, tmplSignup, data)
}

// authFailure maps an auth error to a status and message. Rejections by the
// backend (4xx) use rejected and keep the backend's wording.
func authFailure(err error, rejected int) (int, string) {
	reqErr, ok := api.AsRequestError(err)
	switch {
	case !ok:
		return http.StatusBadGateway, "Something went wrong. Please try again."
	case reqErr.IsTransport():
		return http.StatusBadGateway, api.MsgNetworkError
	case reqErr.StatusCode >= 400 && reqErr.StatusCode < 500:
		return rejected, reqErr.Message
	default:
		return http.StatusBadGateway, "Something went wrong. Please try again."
	}
}

func lockedMessage(d time.Duration) string {
	return fmt.Sprintf("Too many failed attempts. Try again in %s.", d.Round(time.Second))
}
