// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/academy-go/internal/api"
	"github.com/olegiv/academy-go/internal/listing"
	"github.com/olegiv/academy-go/internal/model"
	"github.com/olegiv/academy-go/internal/render"
	"github.com/olegiv/academy-go/internal/util"
)

// UserStore lists, fetches and deletes user accounts.
type UserStore interface {
	listing.Source[model.User]
	GetByID(ctx context.Context, id string) (model.User, error)
}

// UsersHandler handles the admin users list.
type UsersHandler struct {
	users    UserStore
	renderer *render.Renderer
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(users UserStore, renderer *render.Renderer) *UsersHandler {
	return &UsersHandler{
		users:    users,
		renderer: renderer,
	}
}

// List renders all users, filtered by ?q= over name and email.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	list := listing.NewUsers(h.users)
	data := render.TemplateData{Title: "Users"}

	if err := list.Load(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "failed to load user list", "error", err, "category", model.EventCategoryUser)
		data.Flash, data.FlashType = "Failed to load users: "+api.Message(err), render.FlashError
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	data.Data = ListPage[model.User]{
		Rows:  list.Rows(query),
		Query: query,
		Shown: len(list.Filter(query)),
		Total: list.Len(),
	}
	renderPage(w, r, h.renderer, tmplAdminUsers, data)
}

// ConfirmDelete renders the delete confirmation page. Admin accounts are
// refused up front.
func (h *UsersHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireDeletable(w, r)
	if !ok {
		return
	}

	id := user.ID.String()
	renderConfirmDelete(w, r, h.renderer, ConfirmPage{
		Kind:   "user",
		ID:     id,
		Label:  user.Name + " <" + user.Email + ">",
		Action: redirectAdminUsers + "/" + id + RouteSuffixDelete,
		Cancel: redirectAdminUsers,
	})
}

// Delete removes a non-admin user once the confirmation form is posted.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireDeletable(w, r)
	if !ok {
		return
	}
	if !requireConfirmation(w, r, h.renderer, redirectAdminUsers) {
		return
	}

	id := user.ID.String()
	if err := listing.NewUsers(h.users).Delete(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "failed to delete user", "id", id, "error", err, "category", model.EventCategoryUser)
		flashError(w, r, h.renderer, redirectAdminUsers, "Failed to delete user: "+api.Message(err))
		return
	}

	slog.Info("user deleted", "id", id, "email", user.Email)
	flashSuccess(w, r, h.renderer, redirectAdminUsers, "User deleted")
}

// requireDeletable looks the user up and refuses admins. The backend still
// has the final say on the delete itself.
func (h *UsersHandler) requireDeletable(w http.ResponseWriter, r *http.Request) (model.User, bool) {
	id := chi.URLParam(r, "id")
	if !util.IsValidID(id) {
		http.NotFound(w, r)
		return model.User{}, false
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to fetch user", "id", id, "error", err, "category", model.EventCategoryUser)
		flashError(w, r, h.renderer, redirectAdminUsers, "Failed to fetch user: "+api.Message(err))
		return model.User{}, false
	}
	if user.ID == "" {
		user.ID = model.ID(id)
	}

	if user.IsAdmin() {
		slog.Warn("refused to delete admin user", "id", id, "category", model.EventCategoryUser)
		flashError(w, r, h.renderer, redirectAdminUsers, "Admin users cannot be deleted")
		return model.User{}, false
	}
	return user, true
}
