// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/olegiv/academy-go/internal/model"
)

// ErrMissingID is returned, without any request, for an empty record id.
var ErrMissingID = errors.New("missing id")

// Resource is a REST collection at a fixed path: list, fetch, create,
// replace and delete.
type Resource[T any] struct {
	c    *Client
	path string
	name string
}

// NewResource binds a collection path such as "/courses". name is used in
// error ops ("list courses").
func NewResource[T any](c *Client, path, name string) *Resource[T] {
	return &Resource[T]{c: c, path: "/" + strings.Trim(path, "/"), name: name}
}

func (r *Resource[T]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

func (r *Resource[T]) missingID(op string) error {
	return fmt.Errorf("%s: %w", op, ErrMissingID)
}

// ListAll returns the full collection.
func (r *Resource[T]) ListAll(ctx context.Context) ([]T, error) {
	var items []T
	if err := r.c.do(ctx, "list "+r.name+"s", http.MethodGet, r.path, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// GetByID fetches one record.
func (r *Resource[T]) GetByID(ctx context.Context, id string) (T, error) {
	var item T
	if id == "" {
		return item, r.missingID("get "+r.name)
	}
	err := r.c.do(ctx, "get "+r.name, http.MethodGet, r.itemPath(id), nil, &item)
	return item, err
}

// CreateOne posts a new record and returns the stored version.
func (r *Resource[T]) CreateOne(ctx context.Context, v T) (T, error) {
	var created T
	err := r.c.do(ctx, "create "+r.name, http.MethodPost, r.path, v, &created)
	return created, err
}

// UpdateOne replaces the record with id and returns the stored version.
func (r *Resource[T]) UpdateOne(ctx context.Context, id string, v T) (T, error) {
	var updated T
	if id == "" {
		return updated, r.missingID("update "+r.name)
	}
	err := r.c.do(ctx, "update "+r.name, http.MethodPut, r.itemPath(id), v, &updated)
	return updated, err
}

// DeleteOne removes the record with id.
func (r *Resource[T]) DeleteOne(ctx context.Context, id string) error {
	if id == "" {
		return r.missingID("delete "+r.name)
	}
	return r.c.do(ctx, "delete "+r.name, http.MethodDelete, r.itemPath(id), nil, nil)
}

// Users exposes the read and delete subset of the users collection.
type Users struct {
	r *Resource[model.User]
}

// NewUsers binds the /users collection.
func NewUsers(c *Client) *Users {
	return &Users{r: NewResource[model.User](c, "/users", "user")}
}

func (u *Users) ListAll(ctx context.Context) ([]model.User, error) {
	return u.r.ListAll(ctx)
}

func (u *Users) GetByID(ctx context.Context, id string) (model.User, error) {
	return u.r.GetByID(ctx, id)
}

func (u *Users) DeleteOne(ctx context.Context, id string) error {
	return u.r.DeleteOne(ctx, id)
}

// Services groups the backend collections.
type Services struct {
	Courses *Resource[model.Course]
	Ebooks  *Resource[model.Ebook]
	Users   *Users
	Auth    *Auth
}

// NewServices builds every collection client on c.
func NewServices(c *Client) *Services {
	return &Services{
		Courses: NewResource[model.Course](c, "/courses", "course"),
		Ebooks:  NewResource[model.Ebook](c, "/ebooks", "ebook"),
		Users:   NewUsers(c),
		Auth:    NewAuth(c),
	}
}
