// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/olegiv/academy-go/internal/model"
)

// AvatarBaseURL generates initials avatars for new accounts.
const AvatarBaseURL = "https://ui-avatars.com/api/"

// Auth signs users in and up against the backend.
type Auth struct {
	c *Client
}

// NewAuth creates an Auth client.
func NewAuth(c *Client) *Auth {
	return &Auth{c: c}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
}

// Login exchanges credentials for a session record.
func (a *Auth) Login(ctx context.Context, email, password string) (model.Session, error) {
	return a.authenticate(ctx, "login", "/login", loginRequest{Email: email, Password: password})
}

// Register creates an account and returns its session record.
func (a *Auth) Register(ctx context.Context, name, email, password string) (model.Session, error) {
	return a.authenticate(ctx, "register", "/register", registerRequest{
		Email:    email,
		Password: password,
		Name:     name,
		Avatar:   AvatarURL(name),
	})
}

func (a *Auth) authenticate(ctx context.Context, op, path string, body any) (model.Session, error) {
	var s model.Session
	if err := a.c.do(ctx, op, http.MethodPost, path, body, &s); err != nil {
		return model.Session{}, err
	}
	if s.AccessToken == "" {
		return model.Session{}, &RequestError{
			Op:         op,
			Method:     http.MethodPost,
			Path:       path,
			StatusCode: http.StatusOK,
			Payload:    s,
			Message:    "authentication response is missing an access token",
		}
	}
	return s, nil
}

// AvatarURL returns the ui-avatars.com URL for name with a random background.
func AvatarURL(name string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return AvatarBaseURL + "?name=" + escaped + "&background=random"
}
