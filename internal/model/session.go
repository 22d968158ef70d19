// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Session is the record returned by a successful login or registration
// and persisted for the browser until logout.
type Session struct {
	AccessToken string      `json:"accessToken"`
	User        SessionUser `json:"user"`
}

// SessionUser is the identity embedded in a Session.
type SessionUser struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// IsAdmin returns true if the session belongs to an admin.
func (s *Session) IsAdmin() bool {
	return s != nil && s.User.Role == RoleAdmin
}

// HasRole reports whether the session user's role is one of roles.
func (s *Session) HasRole(roles ...string) bool {
	if s == nil {
		return false
	}
	for _, r := range roles {
		if s.User.Role == r {
			return true
		}
	}
	return false
}
