// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the records exchanged with the backend API
// including Session, User, Course and Ebook.
package model

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account as listed in the admin console.
type User struct {
	ID     ID     `json:"id,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayRole returns the role, treating an empty role as a regular user.
func (u *User) DisplayRole() string {
	if u.Role == "" {
		return RoleUser
	}
	return u.Role
}
