// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

// MaxIDLength bounds identifiers accepted from route parameters.
const MaxIDLength = 64

// IsValidID checks that a route identifier is safe to place in a backend
// path segment: ASCII letters, digits, hyphens and underscores only.
func IsValidID(s string) bool {
	if s == "" || len(s) > MaxIDLength {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_') {
			return false
		}
	}
	return true
}
