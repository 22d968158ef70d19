// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns s case-folded for caseless comparison.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// ContainsFold reports whether substr is within s, ignoring case.
// An empty substr matches everything.
func ContainsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(Fold(s), Fold(substr))
}

// MatchesAny reports whether term is a case-insensitive substring of any field.
func MatchesAny(term string, fields ...string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	folded := Fold(term)
	for _, f := range fields {
		if strings.Contains(Fold(f), folded) {
			return true
		}
	}
	return false
}
