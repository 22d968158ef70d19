// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"
)

func TestIDUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ID
	}{
		{"string", `{"id":"a1b2"}`, "a1b2"},
		{"number", `{"id":42}`, "42"},
		{"null", `{"id":null}`, ""},
		{"missing", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Course
			if err := json.Unmarshal([]byte(tt.input), &c); err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			if c.ID != tt.want {
				t.Errorf("ID = %q, want %q", c.ID, tt.want)
			}
		})
	}
}

func TestIDUnmarshalJSON_Invalid(t *testing.T) {
	var c Course
	if err := json.Unmarshal([]byte(`{"id":true}`), &c); err == nil {
		t.Error("expected error for boolean id")
	}
}

func TestCourseMarshal_OmitsEmptyID(t *testing.T) {
	data, err := json.Marshal(Course{Title: "Go"})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if _, ok := raw["id"]; ok {
		t.Errorf("expected id to be omitted, got %s", data)
	}
	if _, ok := raw["videoUrl"]; ok {
		t.Errorf("expected empty videoUrl to be omitted, got %s", data)
	}
}

func TestFormDefaults(t *testing.T) {
	if got := NewCourse().Level; got != LevelBeginner {
		t.Errorf("NewCourse().Level = %q, want %q", got, LevelBeginner)
	}
	if got := NewEbook().Color; got != DefaultEbookColor {
		t.Errorf("NewEbook().Color = %q, want %q", got, DefaultEbookColor)
	}
	if !IsValidLevel(LevelAdvanced) || IsValidLevel("Expert") {
		t.Error("IsValidLevel mismatch")
	}
	if !IsValidColor("bg-red-50") || IsValidColor("bg-black") {
		t.Error("IsValidColor mismatch")
	}
}
