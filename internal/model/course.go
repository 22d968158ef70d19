// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Course levels.
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// CourseLevels lists the valid course levels in display order.
var CourseLevels = []string{LevelBeginner, LevelIntermediate, LevelAdvanced}

// Course is a course offered on the site.
type Course struct {
	ID          ID     `json:"id,omitempty"`
	Title       string `json:"title" validate:"required"`
	Level       string `json:"level" validate:"required,oneof=Beginner Intermediate Advanced"`
	Tag         string `json:"tag"`
	Lessons     string `json:"lessons" validate:"required,numeric"`
	Duration    string `json:"duration" validate:"required"`
	Image       string `json:"image" validate:"required,url"`
	Description string `json:"description" validate:"required"`
	VideoURL    string `json:"videoUrl,omitempty" validate:"omitempty,url"`
}

// NewCourse returns a blank course with form defaults applied.
func NewCourse() Course {
	return Course{Level: LevelBeginner}
}

// GetID returns the course identifier.
func (c Course) GetID() ID {
	return c.ID
}

// IsValidLevel checks if level is one of CourseLevels.
func IsValidLevel(level string) bool {
	for _, l := range CourseLevels {
		if l == level {
			return true
		}
	}
	return false
}
