// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"net/url"
	"strings"

	"github.com/olegiv/academy-go/internal/model"
	"github.com/olegiv/academy-go/internal/util"
)

// Post-save destinations.
const (
	CoursesPath = "/admin/courses"
	EbooksPath  = "/admin/ebooks"
)

// NewCourseEditor returns an editor over the courses collection.
func NewCourseEditor(store Store[model.Course], v *Validator) *Editor[model.Course] {
	return New(Config[model.Course]{
		Kind:        "course",
		Blank:       model.NewCourse,
		SuccessPath: CoursesPath,
		Store:       store,
		Validator:   v,
	})
}

// NewEbookEditor returns an editor over the ebooks collection.
func NewEbookEditor(store Store[model.Ebook], v *Validator) *Editor[model.Ebook] {
	return New(Config[model.Ebook]{
		Kind:        "ebook",
		Blank:       model.NewEbook,
		SuccessPath: EbooksPath,
		Store:       store,
		Validator:   v,
	})
}

func field(form url.Values, name string) string {
	return strings.TrimSpace(form.Get(name))
}

// ParseCourseForm reads a course from posted form values. The video URL is
// rewritten to its embeddable form as it is read.
func ParseCourseForm(form url.Values) model.Course {
	return model.Course{
		Title:       field(form, "title"),
		Level:       field(form, "level"),
		Tag:         field(form, "tag"),
		Lessons:     field(form, "lessons"),
		Duration:    field(form, "duration"),
		Image:       field(form, "image"),
		Description: field(form, "description"),
		VideoURL:    util.EmbedURL(field(form, "videoUrl")),
	}
}

// ParseEbookForm reads an ebook from posted form values.
func ParseEbookForm(form url.Values) model.Ebook {
	return model.Ebook{
		Title:       field(form, "title"),
		Description: field(form, "description"),
		Color:       field(form, "color"),
		PDFURL:      field(form, "pdfUrl"),
	}
}
