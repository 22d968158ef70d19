// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides HTTP handlers for the application.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/academy-go/internal/model"
	"github.com/olegiv/academy-go/internal/render"
)

// featuredCount is how many courses and ebooks the home page shows.
const featuredCount = 3

// Lister fetches a whole collection.
type Lister[T any] interface {
	ListAll(ctx context.Context) ([]T, error)
}

// HomeData is the home page model.
type HomeData struct {
	Courses []model.Course
	Ebooks  []model.Ebook
}

// CoursesData is the public course catalogue model.
type CoursesData struct {
	Courses []model.Course
	Level   string
}

// FrontendHandler handles public frontend routes. Fetch failures are logged
// and the page renders with empty lists.
type FrontendHandler struct {
	courses  Lister[model.Course]
	ebooks   Lister[model.Ebook]
	renderer *render.Renderer
	logger   *slog.Logger
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(courses Lister[model.Course], ebooks Lister[model.Ebook], renderer *render.Renderer, logger *slog.Logger) *FrontendHandler {
	return &FrontendHandler{
		courses:  courses,
		ebooks:   ebooks,
		renderer: renderer,
		logger:   logger,
	}
}

// Home handles the homepage.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	var (
		courses []model.Course
		ebooks  []model.Ebook
		g       errgroup.Group
	)
	g.Go(func() error {
		courses = h.listCourses(r.Context())
		return nil
	})
	g.Go(func() error {
		ebooks = h.listEbooks(r.Context())
		return nil
	})
	_ = g.Wait()

	renderPage(w, r, h.renderer, tmplHome, render.TemplateData{
		Data: HomeData{
			Courses: firstN(courses, featuredCount),
			Ebooks:  firstN(ebooks, featuredCount),
		},
	})
}

// Courses lists courses, optionally narrowed to one level with ?level=.
// Unknown levels are ignored.
func (h *FrontendHandler) Courses(w http.ResponseWriter, r *http.Request) {
	level := r.URL.Query().Get("level")
	if !model.IsValidLevel(level) {
		level = ""
	}

	courses := h.listCourses(r.Context())
	if level != "" {
		filtered := courses[:0:0]
		for _, c := range courses {
			if c.Level == level {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}

	renderPage(w, r, h.renderer, tmplCourses, render.TemplateData{
		Title: "Courses",
		Data:  CoursesData{Courses: courses, Level: level},
	})
}

// Ebooks lists every ebook.
func (h *FrontendHandler) Ebooks(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, tmplEbooks, render.TemplateData{
		Title: "Ebooks",
		Data:  h.listEbooks(r.Context()),
	})
}

// About renders the static about page.
func (h *FrontendHandler) About(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, tmplAbout, render.TemplateData{Title: "About"})
}

// NotFound renders the 404 page.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	renderStatus(w, r, h.renderer, http.StatusNotFound, tmplNotFound, render.TemplateData{Title: "Page not found"})
}

func (h *FrontendHandler) listCourses(ctx context.Context) []model.Course {
	courses, err := h.courses.ListAll(ctx)
	if err != nil {
		h.logger.Error("failed to fetch courses", "error", err, "category", model.EventCategoryCourse)
		return []model.Course{}
	}
	return courses
}

func (h *FrontendHandler) listEbooks(ctx context.Context) []model.Ebook {
	ebooks, err := h.ebooks.ListAll(ctx)
	if err != nil {
		h.logger.Error("failed to fetch ebooks", "error", err, "category", model.EventCategoryEbook)
		return []model.Ebook{}
	}
	return ebooks
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
