// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"log/slog"
	"math"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/academy-go/internal/model"
	"github.com/olegiv/academy-go/internal/render"
	"github.com/olegiv/academy-go/internal/scheduler"
	"github.com/olegiv/academy-go/internal/store"
)

// recentEventsLimit is how many event log entries the dashboard shows.
const recentEventsLimit = 10

// activeLearnerRatio estimates active learners from the user count.
const activeLearnerRatio = 0.8

// HealthReporter exposes the latest backend probe result.
type HealthReporter interface {
	Status() scheduler.Status
}

// DashboardStats are the headline counts on the dashboard.
type DashboardStats struct {
	Users          int
	Courses        int
	Ebooks         int
	ActiveLearners int
}

// DashboardData is the dashboard page model.
type DashboardData struct {
	Stats  DashboardStats
	Events []store.Event
	Health scheduler.Status
}

// AdminHandler handles the admin dashboard.
type AdminHandler struct {
	courses  Lister[model.Course]
	ebooks   Lister[model.Ebook]
	users    Lister[model.User]
	queries  *store.Queries
	health   HealthReporter
	renderer *render.Renderer
}

// NewAdminHandler creates a new AdminHandler. health may be nil.
func NewAdminHandler(courses Lister[model.Course], ebooks Lister[model.Ebook], users Lister[model.User],
	db *sql.DB, health HealthReporter, renderer *render.Renderer) *AdminHandler {
	return &AdminHandler{
		courses:  courses,
		ebooks:   ebooks,
		users:    users,
		queries:  store.New(db),
		health:   health,
		renderer: renderer,
	}
}

// Dashboard renders the admin dashboard.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.loadStats(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load dashboard stats", "error", err, "category", model.EventCategoryBackend)
	}

	events, err := h.queries.ListRecentEvents(ctx, recentEventsLimit)
	if err != nil {
		slog.Error("failed to list recent events", "error", err)
		events = nil
	}

	data := DashboardData{Stats: stats, Events: events}
	if h.health != nil {
		data.Health = h.health.Status()
	}

	renderPage(w, r, h.renderer, tmplDashboard, render.TemplateData{
		Title: "Dashboard",
		Data:  data,
	})
}

// loadStats fetches the three collections concurrently. Any failure zeroes
// every count.
func (h *AdminHandler) loadStats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		users, err := h.users.ListAll(ctx)
		stats.Users = len(users)
		return err
	})
	g.Go(func() error {
		courses, err := h.courses.ListAll(ctx)
		stats.Courses = len(courses)
		return err
	})
	g.Go(func() error {
		ebooks, err := h.ebooks.ListAll(ctx)
		stats.Ebooks = len(ebooks)
		return err
	})

	if err := g.Wait(); err != nil {
		return DashboardStats{}, err
	}
	stats.ActiveLearners = activeLearners(stats.Users)
	return stats, nil
}

// activeLearners is round(users * 0.8).
func activeLearners(users int) int {
	return int(math.Round(float64(users) * activeLearnerRatio))
}
