// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/academy-go/internal/middleware"
	"github.com/olegiv/academy-go/internal/model"
)

// Handlers groups every route handler.
type Handlers struct {
	Frontend      *FrontendHandler
	Auth          *AuthHandler
	Admin         *AdminHandler
	Courses       *ResourceHandler[model.Course]
	Ebooks        *ResourceHandler[model.Ebook]
	Users         *UsersHandler
	SessionEvents *SessionEventsHandler
	Health        *HealthHandler
}

// RouteOptions configures the route-level middleware.
type RouteOptions struct {
	// Timeout bounds every page request. Zero disables it. The session event
	// stream is always mounted outside it.
	Timeout time.Duration
	// LoginProtection rate limits login posts per IP. Optional.
	LoginProtection *middleware.LoginProtection
	// FormLimiter rate limits signup posts per IP. Optional.
	FormLimiter *middleware.FormRateLimiter
	// Static serves embedded assets under /static/. Optional.
	Static http.Handler
}

// Register mounts every route on r. Session loading and the global
// middleware stack are applied by the caller.
func Register(r chi.Router, h Handlers, opts RouteOptions) {
	r.Get(RouteSessionEvents, h.SessionEvents.Stream)

	r.Group(func(r chi.Router) {
		if opts.Timeout > 0 {
			r.Use(middleware.Timeout(opts.Timeout))
		}

		r.Get(RouteHealth, h.Health.Health)
		r.Get(RouteHealthLive, h.Health.Liveness)
		if opts.Static != nil {
			r.Handle(RouteStatic, opts.Static)
		}

		// Public pages
		r.Get(RouteRoot, h.Frontend.Home)
		r.Get(RouteCourses, h.Frontend.Courses)
		r.Get(RouteEbooks, h.Frontend.Ebooks)
		r.Get(RouteAbout, h.Frontend.About)

		// Auth
		r.Group(func(r chi.Router) {
			r.Use(middleware.RedirectAuthenticated)
			r.Get(RouteLogin, h.Auth.LoginForm)
			r.Get(RouteSignup, h.Auth.SignupForm)

			r.Group(func(r chi.Router) {
				if opts.LoginProtection != nil {
					r.Use(opts.LoginProtection.Middleware())
				}
				r.Post(RouteLogin, h.Auth.Login)
			})
			r.Group(func(r chi.Router) {
				if opts.FormLimiter != nil {
					r.Use(opts.FormLimiter.Middleware())
				}
				r.Post(RouteSignup, h.Auth.Signup)
			})
		})
		r.Post(RouteLogout, h.Auth.Logout)

		// Admin console
		r.Route(RouteAdmin, func(r chi.Router) {
			r.Use(middleware.RequireAdmin())

			r.Get(RouteRoot, h.Admin.Dashboard)

			r.Get(RouteCourses, h.Courses.List)
			r.Get(RouteCourseNew, h.Courses.New)
			r.Post(RouteCourseNew, h.Courses.Create)
			r.Get(RouteCourseEdit, h.Courses.Edit)
			r.Post(RouteCourseEdit, h.Courses.Update)
			r.Get(RouteCoursesDelete, h.Courses.ConfirmDelete)
			r.Post(RouteCoursesDelete, h.Courses.Delete)

			r.Get(RouteEbooks, h.Ebooks.List)
			r.Get(RouteEbookNew, h.Ebooks.New)
			r.Post(RouteEbookNew, h.Ebooks.Create)
			r.Get(RouteEbookEdit, h.Ebooks.Edit)
			r.Post(RouteEbookEdit, h.Ebooks.Update)
			r.Get(RouteEbooksDelete, h.Ebooks.ConfirmDelete)
			r.Post(RouteEbooksDelete, h.Ebooks.Delete)

			r.Get(RouteUsers, h.Users.List)
			r.Get(RouteUsersDelete, h.Users.ConfirmDelete)
			r.Post(RouteUsersDelete, h.Users.Delete)
		})
	})

	r.NotFound(h.Frontend.NotFound)
}
