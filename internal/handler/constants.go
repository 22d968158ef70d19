// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteCourses is the public course catalogue and the admin courses list.
	RouteCourses = "/courses"
	// RouteEbooks is the public ebook catalogue and the admin ebooks list.
	RouteEbooks = "/ebooks"
	// RouteAbout is the about page.
	RouteAbout = "/about"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteSignup is the signup route.
	RouteSignup = "/signup"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteSessionEvents streams login/logout events.
	RouteSessionEvents = "/session/events"
	// RouteHealth is the health check route.
	RouteHealth = "/health"
	// RouteHealthLive is the liveness probe route.
	RouteHealthLive = "/health/live"
	// RouteStatic serves embedded assets.
	RouteStatic = "/static/*"

	// RouteAdmin is the admin console prefix.
	RouteAdmin = "/admin"
	// RouteUsers is the users admin route.
	RouteUsers = "/users"
	// RouteCourseNew is the create-course editor.
	RouteCourseNew = "/course/new"
	// RouteCourseEdit is the edit-course editor.
	RouteCourseEdit = "/course/edit/{id}"
	// RouteEbookNew is the create-ebook editor.
	RouteEbookNew = "/ebook/new"
	// RouteEbookEdit is the edit-ebook editor.
	RouteEbookEdit = "/ebook/edit/{id}"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteSuffixDelete is the suffix for delete confirmation routes.
	RouteSuffixDelete = "/delete"

	// RouteCoursesDelete is the course delete confirmation route.
	RouteCoursesDelete = RouteCourses + RouteParamID + RouteSuffixDelete
	// RouteEbooksDelete is the ebook delete confirmation route.
	RouteEbooksDelete = RouteEbooks + RouteParamID + RouteSuffixDelete
	// RouteUsersDelete is the user delete confirmation route.
	RouteUsersDelete = RouteUsers + RouteParamID + RouteSuffixDelete
)

const (
	redirectAdmin        = RouteAdmin
	redirectAdminCourses = RouteAdmin + RouteCourses
	redirectAdminEbooks  = RouteAdmin + RouteEbooks
	redirectAdminUsers   = RouteAdmin + RouteUsers
	redirectLogin        = RouteLogin

	pathCourseEdit = RouteAdmin + "/course/edit/"
	pathEbookEdit  = RouteAdmin + "/ebook/edit/"
)

// Template names.
const (
	tmplHome          = "public/home"
	tmplCourses       = "public/courses"
	tmplEbooks        = "public/ebooks"
	tmplAbout         = "public/about"
	tmplNotFound      = "public/not_found"
	tmplLogin         = "auth/login"
	tmplSignup        = "auth/signup"
	tmplDashboard     = "admin/dashboard"
	tmplAdminCourses  = "admin/courses"
	tmplAdminEbooks   = "admin/ebooks"
	tmplAdminUsers    = "admin/users"
	tmplCourseForm    = "admin/course_form"
	tmplEbookForm     = "admin/ebook_form"
	tmplConfirmDelete = "admin/confirm_delete"
)

// HeaderContentType is the Content-Type HTTP header name.
const HeaderContentType = "Content-Type"
