// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/olegiv/academy-go/internal/api"
	"github.com/olegiv/academy-go/internal/editor"
	"github.com/olegiv/academy-go/internal/listing"
	"github.com/olegiv/academy-go/internal/model"
	"github.com/olegiv/academy-go/internal/render"
	"github.com/olegiv/academy-go/internal/util"
)

var titleCaser = cases.Title(language.English)

// ResourceStore is a backend collection that can be listed and edited.
type ResourceStore[T any] interface {
	listing.Source[T]
	editor.Store[T]
}

// ListPage is the model of an admin list view.
// Every loaded row is rendered; rows outside the filter are hidden so the
// page script can re-filter as the user types.
type ListPage[T any] struct {
	Rows  []listing.Row[T]
	Query string
	Shown int
	Total int
}

// FormPage is the model of an editor page.
type FormPage[T any] struct {
	Form       T
	ID         string
	IsEdit     bool
	LoadFailed bool
	Message    string
	Action     string
}

// ConfirmPage is the model of a delete confirmation page.
type ConfirmPage struct {
	Kind   string
	ID     string
	Label  string
	Action string
	Cancel string
}

// resourceConfig describes one editable collection.
type resourceConfig[T any] struct {
	kind         string
	listPath     string
	newPath      string
	editPath     string // prefix, id appended
	listTemplate string
	formTemplate string
	newEditor    func(editor.Store[T], *editor.Validator) *editor.Editor[T]
	newList      func(listing.Source[T]) *listing.List[T]
	parseForm    func(url.Values) T
	label        func(T) string
}

// ResourceHandler serves the admin list, editor and delete pages of one
// collection.
type ResourceHandler[T any] struct {
	store     ResourceStore[T]
	validator *editor.Validator
	renderer  *render.Renderer
	cfg       resourceConfig[T]
}

// NewCoursesHandler creates the courses admin handler.
func NewCoursesHandler(store ResourceStore[model.Course], v *editor.Validator, renderer *render.Renderer) *ResourceHandler[model.Course] {
	return &ResourceHandler[model.Course]{
		store:     store,
		validator: v,
		renderer:  renderer,
		cfg: resourceConfig[model.Course]{
			kind:         model.EventCategoryCourse,
			listPath:     redirectAdminCourses,
			newPath:      RouteAdmin + RouteCourseNew,
			editPath:     pathCourseEdit,
			listTemplate: tmplAdminCourses,
			formTemplate: tmplCourseForm,
			newEditor:    editor.NewCourseEditor,
			newList:      listing.NewCourses,
			parseForm:    editor.ParseCourseForm,
			label:        func(c model.Course) string { return c.Title },
		},
	}
}

// NewEbooksHandler creates the ebooks admin handler.
func NewEbooksHandler(store ResourceStore[model.Ebook], v *editor.Validator, renderer *render.Renderer) *ResourceHandler[model.Ebook] {
	return &ResourceHandler[model.Ebook]{
		store:     store,
		validator: v,
		renderer:  renderer,
		cfg: resourceConfig[model.Ebook]{
			kind:         model.EventCategoryEbook,
			listPath:     redirectAdminEbooks,
			newPath:      RouteAdmin + RouteEbookNew,
			editPath:     pathEbookEdit,
			listTemplate: tmplAdminEbooks,
			formTemplate: tmplEbookForm,
			newEditor:    editor.NewEbookEditor,
			newList:      listing.NewEbooks,
			parseForm:    editor.ParseEbookForm,
			label:        func(e model.Ebook) string { return e.Title },
		},
	}
}

// List renders the collection. ?q= applies the filter server-side for
// clients without scripts.
func (h *ResourceHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	list := h.cfg.newList(h.store)
	data := render.TemplateData{Title: titleCaser.String(h.cfg.kind) + "s"}

	if err := list.Load(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "failed to load "+h.cfg.kind+" list", "error", err, "category", h.cfg.kind)
		data.Flash, data.FlashType = "Failed to load "+h.cfg.kind+"s: "+api.Message(err), render.FlashError
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	data.Data = ListPage[T]{
		Rows:  list.Rows(query),
		Query: query,
		Shown: len(list.Filter(query)),
		Total: list.Len(),
	}
	renderPage(w, r, h.renderer, h.cfg.listTemplate, data)
}

// New renders an empty editor.
func (h *ResourceHandler[T]) New(w http.ResponseWriter, r *http.Request) {
	ed := h.cfg.newEditor(h.store, h.validator)
	_ = ed.Open(r.Context(), "")
	h.renderForm(w, r, http.StatusOK, ed)
}

// Edit renders the editor for an existing record. A fetch failure still
// renders the (empty) form with an error message.
func (h *ResourceHandler[T]) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}

	ed := h.cfg.newEditor(h.store, h.validator)
	if err := ed.Open(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "failed to fetch "+h.cfg.kind, "id", id, "error", err, "category", h.cfg.kind)
	}
	h.renderForm(w, r, http.StatusOK, ed)
}

// Create handles the new-record form submission.
func (h *ResourceHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

// Update handles the edit form submission.
func (h *ResourceHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	h.save(w, r, id)
}

func (h *ResourceHandler[T]) save(w http.ResponseWriter, r *http.Request, id string) {
	if !parseFormOrRedirect(w, r, h.renderer, h.cfg.listPath) {
		return
	}

	ed := h.cfg.newEditor(h.store, h.validator)
	ed.Resume(id, r.PostFormValue("loadFailed") == "true")

	err := ed.Submit(r.Context(), h.cfg.parseForm(r.PostForm))

	var fieldErrs editor.ValidationErrors
	switch {
	case errors.As(err, &fieldErrs):
		h.renderForm(w, r, http.StatusUnprocessableEntity, ed)
	case err != nil:
		slog.ErrorContext(r.Context(), "failed to save "+h.cfg.kind, "id", id, "error", err,
			"states", ed.History(), "category", h.cfg.kind)
		h.renderForm(w, r, backendStatus(err), ed)
	default:
		slog.Info(h.cfg.kind+" saved", "id", id, "record", h.cfg.label(ed.Result()), "created", id == "")
		flashSuccess(w, r, h.renderer, ed.SuccessPath(), titleCaser.String(h.cfg.kind)+" saved")
	}
}

// ConfirmDelete renders the delete confirmation page.
func (h *ResourceHandler[T]) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}

	label := h.cfg.kind + " #" + id
	if item, err := h.store.GetByID(r.Context(), id); err == nil {
		label = h.cfg.label(item)
	} else {
		slog.Warn("failed to fetch "+h.cfg.kind+" for delete confirmation", "id", id, "error", err)
	}

	renderConfirmDelete(w, r, h.renderer, ConfirmPage{
		Kind:   h.cfg.kind,
		ID:     id,
		Label:  label,
		Action: h.cfg.listPath + "/" + id + RouteSuffixDelete,
		Cancel: h.cfg.listPath,
	})
}

// Delete removes the record once the confirmation form is posted.
func (h *ResourceHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	if !requireConfirmation(w, r, h.renderer, h.cfg.listPath) {
		return
	}

	list := h.cfg.newList(h.store)
	if err := list.Delete(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "failed to delete "+h.cfg.kind, "id", id, "error", err, "category", h.cfg.kind)
		flashError(w, r, h.renderer, h.cfg.listPath, "Failed to delete "+h.cfg.kind+": "+api.Message(err))
		return
	}

	slog.Info(h.cfg.kind+" deleted", "id", id)
	flashSuccess(w, r, h.renderer, h.cfg.listPath, titleCaser.String(h.cfg.kind)+" deleted")
}

func (h *ResourceHandler[T]) renderForm(w http.ResponseWriter, r *http.Request, status int, ed *editor.Editor[T]) {
	action := h.cfg.newPath
	title := "New " + h.cfg.kind
	if ed.IsEdit() {
		action = h.cfg.editPath + ed.ID()
		title = "Edit " + h.cfg.kind
	}

	renderStatus(w, r, h.renderer, status, h.cfg.formTemplate, render.TemplateData{
		Title:  title,
		Errors: ed.FieldErrors(),
		Data: FormPage[T]{
			Form:       ed.Form(),
			ID:         ed.ID(),
			IsEdit:     ed.IsEdit(),
			LoadFailed: ed.LoadFailed(),
			Message:    ed.Message(),
			Action:     action,
		},
	})
}

func (h *ResourceHandler[T]) requireID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !util.IsValidID(id) {
		http.NotFound(w, r)
		return "", false
	}
	return id, true
}

// requireConfirmation parses the delete form and checks confirm=yes.
func requireConfirmation(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, listPath string) bool {
	if !parseFormOrRedirect(w, r, renderer, listPath) {
		return false
	}
	if r.PostFormValue("confirm") != "yes" {
		flashAndRedirect(w, r, renderer, listPath, "Deletion cancelled", render.FlashInfo)
		return false
	}
	return true
}

func renderConfirmDelete(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, page ConfirmPage) {
	renderPage(w, r, renderer, tmplConfirmDelete, render.TemplateData{
		Title: "Delete " + page.Kind,
		Data:  page,
	})
}
