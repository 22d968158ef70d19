// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses the embedded HTML templates and renders pages with
// the session and flash data every layout needs.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/olegiv/academy-go/internal/content"
	"github.com/olegiv/academy-go/internal/middleware"
	"github.com/olegiv/academy-go/internal/model"
	"github.com/olegiv/academy-go/internal/util"
)

// Flash types.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Template directories and their layouts, parsed in order.
var templateGroups = []struct {
	dir     string
	layouts []string
}{
	{dir: "public", layouts: []string{"layouts/base.html"}},
	{dir: "auth", layouts: []string{"layouts/base.html"}},
	{dir: "admin", layouts: []string{"layouts/base.html", "layouts/admin.html"}},
}

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	isDev          bool
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	IsDev          bool
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		isDev:          cfg.IsDev,
	}

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}

	return r, nil
}

// parseTemplates parses every page template together with its layouts and
// the shared partials. Pages are keyed as "<dir>/<name>".
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := r.getTemplateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	for _, group := range templateGroups {
		pages, err := r.getTemplateFiles(templatesFS, group.dir)
		if err != nil {
			return fmt.Errorf("getting %s templates: %w", group.dir, err)
		}

		for _, tmplPath := range pages {
			name := group.dir + "/" + strings.TrimSuffix(path.Base(tmplPath), ".html")

			files := append([]string{}, group.layouts...)
			files = append(files, partials...)
			files = append(files, tmplPath)

			tmpl, err := template.New("").Funcs(r.templateFuncs()).ParseFS(templatesFS, files...)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", name, err)
			}

			r.templates[name] = tmpl
		}
	}

	return nil
}

// getTemplateFiles returns all .html files in a directory.
func (r *Renderer) getTemplateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	var files []string

	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		// Directory might not exist yet, that's ok
		return files, nil
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

var titleCaser = cases.Title(language.English)

// templateFuncs returns custom template functions.
func (r *Renderer) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 3:04 PM")
		},
		"truncate": truncate,
		"markdown": content.RenderMarkdown,
		"excerpt":  content.Excerpt,
		"embedURL": util.EmbedURL,
		"displayRole": func(role string) string {
			if role == "" {
				role = model.RoleUser
			}
			return titleCaser.String(role)
		},
		"isAdminRole": func(role string) bool {
			return role == model.RoleAdmin
		},
		"courseLevels": func() []string {
			return model.CourseLevels
		},
		"ebookColors": func() []model.ColorOption {
			return model.EbookColors
		},
		"add": func(a, b int) int {
			return a + b
		},
	}
}

func truncate(s string, length int) string {
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	return string(runes[:length]) + "..."
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Data        any
	Session     *model.Session
	Errors      map[string]string
	Flash       string
	FlashType   string
	CurrentPath string
	CurrentYear int
	IsDev       bool
}

// IsAdmin reports whether the current visitor is signed in as an admin.
func (d TemplateData) IsAdmin() bool {
	return d.Session.IsAdmin()
}

// Render renders a template with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders a template with the given status code.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = time.Now().Year()
	data.IsDev = r.isDev
	if data.Session == nil {
		data.Session = middleware.GetSession(req)
	}
	if data.CurrentPath == "" {
		data.CurrentPath = req.URL.Path
	}

	if r.sessionManager != nil {
		if flash := r.sessionManager.PopString(req.Context(), "flash"); flash != "" {
			data.Flash = flash
			data.FlashType = r.sessionManager.PopString(req.Context(), "flash_type")
			if data.FlashType == "" {
				data.FlashType = FlashInfo
			}
		}
	}

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Has reports whether a template with the given name was parsed.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// SetFlash sets a flash message in the session.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager != nil {
		r.sessionManager.Put(req.Context(), "flash", message)
		r.sessionManager.Put(req.Context(), "flash_type", flashType)
	}
}
