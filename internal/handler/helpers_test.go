// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/academy-go/internal/api"
	"github.com/olegiv/academy-go/internal/editor"
	"github.com/olegiv/academy-go/internal/middleware"
	"github.com/olegiv/academy-go/internal/render"
	"github.com/olegiv/academy-go/internal/scheduler"
	"github.com/olegiv/academy-go/internal/session"
	"github.com/olegiv/academy-go/internal/store"
	"github.com/olegiv/academy-go/web"
)

// fakeBackend mimics json-server with json-server-auth for the courses,
// ebooks and users collections.
type fakeBackend struct {
	mu      sync.Mutex
	items   map[string]map[string]map[string]any // collection -> id -> record
	order   map[string][]string
	nextID  int
	failing atomic.Bool
	calls   atomic.Int64
	tokens  []string
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	fb := &fakeBackend{
		items:  make(map[string]map[string]map[string]any),
		order:  make(map[string][]string),
		nextID: 1,
	}

	mux := http.NewServeMux()
	for _, coll := range []string{"courses", "ebooks", "users"} {
		mux.HandleFunc("GET /"+coll, fb.list(coll))
		mux.HandleFunc("POST /"+coll, fb.create(coll))
		mux.HandleFunc("GET /"+coll+"/{id}", fb.get(coll))
		mux.HandleFunc("PUT /"+coll+"/{id}", fb.update(coll))
		mux.HandleFunc("DELETE /"+coll+"/{id}", fb.remove(coll))
	}
	mux.HandleFunc("POST /login", fb.login)
	mux.HandleFunc("POST /register", fb.register)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.calls.Add(1)
		fb.mu.Lock()
		fb.tokens = append(fb.tokens, r.Header.Get("Authorization"))
		fb.mu.Unlock()
		if fb.failing.Load() {
			writeBackendJSON(w, http.StatusInternalServerError, map[string]any{"message": "backend exploded"})
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	fb.seed("users", map[string]any{"name": "Ada Admin", "email": "ada@example.com", "role": "admin"})
	fb.seed("users", map[string]any{"name": "Bob Learner", "email": "bob@example.com", "role": "user"})
	return fb, srv
}

func writeBackendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(HeaderContentType, "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (fb *fakeBackend) seed(coll string, item map[string]any) string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	id := strconv.Itoa(fb.nextID)
	fb.nextID++
	item["id"] = id
	if fb.items[coll] == nil {
		fb.items[coll] = make(map[string]map[string]any)
	}
	fb.items[coll][id] = item
	fb.order[coll] = append(fb.order[coll], id)
	return id
}

func (fb *fakeBackend) record(coll, id string) (map[string]any, bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	item, ok := fb.items[coll][id]
	return item, ok
}

func (fb *fakeBackend) count(coll string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.items[coll])
}

func (fb *fakeBackend) lastToken() string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if len(fb.tokens) == 0 {
		return ""
	}
	return fb.tokens[len(fb.tokens)-1]
}

func decodeBody(r *http.Request) map[string]any {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	return body
}

func (fb *fakeBackend) list(coll string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		out := make([]map[string]any, 0, len(fb.items[coll]))
		for _, id := range fb.order[coll] {
			if item, ok := fb.items[coll][id]; ok {
				out = append(out, item)
			}
		}
		writeBackendJSON(w, http.StatusOK, out)
	}
}

func (fb *fakeBackend) get(coll string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, ok := fb.record(coll, r.PathValue("id"))
		if !ok {
			writeBackendJSON(w, http.StatusNotFound, map[string]any{})
			return
		}
		writeBackendJSON(w, http.StatusOK, item)
	}
}

func (fb *fakeBackend) create(coll string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(r)
		if body == nil {
			writeBackendJSON(w, http.StatusBadRequest, "empty body")
			return
		}
		fb.seed(coll, body)
		writeBackendJSON(w, http.StatusCreated, body)
	}
}

func (fb *fakeBackend) update(coll string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if _, ok := fb.record(coll, id); !ok {
			writeBackendJSON(w, http.StatusNotFound, map[string]any{})
			return
		}
		body := decodeBody(r)
		body["id"] = id
		fb.mu.Lock()
		fb.items[coll][id] = body
		fb.mu.Unlock()
		writeBackendJSON(w, http.StatusOK, body)
	}
}

func (fb *fakeBackend) remove(coll string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		fb.mu.Lock()
		defer fb.mu.Unlock()
		if _, ok := fb.items[coll][id]; !ok {
			writeBackendJSON(w, http.StatusNotFound, map[string]any{})
			return
		}
		delete(fb.items[coll], id)
		writeBackendJSON(w, http.StatusOK, map[string]any{})
	}
}

func (fb *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)
	if body["password"] != "secret" {
		writeBackendJSON(w, http.StatusBadRequest, "Incorrect password")
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, id := range fb.order["users"] {
		u, ok := fb.items["users"][id]
		if ok && u["email"] == body["email"] {
			writeBackendJSON(w, http.StatusOK, map[string]any{"accessToken": "jwt-" + id, "user": u})
			return
		}
	}
	writeBackendJSON(w, http.StatusBadRequest, "Cannot find user")
}

func (fb *fakeBackend) register(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)
	if body["email"] == "ada@example.com" {
		writeBackendJSON(w, http.StatusBadRequest, "Email already exists")
		return
	}
	delete(body, "password")
	id := fb.seed("users", body)
	writeBackendJSON(w, http.StatusCreated, map[string]any{"accessToken": "jwt-" + id, "user": body})
}

// stubHealth is a fixed backend probe result.
type stubHealth struct{ status scheduler.Status }

func (s stubHealth) Status() scheduler.Status { return s.status }

// testApp is the full router over a fake backend.
type testApp struct {
	t        *testing.T
	backend  *fakeBackend
	server   *httptest.Server
	client   *http.Client
	notifier *session.Notifier
	db       *sql.DB
	services *api.Services
}

type appOption func(*appConfig)

type appConfig struct {
	backendURL string
	health     HealthReporter
	lp         *middleware.LoginProtection
}

func withBackendURL(u string) appOption {
	return func(c *appConfig) { c.backendURL = u }
}

func withHealth(h HealthReporter) appOption {
	return func(c *appConfig) { c.health = h }
}

func withLoginProtection(lp *middleware.LoginProtection) appOption {
	return func(c *appConfig) { c.lp = lp }
}

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.NewDB(filepath.Join(t.TempDir(), "handler.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db))
	return db
}

func testRenderer(t *testing.T, sm *scs.SessionManager) *render.Renderer {
	t.Helper()
	sub, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)
	r, err := render.New(render.Config{TemplatesFS: sub, SessionManager: sm, IsDev: true})
	require.NoError(t, err)
	return r
}

func newTestApp(t *testing.T, opts ...appOption) *testApp {
	t.Helper()

	fb, backendSrv := newFakeBackend(t)
	cfg := appConfig{backendURL: backendSrv.URL}
	for _, opt := range opts {
		opt(&cfg)
	}

	db := testDB(t)
	sm := scs.New()
	sessions := session.NewStore(sm)
	notifier := session.NewNotifier()
	renderer := testRenderer(t, sm)
	validator := editor.NewValidator()

	client := api.NewClient(cfg.backendURL, api.WithTokenFunc(func(ctx context.Context) string {
		if rec := middleware.SessionFromContext(ctx); rec != nil {
			return rec.AccessToken
		}
		return ""
	}))
	services := api.NewServices(client)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := Handlers{
		Frontend:      NewFrontendHandler(services.Courses, services.Ebooks, renderer, logger),
		Auth:          NewAuthHandler(services.Auth, sessions, renderer, notifier, cfg.lp, validator),
		Admin:         NewAdminHandler(services.Courses, services.Ebooks, services.Users, db, cfg.health, renderer),
		Courses:       NewCoursesHandler(services.Courses, validator, renderer),
		Ebooks:        NewEbooksHandler(services.Ebooks, validator, renderer),
		Users:         NewUsersHandler(services.Users, renderer),
		SessionEvents: NewSessionEventsHandler(notifier, 50*time.Millisecond),
		Health:        NewHealthHandler(db, cfg.health),
	}

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Use(middleware.LoadSession(sessions))
	Register(r, h, RouteOptions{Timeout: 5 * time.Second, LoginProtection: cfg.lp})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{
		t:       t,
		backend: fb,
		server:  srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		notifier: notifier,
		db:       db,
		services: services,
	}
}

// response is a fully read HTTP response.
type response struct {
	status   int
	location string
	body     string
	header   http.Header
}

func (a *testApp) do(req *http.Request) response {
	a.t.Helper()
	resp, err := a.client.Do(req)
	require.NoError(a.t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return response{
		status:   resp.StatusCode,
		location: resp.Header.Get("Location"),
		body:     string(body),
		header:   resp.Header,
	}
}

func (a *testApp) get(path string) response {
	a.t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.server.URL+path, nil)
	require.NoError(a.t, err)
	return a.do(req)
}

func (a *testApp) post(path string, form url.Values) response {
	a.t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(a.t, err)
	req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	return a.do(req)
}

// follow GETs the redirect target of resp.
func (a *testApp) follow(resp response) response {
	a.t.Helper()
	require.NotEmpty(a.t, resp.location, "expected a redirect, got %d", resp.status)
	return a.get(resp.location)
}

func (a *testApp) loginAs(email string) response {
	a.t.Helper()
	return a.post(RouteLogin, url.Values{"email": {email}, "password": {"secret"}})
}

func (a *testApp) loginAdmin() {
	a.t.Helper()
	resp := a.loginAs("ada@example.com")
	require.Equal(a.t, http.StatusSeeOther, resp.status)
	require.Equal(a.t, "/admin", resp.location)
}

func courseForm(title string) url.Values {
	return url.Values{
		"title":       {title},
		"level":       {"Beginner"},
		"tag":         {"go"},
		"lessons":     {"12"},
		"duration":    {"6h"},
		"image":       {"https://example.com/go.png"},
		"description": {"Learn **Go**"},
		"videoUrl":    {"https://youtu.be/abcdEFGH12X"},
	}
}
