// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeBackend mimics json-server with json-server-auth for one collection
// of arbitrary JSON objects plus the auth endpoints.
type fakeBackend struct {
	t        *testing.T
	mu       sync.Mutex
	items    map[string]map[string]any
	nextID   int
	requests atomic.Int64
	lastReq  http.Header
	lastBody map[string]any
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	fb := &fakeBackend{t: t, items: make(map[string]map[string]any), nextID: 1}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /courses", fb.list)
	mux.HandleFunc("POST /courses", fb.create)
	mux.HandleFunc("GET /courses/{id}", fb.get)
	mux.HandleFunc("PUT /courses/{id}", fb.update)
	mux.HandleFunc("DELETE /courses/{id}", fb.remove)
	mux.HandleFunc("POST /login", fb.login)
	mux.HandleFunc("POST /register", fb.register)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.requests.Add(1)
		fb.mu.Lock()
		fb.lastReq = r.Header.Clone()
		fb.lastBody = nil
		if r.Body != nil && r.ContentLength != 0 {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				fb.lastBody = body
			}
		}
		fb.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return fb, srv
}

func (fb *fakeBackend) seed(item map[string]any) string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	id := strconv.Itoa(fb.nextID)
	fb.nextID++
	item["id"] = fb.nextID - 1 // numeric ids, as json-server v0 emits
	fb.items[id] = item
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (fb *fakeBackend) list(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]map[string]any, 0, len(fb.items))
	for i := 1; i < fb.nextID; i++ {
		if item, ok := fb.items[strconv.Itoa(i)]; ok {
			out = append(out, item)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (fb *fakeBackend) get(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	item, ok := fb.items[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (fb *fakeBackend) create(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	body := fb.lastBody
	fb.mu.Unlock()
	if body == nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "empty body"})
		return
	}
	stored := make(map[string]any, len(body)+1)
	for k, v := range body {
		stored[k] = v
	}
	fb.seed(stored)
	writeJSON(w, http.StatusCreated, stored)
}

func (fb *fakeBackend) update(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	id := r.PathValue("id")
	if _, ok := fb.items[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	body := make(map[string]any, len(fb.lastBody)+1)
	for k, v := range fb.lastBody {
		body[k] = v
	}
	n, _ := strconv.Atoi(id)
	body["id"] = n
	fb.items[id] = body
	writeJSON(w, http.StatusOK, body)
}

func (fb *fakeBackend) remove(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	id := r.PathValue("id")
	if _, ok := fb.items[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	delete(fb.items, id)
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (fb *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	body := fb.lastBody
	fb.mu.Unlock()
	switch {
	case body["email"] == "ada@example.com" && body["password"] == "secret":
		writeJSON(w, http.StatusOK, map[string]any{
			"accessToken": "jwt-ada",
			"user":        map[string]any{"id": 1, "email": "ada@example.com", "name": "Ada", "role": "admin"},
		})
	case body["email"] == "notoken@example.com":
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"id": 2}})
	default:
		writeJSON(w, http.StatusBadRequest, "Incorrect password")
	}
}

func (fb *fakeBackend) register(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	body := fb.lastBody
	fb.mu.Unlock()
	if body["email"] == "taken@example.com" {
		writeJSON(w, http.StatusBadRequest, "Email already exists")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"accessToken": "jwt-new",
		"user": map[string]any{
			"id":     "u-9",
			"email":  body["email"],
			"name":   body["name"],
			"avatar": body["avatar"],
		},
	})
}
