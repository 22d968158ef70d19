// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session persists the signed-in user's record in the browser
// session and broadcasts login/logout transitions to open views.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/academy-go/internal/model"
)

// Key is the fixed session key holding the serialized record.
const Key = "user"

// New creates a new session manager configured with SQLite store.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !isDev
	if !isDev {
		sm.Cookie.Name = "__Host-session"
	}

	return sm
}

// Store reads and writes the session record.
type Store struct {
	sm *scs.SessionManager
}

// NewStore wraps a session manager.
func NewStore(sm *scs.SessionManager) *Store {
	return &Store{sm: sm}
}

// Manager returns the underlying session manager.
func (s *Store) Manager() *scs.SessionManager {
	return s.sm
}

// Save serializes the record under Key, replacing any previous value.
// The session token is renewed first.
func (s *Store) Save(ctx context.Context, rec model.Session) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := s.sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	s.sm.Put(ctx, Key, string(data))
	return nil
}

// Read returns the stored record, or nil when none is stored or the stored
// value cannot be parsed.
func (s *Store) Read(ctx context.Context) *model.Session {
	raw := s.sm.GetString(ctx, Key)
	if raw == "" {
		return nil
	}
	var rec model.Session
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		slog.Debug("discarding unparsable session record", "error", err)
		return nil
	}
	return &rec
}

// Clear removes the record by destroying the session.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.sm.Destroy(ctx); err != nil {
		return fmt.Errorf("destroying session: %w", err)
	}
	return nil
}
