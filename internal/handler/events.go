// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/academy-go/internal/middleware"
	"github.com/olegiv/academy-go/internal/session"
)

// DefaultHeartbeat is the interval of SSE keep-alive comments.
const DefaultHeartbeat = 25 * time.Second

// sseRetryMillis tells browsers how long to wait before reconnecting.
const sseRetryMillis = 5000

// SessionEventsHandler streams the signed-in user's login and logout events
// as server-sent events, so other open tabs can refresh.
type SessionEventsHandler struct {
	notifier  *session.Notifier
	heartbeat time.Duration
}

// NewSessionEventsHandler creates a new SessionEventsHandler.
func NewSessionEventsHandler(notifier *session.Notifier, heartbeat time.Duration) *SessionEventsHandler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &SessionEventsHandler{notifier: notifier, heartbeat: heartbeat}
}

type sessionEventPayload struct {
	Kind   session.EventKind `json:"kind"`
	UserID string            `json:"user_id"`
	At     time.Time         `json:"at"`
}

// Stream handles GET /session/events. Anonymous visitors get 204, which
// stops EventSource from reconnecting.
func (h *SessionEventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	rec := middleware.GetSession(r)
	if rec == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	userID := rec.User.ID.String()

	rc := http.NewResponseController(w)
	// The stream outlives the server's WriteTimeout.
	_ = rc.SetWriteDeadline(time.Time{})

	events, unsubscribe := h.notifier.Subscribe()
	defer unsubscribe()

	w.Header().Set(HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprintf(w, "retry: %d\n\n", sseRetryMillis); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		slog.Error("session event stream cannot flush", "error", err)
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			_ = rc.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.UserID != userID {
				continue
			}
			if err := writeSessionEvent(w, ev); err != nil {
				slog.Debug("session event stream closed", "error", err)
				return
			}
			_ = rc.Flush()
		}
	}
}

func writeSessionEvent(w http.ResponseWriter, ev session.Event) error {
	data, err := json.Marshal(sessionEventPayload{Kind: ev.Kind, UserID: ev.UserID, At: ev.At})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data)
	return err
}
