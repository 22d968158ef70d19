// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bufio"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/academy-go/internal/session"
)

func TestSessionEvents_AnonymousGetsNoContent(t *testing.T) {
	app := newTestApp(t)

	resp := app.get(RouteSessionEvents)
	assert.Equal(t, http.StatusNoContent, resp.status)
}

func TestSessionEvents_StreamsOwnEventsOnly(t *testing.T) {
	app := newTestApp(t)
	resp := app.loginAs("bob@example.com")
	require.Equal(t, http.StatusSeeOther, resp.status)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, app.server.URL+RouteSessionEvents, nil)
	require.NoError(t, err)
	stream, err := app.client.Do(req)
	require.NoError(t, err)
	defer func() { _ = stream.Body.Close() }()

	require.Equal(t, http.StatusOK, stream.StatusCode)
	assert.Equal(t, "text/event-stream", stream.Header.Get(HeaderContentType))

	require.Eventually(t, func() bool { return app.notifier.SubscriberCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, app.notifier.Publish(ctx, session.Event{Kind: session.EventLogin, UserID: "1"}))
	require.NoError(t, app.notifier.Publish(ctx, session.Event{Kind: session.EventLogout, UserID: "2"}))

	var seen []string
	scanner := bufio.NewScanner(stream.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event:") || strings.HasPrefix(line, "data:") {
			seen = append(seen, line)
		}
		if strings.HasPrefix(line, "data:") {
			break
		}
	}

	require.Len(t, seen, 2)
	assert.Equal(t, "event: logout", seen[0])
	assert.Contains(t, seen[1], `"user_id":"2"`)
	assert.Contains(t, seen[1], `"kind":"logout"`)
}

func TestSessionEvents_LogoutIsPublished(t *testing.T) {
	app := newTestApp(t)
	app.loginAdmin()

	events, unsubscribe := app.notifier.Subscribe()
	defer unsubscribe()

	resp := app.post(RouteLogout, nil)
	require.Equal(t, http.StatusSeeOther, resp.status)

	select {
	case ev := <-events:
		assert.Equal(t, session.EventLogout, ev.Kind)
		assert.Equal(t, "1", ev.UserID)
	case <-time.After(2 * time.Second):
		t.Fatal("logout event not published")
	}
}
