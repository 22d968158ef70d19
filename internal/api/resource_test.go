// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/academy-go/internal/model"
)

func sampleCourse(title string) model.Course {
	return model.Course{
		Title:       title,
		Level:       model.LevelAdvanced,
		Tag:         "Go",
		Lessons:     "12",
		Duration:    "4h",
		Image:       "https://img.example.com/go.png",
		Description: "Deep dive",
		VideoURL:    "https://www.youtube.com/embed/dQw4w9WgXcQ",
	}
}

func TestResource_ListAll(t *testing.T) {
	fb, srv := newFakeBackend(t)
	fb.seed(map[string]any{"title": "Go Basics", "level": "Beginner"})
	fb.seed(map[string]any{"title": "Advanced Go", "level": "Advanced"})

	courses := NewServices(NewClient(srv.URL)).Courses
	items, err := courses.ListAll(context.Background())
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, model.ID("1"), items[0].ID)
	assert.Equal(t, "Advanced Go", items[1].Title)
	assert.EqualValues(t, 1, fb.requests.Load())
}

func TestResource_ListAllEmpty(t *testing.T) {
	_, srv := newFakeBackend(t)

	items, err := NewResource[model.Course](NewClient(srv.URL), "courses", "course").ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestResource_CreateGetUpdate(t *testing.T) {
	fb, srv := newFakeBackend(t)
	courses := NewServices(NewClient(srv.URL)).Courses
	ctx := context.Background()

	created, err := courses.CreateOne(ctx, sampleCourse("Concurrency"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	want := sampleCourse("Concurrency")
	want.ID = created.ID
	assert.Equal(t, want, created)
	assert.Nil(t, fb.lastBody["id"], "create must not send an id")

	got, err := courses.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created, got)

	got.Title = "Concurrency in Go"
	updated, err := courses.UpdateOne(ctx, got.ID.String(), got)
	require.NoError(t, err)
	assert.Equal(t, "Concurrency in Go", updated.Title)
	assert.Equal(t, created.ID, updated.ID)
	assert.EqualValues(t, 3, fb.requests.Load())
}

func TestResource_GetByIDNotFound(t *testing.T) {
	_, srv := newFakeBackend(t)
	courses := NewServices(NewClient(srv.URL)).Courses

	_, err := courses.GetByID(context.Background(), "999")
	require.Error(t, err)

	reqErr, ok := AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
	assert.True(t, reqErr.IsNotFound())
	assert.False(t, reqErr.IsTransport())
	assert.Equal(t, "/courses/999", reqErr.Path)
	assert.Equal(t, http.MethodGet, reqErr.Method)
	assert.Equal(t, map[string]any{}, reqErr.Payload)
	assert.Equal(t, "not found", reqErr.Message)
}

func TestResource_DeleteTwice(t *testing.T) {
	fb, srv := newFakeBackend(t)
	id := fb.seed(map[string]any{"title": "Temp"})
	courses := NewServices(NewClient(srv.URL)).Courses
	ctx := context.Background()

	require.NoError(t, courses.DeleteOne(ctx, id))

	err := courses.DeleteOne(ctx, id)
	reqErr, ok := AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
	assert.Equal(t, http.MethodDelete, reqErr.Method)
}

func TestResource_MissingID(t *testing.T) {
	fb, srv := newFakeBackend(t)
	courses := NewServices(NewClient(srv.URL)).Courses
	ctx := context.Background()

	_, err := courses.GetByID(ctx, "")
	assert.ErrorIs(t, err, ErrMissingID)
	_, err = courses.UpdateOne(ctx, "", sampleCourse("x"))
	assert.ErrorIs(t, err, ErrMissingID)
	assert.ErrorIs(t, courses.DeleteOne(ctx, ""), ErrMissingID)

	assert.EqualValues(t, 0, fb.requests.Load())
}

func TestResource_PathEscapesID(t *testing.T) {
	_, srv := newFakeBackend(t)
	courses := NewServices(NewClient(srv.URL)).Courses

	_, err := courses.GetByID(context.Background(), "../users")
	reqErr, ok := AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, "/courses/..%2Fusers", reqErr.Path)
}

func TestClient_TransportError(t *testing.T) {
	_, srv := newFakeBackend(t)
	url := srv.URL
	srv.Close()

	_, err := NewServices(NewClient(url)).Courses.ListAll(context.Background())
	require.Error(t, err)

	reqErr, ok := AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, 0, reqErr.StatusCode)
	assert.True(t, reqErr.IsTransport())
	assert.Equal(t, MsgNetworkError, reqErr.Message)
	assert.Equal(t, "list courses", reqErr.Op)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestClient_Headers(t *testing.T) {
	fb, srv := newFakeBackend(t)
	client := NewClient(srv.URL, WithTokenFunc(func(context.Context) string { return "jwt-123" }))

	_, err := NewServices(client).Courses.ListAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer jwt-123", fb.lastReq.Get("Authorization"))
	assert.NotEmpty(t, fb.lastReq.Get(RequestIDHeader))
	assert.Equal(t, "application/json", fb.lastReq.Get("Accept"))
}

func TestClient_NoTokenNoAuthorization(t *testing.T) {
	fb, srv := newFakeBackend(t)
	client := NewClient(srv.URL, WithTokenFunc(func(context.Context) string { return "" }))

	_, err := NewServices(client).Courses.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fb.lastReq.Get("Authorization"))
}

func TestClient_DefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewClient("").BaseURL())
	assert.Equal(t, "http://api.test", NewClient("http://api.test/").BaseURL())
}

func TestClient_Ping(t *testing.T) {
	_, srv := newFakeBackend(t)
	client := NewClient(srv.URL)

	require.NoError(t, client.Ping(context.Background()))

	srv.Close()
	err := client.Ping(context.Background())
	reqErr, ok := AsRequestError(err)
	require.True(t, ok)
	assert.True(t, reqErr.IsTransport())
}

func TestPayloadMessage(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		status  int
		want    string
	}{
		{"bare string", "Incorrect password", 400, "Incorrect password"},
		{"message field", map[string]any{"message": "title is required"}, 422, "title is required"},
		{"error field", map[string]any{"error": "forbidden"}, 403, "forbidden"},
		{"empty object", map[string]any{}, 404, "not found"},
		{"nil payload", nil, 500, "internal server error"},
		{"unknown status", nil, 599, "request failed with status 599"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, payloadMessage(tt.payload, tt.status))
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, MsgNetworkError, Message(&RequestError{Message: MsgNetworkError}))
}
