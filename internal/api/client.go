// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api is the HTTP client for the course/ebook REST backend.
// Every call maps to exactly one request; failures are *RequestError.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// DefaultBaseURL is the backend origin used when none is configured.
const DefaultBaseURL = "http://localhost:3000"

// RequestIDHeader carries the correlation id to the backend.
const RequestIDHeader = "X-Request-ID"

// TokenFunc returns the bearer token for the request context, or "".
type TokenFunc func(ctx context.Context) string

// Client talks to the backend over a fixed base URL.
type Client struct {
	rc      *resty.Client
	baseURL string
	token   TokenFunc
}

// Option configures a Client.
type Option func(*Client)

// WithTokenFunc attaches the session token to outgoing requests.
func WithTokenFunc(fn TokenFunc) Option {
	return func(c *Client) {
		c.token = fn
	}
}

// WithDebug logs raw requests and responses.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.rc.SetDebug(debug)
	}
}

// NewClient creates a backend client. No retries are configured and no
// client timeout is set; the request context bounds every call.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		rc:      resty.New(),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.rc.
		SetBaseURL(c.baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(0)

	return c
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do issues one request. result may be nil.
func (c *Client) do(ctx context.Context, op, method, path string, body, result any) error {
	req := c.rc.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, requestID(ctx))

	if c.token != nil {
		if token := c.token(ctx); token != "" {
			req.SetAuthToken(token)
		}
	}
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		slog.Debug("backend request failed", "op", op, "method", method, "path", path, "error", err)
		return &RequestError{
			Op:      op,
			Method:  method,
			Path:    path,
			Message: MsgNetworkError,
			Err:     err,
		}
	}

	if resp.IsError() {
		payload := decodePayload(resp.Body())
		return &RequestError{
			Op:         op,
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode(),
			Payload:    payload,
			Message:    payloadMessage(payload, resp.StatusCode()),
		}
	}

	slog.Debug("backend request completed", "op", op, "method", method, "path", path, "status", resp.StatusCode())
	return nil
}

// Ping checks that the backend answers at all. Any status below 500 counts
// as reachable.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, requestID(ctx)).
		Get("/")
	if err != nil {
		return &RequestError{Op: "ping", Method: http.MethodGet, Path: "/", Message: MsgNetworkError, Err: err}
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return &RequestError{
			Op:         "ping",
			Method:     http.MethodGet,
			Path:       "/",
			StatusCode: resp.StatusCode(),
			Message:    fmt.Sprintf("backend returned %d", resp.StatusCode()),
		}
	}
	return nil
}

// requestID reuses chi's request id so logs on both sides correlate.
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
