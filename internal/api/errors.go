// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// MsgNetworkError is the message of every transport failure.
const MsgNetworkError = "network error: backend unreachable"

// RequestError is returned by every failed backend call.
// StatusCode is 0 when no response was received.
type RequestError struct {
	Op         string
	Method     string
	Path       string
	StatusCode int
	Payload    any
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s %s: %s", e.Op, e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s %s: %d %s", e.Op, e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether the backend was never reached.
func (e *RequestError) IsTransport() bool {
	return e.StatusCode == 0
}

// IsNotFound reports a 404 from the backend.
func (e *RequestError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// AsRequestError unwraps err into a *RequestError.
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}

// Message returns a human-readable message for err, preferring the
// backend's own wording.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if reqErr, ok := AsRequestError(err); ok && reqErr.Message != "" {
		return reqErr.Message
	}
	return err.Error()
}

// decodePayload keeps the body as JSON when it parses, as text otherwise.
func decodePayload(body []byte) any {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
		return v
	}
	return trimmed
}

// payloadMessage extracts a message from a decoded error body.
// json-server-auth answers with a bare JSON string; other backends use
// {"message": ...} or {"error": ...}.
func payloadMessage(payload any, status int) string {
	switch p := payload.(type) {
	case string:
		if p != "" {
			return p
		}
	case map[string]any:
		for _, key := range []string{"message", "error"} {
			if s, ok := p[key].(string); ok && s != "" {
				return s
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return strings.ToLower(text)
	}
	return fmt.Sprintf("request failed with status %d", status)
}
