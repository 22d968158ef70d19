// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/olegiv/academy-go/internal/middleware"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDegraded  = "degraded"
	statusUnknown   = "unknown"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	db        *sql.DB
	backend   HealthReporter
	startTime time.Time
}

// NewHealthHandler creates a new health handler. backend may be nil.
func NewHealthHandler(db *sql.DB, backend HealthReporter) *HealthHandler {
	return &HealthHandler{
		db:        db,
		backend:   backend,
		startTime: time.Now(),
	}
}

// HealthStatusPublic is the minimal health response for non-admin callers.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus represents the overall health status (admins only).
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Checks    map[string]Check `json:"checks"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
}

// Health handles GET /health. The local database decides between healthy
// and unhealthy; an unreachable backend makes the status degraded.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbCheck := h.checkDatabase(r.Context())
	backendCheck := h.checkBackend()

	overallStatus := statusHealthy
	switch {
	case dbCheck.Status != statusHealthy:
		overallStatus = statusUnhealthy
	case backendCheck.Status == statusUnhealthy:
		overallStatus = statusDegraded
	}

	w.Header().Set(HeaderContentType, "application/json")
	if overallStatus != statusHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if !middleware.GetSession(r).IsAdmin() {
		_ = json.NewEncoder(w).Encode(HealthStatusPublic{Status: overallStatus})
		return
	}

	status := HealthStatus{
		Status:    overallStatus,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks: map[string]Check{
			"database": dbCheck,
			"backend":  backendCheck,
		},
	}
	if r.URL.Query().Get("verbose") == "true" {
		status.System = &SystemInfo{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			NumCPU:       runtime.NumCPU(),
		}
	}

	_ = json.NewEncoder(w).Encode(status)
}

// Liveness handles GET /health/live - simple liveness check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(HeaderContentType, "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := h.db.PingContext(ctx); err != nil {
		return Check{Status: statusUnhealthy, Message: "database ping failed"}
	}
	return Check{Status: statusHealthy, Latency: time.Since(start).String()}
}

func (h *HealthHandler) checkBackend() Check {
	if h.backend == nil {
		return Check{Status: statusUnknown}
	}
	st := h.backend.Status()
	switch {
	case !st.Known():
		return Check{Status: statusUnknown, Message: "not checked yet"}
	case st.Healthy:
		return Check{Status: statusHealthy, Latency: st.Latency.String()}
	default:
		return Check{Status: statusUnhealthy, Message: st.Error}
	}
}
