// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic background jobs: probing the
// backend's health and pruning old event log entries.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/academy-go/internal/store"
)

// DefaultHealthSchedule probes the backend once a minute.
const DefaultHealthSchedule = "@every 1m"

// Defaults for the probe and the event log retention.
const (
	probeTimeout    = 5 * time.Second
	pruneSchedule   = "@daily"
	eventsRetention = 30 * 24 * time.Hour
)

// Pinger reports whether the backend answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status is the outcome of the latest health probe.
type Status struct {
	Healthy   bool          `json:"healthy"`
	CheckedAt time.Time     `json:"checked_at"`
	Latency   time.Duration `json:"latency_ns"`
	Error     string        `json:"error,omitempty"`
}

// Known reports whether a probe has completed yet.
func (s Status) Known() bool {
	return !s.CheckedAt.IsZero()
}

// Scheduler handles the cron jobs.
type Scheduler struct {
	db       *sql.DB
	cron     *cron.Cron
	logger   *slog.Logger
	pinger   Pinger
	schedule string

	status atomic.Pointer[Status]
}

// New creates a new scheduler instance. db may be nil, in which case event
// pruning is skipped.
func New(pinger Pinger, db *sql.DB, logger *slog.Logger, schedule string) *Scheduler {
	if schedule == "" {
		schedule = DefaultHealthSchedule
	}
	return &Scheduler{
		db:       db,
		cron:     cron.New(),
		logger:   logger,
		pinger:   pinger,
		schedule: schedule,
	}
}

// Start registers the jobs, runs a first probe and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.CheckBackend); err != nil {
		return err
	}

	if s.db != nil {
		_, err := s.cron.AddFunc(pruneSchedule, func() {
			if err := s.pruneEvents(); err != nil {
				s.logger.Error("failed to prune events", "error", err)
			}
		})
		if err != nil {
			return err
		}
	}

	go s.CheckBackend()

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()), "health_schedule", s.schedule)
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Status returns the latest probe result. Before the first probe it is the
// zero Status.
func (s *Scheduler) Status() Status {
	if st := s.status.Load(); st != nil {
		return *st
	}
	return Status{}
}

// CheckBackend probes the backend once and records the result. State
// changes are logged; a newly failing backend is logged as a warning.
func (s *Scheduler) CheckBackend() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	start := time.Now()
	err := s.pinger.Ping(ctx)
	next := &Status{
		Healthy:   err == nil,
		CheckedAt: time.Now(),
		Latency:   time.Since(start),
	}
	if err != nil {
		next.Error = err.Error()
	}

	prev := s.status.Swap(next)
	wasHealthy := prev == nil || prev.Healthy

	switch {
	case !next.Healthy && wasHealthy:
		s.logger.Warn("backend unreachable", "error", err, "category", "backend")
	case next.Healthy && prev != nil && !prev.Healthy:
		s.logger.Info("backend recovered", "latency", next.Latency)
	}
}

// pruneEvents deletes event log entries older than the retention window.
func (s *Scheduler) pruneEvents() error {
	ctx := context.Background()
	cutoff := time.Now().UTC().Add(-eventsRetention)
	if err := store.New(s.db).DeleteEventsBefore(ctx, cutoff); err != nil {
		return err
	}
	s.logger.Info("pruned event log", "before", cutoff.Format(time.RFC3339))
	return nil
}
