// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package editor drives the create/edit forms for courses and ebooks.
//
// An Editor moves through Idle, Loading, Ready, Submitting and then
// Succeeded or Failed. A failed save returns to Ready with a message so the
// form can be corrected and resubmitted.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// State is a step of the editor lifecycle.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrNotReady is returned by Submit outside the Ready state.
var ErrNotReady = errors.New("editor is not ready")

// Store is the backend collection an Editor reads and writes.
type Store[T any] interface {
	GetByID(ctx context.Context, id string) (T, error)
	CreateOne(ctx context.Context, v T) (T, error)
	UpdateOne(ctx context.Context, id string, v T) (T, error)
}

// Config describes one kind of editable record.
type Config[T any] struct {
	// Kind names the record in messages: "course", "ebook".
	Kind string
	// Blank returns the initial form in create mode.
	Blank func() T
	// SuccessPath is where the browser goes after a successful save.
	SuccessPath string
	Store       Store[T]
	Validator   *Validator
}

// Editor holds the state of one form for the duration of a request.
type Editor[T any] struct {
	cfg Config[T]

	state      State
	history    []State
	id         string
	form       T
	result     T
	message    string
	fields     ValidationErrors
	loadFailed bool
}

// New creates an Idle editor.
func New[T any](cfg Config[T]) *Editor[T] {
	return &Editor[T]{cfg: cfg, state: Idle, history: []State{Idle}}
}

func (e *Editor[T]) transition(to State) {
	e.state = to
	e.history = append(e.history, to)
}

// FetchFailedMessage is shown when an existing record cannot be loaded.
func (e *Editor[T]) FetchFailedMessage() string {
	return "Failed to fetch " + e.cfg.Kind + " details"
}

// SaveFailedMessage is shown when the backend rejects a save.
func (e *Editor[T]) SaveFailedMessage() string {
	return "Failed to save " + e.cfg.Kind
}

// Open prepares the form. An empty id means create mode with a blank form;
// otherwise the record is fetched. A fetch failure still leaves the editor
// Ready, with an empty form and an error message.
func (e *Editor[T]) Open(ctx context.Context, id string) error {
	e.id = id
	e.message = ""
	e.fields = nil
	e.loadFailed = false

	if id == "" {
		e.form = e.blank()
		e.transition(Ready)
		return nil
	}

	e.transition(Loading)
	item, err := e.cfg.Store.GetByID(ctx, id)
	if err != nil {
		var zero T
		e.form = zero
		e.message = e.FetchFailedMessage()
		e.loadFailed = true
		e.transition(Ready)
		return fmt.Errorf("loading %s %s: %w", e.cfg.Kind, id, err)
	}

	e.form = item
	e.transition(Ready)
	return nil
}

// Resume restores a Ready editor for a posted form without fetching again.
// loadFailed carries over a fetch failure from the page that rendered the form.
func (e *Editor[T]) Resume(id string, loadFailed bool) {
	e.id = id
	e.loadFailed = loadFailed
	e.message = ""
	e.fields = nil
	e.transition(Ready)
}

// Submit validates form and then creates or updates the record.
// Validation failures return ValidationErrors without contacting the backend.
func (e *Editor[T]) Submit(ctx context.Context, form T) error {
	if e.state != Ready {
		return ErrNotReady
	}

	e.form = form
	e.message = ""
	e.fields = nil

	if e.cfg.Validator != nil {
		if fields := e.cfg.Validator.Check(form); fields != nil {
			e.fields = fields
			return fields
		}
	}

	if e.loadFailed {
		// The record was never loaded, so this save may overwrite it with
		// whatever the user typed into an empty form.
		slog.Warn("saving record whose details failed to load",
			"kind", e.cfg.Kind, "id", e.id, "category", e.cfg.Kind)
	}

	e.transition(Submitting)

	var (
		saved T
		err   error
	)
	if e.id == "" {
		saved, err = e.cfg.Store.CreateOne(ctx, form)
	} else {
		saved, err = e.cfg.Store.UpdateOne(ctx, e.id, form)
	}
	if err != nil {
		e.message = e.SaveFailedMessage()
		e.transition(Failed)
		e.transition(Ready)
		return fmt.Errorf("saving %s: %w", e.cfg.Kind, err)
	}

	e.result = saved
	e.transition(Succeeded)
	return nil
}

func (e *Editor[T]) blank() T {
	if e.cfg.Blank != nil {
		return e.cfg.Blank()
	}
	var zero T
	return zero
}

// State returns the current state.
func (e *Editor[T]) State() State { return e.state }

// History returns every state entered, oldest first.
func (e *Editor[T]) History() []State {
	out := make([]State, len(e.history))
	copy(out, e.history)
	return out
}

// ID returns the record id, or "" in create mode.
func (e *Editor[T]) ID() string { return e.id }

// IsEdit reports edit mode.
func (e *Editor[T]) IsEdit() bool { return e.id != "" }

// Kind returns the record kind.
func (e *Editor[T]) Kind() string { return e.cfg.Kind }

// Form returns the current form values.
func (e *Editor[T]) Form() T { return e.form }

// Result returns the record stored by the last successful Submit.
func (e *Editor[T]) Result() T { return e.result }

// Message returns the current error message, if any.
func (e *Editor[T]) Message() string { return e.message }

// FieldErrors returns validation messages from the last Submit.
func (e *Editor[T]) FieldErrors() ValidationErrors { return e.fields }

// LoadFailed reports whether Open could not fetch the record.
func (e *Editor[T]) LoadFailed() bool { return e.loadFailed }

// SuccessPath returns the post-save destination.
func (e *Editor[T]) SuccessPath() string { return e.cfg.SuccessPath }
