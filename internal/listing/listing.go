// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package listing backs the admin tables: the whole collection is fetched
// once, filtered in memory, and rows are removed only after the backend
// confirms a delete.
package listing

import (
	"context"
	"fmt"
	"strings"

	"github.com/olegiv/academy-go/internal/model"
	"github.com/olegiv/academy-go/internal/util"
)

// Source loads and deletes records of one collection.
type Source[T any] interface {
	ListAll(ctx context.Context) ([]T, error)
	DeleteOne(ctx context.Context, id string) error
}

// Spec tells a List how to identify and search its records.
type Spec[T any] struct {
	Kind   string
	ID     func(T) model.ID
	Fields func(T) []string
}

// List holds a fetched collection.
type List[T any] struct {
	spec   Spec[T]
	source Source[T]
	items  []T
}

// New creates an empty list; call Load to populate it.
func New[T any](source Source[T], spec Spec[T]) *List[T] {
	return &List[T]{spec: spec, source: source}
}

// Load fetches the full collection. On failure the list stays empty.
func (l *List[T]) Load(ctx context.Context) error {
	items, err := l.source.ListAll(ctx)
	if err != nil {
		l.items = nil
		return fmt.Errorf("loading %ss: %w", l.spec.Kind, err)
	}
	l.items = items
	return nil
}

// Len returns the number of loaded records.
func (l *List[T]) Len() int {
	return len(l.items)
}

// Filter returns the records with any searchable field containing term,
// ignoring case. An empty term returns everything.
func (l *List[T]) Filter(term string) []T {
	out := make([]T, 0, len(l.items))
	for _, item := range l.items {
		if util.MatchesAny(term, l.spec.Fields(item)...) {
			out = append(out, item)
		}
	}
	return out
}

// Row is a loaded record with its folded search text, as rendered in an
// admin table. Match reports whether it passes the current filter.
type Row[T any] struct {
	Item   T
	Search string
	Match  bool
}

// Rows returns every loaded record, marking those matching term. The
// search text lets the page re-filter without another fetch.
func (l *List[T]) Rows(term string) []Row[T] {
	rows := make([]Row[T], 0, len(l.items))
	for _, item := range l.items {
		fields := l.spec.Fields(item)
		rows = append(rows, Row[T]{
			Item:   item,
			Search: util.Fold(strings.Join(fields, "\n")),
			Match:  util.MatchesAny(term, fields...),
		})
	}
	return rows
}

// Delete removes id from the backend and, only if that succeeds, from the
// loaded items. On failure the items are untouched.
func (l *List[T]) Delete(ctx context.Context, id string) error {
	if err := l.source.DeleteOne(ctx, id); err != nil {
		return fmt.Errorf("deleting %s %s: %w", l.spec.Kind, id, err)
	}

	kept := l.items[:0:0]
	for _, item := range l.items {
		if l.spec.ID(item).String() != id {
			kept = append(kept, item)
		}
	}
	l.items = kept
	return nil
}

// CourseSpec searches courses by title and level.
var CourseSpec = Spec[model.Course]{
	Kind:   "course",
	ID:     func(c model.Course) model.ID { return c.ID },
	Fields: func(c model.Course) []string { return []string{c.Title, c.Level} },
}

// EbookSpec searches ebooks by title and description.
var EbookSpec = Spec[model.Ebook]{
	Kind:   "ebook",
	ID:     func(e model.Ebook) model.ID { return e.ID },
	Fields: func(e model.Ebook) []string { return []string{e.Title, e.Description} },
}

// UserSpec searches users by name and email.
var UserSpec = Spec[model.User]{
	Kind:   "user",
	ID:     func(u model.User) model.ID { return u.ID },
	Fields: func(u model.User) []string { return []string{u.Name, u.Email} },
}

// NewCourses returns a course list.
func NewCourses(source Source[model.Course]) *List[model.Course] {
	return New(source, CourseSpec)
}

// NewEbooks returns an ebook list.
func NewEbooks(source Source[model.Ebook]) *List[model.Ebook] {
	return New(source, EbookSpec)
}

// NewUsers returns a user list.
func NewUsers(source Source[model.User]) *List[model.User] {
	return New(source, UserSpec)
}
