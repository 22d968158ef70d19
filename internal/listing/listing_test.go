// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package listing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/academy-go/internal/model"
)

type fakeSource[T any] struct {
	items     []T
	id        func(T) model.ID
	listErr   error
	deleteErr error
	deleted   []string
}

func (f *fakeSource[T]) ListAll(context.Context) ([]T, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]T(nil), f.items...), nil
}

func (f *fakeSource[T]) DeleteOne(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, item := range f.items {
		if f.id(item).String() == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return errors.New("404 not found")
}

func fiveCourses() *fakeSource[model.Course] {
	return &fakeSource[model.Course]{
		id: CourseSpec.ID,
		items: []model.Course{
			{ID: "1", Title: "Go Basics", Level: model.LevelBeginner},
			{ID: "2", Title: "Advanced Concurrency", Level: model.LevelIntermediate},
			{ID: "3", Title: "Web Services", Level: model.LevelAdvanced},
			{ID: "4", Title: "Testing in Go", Level: model.LevelIntermediate},
			{ID: "5", Title: "ADVENTURES in Generics", Level: model.LevelBeginner},
		},
	}
}

func ids[T any](items []T, id func(T) model.ID) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, id(item).String())
	}
	return out
}

func TestFilter_CoursesAdv(t *testing.T) {
	list := NewCourses(fiveCourses())
	require.NoError(t, list.Load(context.Background()))

	got := list.Filter("adv")

	assert.Equal(t, []string{"2", "3", "5"}, ids(got, CourseSpec.ID))
}

func TestFilter_EmptyTermReturnsAll(t *testing.T) {
	list := NewCourses(fiveCourses())
	require.NoError(t, list.Load(context.Background()))

	assert.Len(t, list.Filter(""), 5)
	assert.Len(t, list.Filter("   "), 5)
}

func TestFilter_NoMatch(t *testing.T) {
	list := NewCourses(fiveCourses())
	require.NoError(t, list.Load(context.Background()))

	got := list.Filter("rust")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilter_EbooksAndUsers(t *testing.T) {
	ebooks := NewEbooks(&fakeSource[model.Ebook]{
		id: EbookSpec.ID,
		items: []model.Ebook{
			{ID: "1", Title: "Go Patterns", Description: "Idioms"},
			{ID: "2", Title: "SQL", Description: "Patterns for queries"},
			{ID: "3", Title: "Docker", Description: "Containers"},
		},
	})
	require.NoError(t, ebooks.Load(context.Background()))
	assert.Equal(t, []string{"1", "2"}, ids(ebooks.Filter("PATTERN"), EbookSpec.ID))

	users := NewUsers(&fakeSource[model.User]{
		id: UserSpec.ID,
		items: []model.User{
			{ID: "1", Name: "Ada", Email: "ada@example.com", Role: model.RoleAdmin},
			{ID: "2", Name: "Grace", Email: "grace@navy.mil"},
		},
	})
	require.NoError(t, users.Load(context.Background()))
	assert.Equal(t, []string{"2"}, ids(users.Filter("NAVY"), UserSpec.ID))
	assert.Equal(t, []string{"1"}, ids(users.Filter("ada"), UserSpec.ID))
}

func TestDelete_RemovesOnSuccess(t *testing.T) {
	src := fiveCourses()
	list := NewCourses(src)
	require.NoError(t, list.Load(context.Background()))

	require.NoError(t, list.Delete(context.Background(), "3"))

	assert.Equal(t, []string{"1", "2", "4", "5"}, ids(list.Filter(""), CourseSpec.ID))
	assert.Equal(t, []string{"3"}, src.deleted)
	for _, row := range list.Rows("") {
		assert.NotEqual(t, "3", row.Item.ID.String())
	}
}

func TestDelete_TwiceFailsWithoutCorruption(t *testing.T) {
	list := NewCourses(fiveCourses())
	require.NoError(t, list.Load(context.Background()))

	require.NoError(t, list.Delete(context.Background(), "2"))
	before := ids(list.Filter(""), CourseSpec.ID)

	err := list.Delete(context.Background(), "2")
	require.Error(t, err)
	assert.Equal(t, before, ids(list.Filter(""), CourseSpec.ID))
}

func TestDelete_FailureLeavesItems(t *testing.T) {
	src := fiveCourses()
	src.deleteErr = errors.New("network error: backend unreachable")
	list := NewCourses(src)
	require.NoError(t, list.Load(context.Background()))

	err := list.Delete(context.Background(), "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, src.deleteErr)
	assert.Equal(t, 5, list.Len())
}

func TestLoad_Failure(t *testing.T) {
	src := fiveCourses()
	src.listErr = errors.New("boom")
	list := NewCourses(src)

	require.Error(t, list.Load(context.Background()))
	assert.Equal(t, 0, list.Len())
	assert.Empty(t, list.Filter(""))
}

func TestRows_MarksMatchesAndKeepsAll(t *testing.T) {
	list := NewCourses(fiveCourses())
	require.NoError(t, list.Load(context.Background()))

	rows := list.Rows("adv")
	require.Len(t, rows, 5)

	var matched []string
	for _, row := range rows {
		if row.Match {
			matched = append(matched, row.Item.ID.String())
		}
	}
	assert.Equal(t, []string{"2", "3", "5"}, matched)
	assert.Equal(t, "adventures in generics\nbeginner", rows[4].Search)
}
