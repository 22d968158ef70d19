package store

import (
	"context"
	"time"
)

// Event is a row of the events table.
type Event struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

const createEvent = `-- name: CreateEvent :one
INSERT INTO events (level, category, message, metadata, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id, level, category, message, metadata, created_at
`

// CreateEventParams holds the columns written by CreateEvent.
type CreateEventParams struct {
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (Event, error) {
	row := q.db.QueryRowContext(ctx, createEvent,
		arg.Level,
		arg.Category,
		arg.Message,
		arg.Metadata,
		arg.CreatedAt,
	)
	var i Event
	err := row.Scan(
		&i.ID,
		&i.Level,
		&i.Category,
		&i.Message,
		&i.Metadata,
		&i.CreatedAt,
	)
	return i, err
}

const listRecentEvents = `-- name: ListRecentEvents :many
SELECT id, level, category, message, metadata, created_at FROM events
ORDER BY created_at DESC, id DESC
LIMIT ?
`

func (q *Queries) ListRecentEvents(ctx context.Context, limit int64) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, listRecentEvents, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Event
	for rows.Next() {
		var i Event
		if err := rows.Scan(
			&i.ID,
			&i.Level,
			&i.Category,
			&i.Message,
			&i.Metadata,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listEventsByLevel = `-- name: ListEventsByLevel :many
SELECT id, level, category, message, metadata, created_at FROM events
WHERE level = ?
ORDER BY created_at DESC, id DESC
LIMIT ?
`

// ListEventsByLevelParams filters events by level.
type ListEventsByLevelParams struct {
	Level string `json:"level"`
	Limit int64  `json:"limit"`
}

func (q *Queries) ListEventsByLevel(ctx context.Context, arg ListEventsByLevelParams) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, listEventsByLevel, arg.Level, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Event
	for rows.Next() {
		var i Event
		if err := rows.Scan(
			&i.ID,
			&i.Level,
			&i.Category,
			&i.Message,
			&i.Metadata,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteEventsBefore = `-- name: DeleteEventsBefore :exec
DELETE FROM events WHERE created_at < ?
`

func (q *Queries) DeleteEventsBefore(ctx context.Context, before time.Time) error {
	_, err := q.db.ExecContext(ctx, deleteEventsBefore, before)
	return err
}

const countEvents = `-- name: CountEvents :one
SELECT COUNT(*) FROM events
`

func (q *Queries) CountEvents(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countEvents)
	var count int64
	err := row.Scan(&count)
	return count, err
}
