// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/awasec/awa-cms/internal/model"
)

const eventColumns = `id, level, category, message, user_id, ip_address, metadata, created_at`

func scanEvent(row interface{ Scan(...any) error }) (model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.UserID, &e.IPAddress,
		&e.Metadata, &e.CreatedAt)
	return e, err
}

// CreateEventParams holds the fields for an audit log entry.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    int64 // 0 for system events
	IPAddress string
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent appends an audit log entry.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) error {
	userID := any(nil)
	if arg.UserID != 0 {
		userID = arg.UserID
	}
	metadata := arg.Metadata
	if metadata == "" {
		metadata = "{}"
	}
	_, err := q.db.ExecContext(ctx, `INSERT INTO events
		(level, category, message, user_id, ip_address, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.Level, arg.Category, arg.Message, userID, arg.IPAddress, metadata, arg.CreatedAt)
	return err
}

// ListEventsParams filters and paginates the audit log.
type ListEventsParams struct {
	Level    string // empty matches all
	Category string // empty matches all
	Limit    int64
	Offset   int64
}

// ListEvents returns a page of audit log entries, newest first.
func (q *Queries) ListEvents(ctx context.Context, arg ListEventsParams) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events
		WHERE (? = '' OR level = ?) AND (? = '' OR category = ?)
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := q.db.QueryContext(ctx, query,
		arg.Level, arg.Level, arg.Category, arg.Category, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountEvents counts audit log entries matching the same filters as ListEvents.
func (q *Queries) CountEvents(ctx context.Context, arg ListEventsParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events
		WHERE (? = '' OR level = ?) AND (? = '' OR category = ?)`,
		arg.Level, arg.Level, arg.Category, arg.Category).Scan(&count)
	return count, err
}

// DeleteEventsBefore prunes audit log entries older than cutoff.
func (q *Queries) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
