// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/awasec/awa-cms/internal/model"
)

const notificationColumns = `id, title, body, data, is_read, created_at`

func scanNotification(row interface{ Scan(...any) error }) (model.Notification, error) {
	var n model.Notification
	err := row.Scan(&n.ID, &n.Title, &n.Body, &n.Data, &n.IsRead, &n.CreatedAt)
	return n, err
}

// GetNotificationByID fetches a notification by primary key.
func (q *Queries) GetNotificationByID(ctx context.Context, id int64) (model.Notification, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id)
	return scanNotification(row)
}

// ListNotificationsParams paginates notifications, optionally unread only.
type ListNotificationsParams struct {
	UnreadOnly bool
	Limit      int64
	Offset     int64
}

// ListNotifications returns a page of notifications, newest first.
func (q *Queries) ListNotifications(ctx context.Context, arg ListNotificationsParams) ([]model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE (? = 0 OR is_read = 0)
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := q.db.QueryContext(ctx, query, boolToInt(arg.UnreadOnly), arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// CountNotifications counts notifications matching the same filter as ListNotifications.
func (q *Queries) CountNotifications(ctx context.Context, arg ListNotificationsParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications
		WHERE (? = 0 OR is_read = 0)`, boolToInt(arg.UnreadOnly)).Scan(&count)
	return count, err
}

// CountUnreadNotifications returns the unread badge count.
func (q *Queries) CountUnreadNotifications(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE is_read = 0`).Scan(&count)
	return count, err
}

// CreateNotificationParams holds the fields for a new notification.
type CreateNotificationParams struct {
	Title     string
	Body      string
	Data      model.NotificationData
	CreatedAt time.Time
}

// CreateNotification inserts a notification and returns the stored row.
func (q *Queries) CreateNotification(ctx context.Context, arg CreateNotificationParams) (model.Notification, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO notifications (title, body, data, created_at)
		VALUES (?, ?, ?, ?)`,
		arg.Title, arg.Body, arg.Data, arg.CreatedAt)
	if err != nil {
		return model.Notification{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Notification{}, err
	}
	return q.GetNotificationByID(ctx, id)
}

// MarkNotificationRead flags a single notification as read.
func (q *Queries) MarkNotificationRead(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	return err
}

// MarkAllNotificationsRead flags every notification as read.
func (q *Queries) MarkAllNotificationsRead(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE is_read = 0`)
	return err
}

// DeleteNotification removes a notification.
func (q *Queries) DeleteNotification(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id)
	return err
}

// DeleteReadNotificationsBefore prunes read notifications older than cutoff.
// Called by the scheduler; returns the number of rows removed.
func (q *Queries) DeleteReadNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM notifications WHERE is_read = 1 AND created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
