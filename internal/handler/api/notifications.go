// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/awasec/awa-cms/internal/model"
	"github.com/awasec/awa-cms/internal/store"
)

// ListNotifications handles GET /api/v1/admin/notifications with ?unread.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r)

	arg := store.ListNotificationsParams{
		UnreadOnly: r.URL.Query().Get("unread") == "true",
		Limit:      perPage,
		Offset:     (page - 1) * perPage,
	}
	notifications, err := h.queries.ListNotifications(r.Context(), arg)
	if err != nil {
		WriteInternalError(w, "Failed to list notifications")
		return
	}
	total, err := h.queries.CountNotifications(r.Context(), arg)
	if err != nil {
		WriteInternalError(w, "Failed to list notifications")
		return
	}

	WriteSuccess(w, notifications, NewMeta(total, page, perPage))
}

// UnreadNotificationCount handles GET /api/v1/admin/notifications/unread-count.
// Dashboards poll this for the bell badge.
func (h *Handler) UnreadNotificationCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.queries.CountUnreadNotifications(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to count notifications")
		return
	}
	WriteSuccess(w, map[string]int64{"unread": count}, nil)
}

// MarkNotificationRead handles POST /api/v1/admin/notifications/{id}/read.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	notification, ok := requireEntityByID(w, r, "notification", func(id int64) (model.Notification, error) {
		return h.queries.GetNotificationByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.MarkNotificationRead(r.Context(), notification.ID); err != nil {
		WriteInternalError(w, "Failed to update notification")
		return
	}
	WriteNoContent(w)
}

// MarkAllNotificationsRead handles POST /api/v1/admin/notifications/read-all.
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.queries.MarkAllNotificationsRead(r.Context()); err != nil {
		WriteInternalError(w, "Failed to update notifications")
		return
	}
	WriteNoContent(w)
}

// DeleteNotification handles DELETE /api/v1/admin/notifications/{id}.
func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	notification, ok := requireEntityByID(w, r, "notification", func(id int64) (model.Notification, error) {
		return h.queries.GetNotificationByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteNotification(r.Context(), notification.ID); err != nil {
		WriteInternalError(w, "Failed to delete notification")
		return
	}
	WriteNoContent(w)
}
