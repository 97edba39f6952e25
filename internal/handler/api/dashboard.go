// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/awasec/awa-cms/internal/model"
	"github.com/awasec/awa-cms/internal/store"
)

// DashboardStats is the admin landing page summary.
type DashboardStats struct {
	Articles            int64            `json:"articles"`
	Services            int64            `json:"services"`
	Projects            int64            `json:"projects"`
	Clients             int64            `json:"clients"`
	QuotesByStatus      map[string]int64 `json:"quotes_by_status"`
	UnreadNotifications int64            `json:"unread_notifications"`
	RecentQuotes        []model.Quote    `json:"recent_quotes"`
}

// Dashboard handles GET /api/v1/admin/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	var stats DashboardStats
	var err error

	if stats.Articles, err = h.queries.CountArticles(r.Context(), store.ListArticlesParams{}); err != nil {
		WriteInternalError(w, "Failed to load dashboard")
		return
	}
	services, err := h.queries.ListServices(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to load dashboard")
		return
	}
	stats.Services = int64(len(services))

	if stats.Projects, err = h.queries.CountProjects(r.Context(), store.ListProjectsParams{}); err != nil {
		WriteInternalError(w, "Failed to load dashboard")
		return
	}
	if stats.Clients, err = h.queries.CountUsers(r.Context(), store.ListUsersParams{Role: model.RoleClient}); err != nil {
		WriteInternalError(w, "Failed to load dashboard")
		return
	}
	if stats.QuotesByStatus, err = h.queries.CountQuotesByStatus(r.Context()); err != nil {
		WriteInternalError(w, "Failed to load dashboard")
		return
	}
	if stats.UnreadNotifications, err = h.queries.CountUnreadNotifications(r.Context()); err != nil {
		WriteInternalError(w, "Failed to load dashboard")
		return
	}
	if stats.RecentQuotes, err = h.queries.ListQuotes(r.Context(), store.ListQuotesParams{Limit: 5}); err != nil {
		WriteInternalError(w, "Failed to load dashboard")
		return
	}

	WriteSuccess(w, stats, nil)
}

// CacheStats handles GET /api/v1/admin/cache. Admin only. Stats are only
// available from the in-memory backend.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats, ok := h.cache.Stats()
	if !ok {
		WriteSuccess(w, map[string]string{"backend": "redis"}, nil)
		return
	}
	WriteSuccess(w, stats, nil)
}

// ClearCache handles DELETE /api/v1/admin/cache. Admin only.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.cache.Clear(r.Context())
	WriteNoContent(w)
}
