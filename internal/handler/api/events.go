// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/awasec/awa-cms/internal/i18n"
	"github.com/awasec/awa-cms/internal/middleware"
	"github.com/awasec/awa-cms/internal/model"
	"github.com/awasec/awa-cms/internal/store"
	"github.com/awasec/awa-cms/internal/util"
)

// EventView is an audit log entry as the API exposes it.
type EventView struct {
	ID        int64           `json:"id"`
	Level     string          `json:"level"`
	Category  string          `json:"category"`
	Message   string          `json:"message"`
	UserID    *int64          `json:"user_id,omitempty"`
	IPAddress string          `json:"ip_address,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func eventToView(e model.Event) EventView {
	view := EventView{
		ID:        e.ID,
		Level:     e.Level,
		Category:  e.Category,
		Message:   e.Message,
		UserID:    util.Int64PtrFromNull(e.UserID),
		IPAddress: e.IPAddress,
		CreatedAt: e.CreatedAt,
	}
	if json.Valid([]byte(e.Metadata)) {
		view.Metadata = json.RawMessage(e.Metadata)
	}
	return view
}

func isValidEventLevel(level string) bool {
	return level == model.EventLevelInfo || level == model.EventLevelWarning || level == model.EventLevelError
}

func isValidEventCategory(category string) bool {
	switch category {
	case model.EventCategoryAuth, model.EventCategoryContent, model.EventCategoryUser,
		model.EventCategoryProject, model.EventCategoryQuote, model.EventCategorySystem:
		return true
	}
	return false
}

// ListEvents handles GET /api/v1/admin/events with ?level and ?category.
// Admin only: the audit log records who did what from where.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r)
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r)

	level := r.URL.Query().Get("level")
	if level != "" && !isValidEventLevel(level) {
		WriteValidationError(w, map[string]string{"level": i18n.T(lang, "error.invalid_request")})
		return
	}
	category := r.URL.Query().Get("category")
	if category != "" && !isValidEventCategory(category) {
		WriteValidationError(w, map[string]string{"category": i18n.T(lang, "error.invalid_request")})
		return
	}

	arg := store.ListEventsParams{
		Level:    level,
		Category: category,
		Limit:    perPage,
		Offset:   (page - 1) * perPage,
	}
	events, err := h.queries.ListEvents(r.Context(), arg)
	if err != nil {
		WriteInternalError(w, "Failed to list events")
		return
	}
	total, err := h.queries.CountEvents(r.Context(), arg)
	if err != nil {
		WriteInternalError(w, "Failed to list events")
		return
	}

	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, eventToView(e))
	}

	WriteSuccess(w, views, NewMeta(total, page, perPage))
}
