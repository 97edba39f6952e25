// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging bridges slog and the audit log: warnings and errors go to
// the events table as well as the wrapped text handler.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/awasec/awa-cms/internal/model"
	"github.com/awasec/awa-cms/internal/store"
)

// EventLogHandler is a slog.Handler that mirrors records at or above a
// threshold into the database-backed audit log.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	minimum slog.Level
}

// NewEventLogHandler wraps inner so WARN and ERROR records are also written
// to the events table.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		minimum: slog.LevelWarn,
	}
}

func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	err := h.inner.Handle(ctx, r)
	if r.Level >= h.minimum {
		h.record(r)
	}
	return err
}

func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EventLogHandler{inner: h.inner.WithAttrs(attrs), queries: h.queries, minimum: h.minimum}
}

func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{inner: h.inner.WithGroup(name), queries: h.queries, minimum: h.minimum}
}

// record stores one log record as an audit event. A background context is
// used so events survive cancelled request contexts; failures are swallowed
// because logging must never fail the caller.
func (h *EventLogHandler) record(r slog.Record) {
	level := model.EventLevelWarning
	if r.Level >= slog.LevelError {
		level = model.EventLevelError
	}

	category := ""
	attrs := make(map[string]string, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
		} else {
			attrs[a.Key] = a.Value.String()
		}
		return true
	})
	if category == "" {
		category = categoryFromMessage(r.Message)
	}

	metadata := "{}"
	if len(attrs) > 0 {
		if raw, err := json.Marshal(attrs); err == nil {
			metadata = string(raw)
		}
	}

	_ = h.queries.CreateEvent(context.Background(), store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   r.Message,
		Metadata:  metadata,
		CreatedAt: r.Time,
	})
}

// categoryFromMessage guesses the audit category for records logged without
// an explicit one.
func categoryFromMessage(message string) string {
	msg := strings.ToLower(message)
	switch {
	case containsAny(msg, "auth", "login", "logout"):
		return model.EventCategoryAuth
	case containsAny(msg, "article", "service", "section"):
		return model.EventCategoryContent
	case containsAny(msg, "user", "client"):
		return model.EventCategoryUser
	case containsAny(msg, "project", "payment", "phase"):
		return model.EventCategoryProject
	case containsAny(msg, "quote", "quotation"):
		return model.EventCategoryQuote
	}
	return model.EventCategorySystem
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
