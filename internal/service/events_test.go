// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/awasec/awa-cms/internal/model"
	"github.com/awasec/awa-cms/internal/store"
)

func serviceTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "awacms-service-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		db.Close()
		os.Remove(dbPath)
	}
}

func TestEventServiceLogEvent(t *testing.T) {
	db, cleanup := serviceTestDB(t)
	defer cleanup()

	ctx := context.Background()
	svc := NewEventService(db)

	err := svc.LogAuthEvent(ctx, model.EventLevelInfo, "User logged in", 7, "203.0.113.9",
		map[string]any{"browser": "Firefox"})
	if err != nil {
		t.Fatalf("LogAuthEvent: %v", err)
	}

	q := store.New(db)
	events, err := q.ListEvents(ctx, store.ListEventsParams{Category: model.EventCategoryAuth, Limit: 10})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if e.Level != model.EventLevelInfo || e.Message != "User logged in" {
		t.Errorf("event = %+v", e)
	}
	if !e.UserID.Valid || e.UserID.Int64 != 7 {
		t.Errorf("UserID = %+v, want 7", e.UserID)
	}
	if e.IPAddress != "203.0.113.9" {
		t.Errorf("IPAddress = %q", e.IPAddress)
	}
}

func TestEventServiceNilMetadata(t *testing.T) {
	db, cleanup := serviceTestDB(t)
	defer cleanup()

	ctx := context.Background()
	svc := NewEventService(db)

	if err := svc.LogSystemEvent(ctx, model.EventLevelWarning, "Cache flushed", 0, "", nil); err != nil {
		t.Fatalf("LogSystemEvent: %v", err)
	}

	q := store.New(db)
	events, err := q.ListEvents(ctx, store.ListEventsParams{Category: model.EventCategorySystem, Limit: 10})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Metadata != "{}" {
		t.Errorf("Metadata = %q, want empty object", events[0].Metadata)
	}
	if events[0].UserID.Valid {
		t.Error("system event should have no user")
	}
}

func TestEventServiceDeleteOldEvents(t *testing.T) {
	db, cleanup := serviceTestDB(t)
	defer cleanup()

	ctx := context.Background()
	svc := NewEventService(db)
	q := store.New(db)

	// One old entry written directly, one fresh through the service.
	if err := q.CreateEvent(ctx, store.CreateEventParams{
		Level: model.EventLevelInfo, Category: model.EventCategorySystem,
		Message: "old", Metadata: "{}", CreatedAt: time.Now().Add(-48 * time.Hour),
	}); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if err := svc.LogSystemEvent(ctx, model.EventLevelInfo, "fresh", 0, "", nil); err != nil {
		t.Fatalf("LogSystemEvent: %v", err)
	}

	deleted, err := svc.DeleteOldEvents(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("DeleteOldEvents: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	remaining, err := q.CountEvents(ctx, store.ListEventsParams{})
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if remaining != 1 {
		t.Errorf("remaining = %d, want 1", remaining)
	}
}
