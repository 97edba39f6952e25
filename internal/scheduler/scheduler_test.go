// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/awasec/awa-cms/internal/model"
	"github.com/awasec/awa-cms/internal/store"
)

func testScheduler(t *testing.T) (*Scheduler, *store.Queries, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "awacms-scheduler-test-*.db")
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

	s := New(db, nil, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return s, store.New(db), cleanup
}

func seedProject(t *testing.T, q *store.Queries) model.Project {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	user, err := q.CreateUser(ctx, store.CreateUserParams{
		Email: "client@example.com", Role: model.RoleClient, Name: "Client",
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	project, err := q.CreateProject(ctx, store.CreateProjectParams{
		Name: model.LocalizedText{EN: "P", AR: "م"}, UserID: user.ID,
		AccessCode: "SCHED23456", CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	return project
}

func TestRecomputePaymentStatuses(t *testing.T) {
	s, q, cleanup := testScheduler(t)
	defer cleanup()

	ctx := context.Background()
	project := seedProject(t, q)
	now := time.Now()

	mk := func(due time.Time, status string) model.Payment {
		t.Helper()
		p, err := q.CreatePayment(ctx, store.CreatePaymentParams{
			ProjectID: project.ID,
			Title:     model.LocalizedText{EN: "Pay", AR: "دفعة"},
			Amount:    100,
			DueDate:   due,
			Status:    status,
		})
		if err != nil {
			t.Fatalf("CreatePayment: %v", err)
		}
		return p
	}

	overdue := mk(now.Add(-24*time.Hour), model.PaymentStatusUpcoming)
	nearDue := mk(now.Add(2*24*time.Hour), model.PaymentStatusUpcoming)
	farOff := mk(now.Add(30*24*time.Hour), model.PaymentStatusUpcoming)
	paid := mk(now.Add(-48*time.Hour), model.PaymentStatusUpcoming)
	if err := q.UpdatePaymentStatus(ctx, paid.ID, model.PaymentStatusPaid,
		sql.NullTime{Time: now, Valid: true}); err != nil {
		t.Fatalf("UpdatePaymentStatus: %v", err)
	}

	if err := s.recomputePaymentStatuses(); err != nil {
		t.Fatalf("recomputePaymentStatuses: %v", err)
	}

	check := func(id int64, want string) {
		t.Helper()
		p, err := q.GetPaymentByID(ctx, id)
		if err != nil {
			t.Fatalf("GetPaymentByID: %v", err)
		}
		if p.Status != want {
			t.Errorf("payment %d status = %q, want %q", id, p.Status, want)
		}
	}
	check(overdue.ID, model.PaymentStatusDue)
	check(nearDue.ID, model.PaymentStatusDueSoon)
	check(farOff.ID, model.PaymentStatusUpcoming)
	check(paid.ID, model.PaymentStatusPaid)

	// Paid payments keep their paid timestamp.
	p, err := q.GetPaymentByID(ctx, paid.ID)
	if err != nil {
		t.Fatalf("GetPaymentByID: %v", err)
	}
	if p.PaidAt == nil {
		t.Error("paid_at cleared by recomputation")
	}
}

func TestPruneOldRecords(t *testing.T) {
	s, q, cleanup := testScheduler(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	old, err := q.CreateNotification(ctx, store.CreateNotificationParams{
		Title: "stale", CreatedAt: now.Add(-2 * ReadNotificationRetention),
	})
	if err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}
	if err := q.MarkNotificationRead(ctx, old.ID); err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}
	if _, err := q.CreateNotification(ctx, store.CreateNotificationParams{
		Title: "fresh", CreatedAt: now,
	}); err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}

	if err := q.CreateEvent(ctx, store.CreateEventParams{
		Level: model.EventLevelInfo, Category: model.EventCategorySystem,
		Message: "ancient", Metadata: "{}",
		CreatedAt: now.Add(-2 * EventLogRetention),
	}); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	if err := s.pruneOldRecords(); err != nil {
		t.Fatalf("pruneOldRecords: %v", err)
	}

	remaining, err := q.ListNotifications(ctx, store.ListNotificationsParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Title != "fresh" {
		t.Errorf("notifications after prune = %+v", remaining)
	}

	// The ancient event is gone and the cleanup itself is on record.
	events, err := q.ListEvents(ctx, store.ListEventsParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	for _, e := range events {
		if e.Message == "ancient" {
			t.Error("expired event survived prune")
		}
	}
	if len(events) != 1 {
		t.Errorf("events after prune = %d, want just the cleanup record", len(events))
	}
}
