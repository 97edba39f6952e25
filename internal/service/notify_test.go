package service

import (
	"context"
	"testing"
	"time"

	"github.com/awasec/awa-cms/internal/model"
	"github.com/awasec/awa-cms/internal/store"
)

func TestNotifyQuoteSubmitted(t *testing.T) {
	db, cleanup := serviceTestDB(t)
	defer cleanup()

	ctx := context.Background()
	svc := NewNotifyService(db)

	quote := model.Quote{ID: 3, Name: "Prospect"}
	svc.NotifyQuoteSubmitted(ctx, quote, "Penetration Testing")

	q := store.New(db)
	list, err := q.ListNotifications(ctx, store.ListNotificationsParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d notifications, want 1", len(list))
	}
	n := list[0]
	if n.Title != "New quotation request" {
		t.Errorf("Title = %q", n.Title)
	}
	if n.Data.Type != model.NotificationTypeQuotation || n.Data.QuoteID != 3 {
		t.Errorf("Data = %+v", n.Data)
	}
	if n.Data.ServiceName != "Penetration Testing" {
		t.Errorf("ServiceName = %q", n.Data.ServiceName)
	}
	if n.IsRead {
		t.Error("new notification should be unread")
	}
}

func TestNotifyQuoteSubmittedWithoutService(t *testing.T) {
	db, cleanup := serviceTestDB(t)
	defer cleanup()

	ctx := context.Background()
	svc := NewNotifyService(db)
	svc.NotifyQuoteSubmitted(ctx, model.Quote{ID: 1, Name: "Anon"}, "")

	q := store.New(db)
	list, err := q.ListNotifications(ctx, store.ListNotificationsParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d notifications, want 1", len(list))
	}
	if list[0].Data.ServiceName != "General inquiry" {
		t.Errorf("ServiceName = %q, want fallback label", list[0].Data.ServiceName)
	}
}

func TestNotifyProjectModification(t *testing.T) {
	db, cleanup := serviceTestDB(t)
	defer cleanup()

	ctx := context.Background()
	svc := NewNotifyService(db)

	project := model.Project{ID: 9, Name: model.LocalizedText{EN: "SOC Rollout", AR: "نشر"}}
	svc.NotifyProjectModification(ctx, project, "Acme Corp", "uploaded a file")

	q := store.New(db)
	list, err := q.ListNotifications(ctx, store.ListNotificationsParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d notifications, want 1", len(list))
	}
	n := list[0]
	if n.Data.Type != model.NotificationTypeProjectModification || n.Data.ProjectID != 9 {
		t.Errorf("Data = %+v", n.Data)
	}
	if n.Data.ProjectName != "SOC Rollout" {
		t.Errorf("ProjectName = %q", n.Data.ProjectName)
	}
}

func TestNotifyPruneRead(t *testing.T) {
	db, cleanup := serviceTestDB(t)
	defer cleanup()

	ctx := context.Background()
	svc := NewNotifyService(db)
	q := store.New(db)

	old, err := q.CreateNotification(ctx, store.CreateNotificationParams{
		Title: "old", CreatedAt: time.Now().Add(-30 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}
	if _, err := q.CreateNotification(ctx, store.CreateNotificationParams{
		Title: "fresh", CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}

	// Only read notifications are pruned, regardless of age.
	deleted, err := svc.PruneRead(ctx, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("PruneRead: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0 while unread", deleted)
	}

	if err := q.MarkNotificationRead(ctx, old.ID); err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}
	deleted, err = svc.PruneRead(ctx, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("PruneRead: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
}
