// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/awasec/awa-cms/internal/model"
	"github.com/awasec/awa-cms/internal/store"
)

// NotifyService creates dashboard notifications for events staff should see:
// incoming quotation requests and client activity on projects.
type NotifyService struct {
	queries *store.Queries
}

// NewNotifyService creates a new notification service.
func NewNotifyService(db *sql.DB) *NotifyService {
	return &NotifyService{
		queries: store.New(db),
	}
}

// NotifyQuoteSubmitted records a notification for a new quotation request.
// serviceName is the resolved name of the requested service, empty when the
// request was not tied to one.
func (s *NotifyService) NotifyQuoteSubmitted(ctx context.Context, quote model.Quote, serviceName string) {
	if serviceName == "" {
		serviceName = "General inquiry"
	}
	s.create(ctx, store.CreateNotificationParams{
		Title: "New quotation request",
		Body:  fmt.Sprintf("%s requested a quote for %s", quote.Name, serviceName),
		Data: model.NotificationData{
			Type:        model.NotificationTypeQuotation,
			QuoteID:     quote.ID,
			ServiceName: serviceName,
			ClientName:  quote.Name,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyProjectModification records a notification for client activity on a
// project, such as an uploaded file or a modification request.
func (s *NotifyService) NotifyProjectModification(ctx context.Context, project model.Project, clientName, action string) {
	projectName := project.Name.Resolve(model.LocaleEN)
	s.create(ctx, store.CreateNotificationParams{
		Title: "Project activity",
		Body:  fmt.Sprintf("%s %s on project %s", clientName, action, projectName),
		Data: model.NotificationData{
			Type:        model.NotificationTypeProjectModification,
			ProjectID:   project.ID,
			ProjectName: projectName,
			ClientName:  clientName,
		},
		CreatedAt: time.Now(),
	})
}

// create inserts the notification. Failures are logged, never surfaced: a
// dropped notification must not fail the operation that triggered it.
func (s *NotifyService) create(ctx context.Context, arg store.CreateNotificationParams) {
	if _, err := s.queries.CreateNotification(ctx, arg); err != nil {
		slog.Error("failed to create notification", "title", arg.Title, "error", err)
	}
}

// PruneRead deletes read notifications older than the cutoff and returns the
// number removed.
func (s *NotifyService) PruneRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	return s.queries.DeleteReadNotificationsBefore(ctx, cutoff)
}
