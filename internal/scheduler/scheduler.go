// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance: payment status recomputation,
// notification and event log pruning, and GeoIP database reloads.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/awasec/awa-cms/internal/geoip"
	"github.com/awasec/awa-cms/internal/model"
	"github.com/awasec/awa-cms/internal/store"
)

// Retention windows for pruning jobs.
const (
	ReadNotificationRetention = 30 * 24 * time.Hour
	EventLogRetention         = 90 * 24 * time.Hour
)

// Scheduler handles periodic background tasks.
type Scheduler struct {
	db     *sql.DB
	geo    *geoip.Lookup
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a new scheduler instance. geo may be nil when GeoIP is not
// configured.
func New(db *sql.DB, geo *geoip.Lookup, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:     db,
		geo:    geo,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers and begins the cron jobs.
func (s *Scheduler) Start() error {
	// Payments move between upcoming, due_soon and due as their due dates
	// approach. Hourly is plenty for a 7-day warning window.
	if _, err := s.cron.AddFunc("0 * * * *", func() {
		if err := s.recomputePaymentStatuses(); err != nil {
			s.logger.Error("failed to recompute payment statuses", "error", err)
		}
	}); err != nil {
		return err
	}

	// Nightly housekeeping at 03:00.
	if _, err := s.cron.AddFunc("0 3 * * *", func() {
		if err := s.pruneOldRecords(); err != nil {
			s.logger.Error("failed to prune old records", "error", err)
		}
	}); err != nil {
		return err
	}

	if s.geo != nil {
		if _, err := s.cron.AddFunc("30 3 * * *", func() {
			if err := s.geo.Reload(); err != nil {
				s.logger.Warn("failed to reload GeoIP database", "error", err)
			}
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// recomputePaymentStatuses refreshes the stored status of every unpaid
// payment from its due date.
func (s *Scheduler) recomputePaymentStatuses() error {
	ctx := context.Background()
	queries := store.New(s.db)
	now := time.Now()

	payments, err := queries.ListUnpaidPayments(ctx)
	if err != nil {
		return err
	}

	var updated int
	for _, p := range payments {
		computed := p.ComputedStatus(now)
		if computed == p.Status {
			continue
		}
		if err := queries.UpdatePaymentStatus(ctx, p.ID, computed, sql.NullTime{}); err != nil {
			s.logger.Error("failed to update payment status",
				"payment_id", p.ID,
				"status", computed,
				"error", err,
			)
			continue
		}
		updated++
	}

	if updated > 0 {
		s.logger.Info("recomputed payment statuses", "updated", updated)
	}
	return nil
}

// pruneOldRecords drops read notifications and event log entries past their
// retention windows, and records the cleanup in the event log.
func (s *Scheduler) pruneOldRecords() error {
	ctx := context.Background()
	queries := store.New(s.db)
	now := time.Now()

	notifications, err := queries.DeleteReadNotificationsBefore(ctx, now.Add(-ReadNotificationRetention))
	if err != nil {
		return err
	}

	events, err := queries.DeleteEventsBefore(ctx, now.Add(-EventLogRetention))
	if err != nil {
		return err
	}

	if notifications == 0 && events == 0 {
		return nil
	}

	s.logger.Info("pruned old records",
		"notifications", notifications,
		"events", events,
	)

	if err := queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     model.EventLevelInfo,
		Category:  model.EventCategorySystem,
		Message:   "Scheduled cleanup removed expired records",
		Metadata:  "{}",
		CreatedAt: now,
	}); err != nil {
		s.logger.Warn("failed to log cleanup event", "error", err)
	}
	return nil
}
